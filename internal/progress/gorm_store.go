package progress

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

const componentName = "progress"

// gormStore implements Store over a GORM database connection.
type gormStore struct {
	dbConn database.DBConnection
}

// NewGormStore creates a Store backed by the given database connection.
func NewGormStore(dbConn database.DBConnection) Store {
	return &gormStore{dbConn: dbConn}
}

// Get returns the checkpoint row for sourceID, or a default row when none
// exists. The default row is not written back; it materializes only on the
// first Upsert.
func (s *gormStore) Get(ctx context.Context, sourceID string) (model.ProcessingStatus, error) {
	var status model.ProcessingStatus

	err := s.dbConn.GORM().WithContext(ctx).
		Where("source_id = ?", sourceID).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debugf("No processing status for source '%s'; starting from scratch.", sourceID)
			return model.ProcessingStatus{SourceID: sourceID}, nil
		}
		return model.ProcessingStatus{}, exception.New(componentName,
			fmt.Sprintf("failed to load processing status for source '%s'", sourceID), err, true)
	}
	return status, nil
}

// Upsert creates or updates the checkpoint row for sourceID, applying only
// the non-nil fields of update. The read-modify-write runs in a single
// transaction so concurrent writers cannot interleave partial updates.
func (s *gormStore) Upsert(ctx context.Context, sourceID string, update StatusUpdate) error {
	if update.LastRawTimestamp == nil && update.LastAvgTimestamp == nil && update.LastRow == nil {
		return nil
	}

	err := s.dbConn.GORM().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var status model.ProcessingStatus
		err := tx.Where("source_id = ?", sourceID).First(&status).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			status = model.ProcessingStatus{SourceID: sourceID}
			applyUpdate(&status, update)
			return tx.Create(&status).Error
		case err != nil:
			return err
		default:
			fields := make(map[string]interface{}, 3)
			if update.LastRawTimestamp != nil {
				fields["last_raw_timestamp"] = *update.LastRawTimestamp
			}
			if update.LastAvgTimestamp != nil {
				fields["last_avg_timestamp"] = *update.LastAvgTimestamp
			}
			if update.LastRow != nil {
				fields["last_row"] = *update.LastRow
			}
			return tx.Model(&model.ProcessingStatus{}).
				Where("source_id = ?", sourceID).
				Updates(fields).Error
		}
	})
	if err != nil {
		return exception.New(componentName,
			fmt.Sprintf("failed to upsert processing status for source '%s'", sourceID), err, true)
	}

	logger.Debugf("Advanced processing status for source '%s'.", sourceID)
	return nil
}

func applyUpdate(status *model.ProcessingStatus, update StatusUpdate) {
	if update.LastRawTimestamp != nil {
		status.LastRawTimestamp = *update.LastRawTimestamp
	}
	if update.LastAvgTimestamp != nil {
		status.LastAvgTimestamp = *update.LastAvgTimestamp
	}
	if update.LastRow != nil {
		status.LastRow = *update.LastRow
	}
}

func (s *gormStore) Close() error {
	// The underlying DBConnection is managed by its provider, so do not close here.
	return nil
}
