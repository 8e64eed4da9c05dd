package source

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// sqlSource serves observations from a raw database table. The whole source
// is one work unit, checkpointed by the last consumed observation timestamp.
type sqlSource struct {
	cfg    config.SourceConfig
	dbConn database.DBConnection
}

// NewSQLSource creates a Source over the database connection named by the
// source config.
func NewSQLSource(cfg config.SourceConfig, dbConn database.DBConnection) Source {
	return &sqlSource{cfg: cfg, dbConn: dbConn}
}

func (s *sqlSource) Name() string {
	return s.cfg.Name
}

// Units returns the source's own name: a SQL source is a single unit.
func (s *sqlSource) Units(ctx context.Context) ([]string, error) {
	return []string{s.cfg.Name}, nil
}

// Fetch scans the raw table and returns the records newer than the stored
// raw-timestamp checkpoint, sorted by observation time. The table keeps the
// instrument's column names, so rows go through the same column mapping as
// the file export.
func (s *sqlSource) Fetch(ctx context.Context, unit string, status model.ProcessingStatus) (Batch, error) {
	threshold, err := model.ParseStamp(status.LastRawTimestamp)
	if err != nil {
		return Batch{}, exception.New(s.cfg.Name, "stored raw-timestamp checkpoint is unreadable", err, false)
	}

	rows, err := s.dbConn.GORM().WithContext(ctx).
		Raw(fmt.Sprintf("SELECT * FROM %s", s.cfg.Table)).
		Rows()
	if err != nil {
		return Batch{}, exception.New(s.cfg.Name, fmt.Sprintf("failed to query raw table '%s'", s.cfg.Table), err, true)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Batch{}, exception.New(s.cfg.Name, "failed to read raw table columns", err, true)
	}
	cm, err := mapColumns(columns)
	if err != nil {
		return Batch{}, exception.New(s.cfg.Name, fmt.Sprintf("unusable schema in raw table '%s'", s.cfg.Table), err, false)
	}

	type timedRecord struct {
		record model.RawRecord
		ts     time.Time
	}
	var selected []timedRecord

	values := make([]sql.NullString, len(columns))
	scanTargets := make([]interface{}, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return Batch{}, exception.New(s.cfg.Name, "failed to scan raw table row", err, true)
		}

		cells := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				cells[i] = v.String
			}
		}

		record := recordFromRow(cm, cells)
		ts, err := record.Timestamp()
		if err != nil {
			return Batch{}, exception.New(s.cfg.Name, "rejecting batch", err, false)
		}

		if !threshold.IsZero() && !ts.After(threshold) {
			continue
		}
		selected = append(selected, timedRecord{record: record, ts: ts})
	}
	if err := rows.Err(); err != nil {
		return Batch{}, exception.New(s.cfg.Name, "failed to iterate raw table rows", err, true)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].ts.Before(selected[j].ts) })

	records := make([]model.RawRecord, 0, len(selected))
	for _, tr := range selected {
		records = append(records, tr.record)
	}

	logger.Debugf("Fetched %d new rows from raw table '%s'.", len(records), s.cfg.Table)
	return Batch{Records: records}, nil
}
