package source

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// DefaultFileSuffix filters discovered objects when the source config leaves
// the suffix empty.
const DefaultFileSuffix = ".txt"

// fileSource serves tab-separated instrument exports from an object store.
// Each discovered file is its own work unit, checkpointed by row offset.
type fileSource struct {
	cfg  config.SourceConfig
	conn storageAdapter.StorageConnection
}

// NewFileSource creates a Source over the storage connection named by the
// source config.
func NewFileSource(cfg config.SourceConfig, conn storageAdapter.StorageConnection) Source {
	return &fileSource{cfg: cfg, conn: conn}
}

func (s *fileSource) Name() string {
	return s.cfg.Name
}

// Units lists the objects matching the configured prefix and suffix, sorted
// by name.
func (s *fileSource) Units(ctx context.Context) ([]string, error) {
	suffix := strings.ToLower(s.cfg.Suffix)
	if suffix == "" {
		suffix = DefaultFileSuffix
	}

	var units []string
	err := s.conn.ListObjects(ctx, s.cfg.Bucket, s.cfg.Prefix, func(objectName string) error {
		if strings.HasSuffix(strings.ToLower(objectName), suffix) {
			units = append(units, objectName)
		}
		return nil
	})
	if err != nil {
		return nil, exception.New(s.cfg.Name, "failed to list source objects", err, true)
	}

	sort.Strings(units)
	return units, nil
}

// Fetch reads the file and returns the rows past the stored offset. The
// first line is the header; data rows are counted from zero. A file shorter
// than its checkpoint was rewritten, so consumption restarts from the top.
func (s *fileSource) Fetch(ctx context.Context, unit string, status model.ProcessingStatus) (Batch, error) {
	rc, err := s.conn.Download(ctx, s.cfg.Bucket, unit)
	if err != nil {
		return Batch{}, exception.New(s.cfg.Name, fmt.Sprintf("failed to open source object '%s'", unit), err, true)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Batch{}, exception.New(s.cfg.Name, fmt.Sprintf("failed to read source object '%s'", unit), err, true)
		}
		// Empty file; nothing to do.
		return Batch{OffsetBased: true, BaseRow: 0}, nil
	}

	cm, err := mapColumns(strings.Split(scanner.Text(), "\t"))
	if err != nil {
		return Batch{}, exception.Newf(s.cfg.Name, "unusable header in source object '%s'", unit, err)
	}

	var rows [][]string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if err := scanner.Err(); err != nil {
		return Batch{}, exception.New(s.cfg.Name, fmt.Sprintf("failed to read source object '%s'", unit), err, true)
	}

	total := int64(len(rows))
	baseRow := status.LastRow

	if total < baseRow {
		logger.Warnf("Source object '%s' shrank from %d to %d rows; restarting consumption from the top.", unit, baseRow, total)
		baseRow = 0
	}
	if total == baseRow {
		return Batch{OffsetBased: true, BaseRow: baseRow}, nil
	}

	newRows := rows[baseRow:]
	records := make([]model.RawRecord, 0, len(newRows))
	for _, row := range newRows {
		records = append(records, recordFromRow(cm, row))
	}

	logger.Debugf("Fetched %d new rows from '%s' (offset %d of %d).", len(records), unit, baseRow, total)
	return Batch{
		Records:     records,
		OffsetBased: true,
		BaseRow:     baseRow,
	}, nil
}
