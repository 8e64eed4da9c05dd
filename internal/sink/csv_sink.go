// Package sink renders hourly aggregate rows as CSV and persists them: an
// append-only artifact per source month on disk, plus an optional parquet
// mirror in object storage.
package sink

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

const componentName = "sink"

// Header is the fixed column order of every emitted CSV.
var Header = []string{
	"datetime", "name", "lat", "lon",
	"WV", "WD", "TEMP", "HUMI", "PRES", "PM01", "PM25", "PM10",
}

// RenderCSV renders aggregates as a standalone CSV document, header
// included. This is the payload shape the ingestion API expects.
func RenderCSV(aggregates []model.HourlyAggregate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, exception.New(componentName, "failed to render CSV header", err, false)
	}
	for _, agg := range aggregates {
		if err := w.Write(agg.CSVRow()); err != nil {
			return nil, exception.New(componentName, "failed to render CSV row", err, false)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, exception.New(componentName, "failed to render CSV", err, false)
	}
	return buf.Bytes(), nil
}

// CSVSink appends aggregate rows to per-artifact CSV files under a base
// directory.
type CSVSink struct {
	dir string
}

// NewCSVSink creates a sink writing artifacts under dir, creating it if
// needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if dir == "" {
		return nil, exception.New(componentName, "csv output directory must be configured", nil, false)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, exception.New(componentName, fmt.Sprintf("failed to create csv output directory '%s'", dir), err, false)
	}
	return &CSVSink{dir: dir}, nil
}

// Append writes aggregates to the named artifact. A new artifact starts with
// the header row; an existing one only grows data rows. The rows are flushed
// and synced before returning, so a successful Append means the data is
// durable.
func (s *CSVSink) Append(artifact string, aggregates []model.HourlyAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	path := filepath.Join(s.dir, artifact)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return exception.New(componentName, fmt.Sprintf("failed to open artifact '%s'", path), err, true)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			return exception.New(componentName, fmt.Sprintf("failed to write header to artifact '%s'", path), err, true)
		}
	}
	for _, agg := range aggregates {
		if err := w.Write(agg.CSVRow()); err != nil {
			return exception.New(componentName, fmt.Sprintf("failed to write row to artifact '%s'", path), err, true)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return exception.New(componentName, fmt.Sprintf("failed to flush artifact '%s'", path), err, true)
	}
	if err := f.Sync(); err != nil {
		return exception.New(componentName, fmt.Sprintf("failed to sync artifact '%s'", path), err, true)
	}

	logger.Infof("Appended %d hourly rows to artifact '%s'.", len(aggregates), artifact)
	return nil
}

// Dir returns the artifact base directory.
func (s *CSVSink) Dir() string {
	return s.dir
}
