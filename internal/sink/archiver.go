package sink

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"path"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// ArchiveRow is the parquet shape of one hourly aggregate. Missing means
// stay NULL rather than collapsing to zero.
type ArchiveRow struct {
	Datetime  string   `parquet:"name=datetime, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name      string   `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Latitude  float64  `parquet:"name=lat, type=DOUBLE"`
	Longitude float64  `parquet:"name=lon, type=DOUBLE"`
	WV        *float64 `parquet:"name=wv, type=DOUBLE, repetitiontype=OPTIONAL"`
	WD        *float64 `parquet:"name=wd, type=DOUBLE, repetitiontype=OPTIONAL"`
	Temp      *float64 `parquet:"name=temp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humi      *float64 `parquet:"name=humi, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pres      *float64 `parquet:"name=pres, type=DOUBLE, repetitiontype=OPTIONAL"`
	PM01      *float64 `parquet:"name=pm01, type=DOUBLE, repetitiontype=OPTIONAL"`
	PM25      *float64 `parquet:"name=pm25, type=DOUBLE, repetitiontype=OPTIONAL"`
	PM10      *float64 `parquet:"name=pm10, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// archiveRowFromAggregate flattens an aggregate into its parquet shape.
func archiveRowFromAggregate(agg model.HourlyAggregate) ArchiveRow {
	m := agg.Means
	return ArchiveRow{
		Datetime:  agg.Datetime(),
		Name:      agg.Station.Name,
		Latitude:  agg.Station.Latitude,
		Longitude: agg.Station.Longitude,
		WV:        m[0],
		WD:        m[1],
		Temp:      m[2],
		Humi:      m[3],
		Pres:      m[4],
		PM01:      m[5],
		PM25:      m[6],
		PM10:      m[7],
	}
}

// Archiver mirrors delivered aggregate rows into object storage as parquet
// files, partitioned Hive-style by aggregate date (dt=YYYY-MM-DD).
type Archiver interface {
	Archive(ctx context.Context, aggregates []model.HourlyAggregate) error
}

// noopArchiver is used when the archive mirror is disabled.
type noopArchiver struct{}

func (noopArchiver) Archive(ctx context.Context, aggregates []model.HourlyAggregate) error {
	return nil
}

// parquetArchiver implements Archiver over a storage connection.
type parquetArchiver struct {
	cfg  config.ArchiveConfig
	conn storageAdapter.StorageConnection
}

// NewArchiver builds the archiver declared under uplink.output.archive. When
// the mirror is disabled it returns a no-op implementation.
func NewArchiver(cfg *config.Config, resolver storageAdapter.ConnectionResolver) (Archiver, error) {
	archiveCfg := cfg.Uplink.Output.Archive
	if !archiveCfg.Enabled {
		return noopArchiver{}, nil
	}
	if archiveCfg.StorageRef == "" {
		return nil, exception.New(componentName, "archive mirror is enabled but storage_ref is not set", nil, false)
	}

	conn, err := resolver.Resolve(archiveCfg.StorageRef)
	if err != nil {
		return nil, err
	}
	return &parquetArchiver{cfg: archiveCfg, conn: conn}, nil
}

// Archive writes one parquet file per aggregate date and uploads each under
// BaseDir/dt=YYYY-MM-DD/. A failed partition does not stop the others; the
// errors are aggregated.
func (a *parquetArchiver) Archive(ctx context.Context, aggregates []model.HourlyAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	partitions := make(map[string][]ArchiveRow)
	for _, agg := range aggregates {
		key := fmt.Sprintf("dt=%s", agg.Hour.In(model.StationClock).Format("2006-01-02"))
		partitions[key] = append(partitions[key], archiveRowFromAggregate(agg))
	}

	var multiErr error
	for partitionKey, rows := range partitions {
		buf := new(bytes.Buffer)

		pw, err := writer.NewParquetWriterFromWriter(buf, new(ArchiveRow), int64(len(rows)))
		if err != nil {
			multiErr = multierror.Append(multiErr, exception.New(componentName,
				fmt.Sprintf("failed to create parquet writer for partition '%s'", partitionKey), err, false))
			continue
		}
		pw.CompressionType = parquet.CompressionCodec_SNAPPY

		writeFailed := false
		for _, row := range rows {
			if err := pw.Write(row); err != nil {
				multiErr = multierror.Append(multiErr, exception.New(componentName,
					fmt.Sprintf("failed to write parquet row for partition '%s'", partitionKey), err, false))
				writeFailed = true
				break
			}
		}
		if writeFailed {
			continue
		}
		if err := pw.WriteStop(); err != nil {
			multiErr = multierror.Append(multiErr, exception.New(componentName,
				fmt.Sprintf("failed to finalize parquet file for partition '%s'", partitionKey), err, false))
			continue
		}

		fileName := fmt.Sprintf("data_%s_%s.parquet", time.Now().Format("20060102150405"), randomSuffix(8))
		objectName := path.Join(a.cfg.BaseDir, partitionKey, fileName)

		if err := a.conn.Upload(ctx, a.cfg.Bucket, objectName, buf, "application/octet-stream"); err != nil {
			multiErr = multierror.Append(multiErr, exception.New(componentName,
				fmt.Sprintf("failed to upload parquet file '%s'", objectName), err, true))
			continue
		}
		logger.Infof("Archived %d rows to '%s'.", len(rows), objectName)
	}

	return multiErr
}

// randomSuffix generates a short random string to keep archive file names
// unique within a second.
func randomSuffix(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[seededRand.Intn(len(charset))]
	}
	return string(b)
}
