package source_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/source"
)

// fakeStorage is an in-memory StorageConnection for source tests.
type fakeStorage struct {
	objects map[string]string
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[objectName] = string(b)
	return nil
}

func (f *fakeStorage) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	content, ok := f.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object '%s' not found", objectName)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeStorage) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	names := make([]string, 0, len(f.objects))
	for name := range f.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := fn(name); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, bucket, objectName string) error {
	delete(f.objects, objectName)
	return nil
}

func (f *fakeStorage) Type() string { return "fake" }
func (f *fakeStorage) Name() string { return "fake" }
func (f *fakeStorage) Close() error { return nil }

const exportHeader = "date\ttime\twind speed\twind direction\tT\trH\tp\tPM1\tPM2.5\tPM10"

func exportRow(date, clock string, pm25 string) string {
	return strings.Join([]string{date, clock, "2.1", "180", "28.5", "45", "1012", "8.2", pm25, "25.0"}, "\t")
}

func newFileSource(objects map[string]string) source.Source {
	cfg := config.SourceConfig{
		Name:   "dustmonitor-files",
		Type:   "files",
		Prefix: "DUSTMONITOR_",
	}
	return source.NewFileSource(cfg, &fakeStorage{objects: objects})
}

func TestUnitsFiltersAndSorts(t *testing.T) {
	src := newFileSource(map[string]string{
		"DUSTMONITOR_17712_2025_04.txt": exportHeader,
		"DUSTMONITOR_17712_2025_03.txt": exportHeader,
		"DUSTMONITOR_17712_2025_03.bak": "not an export",
		"README.txt":                    "prefix mismatch",
	})

	units, err := src.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DUSTMONITOR_17712_2025_03.txt",
		"DUSTMONITOR_17712_2025_04.txt",
	}, units)
}

func TestUnitsMatchesSuffixCaseInsensitively(t *testing.T) {
	cfg := config.SourceConfig{
		Name:   "dustmonitor-files",
		Type:   "files",
		Prefix: "DUSTMONITOR_",
		Suffix: ".TXT",
	}
	src := source.NewFileSource(cfg, &fakeStorage{objects: map[string]string{
		"DUSTMONITOR_17712_2025_03.txt": exportHeader,
		"DUSTMONITOR_17712_2025_04.TXT": exportHeader,
		"DUSTMONITOR_17712_2025_03.bak": "not an export",
	}})

	units, err := src.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"DUSTMONITOR_17712_2025_03.txt",
		"DUSTMONITOR_17712_2025_04.TXT",
	}, units)
}

func TestFetchParsesRowsPastOffset(t *testing.T) {
	content := strings.Join([]string{
		exportHeader,
		exportRow("03/01/2025", "10:05:00 AM", "10.5"),
		exportRow("03/01/2025", "10:35:00 AM", "n/a"),
		exportRow("03/01/2025", "11:15:00 AM", "40.0"),
	}, "\n")
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": content})

	status := model.ProcessingStatus{SourceID: "DUSTMONITOR_17712_2025_03.txt", LastRow: 1}
	batch, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", status)
	require.NoError(t, err)

	assert.True(t, batch.OffsetBased)
	assert.Equal(t, int64(1), batch.BaseRow)
	require.Len(t, batch.Records, 2)

	assert.Equal(t, "03/01/2025", batch.Records[0].Date)
	assert.Equal(t, "10:35:00 AM", batch.Records[0].Time)
	// A non-numeric cell reads back as a missing value, not a zero.
	assert.Nil(t, batch.Records[0].PM25)
	require.NotNil(t, batch.Records[1].PM25)
	assert.InDelta(t, 40.0, *batch.Records[1].PM25, 1e-9)
	require.NotNil(t, batch.Records[1].Temperature)
	assert.InDelta(t, 28.5, *batch.Records[1].Temperature, 1e-9)
}

func TestFetchNothingNewAtOffset(t *testing.T) {
	content := strings.Join([]string{
		exportHeader,
		exportRow("03/01/2025", "10:05:00 AM", "10.5"),
	}, "\n")
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": content})

	status := model.ProcessingStatus{LastRow: 1}
	batch, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", status)
	require.NoError(t, err)
	assert.True(t, batch.OffsetBased)
	assert.Equal(t, int64(1), batch.BaseRow)
	assert.Empty(t, batch.Records)
}

func TestFetchRestartsWhenFileShrank(t *testing.T) {
	content := strings.Join([]string{
		exportHeader,
		exportRow("03/01/2025", "10:05:00 AM", "10.5"),
		exportRow("03/01/2025", "10:35:00 AM", "20.5"),
	}, "\n")
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": content})

	// Checkpoint points past the end of the rewritten file.
	status := model.ProcessingStatus{LastRow: 10}
	batch, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", status)
	require.NoError(t, err)

	assert.True(t, batch.OffsetBased)
	assert.Equal(t, int64(0), batch.BaseRow)
	assert.Len(t, batch.Records, 2)
}

func TestFetchSkipsBlankLines(t *testing.T) {
	content := strings.Join([]string{
		exportHeader,
		exportRow("03/01/2025", "10:05:00 AM", "10.5"),
		"",
		exportRow("03/01/2025", "10:35:00 AM", "20.5"),
		"   ",
	}, "\n")
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": content})

	batch, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", model.ProcessingStatus{})
	require.NoError(t, err)
	assert.Len(t, batch.Records, 2)
}

func TestFetchRejectsHeaderWithoutDateAndTime(t *testing.T) {
	content := "wind speed\tPM2.5\n2.1\t10.5"
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": content})

	_, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", model.ProcessingStatus{})
	assert.Error(t, err)
}

func TestFetchEmptyFile(t *testing.T) {
	src := newFileSource(map[string]string{"DUSTMONITOR_17712_2025_03.txt": ""})

	batch, err := src.Fetch(context.Background(), "DUSTMONITOR_17712_2025_03.txt", model.ProcessingStatus{})
	require.NoError(t, err)
	assert.True(t, batch.OffsetBased)
	assert.Empty(t, batch.Records)
}
