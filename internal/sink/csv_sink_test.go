package sink_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/sink"
)

func hourlyRow(hour time.Time, pm25 float64) model.HourlyAggregate {
	agg := model.HourlyAggregate{
		Hour: hour,
		Station: model.Station{
			Name:      "Fidas Station (ACCESS)",
			Latitude:  24.5254,
			Longitude: 54.4319,
		},
	}
	agg.Means[6] = model.Float64(pm25)
	return agg
}

func readArtifact(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestArtifactNameFromInstrumentExport(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 30, 0, 0, model.StationClock)

	name := sink.ArtifactName("DUSTMONITOR_17712_2025_03.txt", now)
	assert.Equal(t, "NYUAD_FIDAS_DATA_2025_03.csv", name)
}

func TestArtifactNameFallsBackToTimestamp(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 30, 45, 0, model.StationClock)

	// SQL sources and odd file names get a unique timestamped artifact.
	assert.Equal(t, "NYUAD_FIDAS_DATA_20250301_123045.csv", sink.ArtifactName("fidas-sql", now))
	assert.Equal(t, "NYUAD_FIDAS_DATA_20250301_123045.csv", sink.ArtifactName("readings.txt", now))
}

func TestAppendWritesHeaderOnlyOnce(t *testing.T) {
	dir := t.TempDir()
	s, err := sink.NewCSVSink(dir)
	require.NoError(t, err)

	hour := time.Date(2025, time.March, 1, 10, 0, 0, 0, model.StationClock)
	require.NoError(t, s.Append("NYUAD_FIDAS_DATA_2025_03.csv", []model.HourlyAggregate{hourlyRow(hour, 10)}))
	require.NoError(t, s.Append("NYUAD_FIDAS_DATA_2025_03.csv", []model.HourlyAggregate{hourlyRow(hour.Add(time.Hour), 20)}))

	rows := readArtifact(t, filepath.Join(dir, "NYUAD_FIDAS_DATA_2025_03.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, sink.Header, rows[0])
	assert.Equal(t, "20250301T1000+0400", rows[1][0])
	assert.Equal(t, "20250301T1100+0400", rows[2][0])
}

func TestAppendNothingLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	s, err := sink.NewCSVSink(dir)
	require.NoError(t, err)

	require.NoError(t, s.Append("NYUAD_FIDAS_DATA_2025_03.csv", nil))
	_, statErr := os.Stat(filepath.Join(dir, "NYUAD_FIDAS_DATA_2025_03.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewCSVSinkRequiresDirectory(t *testing.T) {
	_, err := sink.NewCSVSink("")
	assert.Error(t, err)
}

func TestRenderCSVIncludesHeader(t *testing.T) {
	hour := time.Date(2025, time.March, 1, 10, 0, 0, 0, model.StationClock)

	payload, err := sink.RenderCSV([]model.HourlyAggregate{hourlyRow(hour, 12.5)})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(sink.Header, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "20250301T1000+0400,Fidas Station (ACCESS),24.5254,54.4319"))
}
