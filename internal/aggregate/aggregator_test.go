package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyuad-access/fidas-uplink/internal/aggregate"
	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

var testStation = model.Station{
	Name:      "Fidas Station (ACCESS)",
	Latitude:  24.5254,
	Longitude: 54.4319,
}

// clockAt returns a now func pinned to the given station-clock time.
func clockAt(year int, month time.Month, day, hour, minute int) func() time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, model.StationClock)
	return func() time.Time { return t }
}

func record(date, clock string, pm25 *float64) model.RawRecord {
	return model.RawRecord{Date: date, Time: clock, PM25: pm25}
}

func TestAggregateComputesHourlyMeans(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		record("03/01/2025", "10:05:00 AM", model.Float64(10)),
		record("03/01/2025", "10:35:00 AM", model.Float64(20)),
		record("03/01/2025", "11:15:00 AM", model.Float64(40)),
	}

	result, err := agg.Aggregate(records)
	require.NoError(t, err)

	require.Len(t, result.Aggregates, 2)
	assert.Equal(t, 3, result.Consumed)

	first, second := result.Aggregates[0], result.Aggregates[1]
	assert.Equal(t, "20250301T1000+0400", first.Datetime())
	assert.Equal(t, "20250301T1100+0400", second.Datetime())

	require.NotNil(t, first.Means[6])
	assert.InDelta(t, 15.0, *first.Means[6], 1e-9)
	require.NotNil(t, second.Means[6])
	assert.InDelta(t, 40.0, *second.Means[6], 1e-9)

	assert.Equal(t, "20250301T1115+0400", result.NewLastRaw)
	assert.Equal(t, "20250301T1100+0400", result.NewLastAvg)
}

func TestAggregateStopsAtOpenHour(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		record("03/01/2025", "11:50:00 AM", model.Float64(5)),
		// The noon hour is still open at 12:30; consumption must stop here
		// even though another completed-hour record follows.
		record("03/01/2025", "12:10:00 PM", model.Float64(7)),
		record("03/01/2025", "11:55:00 AM", model.Float64(9)),
	}

	result, err := agg.Aggregate(records)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Consumed)
	require.Len(t, result.Aggregates, 1)
	require.NotNil(t, result.Aggregates[0].Means[6])
	assert.InDelta(t, 5.0, *result.Aggregates[0].Means[6], 1e-9)
}

func TestAggregateNothingCompleted(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		record("03/01/2025", "12:05:00 PM", model.Float64(1)),
		record("03/01/2025", "12:20:00 PM", model.Float64(2)),
	}

	result, err := agg.Aggregate(records)
	require.NoError(t, err)

	assert.Zero(t, result.Consumed)
	assert.Empty(t, result.Aggregates)
	assert.Empty(t, result.NewLastRaw)
	assert.Empty(t, result.NewLastAvg)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	result, err := agg.Aggregate(nil)
	require.NoError(t, err)
	assert.Zero(t, result.Consumed)
	assert.Empty(t, result.Aggregates)
}

func TestAggregateRejectsMalformedTimestamp(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		record("03/01/2025", "10:05:00 AM", model.Float64(10)),
		record("not-a-date", "10:35:00 AM", model.Float64(20)),
	}

	_, err := agg.Aggregate(records)
	assert.Error(t, err)
}

func TestAggregateIgnoresMissingValues(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		{Date: "03/01/2025", Time: "10:05:00 AM", PM25: model.Float64(10)},
		{Date: "03/01/2025", Time: "10:35:00 AM", PM25: nil},
	}

	result, err := agg.Aggregate(records)
	require.NoError(t, err)
	require.Len(t, result.Aggregates, 1)

	means := result.Aggregates[0].Means
	// PM2.5 averages only over the present value.
	require.NotNil(t, means[6])
	assert.InDelta(t, 10.0, *means[6], 1e-9)
	// Fields with no values at all stay nil rather than collapsing to zero.
	assert.Nil(t, means[0])
	assert.Nil(t, means[2])
}

func TestAggregateFloorsLastRawToMinute(t *testing.T) {
	agg := aggregate.New(testStation, clockAt(2025, time.March, 1, 12, 30))

	records := []model.RawRecord{
		record("03/01/2025", "10:59:45 AM", model.Float64(10)),
	}

	result, err := agg.Aggregate(records)
	require.NoError(t, err)
	assert.Equal(t, "20250301T1059+0400", result.NewLastRaw)
}
