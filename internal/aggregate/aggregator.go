// Package aggregate turns ordered raw observations into hourly mean rows.
// The aggregator is pure: it never touches storage or the checkpoint store,
// and the clock is injected so completed-hour detection is testable.
package aggregate

import (
	"sort"
	"time"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
)

const componentName = "aggregate"

// Result is the outcome of aggregating one batch of new records.
type Result struct {
	// Aggregates holds one row per completed clock hour, in ascending hour
	// order. Empty when no completed hour had records.
	Aggregates []model.HourlyAggregate
	// Consumed is the number of leading records that belong to completed
	// hours. Only these records contributed to Aggregates; offset-based
	// sources advance their row checkpoint by exactly this count.
	Consumed int
	// NewLastRaw is the canonical stamp of the latest consumed observation,
	// floored to the minute. Empty when nothing was consumed.
	NewLastRaw string
	// NewLastAvg is the canonical stamp of the latest aggregated hour.
	// Empty when nothing was aggregated.
	NewLastAvg string
}

// Aggregator computes hourly means for a fixed station.
type Aggregator struct {
	station model.Station
	now     func() time.Time
}

// New creates an Aggregator stamping rows with the given station metadata.
// The now function decides which hours count as completed; pass time.Now in
// production.
func New(station model.Station, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{station: station, now: now}
}

// Aggregate buckets the leading run of records that fall into completed
// clock hours and computes per-field means for each bucket.
//
// An hour is completed when it ends at or before the current time; records
// of the still-open hour are left unconsumed and reappear in a later batch.
// A record with an unparseable timestamp fails the whole batch: a silent
// skip would skew the mean of its hour.
func (a *Aggregator) Aggregate(records []model.RawRecord) (Result, error) {
	if len(records) == 0 {
		return Result{}, nil
	}

	now := a.now().In(model.StationClock)
	openHour := now.Truncate(time.Hour)

	type bucket struct {
		sums   [model.MetricCount]float64
		counts [model.MetricCount]int
	}
	buckets := make(map[time.Time]*bucket)

	var consumed int
	var maxTimestamp time.Time

	for _, rec := range records {
		ts, err := rec.Timestamp()
		if err != nil {
			return Result{}, exception.New(componentName, "rejecting batch", err, false)
		}

		hour := ts.Truncate(time.Hour).In(model.StationClock)
		if !hour.Before(openHour) {
			// Still-open (or future) hour; stop consuming here so the
			// record is re-read once its hour completes.
			break
		}

		b, ok := buckets[hour]
		if !ok {
			b = &bucket{}
			buckets[hour] = b
		}
		for i, v := range rec.Metrics() {
			if v != nil {
				b.sums[i] += *v
				b.counts[i]++
			}
		}

		if ts.After(maxTimestamp) {
			maxTimestamp = ts
		}
		consumed++
	}

	if consumed == 0 {
		return Result{}, nil
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	aggregates := make([]model.HourlyAggregate, 0, len(hours))
	for _, hour := range hours {
		b := buckets[hour]
		var means [model.MetricCount]*float64
		for i := 0; i < model.MetricCount; i++ {
			if b.counts[i] > 0 {
				means[i] = model.Float64(b.sums[i] / float64(b.counts[i]))
			}
		}
		aggregates = append(aggregates, model.HourlyAggregate{
			Hour:    hour,
			Station: a.station,
			Means:   means,
		})
	}

	return Result{
		Aggregates: aggregates,
		Consumed:   consumed,
		NewLastRaw: model.FormatStamp(maxTimestamp.Truncate(time.Minute)),
		NewLastAvg: model.FormatStamp(hours[len(hours)-1]),
	}, nil
}
