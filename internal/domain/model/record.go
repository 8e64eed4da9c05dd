// Package model holds the domain types shared across the ingestion pipeline:
// raw sensor observations, hourly aggregates, station metadata and the
// per-source processing status row.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// StationClock is the fixed clock reference the station reports in (UTC+4).
// Raw observation timestamps and all emitted datetime stamps use this zone.
var StationClock = time.FixedZone("GST", 4*60*60)

const (
	// rawDateLayout is the date column format of the instrument output.
	rawDateLayout = "01/02/2006"
	// rawTimeLayout is the time column format of the instrument output.
	rawTimeLayout = "3:04:05 PM"
	// StampLayout is the canonical output timestamp format. Formatting a
	// StationClock time with it yields e.g. "20250101T2300+0400".
	StampLayout = "20060102T1504-0700"
)

// MetricCount is the number of numeric measurement fields per observation.
const MetricCount = 8

// MetricColumns are the CSV header names of the eight measurement means, in
// fixed output order.
var MetricColumns = [MetricCount]string{"WV", "WD", "TEMP", "HUMI", "PRES", "PM01", "PM25", "PM10"}

// RawRecord is one sensor observation as read from a source. Date and Time
// carry the instrument's original text representation; the combined timestamp
// is parsed lazily by the aggregator so that a malformed value rejects the
// whole batch rather than silently skewing a mean.
//
// Numeric fields are pointers: nil marks a missing or non-numeric value,
// which is ignored when computing means.
type RawRecord struct {
	Date string // MM/DD/YYYY
	Time string // hh:mm:ss AM/PM

	WindSpeed        *float64
	WindDirection    *float64
	Temperature      *float64
	RelativeHumidity *float64
	Pressure         *float64
	PM1              *float64
	PM25             *float64
	PM10             *float64
}

// Timestamp parses the record's combined date and time in the station clock.
func (r RawRecord) Timestamp() (time.Time, error) {
	ts, err := time.ParseInLocation(rawDateLayout+" "+rawTimeLayout, r.Date+" "+r.Time, StationClock)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed observation timestamp %q %q: %w", r.Date, r.Time, err)
	}
	return ts, nil
}

// Metrics returns the measurement fields in fixed output order.
func (r RawRecord) Metrics() [MetricCount]*float64 {
	return [MetricCount]*float64{
		r.WindSpeed, r.WindDirection, r.Temperature, r.RelativeHumidity,
		r.Pressure, r.PM1, r.PM25, r.PM10,
	}
}

// Station is the static metadata attached to every aggregate row.
type Station struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// HourlyAggregate is one completed clock-hour bucket: the hour-floor
// timestamp plus the arithmetic mean of each measurement over all raw records
// whose timestamp falls within [Hour, Hour+1h). A nil mean marks a field that
// had no valid values in the bucket.
type HourlyAggregate struct {
	Hour    time.Time
	Station Station
	Means   [MetricCount]*float64
}

// Datetime returns the canonical stamp of the aggregated hour,
// e.g. "20250101T2300+0400".
func (a HourlyAggregate) Datetime() string {
	return FormatStamp(a.Hour)
}

// CSVRow renders the aggregate as one output CSV record in the fixed column
// order datetime,name,lat,lon,WV,WD,TEMP,HUMI,PRES,PM01,PM25,PM10.
// Missing means render as empty cells.
func (a HourlyAggregate) CSVRow() []string {
	row := make([]string, 0, 4+MetricCount)
	row = append(row,
		a.Datetime(),
		a.Station.Name,
		FormatValue(a.Station.Latitude),
		FormatValue(a.Station.Longitude),
	)
	for _, m := range a.Means {
		if m == nil {
			row = append(row, "")
		} else {
			row = append(row, FormatValue(*m))
		}
	}
	return row
}

// FormatStamp renders a station-clock time in the canonical output format,
// minute precision with the fixed UTC offset suffix.
func FormatStamp(t time.Time) string {
	return t.In(StationClock).Format(StampLayout)
}

// ParseStamp parses a canonical stamp back into a station-clock time.
// The empty string parses to the zero time, matching an unset checkpoint.
func ParseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.ParseInLocation(StampLayout, s, StationClock)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed checkpoint stamp %q: %w", s, err)
	}
	return ts, nil
}

// FormatValue renders a numeric cell the shortest way that round-trips.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Float64 is a convenience for building optional metric values.
func Float64(v float64) *float64 {
	return &v
}
