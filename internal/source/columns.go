package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyuad-access/fidas-uplink/internal/domain/model"
)

// Raw column names as emitted by the instrument. Both the file export and
// the sensor_data table use this vocabulary.
const (
	colDate          = "date"
	colTime          = "time"
	colWindSpeed     = "wind speed"
	colWindDirection = "wind direction"
	colTemperature   = "T"
	colHumidity      = "rH"
	colPressure      = "p"
	colPM1           = "PM1"
	colPM25          = "PM2.5"
	colPM10          = "PM10"
)

// columnMap holds the positions of the known columns within a row. A value
// of -1 marks a column absent from the artifact.
type columnMap struct {
	date, time                                      int
	windSpeed, windDirection, temperature, humidity int
	pressure, pm1, pm25, pm10                       int
}

// mapColumns resolves the known column names against a header row. The date
// and time columns are mandatory; measurement columns may be absent, in
// which case the corresponding record fields stay nil.
func mapColumns(header []string) (columnMap, error) {
	cm := columnMap{
		date: -1, time: -1,
		windSpeed: -1, windDirection: -1, temperature: -1, humidity: -1,
		pressure: -1, pm1: -1, pm25: -1, pm10: -1,
	}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case colDate:
			cm.date = i
		case colTime:
			cm.time = i
		case colWindSpeed:
			cm.windSpeed = i
		case colWindDirection:
			cm.windDirection = i
		case colTemperature:
			cm.temperature = i
		case colHumidity:
			cm.humidity = i
		case colPressure:
			cm.pressure = i
		case colPM1:
			cm.pm1 = i
		case colPM25:
			cm.pm25 = i
		case colPM10:
			cm.pm10 = i
		}
	}
	if cm.date == -1 || cm.time == -1 {
		return cm, fmt.Errorf("header is missing the '%s' and/or '%s' column", colDate, colTime)
	}
	return cm, nil
}

// cell returns the trimmed value at index i, or "" when out of range.
func cell(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

// numericCell parses the value at index i as a float. Empty and
// non-numeric values come back nil and are later excluded from means.
func numericCell(values []string, i int) *float64 {
	s := cell(values, i)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// recordFromRow builds a RawRecord from one data row using the resolved
// column positions.
func recordFromRow(cm columnMap, values []string) model.RawRecord {
	return model.RawRecord{
		Date:             cell(values, cm.date),
		Time:             cell(values, cm.time),
		WindSpeed:        numericCell(values, cm.windSpeed),
		WindDirection:    numericCell(values, cm.windDirection),
		Temperature:      numericCell(values, cm.temperature),
		RelativeHumidity: numericCell(values, cm.humidity),
		Pressure:         numericCell(values, cm.pressure),
		PM1:              numericCell(values, cm.pm1),
		PM25:             numericCell(values, cm.pm25),
		PM10:             numericCell(values, cm.pm10),
	}
}
