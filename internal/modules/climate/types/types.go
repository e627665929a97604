package types

import "encoding/json"

// Station is one row of the stations table.
type Station struct {
	ID        int64   `json:"id"`
	Elevation float64 `json:"elevation"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Station   string  `json:"station"`
	Name      string  `json:"name"`
}

// DailyPrecipitation is the precipitation summed over all stations for one date.
// Total is nil when every station reported a null value that day.
type DailyPrecipitation struct {
	Date  string
	Total *float64
}

// MarshalJSON encodes the record as a single-key object: {"2017-08-23": 0.45}.
func (d DailyPrecipitation) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]*float64{d.Date: d.Total})
}

type TemperatureObservation struct {
	Station string  `json:"station"`
	Date    string  `json:"date"`
	TOBS    float64 `json:"tobs"`
}

// TemperatureSummary aggregates tobs between StartDate and EndDate inclusive.
// The aggregates are nil when no measurement falls in the range.
type TemperatureSummary struct {
	StartDate string   `json:"start date"`
	EndDate   string   `json:"end date"`
	Min       *float64 `json:"minimum temperature"`
	Avg       *float64 `json:"average temperature"`
	Max       *float64 `json:"maximum temperature"`
}

// TemperatureAggregate is the raw result of the min/avg/max query.
type TemperatureAggregate struct {
	Min *float64
	Avg *float64
	Max *float64
}

// DateBounds is the first and last measurement date in the dataset.
type DateBounds struct {
	First string
	Last  string
}

// StationActivity is a station together with its number of measurements.
type StationActivity struct {
	Station string
	Count   int
}
