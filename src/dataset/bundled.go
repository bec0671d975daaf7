// Package dataset exposes the two fixed analysis tables: flight records
// and hourly weather observations. The bundled copies are embedded at
// build time; a refreshed workbook can replace them at run time.
package dataset

import (
	_ "embed"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/jszwec/csvutil"
)

//go:embed data/flights.csv
var flightsCSV []byte

//go:embed data/weather.csv
var weatherCSV []byte

// LoadBundledRecords decodes the embedded datasets into typed records.
func LoadBundledRecords() ([]FlightRecord, []WeatherRecord, error) {
	var flights []FlightRecord
	if err := csvutil.Unmarshal(flightsCSV, &flights); err != nil {
		return nil, nil, fmt.Errorf("decode bundled flights: %w", err)
	}

	var weather []WeatherRecord
	if err := csvutil.Unmarshal(weatherCSV, &weather); err != nil {
		return nil, nil, fmt.Errorf("decode bundled weather: %w", err)
	}

	return flights, weather, nil
}

// LoadBundled returns the bundled tables as DataFrames.
func LoadBundled() (dataframe.DataFrame, dataframe.DataFrame, error) {
	flights, weather, err := LoadBundledRecords()
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	fdf := FlightsFrame(flights)
	if err := validateTimeHour(fdf, "flights"); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}
	wdf := WeatherFrame(weather)
	if err := validateTimeHour(wdf, "weather"); err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	return fdf, wdf, nil
}
