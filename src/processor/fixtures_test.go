package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/dataset"
)

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

// fixtureFlight builds one flight record keyed to an hourly slot. A nil
// depDelay models a cancelled flight.
func fixtureFlight(seq int, origin string, day, hour int, depDelay *float64) dataset.FlightRecord {
	r := dataset.FlightRecord{
		Year:         2013,
		Month:        1,
		Day:          day,
		SchedDepTime: hour * 100,
		SchedArrTime: hour*100 + 200,
		Carrier:      "UA",
		Flight:       1000 + seq,
		Origin:       origin,
		Dest:         "ORD",
		Distance:     719,
		Hour:         hour,
		Minute:       0,
		TimeHour:     fmt.Sprintf("2013-01-%02d %02d:00:00", day, hour),
	}
	if depDelay != nil {
		r.DepDelay = depDelay
		r.DepTime = intp(hour*100 + int(*depDelay))
		r.ArrDelay = f64(*depDelay + 2)
		r.ArrTime = intp(hour*100 + 200 + int(*depDelay) + 2)
		r.AirTime = f64(96)
	}
	return r
}

// fixtureWeather builds one complete hourly observation.
func fixtureWeather(origin string, day, hour int, visib float64) dataset.WeatherRecord {
	return dataset.WeatherRecord{
		Origin:    origin,
		Year:      2013,
		Month:     1,
		Day:       day,
		Hour:      hour,
		Temp:      f64(35.1),
		Dewp:      f64(27.4),
		Humid:     f64(61.5),
		WindDir:   f64(270),
		WindSpeed: f64(11.5),
		WindGust:  f64(16.1),
		Precip:    f64(0),
		Pressure:  f64(1012.9),
		Visib:     f64(visib),
		TimeHour:  fmt.Sprintf("2013-01-%02d %02d:00:00", day, hour),
	}
}

func flightsFixture(records ...dataset.FlightRecord) dataframe.DataFrame {
	return dataset.FlightsFrame(records)
}

func weatherFixture(records ...dataset.WeatherRecord) dataframe.DataFrame {
	return dataset.WeatherFrame(records)
}
