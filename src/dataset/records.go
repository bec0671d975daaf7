package dataset

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

// FlightRecord is one observed flight. Pointer fields are null for
// cancelled flights (no recorded departure or arrival).
type FlightRecord struct {
	Year         int      `csv:"year"`
	Month        int      `csv:"month"`
	Day          int      `csv:"day"`
	DepTime      *int     `csv:"dep_time"`
	SchedDepTime int      `csv:"sched_dep_time"`
	DepDelay     *float64 `csv:"dep_delay"` // minutes, negative means early
	ArrTime      *int     `csv:"arr_time"`
	SchedArrTime int      `csv:"sched_arr_time"`
	ArrDelay     *float64 `csv:"arr_delay"`
	Carrier      string   `csv:"carrier"`
	Flight       int      `csv:"flight"`
	Origin       string   `csv:"origin"`
	Dest         string   `csv:"dest"`
	AirTime      *float64 `csv:"air_time"`
	Distance     float64  `csv:"distance"`
	Hour         int      `csv:"hour"`
	Minute       int      `csv:"minute"`
	TimeHour     string   `csv:"time_hour"` // departure timestamp truncated to the hour
}

// WeatherRecord is one hourly reading at one origin airport. Sensor
// gaps leave the corresponding pointer nil.
type WeatherRecord struct {
	Origin    string   `csv:"origin"`
	Year      int      `csv:"year"`
	Month     int      `csv:"month"`
	Day       int      `csv:"day"`
	Hour      int      `csv:"hour"`
	Temp      *float64 `csv:"temp"`
	Dewp      *float64 `csv:"dewp"`
	Humid     *float64 `csv:"humid"`
	WindDir   *float64 `csv:"wind_dir"`
	WindSpeed *float64 `csv:"wind_speed"`
	WindGust  *float64 `csv:"wind_gust"`
	Precip    *float64 `csv:"precip"`
	Pressure  *float64 `csv:"pressure"`
	Visib     *float64 `csv:"visib"`
	TimeHour  string   `csv:"time_hour"`
}

// FlightsFrame converts flight records into a DataFrame. Null fields
// become NaN so gota treats them as NA.
func FlightsFrame(records []FlightRecord) dataframe.DataFrame {
	n := len(records)
	year := make([]int, n)
	month := make([]int, n)
	day := make([]int, n)
	hour := make([]int, n)
	minute := make([]int, n)
	schedDep := make([]int, n)
	schedArr := make([]int, n)
	flight := make([]int, n)
	depTime := make([]float64, n)
	depDelay := make([]float64, n)
	arrTime := make([]float64, n)
	arrDelay := make([]float64, n)
	airTime := make([]float64, n)
	distance := make([]float64, n)
	carrier := make([]string, n)
	origin := make([]string, n)
	dest := make([]string, n)
	timeHour := make([]string, n)

	for i, r := range records {
		year[i] = r.Year
		month[i] = r.Month
		day[i] = r.Day
		hour[i] = r.Hour
		minute[i] = r.Minute
		schedDep[i] = r.SchedDepTime
		schedArr[i] = r.SchedArrTime
		flight[i] = r.Flight
		depTime[i] = nullableInt(r.DepTime)
		depDelay[i] = nullable(r.DepDelay)
		arrTime[i] = nullableInt(r.ArrTime)
		arrDelay[i] = nullable(r.ArrDelay)
		airTime[i] = nullable(r.AirTime)
		distance[i] = r.Distance
		carrier[i] = r.Carrier
		origin[i] = r.Origin
		dest[i] = r.Dest
		timeHour[i] = r.TimeHour
	}

	return dataframe.New(
		series.New(year, series.Int, "year"),
		series.New(month, series.Int, "month"),
		series.New(day, series.Int, "day"),
		series.New(depTime, series.Float, "dep_time"),
		series.New(schedDep, series.Int, "sched_dep_time"),
		series.New(depDelay, series.Float, "dep_delay"),
		series.New(arrTime, series.Float, "arr_time"),
		series.New(schedArr, series.Int, "sched_arr_time"),
		series.New(arrDelay, series.Float, "arr_delay"),
		series.New(carrier, series.String, "carrier"),
		series.New(flight, series.Int, "flight"),
		series.New(origin, series.String, "origin"),
		series.New(dest, series.String, "dest"),
		series.New(airTime, series.Float, "air_time"),
		series.New(distance, series.Float, "distance"),
		series.New(hour, series.Int, "hour"),
		series.New(minute, series.Int, "minute"),
		series.New(timeHour, series.String, "time_hour"),
	)
}

// WeatherFrame converts weather records into a DataFrame.
func WeatherFrame(records []WeatherRecord) dataframe.DataFrame {
	n := len(records)
	origin := make([]string, n)
	year := make([]int, n)
	month := make([]int, n)
	day := make([]int, n)
	hour := make([]int, n)
	temp := make([]float64, n)
	dewp := make([]float64, n)
	humid := make([]float64, n)
	windDir := make([]float64, n)
	windSpeed := make([]float64, n)
	windGust := make([]float64, n)
	precip := make([]float64, n)
	pressure := make([]float64, n)
	visib := make([]float64, n)
	timeHour := make([]string, n)

	for i, r := range records {
		origin[i] = r.Origin
		year[i] = r.Year
		month[i] = r.Month
		day[i] = r.Day
		hour[i] = r.Hour
		temp[i] = nullable(r.Temp)
		dewp[i] = nullable(r.Dewp)
		humid[i] = nullable(r.Humid)
		windDir[i] = nullable(r.WindDir)
		windSpeed[i] = nullable(r.WindSpeed)
		windGust[i] = nullable(r.WindGust)
		precip[i] = nullable(r.Precip)
		pressure[i] = nullable(r.Pressure)
		visib[i] = nullable(r.Visib)
		timeHour[i] = r.TimeHour
	}

	return dataframe.New(
		series.New(origin, series.String, "origin"),
		series.New(year, series.Int, "year"),
		series.New(month, series.Int, "month"),
		series.New(day, series.Int, "day"),
		series.New(hour, series.Int, "hour"),
		series.New(temp, series.Float, "temp"),
		series.New(dewp, series.Float, "dewp"),
		series.New(humid, series.Float, "humid"),
		series.New(windDir, series.Float, "wind_dir"),
		series.New(windSpeed, series.Float, "wind_speed"),
		series.New(windGust, series.Float, "wind_gust"),
		series.New(precip, series.Float, "precip"),
		series.New(pressure, series.Float, "pressure"),
		series.New(visib, series.Float, "visib"),
		series.New(timeHour, series.String, "time_hour"),
	)
}

// validateTimeHour rejects tables whose time_hour values do not parse
// in the dataset's timestamp layout; a malformed timestamp would make
// every join key silently miss.
func validateTimeHour(df dataframe.DataFrame, table string) error {
	col := df.Col("time_hour")
	for i := 0; i < df.Nrow(); i++ {
		if _, err := utils.ParseTime(col.Elem(i)); err != nil {
			return fmt.Errorf("%s row %d: bad time_hour: %w", table, i, err)
		}
	}
	return nil
}

func nullable(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func nullableInt(v *int) float64 {
	if v == nil {
		return math.NaN()
	}
	return float64(*v)
}
