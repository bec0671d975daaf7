package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"DelayInsight/src/dataset"
	"DelayInsight/src/processor"
)

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

// analysisFixture runs the pipeline on a small dataset with enough
// variation for all three models to fit.
func analysisFixture(t *testing.T) *processor.Analysis {
	t.Helper()

	visibCycle := []float64{10, 8, 2, 10, 3, 6}
	var flights []dataset.FlightRecord
	var weather []dataset.WeatherRecord
	slot := 0
	for _, origin := range []string{"JFK", "EWR"} {
		for day := 1; day <= 2; day++ {
			for hour := 5; hour <= 10; hour++ {
				i := float64(slot)
				visib := visibCycle[slot%len(visibCycle)]

				weather = append(weather, dataset.WeatherRecord{
					Origin:    origin,
					Year:      2013,
					Month:     1,
					Day:       day,
					Hour:      hour,
					Temp:      f64(30 + i),
					Dewp:      f64(20 + i),
					Humid:     f64(50 + 3*float64(slot%7)),
					WindDir:   f64(270),
					WindSpeed: f64(5 + 2*i),
					WindGust:  f64((5+2*i)*1.3 + float64(slot%4)),
					Precip:    f64(0.01 * float64(slot%3)),
					Pressure:  f64(1010 + float64(slot%5)),
					Visib:     f64(visib),
					TimeHour:  fmt.Sprintf("2013-01-%02d %02d:00:00", day, hour),
				})

				delay := float64(slot%4)*6 - 5
				switch {
				case slot == 3:
					delay = 55
				case slot == 8:
					delay = 5
				case visib <= 3:
					delay = 40 + i
				}
				flights = append(flights, dataset.FlightRecord{
					Year:         2013,
					Month:        1,
					Day:          day,
					DepTime:      intp(hour*100 + int(delay)),
					SchedDepTime: hour * 100,
					DepDelay:     f64(delay),
					ArrTime:      intp(hour*100 + 200),
					SchedArrTime: hour*100 + 200,
					ArrDelay:     f64(delay + 2),
					Carrier:      "UA",
					Flight:       1000 + slot,
					Origin:       origin,
					Dest:         "ORD",
					AirTime:      f64(96),
					Distance:     719,
					Hour:         hour,
					Minute:       0,
					TimeHour:     fmt.Sprintf("2013-01-%02d %02d:00:00", day, hour),
				})
				slot++
			}
		}
	}

	a, err := processor.Run(dataset.FlightsFrame(flights), dataset.WeatherFrame(weather), processor.DefaultOptions(), nil)
	require.NoError(t, err)
	return a
}

func TestSaveWritesAllSheets(t *testing.T) {
	a := analysisFixture(t)
	dir := t.TempDir()

	path, err := NewRenderer(nil).Save(a, dir)
	require.NoError(t, err)
	assert.Contains(t, path, "delay_report_")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	for _, name := range []string{"Summary", "By Origin", "By Destination", "By Month", "Delay Rates", "Models", "Narrative"} {
		assert.Contains(t, f.GetSheetList(), name)
	}
}

func TestSaveSheetContents(t *testing.T) {
	a := analysisFixture(t)
	dir := t.TempDir()

	path, err := NewRenderer(nil).Save(a, dir)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Summary: header row plus one row per summarised column.
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, rows, len(a.Summary)+1)
	assert.Equal(t, []string{"column", "n", "mean", "median", "sd", "min", "max"}, rows[0][:7])

	// By Origin: the counts match the analysis.
	rows, err = f.GetRows("By Origin")
	require.NoError(t, err)
	require.Len(t, rows, a.ByOrigin.Nrow()+1)
	assert.Equal(t, "origin", rows[0][0])
	assert.Equal(t, "n", rows[0][1])

	// Models: all three blocks landed.
	rows, err = f.GetRows("Models")
	require.NoError(t, err)
	content := strings.Builder{}
	for _, row := range rows {
		content.WriteString(strings.Join(row, " "))
		content.WriteString("\n")
	}
	assert.Contains(t, content.String(), "OLS: dep_delay")
	assert.Contains(t, content.String(), "Logistic: delayed ~ visib")
	assert.Contains(t, content.String(), "Logistic: delayed ~ weather")
	assert.Contains(t, content.String(), "(Intercept)")

	// Narrative: the headline and the join sentence are present.
	rows, err = f.GetRows("Narrative")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Departure delay and weather, one-shot analysis", rows[0][0])
}
