package processor

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DelayInsight/src/dataset"
)

// pipelineFixture builds a small but fully varied dataset: two origins,
// two days, six hourly slots each, weather fields moving slot by slot so
// the design matrix stays well conditioned.
func pipelineFixture() (dataframe.DataFrame, dataframe.DataFrame) {
	visibCycle := []float64{10, 8, 2, 10, 3, 6}
	// Low visibility slots mostly run late; one exception each way keeps
	// the classes overlapping.
	delayFor := func(slot int, visib float64) *float64 {
		switch {
		case slot == 3:
			return f64(55) // clear but badly delayed
		case slot == 8:
			return f64(5) // murky but on time
		case visib <= 3:
			return f64(40 + float64(slot))
		default:
			return f64(float64(slot%4)*6 - 5)
		}
	}

	var flights []dataset.FlightRecord
	var weather []dataset.WeatherRecord
	slot := 0
	for _, origin := range []string{"JFK", "EWR"} {
		for day := 1; day <= 2; day++ {
			for hour := 5; hour <= 10; hour++ {
				visib := visibCycle[slot%len(visibCycle)]
				w := fixtureWeather(origin, day, hour, visib)
				i := float64(slot)
				w.Temp = f64(30 + i)
				w.WindSpeed = f64(5 + 2*i)
				w.WindGust = f64((5+2*i)*1.3 + float64(slot%4))
				w.Humid = f64(50 + 3*float64(slot%7))
				w.Precip = f64(0.01 * float64(slot%3))
				w.Pressure = f64(1010 + float64(slot%5))
				weather = append(weather, w)

				flights = append(flights, fixtureFlight(slot, origin, day, hour, delayFor(slot, visib)))
				slot++
			}
		}
	}

	// One cancelled flight and one flight with no weather coverage.
	flights = append(flights, fixtureFlight(slot, "JFK", 1, 5, nil))
	flights = append(flights, fixtureFlight(slot+1, "EWR", 2, 22, f64(12)))

	return dataset.FlightsFrame(flights), dataset.WeatherFrame(weather)
}

func TestRunEndToEnd(t *testing.T) {
	flights, weather := pipelineFixture()

	a, err := Run(flights, weather, DefaultOptions(), nil)
	require.NoError(t, err)

	// Left join keeps exactly one row per flight.
	assert.Equal(t, flights.Nrow(), a.Joined.Nrow())

	// One cancelled flight left the labeled population.
	assert.Equal(t, 1, a.ExcludedCancelled)
	assert.Equal(t, flights.Nrow()-1, a.Labeled.Nrow())

	// Group counts sum back to the table sizes.
	sum := 0
	for i := 0; i < a.ByOrigin.Nrow(); i++ {
		sum += int(a.ByOrigin.Col("n").Elem(i).Float())
	}
	assert.Equal(t, flights.Nrow(), sum)

	sum = 0
	for i := 0; i < a.ByMonthOriginDelay.Nrow(); i++ {
		sum += int(a.ByMonthOriginDelay.Col("n").Elem(i).Float())
	}
	assert.Equal(t, a.Labeled.Nrow(), sum)

	// Labels follow the threshold rule on every row.
	depDelay := a.Labeled.Col("dep_delay")
	labels := a.Labeled.Col(LabelColumn)
	for i := 0; i < a.Labeled.Nrow(); i++ {
		want := 0
		if depDelay.Elem(i).Float() >= DefaultDelayThreshold {
			want = 1
		}
		assert.Equal(t, want, int(labels.Elem(i).Float()), "row %d", i)
	}

	// All three models were fitted on the complete rows only: the
	// uncovered flight has NA weather and drops out.
	require.NotNil(t, a.OLS)
	require.NotNil(t, a.LogitVisib)
	require.NotNil(t, a.LogitFull)
	assert.Equal(t, a.Labeled.Nrow()-1, a.OLS.N)
	assert.Equal(t, a.OLS.N, a.LogitVisib.N)

	// Poor visibility pushes delays up, so its log-odds coefficient is
	// negative.
	for _, c := range a.LogitVisib.Coefficients {
		if c.Term == "visib" {
			assert.Less(t, c.Estimate, 0.0)
			assert.False(t, math.IsNaN(c.StdErr))
		}
	}

	assert.NotEmpty(t, a.OriginRates)
	assert.NotEmpty(t, a.MonthlyRates)
	assert.Len(t, a.Summary, len(DefaultOptions().SummaryColumns))
}

func TestRunRejectsResponseAsPredictor(t *testing.T) {
	flights, weather := pipelineFixture()

	opts := DefaultOptions()
	opts.Predictors = append(opts.Predictors, "dep_delay")

	_, err := Run(flights, weather, opts, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dep_delay")
}

func TestRunFailsOnDuplicateWeatherKeys(t *testing.T) {
	flights, weather := pipelineFixture()
	dup := weatherFixture(fixtureWeather("JFK", 1, 5, 1))
	weather = weather.RBind(dup)
	require.NoError(t, weather.Err)

	_, err := Run(flights, weather, DefaultOptions(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate weather keys")
}
