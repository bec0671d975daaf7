package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"DelayInsight/src/model"
	"DelayInsight/src/storage"
	"DelayInsight/src/utils"
)

// Options configures one pipeline run.
type Options struct {
	DelayThresholdMin float64
	Variant           JoinVariant
	Predictors        []string // weather columns fed to the models
	SummaryColumns    []string // numeric flight columns summarised
}

// DefaultOptions mirrors the bundled configuration.
func DefaultOptions() Options {
	return Options{
		DelayThresholdMin: DefaultDelayThreshold,
		Variant:           JoinCalendarHour,
		Predictors: []string{
			"wind_speed", "wind_gust", "humid", "precip",
			"pressure", "visib", "temp",
		},
		SummaryColumns: []string{"distance", "air_time", "dep_delay", "arr_delay"},
	}
}

// Analysis carries every artifact of one run, ready for rendering.
type Analysis struct {
	Flights dataframe.DataFrame
	Joined  dataframe.DataFrame
	Labeled dataframe.DataFrame

	ByOrigin           dataframe.DataFrame
	ByDest             dataframe.DataFrame
	ByMonthOrigin      dataframe.DataFrame
	ByMonthOriginDelay dataframe.DataFrame

	Summary      []ColumnSummary
	OriginRates  []GroupRate
	MonthlyRates []GroupRate

	ExcludedCancelled int

	OLS        *model.LinearFit
	LogitVisib *model.LogisticFit
	LogitFull  *model.LogisticFit

	Options Options
}

// Run executes the full analysis: grouped counts, summary statistics,
// the weather join, delay labeling, and the three regression fits.
// The logger may be nil.
func Run(flights, weather dataframe.DataFrame, opts Options, logger *storage.Logger) (*Analysis, error) {
	if utils.Contains(opts.Predictors, depDelayColumn) {
		return nil, fmt.Errorf("predictors must not include the response %q", depDelayColumn)
	}

	a := &Analysis{Flights: flights, Options: opts}
	var err error

	if a.ByOrigin, err = CountBy(flights, "origin"); err != nil {
		return nil, err
	}
	if a.ByDest, err = CountBy(flights, "dest"); err != nil {
		return nil, err
	}
	if a.ByMonthOrigin, err = CountBy(flights, "month", "origin"); err != nil {
		return nil, err
	}
	if a.Summary, err = Summarize(flights, opts.SummaryColumns...); err != nil {
		return nil, err
	}

	if dups, err := DuplicateKeyCount(weather, opts.Variant.Keys()...); err != nil {
		return nil, err
	} else if dups > 0 {
		logf(logger, storage.WARNING, "weather table has %d duplicate %s keys; the join will fail", dups, opts.Variant)
	}

	if a.Joined, err = LeftJoinWeather(flights, weather, opts.Variant); err != nil {
		return nil, err
	}
	logf(logger, storage.INFO, "joined %d flights to weather on {%s}", a.Joined.Nrow(), opts.Variant)

	labeled, excluded, err := ExcludeCancelled(a.Joined)
	if err != nil {
		return nil, err
	}
	a.ExcludedCancelled = excluded
	if excluded > 0 {
		logf(logger, storage.INFO, "excluded %d cancelled flights before labeling", excluded)
	}

	if a.Labeled, err = WithDelayLabel(labeled, opts.DelayThresholdMin); err != nil {
		return nil, err
	}

	if a.ByMonthOriginDelay, err = CountBy(a.Labeled, "month", "origin", LabelColumn); err != nil {
		return nil, err
	}
	if a.OriginRates, err = DelayRate(a.Labeled, "origin", LabelColumn); err != nil {
		return nil, err
	}
	if a.MonthlyRates, err = DelayRate(a.Labeled, "month", LabelColumn); err != nil {
		return nil, err
	}

	if a.OLS, err = model.FitOLS(a.Labeled, depDelayColumn, opts.Predictors); err != nil {
		return nil, err
	}
	if a.LogitVisib, err = model.FitLogit(a.Labeled, LabelColumn, []string{"visib"}); err != nil {
		return nil, err
	}
	if a.LogitFull, err = model.FitLogit(a.Labeled, LabelColumn, opts.Predictors); err != nil {
		return nil, err
	}

	logf(logger, storage.INFO,
		"models fitted: ols n=%d r2=%.3f, logit(visib) n=%d, logit(full) n=%d",
		a.OLS.N, a.OLS.RSquared, a.LogitVisib.N, a.LogitFull.N)

	return a, nil
}

func logf(logger *storage.Logger, level storage.LogLevel, format string, args ...interface{}) {
	if logger == nil {
		return
	}
	logger.Log(level, fmt.Sprintf(format, args...))
}
