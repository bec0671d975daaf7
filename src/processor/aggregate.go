package processor

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"DelayInsight/src/utils"
)

// CountBy groups the frame by the given columns and returns one row per
// distinct group with its member count in column "n". Groups are sorted
// by key so repeated runs produce identical output.
func CountBy(df dataframe.DataFrame, cols ...string) (dataframe.DataFrame, error) {
	if missing := utils.MissingColumns(df, cols...); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("count by: missing columns %v", missing)
	}

	grouped := df.GroupBy(cols...)
	if grouped.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("group by %v: %w", cols, grouped.Err)
	}

	groups := grouped.GetGroups()
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	colVals := make([][]string, len(cols))
	counts := make([]int, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		for i, c := range cols {
			colVals[i] = append(colVals[i], g.Col(c).Elem(0).String())
		}
		counts = append(counts, g.Nrow())
	}

	ss := make([]series.Series, 0, len(cols)+1)
	for i, c := range cols {
		ss = append(ss, series.New(colVals[i], series.String, c))
	}
	ss = append(ss, series.New(counts, series.Int, "n"))

	return dataframe.New(ss...), nil
}

// ColumnSummary holds the descriptive statistics of one numeric column.
// NA values do not contribute; N is the count of observed values.
type ColumnSummary struct {
	Column string
	N      int
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
}

// Summarize computes mean/median/sd/min/max/n for each named column.
func Summarize(df dataframe.DataFrame, cols ...string) ([]ColumnSummary, error) {
	if missing := utils.MissingColumns(df, cols...); len(missing) > 0 {
		return nil, fmt.Errorf("summarize: missing columns %v", missing)
	}

	summaries := make([]ColumnSummary, 0, len(cols))
	for _, col := range cols {
		values := observedValues(df.Col(col).Float())
		s := ColumnSummary{Column: col, N: len(values)}
		if len(values) > 0 {
			sort.Float64s(values)
			s.Mean = stat.Mean(values, nil)
			s.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
			s.Std = stat.StdDev(values, nil)
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GroupRate is the share of delayed flights within one group.
type GroupRate struct {
	Group   string
	Total   int
	Delayed int
	Rate    float64
}

// DelayRate computes per-group delay rates from a labeled frame.
func DelayRate(df dataframe.DataFrame, groupCol, labelCol string) ([]GroupRate, error) {
	if missing := utils.MissingColumns(df, groupCol, labelCol); len(missing) > 0 {
		return nil, fmt.Errorf("delay rate: missing columns %v", missing)
	}

	grouped := df.GroupBy(groupCol)
	if grouped.Err != nil {
		return nil, fmt.Errorf("group by %s: %w", groupCol, grouped.Err)
	}

	groups := grouped.GetGroups()
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rates := make([]GroupRate, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		labels := g.Col(labelCol)
		delayed := 0
		for i := 0; i < labels.Len(); i++ {
			if !labels.Elem(i).IsNA() && labels.Elem(i).Float() >= 1 {
				delayed++
			}
		}
		r := GroupRate{
			Group:   g.Col(groupCol).Elem(0).String(),
			Total:   g.Nrow(),
			Delayed: delayed,
		}
		if r.Total > 0 {
			r.Rate = float64(r.Delayed) / float64(r.Total)
		}
		rates = append(rates, r)
	}
	return rates, nil
}

func observedValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
