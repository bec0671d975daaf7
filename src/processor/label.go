package processor

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"DelayInsight/src/utils"
)

const (
	// DefaultDelayThreshold is the departure delay, in minutes, at and
	// above which a flight counts as delayed.
	DefaultDelayThreshold = 30.0

	// LabelColumn is the name of the derived binary label column.
	LabelColumn = "delayed"

	depDelayColumn = "dep_delay"
)

// DelayLabel is the per-row labeling rule: 1 iff the departure delay
// reaches the threshold.
func DelayLabel(depDelayMin, thresholdMin float64) int {
	if depDelayMin >= thresholdMin {
		return 1
	}
	return 0
}

// ExcludeCancelled drops rows without a recorded departure delay
// (cancelled flights) and returns how many were removed. The label is
// undefined for those rows, so they leave the population before
// labeling.
func ExcludeCancelled(df dataframe.DataFrame) (dataframe.DataFrame, int, error) {
	if !utils.HasColumn(df, depDelayColumn) {
		return dataframe.DataFrame{}, 0, fmt.Errorf("exclude cancelled: missing column %q", depDelayColumn)
	}

	col := df.Col(depDelayColumn)
	keep := make([]int, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if !col.Elem(i).IsNA() {
			keep = append(keep, i)
		}
	}

	dropped := df.Nrow() - len(keep)
	if dropped == 0 {
		return df, 0, nil
	}

	subset := df.Subset(keep)
	if subset.Err != nil {
		return dataframe.DataFrame{}, 0, fmt.Errorf("exclude cancelled: %w", subset.Err)
	}
	return subset, dropped, nil
}

// WithDelayLabel appends the binary delay label column. Every row must
// carry a departure delay; run ExcludeCancelled first.
func WithDelayLabel(df dataframe.DataFrame, thresholdMin float64) (dataframe.DataFrame, error) {
	if !utils.HasColumn(df, depDelayColumn) {
		return dataframe.DataFrame{}, fmt.Errorf("delay label: missing column %q", depDelayColumn)
	}

	col := df.Col(depDelayColumn)
	labels := make([]int, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		if col.Elem(i).IsNA() {
			return dataframe.DataFrame{}, fmt.Errorf("delay label: row %d has no departure delay; cancelled flights must be excluded first", i)
		}
		labels[i] = DelayLabel(col.Elem(i).Float(), thresholdMin)
	}

	labeled := df.Mutate(series.New(labels, series.Int, LabelColumn))
	if labeled.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("delay label: %w", labeled.Err)
	}
	return labeled, nil
}
