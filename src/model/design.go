// Package model fits the report's regression models. The numerics are
// delegated to gonum; this package only assembles design matrices and
// reads back coefficient tables.
package model

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"

	"DelayInsight/src/utils"
)

// Coefficient is one row of a fitted model's coefficient table.
type Coefficient struct {
	Term     string
	Estimate float64
	StdErr   float64
}

// designMatrix extracts the response vector and the predictor matrix
// (with a leading intercept column) from the frame. Rows with an NA
// response or any NA predictor are excluded, matching the default
// listwise deletion of standard regression routines.
func designMatrix(df dataframe.DataFrame, response string, predictors []string) (*mat.Dense, *mat.VecDense, int, error) {
	cols := append([]string{response}, predictors...)
	if missing := utils.MissingColumns(df, cols...); len(missing) > 0 {
		return nil, nil, 0, fmt.Errorf("design matrix: missing columns %v", missing)
	}

	raw := make([][]float64, len(cols))
	for i, c := range cols {
		raw[i] = df.Col(c).Float()
	}

	var keep []int
rows:
	for i := 0; i < df.Nrow(); i++ {
		for _, col := range raw {
			if math.IsNaN(col[i]) {
				continue rows
			}
		}
		keep = append(keep, i)
	}

	n := len(keep)
	p := len(predictors) + 1
	if n < p {
		return nil, nil, 0, fmt.Errorf("design matrix: %d complete rows for %d parameters", n, p)
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for r, i := range keep {
		y.SetVec(r, raw[0][i])
		x.Set(r, 0, 1)
		for j := 1; j < p; j++ {
			x.Set(r, j, raw[j][i])
		}
	}

	return x, y, n, nil
}

func terms(predictors []string) []string {
	return append([]string{"(Intercept)"}, predictors...)
}
