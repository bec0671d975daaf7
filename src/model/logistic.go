package model

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
)

const (
	irlsMaxIter   = 25
	irlsTolerance = 1e-8
	minWeight     = 1e-10
)

// LogisticFit is a fitted binary logistic regression model.
type LogisticFit struct {
	Response     string
	Coefficients []Coefficient
	N            int
	Deviance     float64
	Iterations   int
	Converged    bool
}

// FitLogit fits label ~ predictors by iteratively reweighted least
// squares. The label column must hold 0/1 values.
func FitLogit(df dataframe.DataFrame, label string, predictors []string) (*LogisticFit, error) {
	x, yVec, n, err := designMatrix(df, label, predictors)
	if err != nil {
		return nil, fmt.Errorf("logit %s: %w", label, err)
	}

	p := len(predictors) + 1
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		v := yVec.AtVec(i)
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("logit %s: label value %v at row %d is not binary", label, v, i)
		}
		y[i] = v
	}

	beta := mat.NewVecDense(p, nil)
	eta := mat.NewVecDense(n, nil)
	mu := make([]float64, n)
	w := make([]float64, n)
	z := mat.NewVecDense(n, nil)

	xtw := mat.NewDense(p, n, nil)
	var xtwx mat.Dense
	var xtwz mat.VecDense
	next := mat.NewVecDense(p, nil)

	iter := 0
	converged := false
	for ; iter < irlsMaxIter; iter++ {
		eta.MulVec(x, beta)
		for i := 0; i < n; i++ {
			mu[i] = sigmoid(eta.AtVec(i))
			w[i] = mu[i] * (1 - mu[i])
			if w[i] < minWeight {
				w[i] = minWeight
			}
			z.SetVec(i, eta.AtVec(i)+(y[i]-mu[i])/w[i])
		}

		// X'W as a dense product, then the weighted normal equations.
		for j := 0; j < p; j++ {
			for i := 0; i < n; i++ {
				xtw.Set(j, i, x.At(i, j)*w[i])
			}
		}
		xtwx.Mul(xtw, x)
		xtwz.MulVec(xtw, z)

		if err := next.SolveVec(&xtwx, &xtwz); err != nil {
			if _, ok := err.(mat.Condition); !ok {
				return nil, fmt.Errorf("logit %s: IRLS step %d: %w", label, iter, err)
			}
		}

		maxDelta := 0.0
		for j := 0; j < p; j++ {
			d := math.Abs(next.AtVec(j) - beta.AtVec(j))
			if d > maxDelta {
				maxDelta = d
			}
		}
		beta.CopyVec(next)

		if maxDelta < irlsTolerance {
			converged = true
			iter++
			break
		}
	}

	// Standard errors from the final information matrix.
	var info mat.Dense
	info.Mul(xtw, x)
	var infoInv mat.Dense
	if err := infoInv.Inverse(&info); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("logit %s: singular information matrix: %w", label, err)
		}
	}

	names := terms(predictors)
	coefs := make([]Coefficient, p)
	for j := 0; j < p; j++ {
		coefs[j] = Coefficient{
			Term:     names[j],
			Estimate: beta.AtVec(j),
			StdErr:   math.Sqrt(infoInv.At(j, j)),
		}
	}

	eta.MulVec(x, beta)
	deviance := 0.0
	for i := 0; i < n; i++ {
		m := sigmoid(eta.AtVec(i))
		deviance += y[i]*safeLog(m) + (1-y[i])*safeLog(1-m)
	}
	deviance *= -2

	return &LogisticFit{
		Response:     label,
		Coefficients: coefs,
		N:            n,
		Deviance:     deviance,
		Iterations:   iter,
		Converged:    converged,
	}, nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func safeLog(v float64) float64 {
	if v < 1e-300 {
		v = 1e-300
	}
	return math.Log(v)
}
