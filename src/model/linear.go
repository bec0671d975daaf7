package model

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearFit is a fitted ordinary-least-squares model.
type LinearFit struct {
	Response     string
	Coefficients []Coefficient
	N            int
	RSquared     float64
}

// FitOLS regresses the response on the predictors by QR decomposition.
func FitOLS(df dataframe.DataFrame, response string, predictors []string) (*LinearFit, error) {
	x, y, n, err := designMatrix(df, response, predictors)
	if err != nil {
		return nil, fmt.Errorf("ols %s: %w", response, err)
	}

	p := len(predictors) + 1

	var qr mat.QR
	qr.Factorize(x)

	beta := mat.NewDense(p, 1, nil)
	if err := qr.SolveTo(beta, false, y); err != nil {
		// An ill-conditioned system still yields a usable solution;
		// anything else is fatal.
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("ols %s: solve: %w", response, err)
		}
	}

	// Residual variance and coefficient covariance via (X'X)^-1.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, beta.ColView(0))

	rss := 0.0
	yRaw := make([]float64, n)
	for i := 0; i < n; i++ {
		yRaw[i] = y.AtVec(i)
		r := y.AtVec(i) - fitted.AtVec(i)
		rss += r * r
	}

	sigma2 := math.NaN()
	if n > p {
		sigma2 = rss / float64(n-p)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("ols %s: singular design matrix: %w", response, err)
		}
	}

	names := terms(predictors)
	coefs := make([]Coefficient, p)
	for j := 0; j < p; j++ {
		coefs[j] = Coefficient{
			Term:     names[j],
			Estimate: beta.At(j, 0),
			StdErr:   math.Sqrt(sigma2 * xtxInv.At(j, j)),
		}
	}

	yMean := stat.Mean(yRaw, nil)
	tss := 0.0
	for _, v := range yRaw {
		tss += (v - yMean) * (v - yMean)
	}
	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	return &LinearFit{
		Response:     response,
		Coefficients: coefs,
		N:            n,
		RSquared:     r2,
	}, nil
}
