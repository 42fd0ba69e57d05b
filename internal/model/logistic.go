package model

import (
	"fmt"
	"math"

	"github.com/paveg/churnlab/internal/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// LogisticParams are the logistic regression settings.
type LogisticParams struct {
	C       float64 // inverse L2 strength
	MaxIter int
}

// DefaultLogisticParams returns C = 1 and a 1000 iteration cap.
func DefaultLogisticParams() LogisticParams {
	return LogisticParams{C: 1, MaxIter: 1000}
}

// LogisticRegression is an L2-regularised logistic model with balanced class
// weights, fitted by L-BFGS on features standardized with training statistics.
// The intercept is not penalised.
type LogisticRegression struct {
	params LogisticParams
	mean   []float64
	scale  []float64
	coef   []float64
	bias   float64
	status optimize.Status
}

// NewLogisticRegression returns an unfitted model.
func NewLogisticRegression(params LogisticParams) *LogisticRegression {
	return &LogisticRegression{params: params}
}

// Family implements Classifier.
func (m *LogisticRegression) Family() Family { return LogisticRegressionFamily }

// Status returns the termination status of the last fit.
func (m *LogisticRegression) Status() optimize.Status { return m.status }

// Coefficients returns the weights on the standardized features.
func (m *LogisticRegression) Coefficients() []float64 { return append([]float64(nil), m.coef...) }

// Fit implements Classifier.
func (m *LogisticRegression) Fit(x [][]float64, y []int) error {
	if err := checkTraining(LogisticRegressionFamily, x, y); err != nil {
		return err
	}
	if !(m.params.C > 0) || m.params.MaxIter < 1 {
		return errors.NewFitError(string(LogisticRegressionFamily), fmt.Errorf("invalid parameters %+v", m.params))
	}
	if err := bothClasses(LogisticRegressionFamily, y); err != nil {
		return err
	}

	n, width := len(x), len(x[0])
	m.mean = make([]float64, width)
	m.scale = make([]float64, width)
	col := make([]float64, n)
	for f := range width {
		for i, row := range x {
			col[i] = row[f]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.mean[f], m.scale[f] = mean, std
	}
	z := m.standardize(x)

	cw := balancedWeights(y)
	sw := make([]float64, n)
	for i, label := range y {
		sw[i] = m.params.C * cw[label]
	}

	margins := make([]float64, n)
	forward := func(beta []float64) {
		coef, bias := beta[:width], beta[width]
		for i, row := range z {
			margins[i] = floats.Dot(coef, row) + bias
		}
	}

	problem := optimize.Problem{
		Func: func(beta []float64) float64 {
			forward(beta)
			coef := beta[:width]
			loss := 0.5 * floats.Dot(coef, coef)
			for i, t := range margins {
				// log(1 + e^t) - y t, evaluated without overflow
				loss += sw[i] * (softplus(t) - float64(y[i])*t)
			}
			return loss
		},
		Grad: func(grad, beta []float64) {
			forward(beta)
			coef := beta[:width]
			copy(grad[:width], coef)
			grad[width] = 0
			for i, t := range margins {
				d := sw[i] * (sigmoid(t) - float64(y[i]))
				floats.AddScaled(grad[:width], d, z[i])
				grad[width] += d
			}
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, width+1),
		&optimize.Settings{MajorIterations: m.params.MaxIter}, &optimize.LBFGS{})
	if result == nil || floats.HasNaN(result.X) {
		if err == nil {
			err = fmt.Errorf("optimizer produced no solution")
		}
		return errors.NewFitError(string(LogisticRegressionFamily), err)
	}

	m.coef = append([]float64(nil), result.X[:width]...)
	m.bias = result.X[width]
	m.status = result.Status
	return nil
}

func softplus(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}

func (m *LogisticRegression) standardize(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		z := make([]float64, len(row))
		for f, v := range row {
			z[f] = (v - m.mean[f]) / m.scale[f]
		}
		out[i] = z
	}
	return out
}

// DecisionFunction returns the margin of every row.
func (m *LogisticRegression) DecisionFunction(x [][]float64) []float64 {
	z := m.standardize(x)
	out := make([]float64, len(z))
	for i, row := range z {
		out[i] = floats.Dot(m.coef, row) + m.bias
	}
	return out
}

// PredictProba implements Classifier.
func (m *LogisticRegression) PredictProba(x [][]float64) []float64 {
	d := m.DecisionFunction(x)
	for i, v := range d {
		d[i] = sigmoid(v)
	}
	return d
}

// Predict implements Classifier. A row is positive when its margin is
// strictly positive.
func (m *LogisticRegression) Predict(x [][]float64) []int {
	d := m.DecisionFunction(x)
	labels := make([]int, len(d))
	for i, v := range d {
		if v > 0 {
			labels[i] = 1
		}
	}
	return labels
}
