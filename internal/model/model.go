// Package model implements the four classifier families compared by the churn
// analysis: logistic regression, random forest, gradient boosting and a
// second-order (XGBoost-style) booster.
//
// Every classifier is binary. Inputs are row-major feature matrices and labels
// in {0, 1}; PredictProba returns the probability of class 1 and Predict
// thresholds it at 0.5. The tree families share one histogram tree grower and
// differ only in the split criterion and in how leaves are valued.
package model

import (
	"fmt"
	"math"

	"github.com/paveg/churnlab/internal/errors"
)

// Family names a classifier family.
type Family string

// Supported families, in candidate order.
const (
	LogisticRegressionFamily Family = "Logistic Regression"
	RandomForestFamily       Family = "Random Forest"
	GradientBoostingFamily   Family = "Gradient Boosting"
	XGBoostFamily            Family = "XGBoost"
)

// Families lists every family in the order candidates are compared.
var Families = []Family{
	LogisticRegressionFamily,
	RandomForestFamily,
	GradientBoostingFamily,
	XGBoostFamily,
}

// Classifier is a binary classifier.
type Classifier interface {
	Fit(x [][]float64, y []int) error
	PredictProba(x [][]float64) []float64
	Predict(x [][]float64) []int
	Family() Family
}

// Importancer is implemented by classifiers that rank their input features.
// The importances sum to 1 when the model made at least one split.
type Importancer interface {
	FeatureImportances() []float64
}

// threshold turns probabilities of class 1 into labels.
func threshold(p []float64) []int {
	labels := make([]int, len(p))
	for i, v := range p {
		if v > 0.5 {
			labels[i] = 1
		}
	}
	return labels
}

// checkTraining validates a training set shared by every family.
func checkTraining(family Family, x [][]float64, y []int) error {
	if len(x) == 0 {
		return errors.NewFitError(string(family), errors.ErrEmptyTable)
	}
	if len(x) != len(y) {
		return errors.NewFitError(string(family), errors.ErrMismatchedLength)
	}
	width := len(x[0])
	if width == 0 {
		return errors.NewFitError(string(family), fmt.Errorf("no features"))
	}
	for i, row := range x {
		if len(row) != width {
			return errors.NewFitError(string(family), fmt.Errorf("row %d has %d features, want %d", i, len(row), width))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewFitError(string(family), fmt.Errorf("row %d feature %d is not finite", i, j))
			}
		}
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return errors.NewFitError(string(family), fmt.Errorf("label %d at row %d is not binary", label, i))
		}
	}
	return nil
}

// balancedWeights returns n / (2 * n_c) for each class c, the weighting that
// makes both classes contribute equally. A missing class gets weight 0.
func balancedWeights(y []int) [2]float64 {
	var counts [2]int
	for _, label := range y {
		counts[label]++
	}
	var w [2]float64
	for c, n := range counts {
		if n > 0 {
			w[c] = float64(len(y)) / float64(2*n)
		}
	}
	return w
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// normalize scales v to sum to 1 in place. A zero vector is left unchanged.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	if sum <= 0 {
		return v
	}
	for i := range v {
		v[i] /= sum
	}
	return v
}
