package model

import (
	"fmt"
	"math"

	"github.com/paveg/churnlab/internal/errors"
)

// BoostingParams are the hyperparameters shared by both boosting families.
type BoostingParams struct {
	NEstimators  int
	LearningRate float64
	MaxDepth     int
}

func (p BoostingParams) validate(family Family) error {
	if p.NEstimators < 1 || p.MaxDepth < 1 || !(p.LearningRate > 0) {
		return errors.NewFitError(string(family), fmt.Errorf("invalid parameters %+v", p))
	}
	return nil
}

// booster holds what the two boosting families have in common: an initial
// margin and a sequence of shrunk trees.
type booster struct {
	params BoostingParams
	binner *binner
	base   float64
	trees  []*tree
}

func (b *booster) margin(row []float64) float64 {
	f := b.base
	for _, t := range b.trees {
		f += b.params.LearningRate * t.predict(row)
	}
	return f
}

func (b *booster) proba(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = sigmoid(b.margin(row))
	}
	return out
}

// boost runs the shared loop. grad fills the per-row sums the criterion needs
// from the current probabilities.
func (b *booster) boost(x [][]float64, y []int, crit criterion, grad func(p float64, y int) (g, h float64)) {
	n := len(x)
	b.binner = fitBinner(x)
	data := b.binner.transform(x)
	cfg := treeConfig{maxDepth: b.params.MaxDepth, minSamplesSplit: 2, crit: crit}

	f := make([]float64, n)
	for i := range f {
		f[i] = b.base
	}
	w := make([]float64, n)
	g := make([]float64, n)
	h := make([]float64, n)
	rows := make([]int, n)
	for i := range w {
		w[i] = 1
	}

	b.trees = make([]*tree, b.params.NEstimators)
	for t := range b.trees {
		for i := range rows {
			rows[i] = i
			g[i], h[i] = grad(sigmoid(f[i]), y[i])
		}
		tr := growTree(cfg, data, b.binner, rows, w, g, h, nil)
		for i := range f {
			f[i] += b.params.LearningRate * tr.predictBinned(data, i)
		}
		b.trees[t] = tr
	}
}

func bothClasses(family Family, y []int) error {
	var seen [2]bool
	for _, label := range y {
		seen[label] = true
	}
	if !seen[0] || !seen[1] {
		return errors.NewFitError(string(family), fmt.Errorf("training labels hold a single class"))
	}
	return nil
}

// GradientBoosting fits regression trees to the log-loss residuals y - p,
// starting from the log-odds of the class prior. Trees split on Friedman's
// improvement and leaves take a Newton step sum(r) / sum(p(1-p)).
type GradientBoosting struct {
	booster
	importances []float64
}

// NewGradientBoosting returns an unfitted gradient boosting classifier.
func NewGradientBoosting(params BoostingParams) *GradientBoosting {
	return &GradientBoosting{booster: booster{params: params}}
}

// Family implements Classifier.
func (m *GradientBoosting) Family() Family { return GradientBoostingFamily }

// Params returns the hyperparameters the model was built with.
func (m *GradientBoosting) Params() BoostingParams { return m.params }

// Fit implements Classifier.
func (m *GradientBoosting) Fit(x [][]float64, y []int) error {
	if err := checkTraining(GradientBoostingFamily, x, y); err != nil {
		return err
	}
	if err := m.params.validate(GradientBoostingFamily); err != nil {
		return err
	}
	if err := bothClasses(GradientBoostingFamily, y); err != nil {
		return err
	}

	positives := 0
	for _, label := range y {
		positives += label
	}
	prior := float64(positives) / float64(len(y))
	m.base = math.Log(prior / (1 - prior))

	m.boost(x, y, friedmanMSE{}, func(p float64, label int) (float64, float64) {
		return float64(label) - p, p * (1 - p)
	})

	m.importances = make([]float64, len(x[0]))
	for _, t := range m.trees {
		for f, gain := range t.gains {
			m.importances[f] += gain / t.rootW
		}
	}
	normalize(m.importances)
	return nil
}

// PredictProba implements Classifier.
func (m *GradientBoosting) PredictProba(x [][]float64) []float64 { return m.proba(x) }

// Predict implements Classifier.
func (m *GradientBoosting) Predict(x [][]float64) []int { return threshold(m.proba(x)) }

// FeatureImportances implements Importancer: the impurity decrease summed
// over every tree.
func (m *GradientBoosting) FeatureImportances() []float64 {
	return append([]float64(nil), m.importances...)
}

// XGBoost defaults.
const (
	xgbLambda         = 1.0
	xgbGamma          = 0.0
	xgbMinChildWeight = 1.0
	xgbMinHessian     = 1e-16
)

// XGBoost is a second-order booster: trees split on the regularised gain
// ½[G_L²/(H_L+λ) + G_R²/(H_R+λ) − G²/(H+λ)] − γ of the log-loss gradient G
// and hessian H, and leaves take the value −G/(H+λ). The base score is 0.5.
type XGBoost struct {
	booster
	importances []float64
}

// NewXGBoost returns an unfitted second-order booster.
func NewXGBoost(params BoostingParams) *XGBoost {
	return &XGBoost{booster: booster{params: params}}
}

// Family implements Classifier.
func (m *XGBoost) Family() Family { return XGBoostFamily }

// Params returns the hyperparameters the model was built with.
func (m *XGBoost) Params() BoostingParams { return m.params }

// Fit implements Classifier.
func (m *XGBoost) Fit(x [][]float64, y []int) error {
	if err := checkTraining(XGBoostFamily, x, y); err != nil {
		return err
	}
	if err := m.params.validate(XGBoostFamily); err != nil {
		return err
	}
	if err := bothClasses(XGBoostFamily, y); err != nil {
		return err
	}

	m.base = 0
	crit := secondOrder{lambda: xgbLambda, gamma: xgbGamma, minChildWeight: xgbMinChildWeight}
	m.boost(x, y, crit, func(p float64, label int) (float64, float64) {
		return p - float64(label), max(p*(1-p), xgbMinHessian)
	})

	width := len(x[0])
	gains := make([]float64, width)
	splits := make([]int, width)
	for _, t := range m.trees {
		for f := range width {
			gains[f] += t.gains[f]
			splits[f] += t.splits[f]
		}
	}
	m.importances = make([]float64, width)
	for f := range width {
		if splits[f] > 0 {
			m.importances[f] = gains[f] / float64(splits[f])
		}
	}
	normalize(m.importances)
	return nil
}

// PredictProba implements Classifier.
func (m *XGBoost) PredictProba(x [][]float64) []float64 { return m.proba(x) }

// Predict implements Classifier.
func (m *XGBoost) Predict(x [][]float64) []int { return threshold(m.proba(x)) }

// FeatureImportances implements Importancer: the mean gain of the splits on
// each feature.
func (m *XGBoost) FeatureImportances() []float64 {
	return append([]float64(nil), m.importances...)
}
