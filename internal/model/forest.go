package model

import (
	"fmt"
	"math"

	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/rng"
)

// ForestParams are the random forest hyperparameters.
type ForestParams struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
}

// RandomForest is a bagged ensemble of Gini trees with balanced class
// weights. Every tree sees a bootstrap sample and √p candidate features per
// split, and the forest predicts the mean of the leaf class-1 fractions.
type RandomForest struct {
	params      ForestParams
	src         *rng.Source
	binner      *binner
	trees       []*tree
	importances []float64
}

// NewRandomForest returns an unfitted forest. Tree i draws its bootstrap
// sample and feature subsets from the stream "tree/<i>" of src.
func NewRandomForest(params ForestParams, src *rng.Source) *RandomForest {
	return &RandomForest{params: params, src: src}
}

// Family implements Classifier.
func (m *RandomForest) Family() Family { return RandomForestFamily }

// Params returns the hyperparameters the forest was built with.
func (m *RandomForest) Params() ForestParams { return m.params }

// Fit implements Classifier.
func (m *RandomForest) Fit(x [][]float64, y []int) error {
	if err := checkTraining(RandomForestFamily, x, y); err != nil {
		return err
	}
	p := m.params
	if p.NEstimators < 1 || p.MaxDepth < 1 || p.MinSamplesSplit < 2 {
		return errors.NewFitError(string(RandomForestFamily),
			fmt.Errorf("invalid parameters %+v", p))
	}

	n, width := len(x), len(x[0])
	m.binner = fitBinner(x)
	data := m.binner.transform(x)
	cw := balancedWeights(y)
	cfg := treeConfig{
		maxDepth:        p.MaxDepth,
		minSamplesSplit: p.MinSamplesSplit,
		maxFeatures:     max(1, int(math.Sqrt(float64(width)))),
		crit:            gini{},
	}

	m.trees = make([]*tree, p.NEstimators)
	m.importances = make([]float64, width)
	counts := make([]int, n)
	hess := make([]float64, n)
	for t := range m.trees {
		r := m.src.Streamf("tree/%d", t)
		clear(counts)
		for range n {
			counts[r.IntN(n)]++
		}

		w := make([]float64, n)
		g := make([]float64, n)
		rows := make([]int, 0, n)
		for i, c := range counts {
			if c == 0 {
				continue
			}
			rows = append(rows, i)
			w[i] = float64(c) * cw[y[i]]
			g[i] = w[i] * float64(y[i])
		}

		tr := growTree(cfg, data, m.binner, rows, w, g, hess, r)
		m.trees[t] = tr

		imp := make([]float64, width)
		if tr.rootW > 0 {
			for f, gain := range tr.gains {
				imp[f] = gain / tr.rootW
			}
		}
		for f, v := range normalize(imp) {
			m.importances[f] += v / float64(len(m.trees))
		}
	}
	normalize(m.importances)
	return nil
}

// PredictProba implements Classifier.
func (m *RandomForest) PredictProba(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		var sum float64
		for _, t := range m.trees {
			sum += t.predict(row)
		}
		out[i] = sum / float64(len(m.trees))
	}
	return out
}

// Predict implements Classifier.
func (m *RandomForest) Predict(x [][]float64) []int {
	return threshold(m.PredictProba(x))
}

// FeatureImportances implements Importancer: the mean over trees of each
// tree's normalized weighted impurity decrease.
func (m *RandomForest) FeatureImportances() []float64 {
	return append([]float64(nil), m.importances...)
}
