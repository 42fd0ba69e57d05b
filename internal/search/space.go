// Package search tunes a classifier family by exhaustive grid search with
// stratified cross-validation scored by precision.
package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paveg/churnlab/internal/config"
	"github.com/paveg/churnlab/internal/model"
	"github.com/paveg/churnlab/internal/rng"
)

// Param is one hyperparameter setting.
type Param struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Point is one grid configuration, with parameters in name order.
type Point []Param

// Value returns the setting of name and whether the point has it.
func (p Point) Value(name string) (float64, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return 0, false
}

// Int returns the setting of name as an integer, zero when absent.
func (p Point) Int(name string) int {
	v, _ := p.Value(name)
	return int(v)
}

// Float returns the setting of name, zero when absent.
func (p Point) Float(name string) float64 {
	v, _ := p.Value(name)
	return v
}

// String renders the point as name=value pairs.
func (p Point) String() string {
	parts := make([]string, len(p))
	for i, param := range p {
		parts[i] = param.Name + "=" + strconv.FormatFloat(param.Value, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Axis is the list of values tried for one hyperparameter.
type Axis struct {
	Name   string
	Values []float64
}

// Factory builds an unfitted classifier for a grid point.
type Factory func(p Point, src *rng.Source) (model.Classifier, error)

// Space is the grid of one family.
type Space struct {
	Family model.Family
	Axes   []Axis
	New    Factory
}

// Points enumerates the grid with axes sorted by name, the first axis varying
// slowest and the last fastest.
func (s Space) Points() []Point {
	axes := append([]Axis(nil), s.Axes...)
	sort.SliceStable(axes, func(i, j int) bool { return axes[i].Name < axes[j].Name })

	points := []Point{{}}
	for _, axis := range axes {
		next := make([]Point, 0, len(points)*len(axis.Values))
		for _, prefix := range points {
			for _, v := range axis.Values {
				p := append(append(Point(nil), prefix...), Param{Name: axis.Name, Value: v})
				next = append(next, p)
			}
		}
		points = next
	}
	return points
}

// Hyperparameter names.
const (
	NEstimators     = "n_estimators"
	MaxDepth        = "max_depth"
	MinSamplesSplit = "min_samples_split"
	LearningRate    = "learning_rate"
)

func ints(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// ForestSpace returns the random forest grid.
func ForestSpace(g config.ForestGrid) Space {
	return Space{
		Family: model.RandomForestFamily,
		Axes: []Axis{
			{NEstimators, ints(g.NEstimators)},
			{MaxDepth, ints(g.MaxDepth)},
			{MinSamplesSplit, ints(g.MinSamplesSplit)},
		},
		New: func(p Point, src *rng.Source) (model.Classifier, error) {
			return model.NewRandomForest(model.ForestParams{
				NEstimators:     p.Int(NEstimators),
				MaxDepth:        p.Int(MaxDepth),
				MinSamplesSplit: p.Int(MinSamplesSplit),
			}, src), nil
		},
	}
}

func boostingAxes(g config.BoostingGrid) []Axis {
	return []Axis{
		{NEstimators, ints(g.NEstimators)},
		{LearningRate, append([]float64(nil), g.LearningRate...)},
		{MaxDepth, ints(g.MaxDepth)},
	}
}

func boostingParams(p Point) model.BoostingParams {
	return model.BoostingParams{
		NEstimators:  p.Int(NEstimators),
		LearningRate: p.Float(LearningRate),
		MaxDepth:     p.Int(MaxDepth),
	}
}

// GradientBoostingSpace returns the gradient boosting grid.
func GradientBoostingSpace(g config.BoostingGrid) Space {
	return Space{
		Family: model.GradientBoostingFamily,
		Axes:   boostingAxes(g),
		New: func(p Point, _ *rng.Source) (model.Classifier, error) {
			return model.NewGradientBoosting(boostingParams(p)), nil
		},
	}
}

// XGBoostSpace returns the second-order boosting grid.
func XGBoostSpace(g config.BoostingGrid) Space {
	return Space{
		Family: model.XGBoostFamily,
		Axes:   boostingAxes(g),
		New: func(p Point, _ *rng.Source) (model.Classifier, error) {
			return model.NewXGBoost(boostingParams(p)), nil
		},
	}
}

// SpaceFor returns the grid configured for family.
func SpaceFor(family model.Family, grids config.Grids) (Space, error) {
	switch family {
	case model.RandomForestFamily:
		return ForestSpace(grids.RandomForest), nil
	case model.GradientBoostingFamily:
		return GradientBoostingSpace(grids.GradientBoosting), nil
	case model.XGBoostFamily:
		return XGBoostSpace(grids.XGBoost), nil
	default:
		return Space{}, fmt.Errorf("no search grid for family %q", family)
	}
}
