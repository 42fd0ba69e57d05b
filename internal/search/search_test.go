package search_test

import (
	"context"
	"testing"

	"github.com/paveg/churnlab/internal/config"
	"github.com/paveg/churnlab/internal/model"
	"github.com/paveg/churnlab/internal/parallel"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/search"
	"github.com/paveg/churnlab/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsOrder(t *testing.T) {
	space := search.ForestSpace(config.ForestGrid{
		NEstimators:     []int{50, 100},
		MaxDepth:        []int{5, 10},
		MinSamplesSplit: []int{2, 5},
	})

	points := space.Points()
	require.Len(t, points, 8)
	assert.Equal(t, "max_depth=5 min_samples_split=2 n_estimators=50", points[0].String())
	assert.Equal(t, "max_depth=5 min_samples_split=2 n_estimators=100", points[1].String())
	assert.Equal(t, "max_depth=5 min_samples_split=5 n_estimators=50", points[2].String())
	assert.Equal(t, "max_depth=10 min_samples_split=5 n_estimators=100", points[7].String())
}

func TestBoostingPointsOrder(t *testing.T) {
	points := search.XGBoostSpace(config.DefaultGrids().XGBoost).Points()
	require.Len(t, points, 27)
	assert.Equal(t, "learning_rate=0.01 max_depth=3 n_estimators=50", points[0].String())
	assert.Equal(t, "learning_rate=0.01 max_depth=5 n_estimators=50", points[3].String())
	assert.Equal(t, "learning_rate=0.1 max_depth=3 n_estimators=50", points[9].String())
	assert.Equal(t, 0.2, points[26].Float(search.LearningRate))
	assert.Equal(t, 200, points[26].Int(search.NEstimators))
}

func TestSpaceFor(t *testing.T) {
	grids := config.DefaultGrids()
	for _, family := range []model.Family{model.RandomForestFamily, model.GradientBoostingFamily, model.XGBoostFamily} {
		space, err := search.SpaceFor(family, grids)
		require.NoError(t, err)
		assert.Equal(t, family, space.Family)
	}
	_, err := search.SpaceFor(model.LogisticRegressionFamily, grids)
	assert.Error(t, err)
}

func opts(workers int) search.Options {
	return search.Options{Folds: 3, Pool: parallel.NewWorkerPool(workers), Source: rng.New(42)}
}

func TestGrid(t *testing.T) {
	x, y := testutil.SeparableData(300)
	space := search.GradientBoostingSpace(config.BoostingGrid{
		NEstimators:  []int{1, 20},
		LearningRate: []float64{0.1},
		MaxDepth:     []int{2},
	})

	o := opts(4)
	defer o.Pool.Close()
	result, err := search.Grid(context.Background(), space, x, y, o)
	require.NoError(t, err)

	assert.Equal(t, model.GradientBoostingFamily, result.Family)
	require.Len(t, result.Scores, 2)
	for _, s := range result.Scores {
		assert.Len(t, s.Folds, 3)
		assert.GreaterOrEqual(t, s.Mean, 0.0)
		assert.LessOrEqual(t, s.Mean, 1.0)
	}
	want := result.Scores[0]
	if result.Scores[1].Mean > want.Mean {
		want = result.Scores[1]
	}
	assert.Equal(t, want.Point, result.Best)
	assert.Equal(t, want.Mean, result.BestScore)
	assert.Greater(t, result.BestScore, 0.9)
	require.NotNil(t, result.Model)
	assert.Len(t, result.Model.Predict(x), len(x))
}

func TestGridTieGoesToFirstPoint(t *testing.T) {
	x, y := testutil.SeparableData(120)
	space := search.ForestSpace(config.ForestGrid{
		NEstimators:     []int{5},
		MaxDepth:        []int{3},
		MinSamplesSplit: []int{2, 3},
	})

	o := opts(2)
	defer o.Pool.Close()
	result, err := search.Grid(context.Background(), space, x, y, o)
	require.NoError(t, err)
	if result.Scores[0].Mean == result.Scores[1].Mean {
		assert.Equal(t, result.Scores[0].Point, result.Best)
	}
}

func TestGridDeterministic(t *testing.T) {
	x, y := testutil.SeparableData(150)
	space := search.ForestSpace(config.ForestGrid{
		NEstimators:     []int{5, 10},
		MaxDepth:        []int{3},
		MinSamplesSplit: []int{2},
	})

	serial := opts(1)
	defer serial.Pool.Close()
	wide := opts(8)
	defer wide.Pool.Close()

	a, err := search.Grid(context.Background(), space, x, y, serial)
	require.NoError(t, err)
	b, err := search.Grid(context.Background(), space, x, y, wide)
	require.NoError(t, err)

	assert.Equal(t, a.Scores, b.Scores)
	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.Model.PredictProba(x), b.Model.PredictProba(x))
}

func TestGridErrors(t *testing.T) {
	x, y := testutil.SeparableData(60)

	t.Run("fit failure names the family", func(t *testing.T) {
		space := search.XGBoostSpace(config.BoostingGrid{
			NEstimators:  []int{5},
			LearningRate: []float64{-1},
			MaxDepth:     []int{2},
		})
		o := opts(2)
		defer o.Pool.Close()
		_, err := search.Grid(context.Background(), space, x, y, o)
		require.Error(t, err)
		assert.Contains(t, err.Error(), string(model.XGBoostFamily))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := search.Grid(ctx, search.ForestSpace(config.DefaultGrids().RandomForest), x, y, opts(2))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("too few rows per class", func(t *testing.T) {
		space := search.ForestSpace(config.ForestGrid{NEstimators: []int{1}, MaxDepth: []int{1}, MinSamplesSplit: []int{2}})
		_, err := search.Grid(context.Background(), space, x[:4], []int{0, 0, 1, 1}, opts(1))
		assert.Error(t, err)
	})
}
