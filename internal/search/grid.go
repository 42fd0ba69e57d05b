package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/metrics"
	"github.com/paveg/churnlab/internal/model"
	"github.com/paveg/churnlab/internal/parallel"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/split"
)

// Options configures a grid search.
type Options struct {
	Folds  int
	Pool   *parallel.WorkerPool
	Source *rng.Source
	Logger *slog.Logger
}

// Score is the cross-validated precision of one grid point.
type Score struct {
	Point Point     `json:"params"`
	Folds []float64 `json:"fold_scores"`
	Mean  float64   `json:"mean"`
}

// Result is the outcome of a grid search.
type Result struct {
	Family    model.Family     `json:"family"`
	Best      Point            `json:"best_params"`
	BestScore float64          `json:"best_score"`
	Scores    []Score          `json:"scores"`
	Model     model.Classifier `json:"-"`
}

type job struct {
	point int
	fold  int
}

// Grid scores every point of space by stratified k-fold precision on (x, y),
// picks the point with the highest mean (ties go to the earliest point) and
// refits it on all of (x, y). Point×fold jobs run on the pool; every fit of
// the family draws from the same sub-source, so the outcome does not depend
// on scheduling.
func Grid(ctx context.Context, space Space, x [][]float64, y []int, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, errors.NewInvalidInputError("Grid", "random source is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool := opts.Pool
	if pool == nil {
		pool = parallel.NewWorkerPoolContext(ctx, 0)
		defer pool.Close()
	}
	family := string(space.Family)

	points := space.Points()
	if len(points) == 0 {
		return nil, errors.NewInvalidInputError("Grid", fmt.Sprintf("empty grid for %s", family))
	}
	folds, err := split.KFold(y, opts.Folds)
	if err != nil {
		return nil, errors.NewFitError(family, err)
	}

	src := opts.Source.Sub(family)
	jobs := make([]job, 0, len(points)*len(folds))
	for p := range points {
		for f := range folds {
			jobs = append(jobs, job{point: p, fold: f})
		}
	}

	logger.DebugContext(ctx, "grid search started",
		"family", family, "points", len(points), "folds", len(folds), "workers", pool.Workers())

	scores, err := parallel.TryIndexed(pool, jobs, func(_ int, j job) (float64, error) {
		fold := folds[j.fold]
		m, err := space.New(points[j.point], src)
		if err != nil {
			return 0, errors.NewFitError(family, err)
		}
		if err := m.Fit(split.Gather(x, fold.Train), split.Gather(y, fold.Train)); err != nil {
			return 0, errors.WrapFit(family, err)
		}
		return metrics.Precision(split.Gather(y, fold.Test), m.Predict(split.Gather(x, fold.Test)), 0)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.WrapFit(family, err)
	}

	result := &Result{Family: space.Family, BestScore: -1}
	best := 0
	for p, point := range points {
		s := Score{Point: point, Folds: scores[p*len(folds) : (p+1)*len(folds)]}
		for _, v := range s.Folds {
			s.Mean += v / float64(len(folds))
		}
		result.Scores = append(result.Scores, s)
		if s.Mean > result.BestScore {
			result.BestScore = s.Mean
			best = p
		}
		logger.DebugContext(ctx, "grid point scored", "family", family, "params", point.String(), "precision", s.Mean)
	}
	result.Best = points[best]

	m, err := space.New(result.Best, src)
	if err != nil {
		return nil, errors.NewFitError(family, err)
	}
	if err := m.Fit(x, y); err != nil {
		return nil, errors.WrapFit(family, err)
	}
	result.Model = m

	logger.DebugContext(ctx, "grid search finished",
		"family", family, "best", result.Best.String(), "precision", result.BestScore)
	return result, nil
}
