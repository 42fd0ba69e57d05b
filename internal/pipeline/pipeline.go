// Package pipeline runs the churn analysis end to end: it builds and corrupts
// the synthetic dataset, cleans and encodes it, partitions it, selects the
// best classifier family by validation precision and scores it once on the
// held-out test rows.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/paveg/churnlab/internal/clean"
	"github.com/paveg/churnlab/internal/config"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/generator"
	"github.com/paveg/churnlab/internal/io"
	"github.com/paveg/churnlab/internal/metrics"
	"github.com/paveg/churnlab/internal/model"
	"github.com/paveg/churnlab/internal/monitoring"
	"github.com/paveg/churnlab/internal/parallel"
	"github.com/paveg/churnlab/internal/report"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/search"
	"github.com/paveg/churnlab/internal/split"
)

// Export file names written into the export directory.
const (
	RawExportFile     = "customers_raw.csv"
	CleanedExportFile = "customers_clean.parquet"
)

// Stage names as recorded in the report.
const (
	StageGenerate    = "generate"
	StageQuality     = "quality"
	StageClean       = "clean"
	StageSplit       = "split"
	StageSelect      = "select"
	StageTest        = "test"
	StageImportances = "importances"
)

type runner struct {
	cfg      config.Config
	src      *rng.Source
	logger   *slog.Logger
	renderer report.Renderer
	metrics  *monitoring.MetricsCollector
	runID    string
	now      func() time.Time
}

func newRunner(cfg config.Config, opts []Option) (*runner, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		cfg:      cfg,
		src:      rng.New(cfg.Seed),
		logger:   slog.Default(),
		renderer: report.NopRenderer{},
		metrics:  monitoring.NewMetricsCollector(true),
		now:      time.Now,
	}
	if cfg.PlotsDir != "" {
		r.renderer = report.NewPlotRenderer(cfg.PlotsDir)
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = r.logger.With("run_id", r.runID)
	return r, nil
}

// stage runs fn unless ctx is done and records it under name.
func (r *runner) stage(ctx context.Context, name string, fn func() (int, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	rows := 0
	err := r.metrics.RecordStage(name, func() (int, error) {
		n, err := fn()
		rows = n
		return n, err
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "stage failed", "stage", name, "error", err)
		return err
	}
	r.logger.InfoContext(ctx, "stage finished", "stage", name, "rows", rows, "duration", time.Since(start))
	return nil
}

// GeneratorOptions maps cfg onto the dataset builder's options.
func GeneratorOptions(cfg config.Config) generator.Options {
	return generator.Options{
		Records:           cfg.Records,
		ChurnRate:         cfg.ChurnRate,
		MissingRate:       cfg.MissingRate,
		OutlierRate:       cfg.OutlierRate,
		InconsistencyRate: cfg.InconsistencyRate,
	}
}

// Generate builds the corrupted dataset exactly as Run sees it.
func Generate(ctx context.Context, cfg config.Config, opts ...Option) (*dataframe.DataFrame, error) {
	r, err := newRunner(cfg, opts)
	if err != nil {
		return nil, err
	}
	var raw *dataframe.DataFrame
	if err := r.stage(ctx, StageGenerate, r.build(&raw)); err != nil {
		return nil, err
	}
	return raw, nil
}

// build returns a stage function storing the built dataset in out.
func (r *runner) build(out **dataframe.DataFrame) func() (int, error) {
	return func() (int, error) {
		df, err := generator.Build(GeneratorOptions(r.cfg), r.src)
		if err != nil {
			return 0, err
		}
		*out = df
		return df.Len(), nil
	}
}

// Run executes the whole analysis and returns its report.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (*report.Report, error) {
	r, err := newRunner(cfg, opts)
	if err != nil {
		return nil, err
	}
	return r.run(ctx)
}

type partition struct {
	x [][]float64
	y []int
}

func (r *runner) run(ctx context.Context) (*report.Report, error) {
	rep := &report.Report{
		RunID:     r.runID,
		Seed:      r.cfg.Seed,
		StartedAt: r.now(),
		Features:  append([]string(nil), schema.FeatureColumns...),
	}
	r.logger.InfoContext(ctx, "run started", "records", r.cfg.Records, "seed", r.cfg.Seed)

	var raw, cleaned *dataframe.DataFrame
	if err := r.stage(ctx, StageGenerate, r.build(&raw)); err != nil {
		return nil, err
	}

	err := r.stage(ctx, StageQuality, func() (int, error) {
		var err error
		if rep.Quality, err = clean.QualitySummary(raw); err != nil {
			return 0, err
		}
		if err := r.renderer.Histograms(raw, schema.HistogramColumns); err != nil {
			return 0, fmt.Errorf("rendering histograms: %w", err)
		}
		return raw.Len(), nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, StageClean, func() (int, error) {
		imputed, imputation, err := clean.Impute(raw)
		if err != nil {
			return 0, err
		}
		encoded, encodings, err := clean.Encode(imputed)
		if err != nil {
			return 0, err
		}
		if cleaned, err = clean.AddInteractions(encoded); err != nil {
			return 0, err
		}
		rep.Imputation = imputation
		rep.Encodings = encodings
		rep.RemainingNulls = cleaned.TotalNulls()
		return imputation.Filled(), nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.export(ctx, rep, raw, cleaned); err != nil {
		return nil, err
	}

	var train, validation, test partition
	err = r.stage(ctx, StageSplit, func() (int, error) {
		x, err := clean.Matrix(cleaned, schema.FeatureColumns)
		if err != nil {
			return 0, err
		}
		y, err := clean.Labels(cleaned, schema.Churn)
		if err != nil {
			return 0, err
		}
		ratios := split.Ratios{Train: r.cfg.Split.Train, Validation: r.cfg.Split.Validation, Test: r.cfg.Split.Test}
		parts, err := split.Stratified(y, ratios, r.src.Stream("split"))
		if err != nil {
			return 0, err
		}
		train = subset(x, y, parts.Train)
		validation = subset(x, y, parts.Validation)
		test = subset(x, y, parts.Test)
		rep.Split = report.Sizes{Train: len(parts.Train), Validation: len(parts.Validation), Test: len(parts.Test)}
		return len(y), nil
	})
	if err != nil {
		return nil, err
	}

	var selected model.Classifier
	err = r.stage(ctx, StageSelect, func() (int, error) {
		var err error
		selected, err = r.selectModel(ctx, rep, train, validation)
		return len(train.y), err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, StageTest, func() (int, error) {
		var err error
		rep.Test, err = metrics.Evaluate(test.y, selected.Predict(test.x), r.cfg.ZeroDivision)
		return len(test.y), err
	})
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "test evaluation",
		"family", rep.Selected, "precision", rep.Test.Precision, "recall", rep.Test.Recall,
		"f1", rep.Test.F1, "roc_auc", rep.Test.ROCAUC)

	if imp, ok := selected.(model.Importancer); ok {
		err = r.stage(ctx, StageImportances, func() (int, error) {
			rep.Importances = report.Rank(rep.Features, imp.FeatureImportances())
			if err := r.renderer.Importances(rep.Importances); err != nil {
				return 0, fmt.Errorf("rendering importances: %w", err)
			}
			return len(rep.Importances), nil
		})
		if err != nil {
			return nil, err
		}
	}

	rep.Stages = r.metrics.GetMetrics()
	return rep, nil
}

// selectModel fits every family in candidate order, scores each on the
// validation rows and keeps the first one with the highest precision.
func (r *runner) selectModel(ctx context.Context, rep *report.Report, train, validation partition) (model.Classifier, error) {
	pool := parallel.NewWorkerPoolContext(ctx, r.cfg.EffectiveWorkers())
	defer pool.Close()
	searchOpts := search.Options{
		Folds:  r.cfg.CVFolds,
		Pool:   pool,
		Source: r.src.Sub("search"),
		Logger: r.logger,
	}

	var (
		best      model.Classifier
		bestScore = -1.0
	)
	for _, family := range model.Families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := report.Candidate{Family: family}

		var m model.Classifier
		if family == model.LogisticRegressionFamily {
			lr := model.NewLogisticRegression(model.LogisticParams{C: 1, MaxIter: r.cfg.LogisticMaxIter})
			if err := lr.Fit(train.x, train.y); err != nil {
				return nil, errors.WrapFit(string(family), err)
			}
			m = lr
		} else {
			space, err := search.SpaceFor(family, r.cfg.Grids)
			if err != nil {
				return nil, errors.NewFitError(string(family), err)
			}
			res, err := search.Grid(ctx, space, train.x, train.y, searchOpts)
			if err != nil {
				return nil, err
			}
			m = res.Model
			candidate.Params = res.Best.String()
			candidate.CVPrecision = res.BestScore
			candidate.GridPoints = len(res.Scores)
		}

		result, err := metrics.Evaluate(validation.y, m.Predict(validation.x), r.cfg.ZeroDivision)
		if err != nil {
			return nil, err
		}
		candidate.Validation = result
		rep.Candidates = append(rep.Candidates, candidate)
		r.logger.InfoContext(ctx, "candidate evaluated",
			"family", family, "params", candidate.Params, "precision", result.Precision,
			"recall", result.Recall, "f1", result.F1, "roc_auc", result.ROCAUC)

		if result.Precision > bestScore {
			best, bestScore = m, result.Precision
			rep.Selected = family
		}
	}
	r.logger.InfoContext(ctx, "model selected", "family", rep.Selected, "precision", bestScore)
	return best, nil
}

func (r *runner) export(ctx context.Context, rep *report.Report, raw, cleaned *dataframe.DataFrame) error {
	if r.cfg.ExportDir == "" {
		return ctx.Err()
	}
	files := []struct {
		name string
		df   *dataframe.DataFrame
	}{
		{RawExportFile, raw},
		{CleanedExportFile, cleaned},
	}
	for _, f := range files {
		path := filepath.Join(r.cfg.ExportDir, f.name)
		if err := io.WriteFile(path, f.df); err != nil {
			return errors.NewInternalError("Export", err)
		}
		rep.Exports = append(rep.Exports, path)
		r.logger.InfoContext(ctx, "dataset exported", "path", path, "rows", f.df.Len())
	}
	return nil
}

func subset(x [][]float64, y []int, idx []int) partition {
	return partition{x: split.Gather(x, idx), y: split.Gather(y, idx)}
}
