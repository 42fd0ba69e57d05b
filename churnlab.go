// Package churnlab is the public API of the churn analysis.
//
// A run builds a synthetic customer table, corrupts it with missing values,
// outliers and inconsistent categories, cleans and encodes it, splits it
// 80/10/10 with stratification and compares four classifier families by
// validation precision. The winner is scored once on the test rows.
//
//	cfg := churnlab.DefaultConfig()
//	cfg.Records = 2000
//	rep, err := churnlab.Run(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	fmt.Println(rep.Selected, rep.Test.Precision)
package churnlab

import (
	"context"

	"github.com/paveg/churnlab/internal/config"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/pipeline"
	"github.com/paveg/churnlab/internal/report"
)

// Config is the configuration of one run.
type Config = config.Config

// Report is the outcome of a run.
type Report = report.Report

// DataFrame is the immutable column table produced by Generate.
type DataFrame = dataframe.DataFrame

// Renderer draws the charts of a run.
type Renderer = report.Renderer

// Option configures a run.
type Option = pipeline.Option

// Run options.
var (
	WithLogger   = pipeline.WithLogger
	WithRenderer = pipeline.WithRenderer
	WithRunID    = pipeline.WithRunID
	WithMetrics  = pipeline.WithMetrics
	WithClock    = pipeline.WithClock
)

// DefaultConfig returns the configuration of the reference analysis:
// 5000 rows, seed 42 and the full hyperparameter grids.
func DefaultConfig() Config {
	return config.NewConfig()
}

// LoadConfig resolves configuration from defaults, an optional YAML or JSON
// file and CHURNLAB_* environment variables.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Run executes the analysis.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	return pipeline.Run(ctx, cfg, opts...)
}

// Generate builds the corrupted dataset a run with cfg would analyse.
func Generate(ctx context.Context, cfg Config, opts ...Option) (*DataFrame, error) {
	return pipeline.Generate(ctx, cfg, opts...)
}
