package main

import (
	"io"
	"log/slog"

	"github.com/paveg/churnlab/internal/config"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	configFile string
	debug      bool
	seed       uint64
	records    int
	workers    int
	plotsDir   string
	exportDir  string
	json       bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "churnlab",
		Short:         "Synthetic customer churn analysis",
		Long:          `churnlab builds a synthetic customer table, injects missing values, outliers and inconsistent categories, cleans and encodes it, and compares logistic regression, random forest, gradient boosting and XGBoost classifiers by validation precision.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "config file (yaml or json)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (overrides config)")
	f.IntVar(&opts.records, "records", 0, "number of customer rows (overrides config)")
	f.IntVar(&opts.workers, "workers", 0, "grid search workers (overrides config)")
	f.StringVar(&opts.exportDir, "export-dir", "", "directory for dataset exports (overrides config)")

	root.AddCommand(
		newRunCmd(opts),
		newGenerateCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load resolves the configuration and applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = o.seed
	}
	if f.Changed("records") {
		cfg.Records = o.records
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("plots-dir") {
		cfg.PlotsDir = o.plotsDir
	}
	if f.Changed("export-dir") {
		cfg.ExportDir = o.exportDir
	}
	return cfg, nil
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
