// Package config provides configuration management for churn analysis runs.
//
// Values are resolved with the precedence defaults < config file < CHURNLAB_*
// environment variables. Files may be YAML or JSON.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables overriding configuration.
const EnvPrefix = "CHURNLAB"

// Config represents the configuration of one pipeline run
type Config struct {
	// Randomness
	Seed uint64 `mapstructure:"seed" yaml:"seed" json:"seed"` // Seed for every random stream of the run

	// Dataset generation and corruption
	Records           int     `mapstructure:"records" yaml:"records" json:"records"`                                  // Number of customer rows
	ChurnRate         float64 `mapstructure:"churn_rate" yaml:"churn_rate" json:"churn_rate"`                         // Probability of a positive churn label
	MissingRate       float64 `mapstructure:"missing_rate" yaml:"missing_rate" json:"missing_rate"`                   // Fraction of non-key cells made missing
	OutlierRate       float64 `mapstructure:"outlier_rate" yaml:"outlier_rate" json:"outlier_rate"`                   // Fraction of numeric cells made outliers
	InconsistencyRate float64 `mapstructure:"inconsistency_rate" yaml:"inconsistency_rate" json:"inconsistency_rate"` // Fraction of categorical cells set to Unknown

	// Partitioning and model selection
	Split           SplitRatios `mapstructure:"split" yaml:"split" json:"split"`
	CVFolds         int         `mapstructure:"cv_folds" yaml:"cv_folds" json:"cv_folds"`                            // Cross-validation folds per grid point
	Workers         int         `mapstructure:"workers" yaml:"workers" json:"workers"`                               // Grid search workers (0 = CPU count)
	ZeroDivision    float64     `mapstructure:"zero_division" yaml:"zero_division" json:"zero_division"`             // Score used when a metric denominator is zero
	LogisticMaxIter int         `mapstructure:"logistic_max_iter" yaml:"logistic_max_iter" json:"logistic_max_iter"` // Iteration cap for logistic regression
	Grids           Grids       `mapstructure:"grids" yaml:"grids" json:"grids"`

	// Outputs
	PlotsDir  string `mapstructure:"plots_dir" yaml:"plots_dir" json:"plots_dir"`    // Directory for PNG charts ("" disables)
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir" json:"export_dir"` // Directory for dataset exports ("" disables)
}

// SplitRatios are the train/validation/test fractions of the dataset.
type SplitRatios struct {
	Train      float64 `mapstructure:"train" yaml:"train" json:"train"`
	Validation float64 `mapstructure:"validation" yaml:"validation" json:"validation"`
	Test       float64 `mapstructure:"test" yaml:"test" json:"test"`
}

// ForestGrid is the random forest hyperparameter grid.
type ForestGrid struct {
	NEstimators     []int `mapstructure:"n_estimators" yaml:"n_estimators" json:"n_estimators"`
	MaxDepth        []int `mapstructure:"max_depth" yaml:"max_depth" json:"max_depth"`
	MinSamplesSplit []int `mapstructure:"min_samples_split" yaml:"min_samples_split" json:"min_samples_split"`
}

// BoostingGrid is the hyperparameter grid shared by both boosting families.
type BoostingGrid struct {
	NEstimators  []int     `mapstructure:"n_estimators" yaml:"n_estimators" json:"n_estimators"`
	LearningRate []float64 `mapstructure:"learning_rate" yaml:"learning_rate" json:"learning_rate"`
	MaxDepth     []int     `mapstructure:"max_depth" yaml:"max_depth" json:"max_depth"`
}

// Grids holds the per-family search grids.
type Grids struct {
	RandomForest     ForestGrid   `mapstructure:"random_forest" yaml:"random_forest" json:"random_forest"`
	GradientBoosting BoostingGrid `mapstructure:"gradient_boosting" yaml:"gradient_boosting" json:"gradient_boosting"`
	XGBoost          BoostingGrid `mapstructure:"xgboost" yaml:"xgboost" json:"xgboost"`
}

// Default configuration values
const (
	DefaultSeed              = 42
	DefaultRecords           = 5000
	DefaultChurnRate         = 0.2
	DefaultMissingRate       = 0.05
	DefaultOutlierRate       = 0.01
	DefaultInconsistencyRate = 0.01
	DefaultTrainRatio        = 0.8
	DefaultValidationRatio   = 0.1
	DefaultTestRatio         = 0.1
	DefaultCVFolds           = 3
	DefaultLogisticMaxIter   = 1000
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Seed:              DefaultSeed,
		Records:           DefaultRecords,
		ChurnRate:         DefaultChurnRate,
		MissingRate:       DefaultMissingRate,
		OutlierRate:       DefaultOutlierRate,
		InconsistencyRate: DefaultInconsistencyRate,
		Split: SplitRatios{
			Train:      DefaultTrainRatio,
			Validation: DefaultValidationRatio,
			Test:       DefaultTestRatio,
		},
		CVFolds:         DefaultCVFolds,
		Workers:         0, // Auto-detect
		ZeroDivision:    0,
		LogisticMaxIter: DefaultLogisticMaxIter,
		Grids:           DefaultGrids(),
	}
}

// DefaultGrids returns the search grids of the reference analysis.
func DefaultGrids() Grids {
	return Grids{
		RandomForest: ForestGrid{
			NEstimators:     []int{50, 100, 200},
			MaxDepth:        []int{5, 10, 15},
			MinSamplesSplit: []int{2, 5, 10},
		},
		GradientBoosting: BoostingGrid{
			NEstimators:  []int{50, 100, 200},
			LearningRate: []float64{0.01, 0.1, 0.2},
			MaxDepth:     []int{3, 5, 7},
		},
		XGBoost: BoostingGrid{
			NEstimators:  []int{50, 100, 200},
			LearningRate: []float64{0.01, 0.1, 0.2},
			MaxDepth:     []int{3, 5, 7},
		},
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Records <= 0 {
		return fmt.Errorf("Records must be positive, got %d", c.Records)
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"ChurnRate", c.ChurnRate},
		{"MissingRate", c.MissingRate},
		{"OutlierRate", c.OutlierRate},
		{"InconsistencyRate", c.InconsistencyRate},
	}
	for _, r := range rates {
		if math.IsNaN(r.value) || r.value < 0.0 || r.value > 1.0 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", r.name, r.value)
		}
	}

	if err := c.Split.Validate(); err != nil {
		return err
	}

	if c.CVFolds < 2 {
		return fmt.Errorf("CVFolds must be at least 2, got %d", c.CVFolds)
	}

	if c.Workers < 0 {
		return fmt.Errorf("Workers must be non-negative, got %d", c.Workers)
	}

	if c.ZeroDivision != 0 && c.ZeroDivision != 1 {
		return fmt.Errorf("ZeroDivision must be 0 or 1, got %f", c.ZeroDivision)
	}

	if c.LogisticMaxIter <= 0 {
		return fmt.Errorf("LogisticMaxIter must be positive, got %d", c.LogisticMaxIter)
	}

	return c.Grids.Validate()
}

// Validate checks every ratio is in (0, 1) and that they sum to 1.
func (s SplitRatios) Validate() error {
	for _, r := range []struct {
		name  string
		value float64
	}{
		{"Split.Train", s.Train},
		{"Split.Validation", s.Validation},
		{"Split.Test", s.Test},
	} {
		if !(r.value > 0 && r.value < 1) {
			return fmt.Errorf("%s must be between 0 and 1 exclusive, got %f", r.name, r.value)
		}
	}
	if sum := s.Train + s.Validation + s.Test; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("split ratios must sum to 1, got %f", sum)
	}
	return nil
}

// Validate rejects empty axes and out-of-range hyperparameters.
func (g Grids) Validate() error {
	rf := g.RandomForest
	if err := positiveAxis("RandomForest.NEstimators", rf.NEstimators, 1); err != nil {
		return err
	}
	if err := positiveAxis("RandomForest.MaxDepth", rf.MaxDepth, 1); err != nil {
		return err
	}
	if err := positiveAxis("RandomForest.MinSamplesSplit", rf.MinSamplesSplit, 2); err != nil {
		return err
	}

	for name, b := range map[string]BoostingGrid{"GradientBoosting": g.GradientBoosting, "XGBoost": g.XGBoost} {
		if err := positiveAxis(name+".NEstimators", b.NEstimators, 1); err != nil {
			return err
		}
		if err := positiveAxis(name+".MaxDepth", b.MaxDepth, 1); err != nil {
			return err
		}
		if len(b.LearningRate) == 0 {
			return fmt.Errorf("%s.LearningRate must not be empty", name)
		}
		for _, lr := range b.LearningRate {
			if !(lr > 0) {
				return fmt.Errorf("%s.LearningRate must be positive, got %f", name, lr)
			}
		}
	}
	return nil
}

func positiveAxis(name string, values []int, minValue int) error {
	if len(values) == 0 {
		return fmt.Errorf("%s must not be empty", name)
	}
	for _, v := range values {
		if v < minValue {
			return fmt.Errorf("%s values must be at least %d, got %d", name, minValue, v)
		}
	}
	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	// Apply defaults for zero values
	if c.Split == (SplitRatios{}) {
		c.Split = defaults.Split
	}
	if c.CVFolds == 0 {
		c.CVFolds = defaults.CVFolds
	}
	if c.LogisticMaxIter == 0 {
		c.LogisticMaxIter = defaults.LogisticMaxIter
	}
	if len(c.Grids.RandomForest.NEstimators) == 0 &&
		len(c.Grids.RandomForest.MaxDepth) == 0 &&
		len(c.Grids.RandomForest.MinSamplesSplit) == 0 {
		c.Grids.RandomForest = defaults.Grids.RandomForest
	}
	if len(c.Grids.GradientBoosting.NEstimators) == 0 &&
		len(c.Grids.GradientBoosting.LearningRate) == 0 &&
		len(c.Grids.GradientBoosting.MaxDepth) == 0 {
		c.Grids.GradientBoosting = defaults.Grids.GradientBoosting
	}
	if len(c.Grids.XGBoost.NEstimators) == 0 &&
		len(c.Grids.XGBoost.LearningRate) == 0 &&
		len(c.Grids.XGBoost.MaxDepth) == 0 {
		c.Grids.XGBoost = defaults.Grids.XGBoost
	}

	// Records and rates are not defaulted: a zero rate disables that
	// corruption and zero records is rejected by Validate.

	return c
}

// EffectiveWorkers returns the worker count with 0 resolved to the CPU count.
func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Load resolves configuration from defaults, an optional file and the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, NewConfig())

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".yaml", ".yml", ".json":
		default:
			return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("seed", c.Seed)
	v.SetDefault("records", c.Records)
	v.SetDefault("churn_rate", c.ChurnRate)
	v.SetDefault("missing_rate", c.MissingRate)
	v.SetDefault("outlier_rate", c.OutlierRate)
	v.SetDefault("inconsistency_rate", c.InconsistencyRate)
	v.SetDefault("split.train", c.Split.Train)
	v.SetDefault("split.validation", c.Split.Validation)
	v.SetDefault("split.test", c.Split.Test)
	v.SetDefault("cv_folds", c.CVFolds)
	v.SetDefault("workers", c.Workers)
	v.SetDefault("zero_division", c.ZeroDivision)
	v.SetDefault("logistic_max_iter", c.LogisticMaxIter)
	v.SetDefault("grids.random_forest.n_estimators", c.Grids.RandomForest.NEstimators)
	v.SetDefault("grids.random_forest.max_depth", c.Grids.RandomForest.MaxDepth)
	v.SetDefault("grids.random_forest.min_samples_split", c.Grids.RandomForest.MinSamplesSplit)
	v.SetDefault("grids.gradient_boosting.n_estimators", c.Grids.GradientBoosting.NEstimators)
	v.SetDefault("grids.gradient_boosting.learning_rate", c.Grids.GradientBoosting.LearningRate)
	v.SetDefault("grids.gradient_boosting.max_depth", c.Grids.GradientBoosting.MaxDepth)
	v.SetDefault("grids.xgboost.n_estimators", c.Grids.XGBoost.NEstimators)
	v.SetDefault("grids.xgboost.learning_rate", c.Grids.XGBoost.LearningRate)
	v.SetDefault("grids.xgboost.max_depth", c.Grids.XGBoost.MaxDepth)
	v.SetDefault("plots_dir", c.PlotsDir)
	v.SetDefault("export_dir", c.ExportDir)
}

// Marshal renders the configuration as YAML.
func Marshal(c Config) ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// Save writes the configuration as YAML to path, creating parent directories.
func Save(c Config, path string) error {
	b, err := Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
