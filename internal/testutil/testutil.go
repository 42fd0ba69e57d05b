// Package testutil provides common testing utilities shared by the pipeline
// packages: small customer tables with known contents and configurations that
// keep model searches fast.
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/churnlab/internal/config"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test tables.
	defaultRowCount = 8
)

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a checked allocator and asserts on Release that
// nothing allocated through it is still live.
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup: func() {
			allocator.AssertSize(tb, 0)
		},
	}
}

// CustomerTableOption configures test table creation.
type CustomerTableOption func(*customerTableConfig)

type customerTableConfig struct {
	includeNulls bool
	rowCount     int
	derived      bool
}

// WithNulls sets every fourth row of each non-key column to null.
func WithNulls() CustomerTableOption {
	return func(cfg *customerTableConfig) {
		cfg.includeNulls = true
	}
}

// WithRowCount sets the number of rows in the test table.
func WithRowCount(count int) CustomerTableOption {
	return func(cfg *customerTableConfig) {
		cfg.rowCount = count
	}
}

// WithoutDerived omits AverageMonthlyCharges and CustomerLifetimeValue.
func WithoutDerived() CustomerTableOption {
	return func(cfg *customerTableConfig) {
		cfg.derived = false
	}
}

// CreateCustomerTable creates a table with the columns of a freshly built
// dataset. Values cycle through fixed patterns, and Churn is "Yes" on every
// third row.
//
//	df := testutil.CreateCustomerTable(nil, testutil.WithNulls())
func CreateCustomerTable(allocator memory.Allocator, opts ...CustomerTableOption) *dataframe.DataFrame {
	cfg := &customerTableConfig{rowCount: defaultRowCount, derived: true}
	for _, opt := range opts {
		opt(cfg)
	}
	n := cfg.rowCount

	valid := func() []bool {
		v := make([]bool, n)
		for i := range v {
			v[i] = !cfg.includeNulls || i%4 != 3
		}
		return v
	}

	ids := make([]int64, n)
	age := make([]float64, n)
	monthly := make([]float64, n)
	tenure := make([]float64, n)
	total := make([]float64, n)
	avg := make([]float64, n)
	clv := make([]float64, n)
	churn := make([]string, n)
	for i := range n {
		ids[i] = int64(i + 1)
		age[i] = float64(20 + (i*7)%60)
		monthly[i] = 30 + float64((i*13)%70)
		tenure[i] = float64(1 + (i*5)%71)
		total[i] = monthly[i] * tenure[i]
		avg[i] = monthly[i]
		clv[i] = monthly[i] * tenure[i]
		churn[i] = "No"
		if i%3 == 0 {
			churn[i] = "Yes"
		}
	}

	cols := []dataframe.ISeries{
		series.New(schema.CustomerID, ids, allocator),
		series.NewNullable(schema.Age, age, valid(), allocator),
		series.NewNullable(schema.Gender, cycle(schema.GenderValues, n), valid(), allocator),
		series.NewNullable(schema.ContractType, cycle(schema.ContractTypeValues, n), valid(), allocator),
		series.NewNullable(schema.MonthlyCharges, monthly, valid(), allocator),
		series.NewNullable(schema.Tenure, tenure, valid(), allocator),
		series.NewNullable(schema.TechSupport, cycle(schema.YesNoValues, n), valid(), allocator),
		series.NewNullable(schema.InternetService, cycle(schema.InternetServiceValues, n), valid(), allocator),
		series.NewNullable(schema.PaperlessBilling, cycle([]string{"No", "Yes"}, n), valid(), allocator),
		series.NewNullable(schema.PaymentMethod, cycle(schema.PaymentMethodValues, n), valid(), allocator),
		series.New(schema.Churn, churn, allocator),
		series.NewNullable(schema.TotalCharges, total, valid(), allocator),
	}
	if cfg.derived {
		cols = append(cols,
			series.NewNullable(schema.AverageMonthlyCharges, avg, valid(), allocator),
			series.NewNullable(schema.CustomerLifetimeValue, clv, valid(), allocator),
		)
	}
	return dataframe.New(cols...)
}

func cycle(domain []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = domain[i%len(domain)]
	}
	return out
}

// FastConfig returns a valid configuration with one point per grid axis and a
// small dataset, for end-to-end tests.
func FastConfig() config.Config {
	cfg := config.NewConfig()
	cfg.Records = 400
	cfg.Workers = 2
	cfg.Grids = config.Grids{
		RandomForest: config.ForestGrid{
			NEstimators:     []int{10},
			MaxDepth:        []int{5},
			MinSamplesSplit: []int{2},
		},
		GradientBoosting: config.BoostingGrid{
			NEstimators:  []int{10},
			LearningRate: []float64{0.1},
			MaxDepth:     []int{3},
		},
		XGBoost: config.BoostingGrid{
			NEstimators:  []int{10},
			LearningRate: []float64{0.1},
			MaxDepth:     []int{3},
		},
	}
	return cfg
}

// SeparableData returns n rows of two features where the label is 1 exactly
// when the first feature exceeds 0.5. The second feature is noise.
func SeparableData(n int) ([][]float64, []int) {
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range n {
		a := float64((i*37)%n) / float64(n)
		b := float64((i*11)%7) / 7
		x[i] = []float64{a, b}
		if a > 0.5 {
			y[i] = 1
		}
	}
	return x, y
}

// AssertDataFrameEqual performs deep equality comparison of DataFrames.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")
	assert.True(t, expected.Equal(actual), "DataFrame contents should match")
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Len(t, df.Columns(), len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertNoNulls verifies that no column of df holds a null.
func AssertNoNulls(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	for _, c := range df.NullCounts() {
		assert.Zero(t, c.Nulls, "column %s should have no nulls", c.Column)
	}
}
