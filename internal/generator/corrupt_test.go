package generator_test

import (
	"math"
	"testing"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/generator"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectMissing(t *testing.T) {
	clean, err := generator.Generate(4000, 0.2, rng.New(5))
	require.NoError(t, err)

	t.Run("zero rate is a no-op", func(t *testing.T) {
		out, err := generator.InjectMissing(clean, 0, rng.New(5))
		require.NoError(t, err)
		assert.True(t, clean.Equal(out))
	})

	t.Run("fraction per column", func(t *testing.T) {
		out, err := generator.InjectMissing(clean, 0.1, rng.New(5))
		require.NoError(t, err)
		assert.Zero(t, clean.TotalNulls(), "input is not modified")
		for _, nc := range out.NullCounts() {
			if schema.IsProtected(nc.Column) {
				assert.Zero(t, nc.Nulls, nc.Column)
				continue
			}
			assert.InDelta(t, 0.1, float64(nc.Nulls)/4000, 0.02, nc.Column)
		}
	})

	t.Run("full rate", func(t *testing.T) {
		out, err := generator.InjectMissing(clean, 1, rng.New(5))
		require.NoError(t, err)
		c, _ := out.Column(schema.Age)
		assert.Equal(t, 4000, c.NullN())
	})

	t.Run("invalid rate", func(t *testing.T) {
		_, err := generator.InjectMissing(clean, 1.2, rng.New(5))
		assert.Error(t, err)
	})
}

func TestInjectMissingRepeatedPass(t *testing.T) {
	const (
		n    = 4000
		rate = 0.1
	)
	clean, err := generator.Generate(n, 0.2, rng.New(5))
	require.NoError(t, err)

	src := rng.New(5)
	once, err := generator.InjectMissing(clean, rate, src)
	require.NoError(t, err)
	twice, err := generator.InjectMissing(once, rate, src)
	require.NoError(t, err)

	assert.False(t, once.Equal(twice))
	expected := 1 - (1-rate)*(1-rate)
	for _, nc := range twice.NullCounts() {
		if schema.IsProtected(nc.Column) {
			continue
		}
		assert.InDelta(t, expected, float64(nc.Nulls)/n, 0.02, nc.Column)
	}
}

func TestInjectMissingRateOverSeeds(t *testing.T) {
	const (
		seeds = 50
		n     = 1000
		rate  = 0.05
	)
	nulls := map[string]int{}
	for seed := uint64(1); seed <= seeds; seed++ {
		clean, err := generator.Generate(n, 0.2, rng.New(seed))
		require.NoError(t, err)
		out, err := generator.InjectMissing(clean, rate, rng.New(seed))
		require.NoError(t, err)
		for _, nc := range out.NullCounts() {
			nulls[nc.Column] += nc.Nulls
		}
	}

	cells := float64(seeds * n)
	tolerance := 4 * math.Sqrt(rate*(1-rate)/cells)
	require.NotEmpty(t, nulls)
	for column, count := range nulls {
		if schema.IsProtected(column) {
			assert.Zero(t, count, column)
			continue
		}
		assert.InDelta(t, rate, float64(count)/cells, tolerance, column)
	}
}

func TestInjectOutliersRepeatedPass(t *testing.T) {
	clean, err := generator.Generate(4000, 0.2, rng.New(11))
	require.NoError(t, err)

	src := rng.New(11)
	once, err := generator.InjectOutliers(clean, 0.05, src)
	require.NoError(t, err)
	twice, err := generator.InjectOutliers(once, 0.05, src)
	require.NoError(t, err)

	base, _ := clean.Float64(schema.Age)
	first, _ := once.Float64(schema.Age)
	second, _ := twice.Float64(schema.Age)
	fresh := 0
	for i := range base.Len() {
		if first.Value(i) == base.Value(i) && second.Value(i) != first.Value(i) {
			fresh++
		}
	}
	assert.Positive(t, fresh, "second pass reaches rows the first pass left alone")
}

func TestInjectOutliers(t *testing.T) {
	df := dataframe.New(
		series.New(schema.Age, []float64{20, 40, 30}, nil),
		series.New(schema.MonthlyCharges, []float64{30, 50, 99}, nil),
		series.New(schema.TotalCharges, []float64{300, 500, 990}, nil),
		series.New(schema.Tenure, []float64{10, 10, 10}, nil),
	)

	t.Run("rate one replaces every cell with ten times the max", func(t *testing.T) {
		df := dataframe.New(
			series.NewNullable(schema.Age, []float64{20, 40, 0}, []bool{true, true, false}, nil),
			series.New(schema.MonthlyCharges, []float64{30, 50, 99}, nil),
			series.New(schema.TotalCharges, []float64{300, 500, 990}, nil),
			series.New(schema.Tenure, []float64{10, 10, 10}, nil),
		)
		out, err := generator.InjectOutliers(df, 1, rng.New(1))
		require.NoError(t, err)

		age, _ := out.Float64(schema.Age)
		assert.Equal(t, []float64{400, 400, 400}, age.Values())
		assert.Zero(t, age.NullN())

		monthly, _ := out.Float64(schema.MonthlyCharges)
		assert.Equal(t, []float64{990, 990, 990}, monthly.Values())
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := generator.InjectOutliers(df.Drop(schema.Tenure), 0.5, rng.New(1))
		assert.Error(t, err)
	})
}

func TestInjectOutliersValues(t *testing.T) {
	clean, err := generator.Generate(3000, 0.2, rng.New(11))
	require.NoError(t, err)
	before, _ := clean.Float64(schema.MonthlyCharges)
	maxBefore, _ := series.Max(before.Values(), nil)

	out, err := generator.InjectOutliers(clean, 0.01, rng.New(11))
	require.NoError(t, err)
	after, _ := out.Float64(schema.MonthlyCharges)

	changed := 0
	for i, v := range after.Values() {
		if v != before.Value(i) {
			changed++
			assert.InDelta(t, maxBefore*10, v, 1e-9)
		}
	}
	assert.Positive(t, changed)
	assert.Less(t, changed, 100)
}

func TestInjectInconsistencies(t *testing.T) {
	clean, err := generator.Generate(2000, 0.2, rng.New(2))
	require.NoError(t, err)

	out, err := generator.InjectInconsistencies(clean, 0.05, rng.New(2))
	require.NoError(t, err)

	for _, col := range schema.InconsistencyColumns {
		s, err := out.Strings(col)
		require.NoError(t, err)
		n := 0
		for _, v := range s.Values() {
			if v == schema.Unknown {
				n++
			}
		}
		assert.InDelta(t, 0.05, float64(n)/2000, 0.02, col)
	}

	tech, _ := out.Strings(schema.TechSupport)
	assert.NotContains(t, tech.Values(), schema.Unknown)
}

func TestCorruptUnsupportedType(t *testing.T) {
	df := dataframe.New(series.New(schema.Gender, []float64{1, 2}, nil))
	_, err := generator.Corrupt(df, []generator.Step{
		{Column: schema.Gender, Op: generator.Inconsistency{Sentinel: schema.Unknown}, Rate: 1},
	}, rng.New(1))
	assert.Error(t, err)
}

func TestDefaultPlanOrder(t *testing.T) {
	clean, err := generator.Generate(10, 0.2, rng.New(1))
	require.NoError(t, err)

	plan := generator.DefaultPlan(clean, generator.Options{MissingRate: 0.1, OutlierRate: 0.2, InconsistencyRate: 0.3})
	require.Len(t, plan, 10+len(schema.OutlierColumns)+len(schema.InconsistencyColumns))

	assert.Equal(t, "missing(Age, 0.100)", plan[0].String())
	assert.Equal(t, schema.TotalCharges, plan[9].Column)
	assert.Equal(t, "outlier", plan[10].Op.Name())
	assert.Equal(t, "inconsistency", plan[len(plan)-1].Op.Name())

	var missing []string
	for _, step := range plan[:10] {
		assert.False(t, schema.IsProtected(step.Column), step.Column)
		missing = append(missing, step.Column)
	}
	assert.Equal(t, clean.Drop(schema.ProtectedColumns...).Columns(), missing)
}
