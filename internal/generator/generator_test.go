package generator_test

import (
	"testing"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/generator"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	df, err := generator.Generate(500, 0.2, rng.New(42))
	require.NoError(t, err)

	assert.Equal(t, 500, df.Len())
	assert.Equal(t, []string{
		schema.CustomerID, schema.Age, schema.Gender, schema.ContractType,
		schema.MonthlyCharges, schema.Tenure, schema.TechSupport, schema.InternetService,
		schema.PaperlessBilling, schema.PaymentMethod, schema.Churn, schema.TotalCharges,
	}, df.Columns())
	assert.Zero(t, df.TotalNulls())

	ids, err := df.Int64(schema.CustomerID)
	require.NoError(t, err)
	for i, id := range ids.Values() {
		assert.Equal(t, int64(i+1), id)
	}

	age, err := df.Float64(schema.Age)
	require.NoError(t, err)
	for _, v := range age.Values() {
		assert.GreaterOrEqual(t, v, 18.0)
		assert.Less(t, v, 80.0)
		assert.Equal(t, float64(int(v)), v)
	}

	tenure, err := df.Float64(schema.Tenure)
	require.NoError(t, err)
	monthly, err := df.Float64(schema.MonthlyCharges)
	require.NoError(t, err)
	total, err := df.Float64(schema.TotalCharges)
	require.NoError(t, err)
	for i, v := range tenure.Values() {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.Less(t, v, 72.0)
		assert.GreaterOrEqual(t, monthly.Value(i), 30.0)
		assert.Less(t, monthly.Value(i), 100.0)
		assert.InDelta(t, monthly.Value(i)*v, total.Value(i), 1e-9)
	}

	domains := map[string][]string{
		schema.Gender:           schema.GenderValues,
		schema.ContractType:     schema.ContractTypeValues,
		schema.TechSupport:      schema.YesNoValues,
		schema.InternetService:  schema.InternetServiceValues,
		schema.PaperlessBilling: schema.YesNoValues,
		schema.PaymentMethod:    schema.PaymentMethodValues,
		schema.Churn:            schema.YesNoValues,
	}
	for col, domain := range domains {
		s, err := df.Strings(col)
		require.NoError(t, err)
		for _, v := range s.Values() {
			assert.Contains(t, domain, v, col)
		}
	}
}

func TestGenerateChurnRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want func(t *testing.T, yes, n int)
	}{
		{"never", 0, func(t *testing.T, yes, _ int) { assert.Zero(t, yes) }},
		{"always", 1, func(t *testing.T, yes, n int) { assert.Equal(t, n, yes) }},
		{"fifth", 0.2, func(t *testing.T, yes, n int) {
			assert.InDelta(t, 0.2, float64(yes)/float64(n), 0.03)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := generator.Generate(2000, tt.rate, rng.New(7))
			require.NoError(t, err)
			churn, err := df.Strings(schema.Churn)
			require.NoError(t, err)
			yes := 0
			for _, v := range churn.Values() {
				if v == "Yes" {
					yes++
				}
			}
			tt.want(t, yes, df.Len())
		})
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name string
		n    int
		rate float64
	}{
		{"zero rows", 0, 0.2},
		{"negative rows", -5, 0.2},
		{"rate above one", 10, 1.5},
		{"negative rate", 10, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df, err := generator.Generate(tt.n, tt.rate, rng.New(1))
			assert.Error(t, err)
			assert.Nil(t, df)
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := generator.Generate(300, 0.2, rng.New(99))
	require.NoError(t, err)
	b, err := generator.Generate(300, 0.2, rng.New(99))
	require.NoError(t, err)
	c, err := generator.Generate(300, 0.2, rng.New(100))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestDerive(t *testing.T) {
	df := dataframe.New(
		series.NewNullable(schema.MonthlyCharges, []float64{50, 60, 70, 80}, []bool{true, true, false, true}, nil),
		series.NewNullable(schema.Tenure, []float64{10, 0, 5, 4}, []bool{true, true, true, false}, nil),
		series.NewNullable(schema.TotalCharges, []float64{500, 0, 350, 320}, []bool{true, true, true, true}, nil),
	)

	out, err := generator.Derive(df)
	require.NoError(t, err)
	assert.Equal(t, 3, df.Width(), "input is not modified")

	avg, err := out.Float64(schema.AverageMonthlyCharges)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false}, avg.Valid())
	assert.InDelta(t, 50.0, avg.Value(0), 1e-9)
	assert.InDelta(t, 70.0, avg.Value(2), 1e-9)

	clv, err := out.Float64(schema.CustomerLifetimeValue)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, false}, clv.Valid())
	assert.InDelta(t, 500.0, clv.Value(0), 1e-9)
	assert.InDelta(t, 0.0, clv.Value(1), 1e-9)
}

func TestDeriveMissingColumn(t *testing.T) {
	df := dataframe.New(series.New(schema.Tenure, []float64{1}, nil))
	_, err := generator.Derive(df)
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	opts := generator.Options{
		Records:           5000,
		ChurnRate:         0.2,
		MissingRate:       0.05,
		OutlierRate:       0.01,
		InconsistencyRate: 0.01,
	}
	df, err := generator.Build(opts, rng.New(42))
	require.NoError(t, err)
	assert.Equal(t, 5000, df.Len())
	assert.Equal(t, 14, df.Width())

	for _, col := range schema.ProtectedColumns {
		c, ok := df.Column(col)
		require.True(t, ok)
		assert.Zero(t, c.NullN(), col)
	}

	for _, col := range []string{schema.Age, schema.Gender, schema.PaymentMethod, schema.TechSupport} {
		c, ok := df.Column(col)
		require.True(t, ok)
		assert.InDelta(t, 0.05, float64(c.NullN())/5000, 0.02, col)
	}

	gender, err := df.Strings(schema.Gender)
	require.NoError(t, err)
	unknown := 0
	for i, v := range gender.Values() {
		if !gender.IsNull(i) && v == schema.Unknown {
			unknown++
		}
	}
	assert.Positive(t, unknown)
}

func TestBuildNoCorruption(t *testing.T) {
	df, err := generator.Build(generator.Options{Records: 200, ChurnRate: 0.3}, rng.New(3))
	require.NoError(t, err)

	for _, col := range df.Columns() {
		if col == schema.AverageMonthlyCharges {
			continue
		}
		c, _ := df.Column(col)
		assert.Zero(t, c.NullN(), col)
	}
	// tenure is at least one, so the ratio is defined everywhere
	avg, _ := df.Column(schema.AverageMonthlyCharges)
	assert.Zero(t, avg.NullN())
}

func TestBuildInvalidRate(t *testing.T) {
	_, err := generator.Build(generator.Options{Records: 10, ChurnRate: 0.2, MissingRate: 2}, rng.New(1))
	assert.Error(t, err)
}
