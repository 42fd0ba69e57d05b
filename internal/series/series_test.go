package series_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/churnlab/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_New(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := series.New("Age", []float64{18, 42, 79}, mem)
	defer s.Release()

	assert.Equal(t, "Age", s.Name())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 0, s.NullN())
	assert.Equal(t, arrow.PrimitiveTypes.Float64, s.DataType())
	assert.Equal(t, []float64{18, 42, 79}, s.Values())
	assert.InDelta(t, 42.0, s.Value(1), 1e-12)
}

func TestSeries_Nullable(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := series.NewNullable("Gender", []string{"Male", "", "Female"}, []bool{true, false, true}, mem)
	defer s.Release()

	assert.Equal(t, 1, s.NullN())
	assert.True(t, s.IsNull(1))
	assert.Equal(t, []bool{true, false, true}, s.Valid())
	assert.Equal(t, "", s.GetAsString(1))
	assert.Equal(t, "Female", s.GetAsString(2))
	assert.Equal(t, "", s.Value(1))
}

func TestSeries_NullableLengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		series.NewNullable("x", []int64{1, 2}, []bool{true}, nil)
	})
}

func TestSeries_GetAsString(t *testing.T) {
	ids := series.New("CustomerID", []int64{1, 2}, nil)
	charges := series.New("MonthlyCharges", []float64{29.5}, nil)

	assert.Equal(t, "2", ids.GetAsString(1))
	assert.Equal(t, "29.5", charges.GetAsString(0))
	assert.Equal(t, "", charges.GetAsString(5))
}

func TestSeries_Take(t *testing.T) {
	s := series.NewNullable("Tenure", []float64{1, 2, 3, 4}, []bool{true, true, false, true}, nil)

	taken := s.Take([]int{3, 2, 0}, nil)
	require.Equal(t, 3, taken.Len())
	assert.Equal(t, []float64{4, 0, 1}, taken.Values())
	assert.Equal(t, []bool{true, false, true}, taken.Valid())
	assert.Equal(t, "Tenure", taken.Name())
}

func TestSeries_Rename(t *testing.T) {
	s := series.New("MonthlyCharges", []float64{1, 2}, nil)
	r := s.Rename("CustomerLifetimeValue")

	assert.Equal(t, "CustomerLifetimeValue", r.Name())
	assert.Equal(t, s.Values(), r.Values())
}

func TestMean(t *testing.T) {
	mean, n := series.Mean([]float64{1, 2, 3, 100}, []bool{true, true, true, false})
	assert.InDelta(t, 2.0, mean, 1e-12)
	assert.Equal(t, 3, n)

	mean, n = series.Mean([]int64{2, 4}, nil)
	assert.InDelta(t, 3.0, mean, 1e-12)
	assert.Equal(t, 2, n)

	_, n = series.Mean([]float64{1}, []bool{false})
	assert.Zero(t, n)
}

func TestMax(t *testing.T) {
	maxVal, ok := series.Max([]float64{5, 9, 3}, []bool{true, false, true})
	assert.True(t, ok)
	assert.InDelta(t, 5.0, maxVal, 1e-12)

	_, ok = series.Max([]float64{}, nil)
	assert.False(t, ok)
}
