package testutil_test

import (
	"testing"

	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomerTable(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		df := testutil.CreateCustomerTable(nil)

		assert.Equal(t, 8, df.Len())
		assert.Equal(t, 14, df.Width())
		testutil.AssertNoNulls(t, df)
	})

	t.Run("with nulls", func(t *testing.T) {
		df := testutil.CreateCustomerTable(nil, testutil.WithNulls())

		for _, c := range df.NullCounts() {
			if schema.IsProtected(c.Column) {
				assert.Zero(t, c.Nulls, c.Column)
			} else {
				assert.Equal(t, 2, c.Nulls, c.Column)
			}
		}
	})

	t.Run("custom row count without derived columns", func(t *testing.T) {
		df := testutil.CreateCustomerTable(nil, testutil.WithRowCount(30), testutil.WithoutDerived())

		assert.Equal(t, 30, df.Len())
		assert.False(t, df.HasColumn(schema.AverageMonthlyCharges))
	})

	t.Run("checked allocator", func(t *testing.T) {
		mem := testutil.SetupMemoryTest(t)
		df := testutil.CreateCustomerTable(mem.Allocator, testutil.WithRowCount(3))
		require.Equal(t, 3, df.Len())
		for _, name := range df.Columns() {
			col, _ := df.Column(name)
			col.Release()
		}
		mem.Release()
	})
}

func TestFastConfig(t *testing.T) {
	cfg := testutil.FastConfig()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Grids.RandomForest.NEstimators, 1)
}

func TestSeparableData(t *testing.T) {
	x, y := testutil.SeparableData(100)
	require.Len(t, x, 100)
	positives := 0
	for i := range x {
		assert.Len(t, x[i], 2)
		if y[i] == 1 {
			positives++
			assert.Greater(t, x[i][0], 0.5)
		}
	}
	assert.Positive(t, positives)
	assert.Less(t, positives, 100)
}

func TestAssertDataFrameEqual(t *testing.T) {
	a := testutil.CreateCustomerTable(nil, testutil.WithNulls())
	b := testutil.CreateCustomerTable(nil, testutil.WithNulls())
	testutil.AssertDataFrameEqual(t, a, b)
}
