// Package generator builds the synthetic customer table and injects the
// data-quality defects the cleaning stage has to deal with.
//
// Generation is table driven: Columns lists every independent column with its
// generator, and each generator draws from its own named stream so columns do
// not depend on each other's draws. Corruption is table driven the same way, as
// a plan of (column, operator) steps.
package generator

import (
	"math/rand/v2"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
)

// ColumnSpec pairs an independent column with its generator.
type ColumnSpec struct {
	Name     string
	Generate func(n int, r *rand.Rand, mem memory.Allocator) dataframe.ISeries
}

// Columns returns the generators of the independent columns, in table order.
func Columns(churnRate float64) []ColumnSpec {
	return []ColumnSpec{
		{schema.CustomerID, sequentialIDs},
		{schema.Age, uniformInt(schema.Age, 18, 80)},
		{schema.Gender, choice(schema.Gender, schema.GenderValues)},
		{schema.ContractType, choice(schema.ContractType, schema.ContractTypeValues)},
		{schema.MonthlyCharges, uniformFloat(schema.MonthlyCharges, 30, 100)},
		{schema.Tenure, uniformInt(schema.Tenure, 1, 72)},
		{schema.TechSupport, choice(schema.TechSupport, schema.YesNoValues)},
		{schema.InternetService, choice(schema.InternetService, schema.InternetServiceValues)},
		{schema.PaperlessBilling, choice(schema.PaperlessBilling, schema.YesNoValues)},
		{schema.PaymentMethod, choice(schema.PaymentMethod, schema.PaymentMethodValues)},
		{schema.Churn, binary(schema.Churn, "Yes", "No", churnRate)},
	}
}

func sequentialIDs(n int, _ *rand.Rand, mem memory.Allocator) dataframe.ISeries {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return series.New(schema.CustomerID, ids, mem)
}

// uniformInt draws whole numbers in [lo, hi), stored as float64 so the column
// can later hold imputed means.
func uniformInt(name string, lo, hi int) func(int, *rand.Rand, memory.Allocator) dataframe.ISeries {
	return func(n int, r *rand.Rand, mem memory.Allocator) dataframe.ISeries {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(lo + r.IntN(hi-lo))
		}
		return series.New(name, values, mem)
	}
}

func uniformFloat(name string, lo, hi float64) func(int, *rand.Rand, memory.Allocator) dataframe.ISeries {
	return func(n int, r *rand.Rand, mem memory.Allocator) dataframe.ISeries {
		values := make([]float64, n)
		for i := range values {
			values[i] = lo + r.Float64()*(hi-lo)
		}
		return series.New(name, values, mem)
	}
}

func choice(name string, domain []string) func(int, *rand.Rand, memory.Allocator) dataframe.ISeries {
	return func(n int, r *rand.Rand, mem memory.Allocator) dataframe.ISeries {
		values := make([]string, n)
		for i := range values {
			values[i] = domain[r.IntN(len(domain))]
		}
		return series.New(name, values, mem)
	}
}

// binary draws positive with probability p.
func binary(name, positive, negative string, p float64) func(int, *rand.Rand, memory.Allocator) dataframe.ISeries {
	return func(n int, r *rand.Rand, mem memory.Allocator) dataframe.ISeries {
		values := make([]string, n)
		for i := range values {
			if r.Float64() < p {
				values[i] = positive
			} else {
				values[i] = negative
			}
		}
		return series.New(name, values, mem)
	}
}
