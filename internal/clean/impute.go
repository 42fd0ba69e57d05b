// Package clean imputes, encodes and extends the corrupted customer table so
// that every feature is a complete numeric column.
package clean

import (
	"sort"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/paveg/churnlab/internal/validation"
)

// Fill records how one column's nulls were replaced.
type Fill struct {
	Column   string `json:"column"`
	Strategy string `json:"strategy"`
	Value    string `json:"value"`
	Filled   int    `json:"filled"`
}

// ImputeReport lists the fill applied to every imputed column, in column order.
type ImputeReport struct {
	Fills []Fill `json:"fills"`
}

// Filled returns the total number of cells replaced.
func (r ImputeReport) Filled() int {
	total := 0
	for _, f := range r.Fills {
		total += f.Filled
	}
	return total
}

// Impute replaces nulls in the numeric columns by the column mean and nulls in
// the categorical columns by the column mode. Sentinel categories and outliers
// are ordinary values here and take part in the statistics.
func Impute(df *dataframe.DataFrame) (*dataframe.DataFrame, ImputeReport, error) {
	if err := validation.ValidateNotEmpty(df, "Impute"); err != nil {
		return nil, ImputeReport{}, err
	}
	var report ImputeReport
	out := df

	for _, name := range schema.NumericColumns {
		col, err := out.Float64(name)
		if err != nil {
			return nil, ImputeReport{}, err
		}
		filled, fill, err := fillMean(col)
		if err != nil {
			return nil, ImputeReport{}, err
		}
		report.Fills = append(report.Fills, fill)
		if fill.Filled == 0 {
			continue
		}
		if out, err = out.WithColumn(filled); err != nil {
			return nil, ImputeReport{}, err
		}
	}

	for _, name := range schema.CategoricalColumns {
		col, err := out.Strings(name)
		if err != nil {
			return nil, ImputeReport{}, err
		}
		filled, fill, err := fillMode(col)
		if err != nil {
			return nil, ImputeReport{}, err
		}
		report.Fills = append(report.Fills, fill)
		if fill.Filled == 0 {
			continue
		}
		if out, err = out.WithColumn(filled); err != nil {
			return nil, ImputeReport{}, err
		}
	}

	return out, report, nil
}

func fillMean(col *series.Series[float64]) (*series.Series[float64], Fill, error) {
	values, valid := col.Values(), col.Valid()
	mean, observed := series.Mean(values, valid)
	if observed == 0 {
		return nil, Fill{}, errors.NewValidationError("Impute", col.Name(), "column has no observed values")
	}

	fill := Fill{Column: col.Name(), Strategy: "mean", Value: formatFloat(mean), Filled: len(values) - observed}
	for i := range values {
		if !valid[i] {
			values[i] = mean
		}
	}
	return series.New(col.Name(), values, nil), fill, nil
}

func fillMode(col *series.Series[string]) (*series.Series[string], Fill, error) {
	values, valid := col.Values(), col.Valid()
	mode, ok := Mode(values, valid)
	if !ok {
		return nil, Fill{}, errors.NewValidationError("Impute", col.Name(), "column has no observed values")
	}

	fill := Fill{Column: col.Name(), Strategy: "mode", Value: mode}
	for i := range values {
		if !valid[i] {
			values[i] = mode
			fill.Filled++
		}
	}
	return series.New(col.Name(), values, nil), fill, nil
}

// Mode returns the most frequent valid value. Ties go to the smallest value in
// byte order.
func Mode(values []string, valid []bool) (string, bool) {
	counts := make(map[string]int)
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		counts[v]++
	}
	if len(counts) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}
