package clean

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/paveg/churnlab/internal/validation"
)

// Encoding maps the values of one column to dense codes 0..k-1.
type Encoding struct {
	Column  string   `json:"column"`
	Classes []string `json:"classes"`
}

// Code returns the code of value, or -1 when value was not seen.
func (e Encoding) Code(value string) int {
	i := sort.SearchStrings(e.Classes, value)
	if i < len(e.Classes) && e.Classes[i] == value {
		return i
	}
	return -1
}

// Encodings holds one Encoding per encoded column, in encoding order.
type Encodings []Encoding

// For returns the encoding of column.
func (e Encodings) For(column string) (Encoding, bool) {
	for _, enc := range e {
		if enc.Column == column {
			return enc, true
		}
	}
	return Encoding{}, false
}

// Encode replaces every categorical column and the churn label with integer
// codes. Codes follow the sorted order of the distinct values in each column,
// and each column is fitted on its own.
func Encode(df *dataframe.DataFrame) (*dataframe.DataFrame, Encodings, error) {
	columns := append(append([]string{}, schema.CategoricalColumns...), schema.Churn)
	out := df
	encodings := make(Encodings, 0, len(columns))

	for _, name := range columns {
		col, err := out.Strings(name)
		if err != nil {
			return nil, nil, err
		}
		if col.NullN() > 0 {
			return nil, nil, errors.NewValidationError("Encode", name,
				fmt.Sprintf("column has %d null values", col.NullN()))
		}

		enc := fitEncoding(name, col.Values())
		codes := make([]int64, col.Len())
		for i, v := range col.Values() {
			codes[i] = int64(enc.Code(v))
		}
		if out, err = out.WithColumn(series.New(name, codes, nil)); err != nil {
			return nil, nil, err
		}
		encodings = append(encodings, enc)
	}
	return out, encodings, nil
}

func fitEncoding(column string, values []string) Encoding {
	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	return Encoding{Column: column, Classes: classes}
}

// AddInteractions appends MonthlyCharges_Tenure and Age_Tenure.
func AddInteractions(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	tenure, err := df.Float64(schema.Tenure)
	if err != nil {
		return nil, err
	}

	out := df
	for _, term := range []struct{ name, factor string }{
		{schema.MonthlyChargesTenure, schema.MonthlyCharges},
		{schema.AgeTenure, schema.Age},
	} {
		factor, err := out.Float64(term.factor)
		if err != nil {
			return nil, err
		}
		product, err := series.Zip(term.name, factor, tenure, series.Mul)
		if err != nil {
			return nil, errors.NewInternalError("AddInteractions", err)
		}
		if out, err = out.WithColumn(product); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Matrix returns the named columns as a row-major feature matrix. Float and
// integer columns are accepted; any null is an error.
func Matrix(df *dataframe.DataFrame, columns []string) ([][]float64, error) {
	if err := validation.NewCompoundValidator(
		validation.NewEmptyTableValidator(df, "Matrix"),
		validation.NewColumnValidator(df, "Matrix", columns...),
	).Validate(); err != nil {
		return nil, err
	}
	features := df.Select(columns...)

	n := features.Len()
	width := features.Width()
	x := make([][]float64, n)
	flat := make([]float64, n*width)
	for i := range x {
		x[i] = flat[i*width : (i+1)*width]
	}

	for j, name := range features.Columns() {
		values, err := numeric(features, name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			x[i][j] = v
		}
	}
	return x, nil
}

// Labels returns an encoded label column as class indices.
func Labels(df *dataframe.DataFrame, column string) ([]int, error) {
	col, err := df.Int64(column)
	if err != nil {
		return nil, err
	}
	if col.NullN() > 0 {
		return nil, errors.NewValidationError("Labels", column, "label column has nulls")
	}
	labels := make([]int, col.Len())
	for i, v := range col.Values() {
		labels[i] = int(v)
	}
	return labels, nil
}

func numeric(df *dataframe.DataFrame, name string) ([]float64, error) {
	col, ok := df.Column(name)
	if !ok {
		return nil, errors.NewColumnNotFoundError("Matrix", name)
	}
	if col.NullN() > 0 {
		return nil, errors.NewValidationError("Matrix", name,
			"column has "+strconv.Itoa(col.NullN())+" null values")
	}

	switch s := col.(type) {
	case *series.Series[float64]:
		return s.Values(), nil
	case *series.Series[int64]:
		values := make([]float64, s.Len())
		for i, v := range s.Values() {
			values[i] = float64(v)
		}
		return values, nil
	default:
		return nil, errors.NewUnsupportedTypeError("Matrix", name, col.DataType().String())
	}
}
