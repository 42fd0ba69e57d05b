// Package dataframe provides the immutable column table threaded through the
// pipeline stages. Every transforming method returns a new DataFrame and never
// modifies the receiver, so earlier stage outputs stay valid.
package dataframe

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/series"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// ColumnNulls is the null count of one column.
type ColumnNulls struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// New creates a new DataFrame from a slice of ISeries
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, exists := columns[name]; !exists {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (assumes all columns have same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// Float64 returns the named column as a float64 series.
func (df *DataFrame) Float64(name string) (*series.Series[float64], error) {
	return typed[float64](df, name)
}

// Strings returns the named column as a string series.
func (df *DataFrame) Strings(name string) (*series.Series[string], error) {
	return typed[string](df, name)
}

// Int64 returns the named column as an int64 series.
func (df *DataFrame) Int64(name string) (*series.Series[int64], error) {
	return typed[int64](df, name)
}

func typed[T any](df *DataFrame, name string) (*series.Series[T], error) {
	col, ok := df.columns[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("Column", name)
	}
	s, ok := col.(*series.Series[T])
	if !ok {
		return nil, errors.NewUnsupportedTypeError("Column", name, col.DataType().String())
	}
	return s, nil
}

// WithColumn returns a new DataFrame where s replaces the column of the same
// name, or is appended when no such column exists.
func (df *DataFrame) WithColumn(s ISeries) (*DataFrame, error) {
	if df.Width() > 0 && s.Len() != df.Len() {
		return nil, errors.NewValidationError("WithColumn", s.Name(),
			fmt.Sprintf("expected length %d, got %d", df.Len(), s.Len()))
	}

	columns := make(map[string]ISeries, len(df.columns)+1)
	for name, col := range df.columns {
		columns[name] = col
	}
	order := df.Columns()
	if _, exists := columns[s.Name()]; !exists {
		order = append(order, s.Name())
	}
	columns[s.Name()] = s

	return &DataFrame{columns: columns, order: order}, nil
}

// Select returns a new DataFrame with only the specified columns
func (df *DataFrame) Select(names ...string) *DataFrame {
	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(names))

	for _, name := range names {
		if series, exists := df.columns[name]; exists {
			newColumns[name] = series
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool)
	for _, name := range names {
		dropSet[name] = true
	}

	newColumns := make(map[string]ISeries)
	newOrder := make([]string, 0, len(df.order))

	for _, name := range df.order {
		if !dropSet[name] {
			newColumns[name] = df.columns[name]
			newOrder = append(newOrder, name)
		}
	}

	return &DataFrame{
		columns: newColumns,
		order:   newOrder,
	}
}

// Take returns a new DataFrame holding the rows at indices, in that order.
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	n := df.Len()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, errors.NewValidationError("Take", "", fmt.Sprintf("index %d out of bounds [0, %d)", idx, n))
		}
	}

	mem := memory.NewGoAllocator()
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		switch s := df.columns[name].(type) {
		case *series.Series[float64]:
			taken = append(taken, s.Take(indices, mem))
		case *series.Series[string]:
			taken = append(taken, s.Take(indices, mem))
		case *series.Series[int64]:
			taken = append(taken, s.Take(indices, mem))
		default:
			return nil, errors.NewUnsupportedTypeError("Take", name, s.DataType().String())
		}
	}
	return New(taken...), nil
}

// NullCounts returns per-column null counts in column order.
func (df *DataFrame) NullCounts() []ColumnNulls {
	counts := make([]ColumnNulls, 0, len(df.order))
	for _, name := range df.order {
		counts = append(counts, ColumnNulls{Column: name, Nulls: df.columns[name].NullN()})
	}
	return counts
}

// TotalNulls returns the number of null cells across all columns.
func (df *DataFrame) TotalNulls() int {
	total := 0
	for _, col := range df.columns {
		total += col.NullN()
	}
	return total
}

// Equal reports whether both tables hold the same columns, in the same order,
// with identical cells and null positions.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.Len() != other.Len() || strings.Join(df.order, "\x00") != strings.Join(other.order, "\x00") {
		return false
	}
	for _, name := range df.order {
		a, b := df.columns[name], other.columns[name]
		if a.DataType().ID() != b.DataType().ID() {
			return false
		}
		for i := range a.Len() {
			if a.IsNull(i) != b.IsNull(i) || a.GetAsString(i) != b.GetAsString(i) {
				return false
			}
		}
	}
	return true
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Head renders the first n rows as an aligned text table.
func (df *DataFrame) Head(n int) string {
	if n > df.Len() {
		n = df.Len()
	}
	var b strings.Builder
	b.WriteString(strings.Join(df.order, "\t"))
	b.WriteByte('\n')
	for i := range n {
		cells := make([]string, len(df.order))
		for j, name := range df.order {
			col := df.columns[name]
			if col.IsNull(i) {
				cells[j] = "NaN"
				continue
			}
			cells[j] = col.GetAsString(i)
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
