// Package series provides data structures for column operations
package series

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"golang.org/x/exp/constraints"
)

// Series represents a typed data column with Apache Arrow backend.
// Supported element types are string, int64 and float64.
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values with no nulls
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a new Series where valid[i] == false marks a null cell.
// A nil valid slice means every cell is present.
func NewNullable[T any](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil && len(valid) != len(values) {
		panic(fmt.Sprintf("series %s: %d values but %d validity flags", name, len(values), len(valid)))
	}

	var arr arrow.Array

	// Use type switching to create appropriate Arrow array
	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		arr = builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", values))
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// NullN returns the number of null cells
func (s *Series[T]) NullN() int {
	return s.array.NullN()
}

// Values returns the data as a Go slice. Null cells hold the zero value.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())

	switch arr := s.array.(type) {
	case *array.String:
		if values, ok := any(result).([]string); ok {
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) {
					values[i] = arr.Value(i)
				}
			}
		}
	case *array.Int64:
		if values, ok := any(result).([]int64); ok {
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) {
					values[i] = arr.Value(i)
				}
			}
		}
	case *array.Float64:
		if values, ok := any(result).([]float64); ok {
			for i := 0; i < arr.Len(); i++ {
				if arr.IsValid(i) {
					values[i] = arr.Value(i)
				}
			}
		}
	default:
		panic(fmt.Sprintf("unsupported array type: %T", arr))
	}

	return result
}

// Valid returns the validity mask; entry i is false when cell i is null.
func (s *Series[T]) Valid() []bool {
	valid := make([]bool, s.array.Len())
	for i := range valid {
		valid[i] = s.array.IsValid(i)
	}
	return valid
}

// Value returns the value at the given index
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	}

	return result
}

// GetAsString returns the value at index formatted as a string, or "" for null
func (s *Series[T]) GetAsString(index int) string {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return ""
	}
	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64)
	default:
		return ""
	}
}

// Take returns a new series holding the rows at indices, in that order.
func (s *Series[T]) Take(indices []int, mem memory.Allocator) *Series[T] {
	values := s.Values()
	valid := s.Valid()
	outValues := make([]T, len(indices))
	outValid := make([]bool, len(indices))
	for i, idx := range indices {
		outValues[i] = values[idx]
		outValid[i] = valid[idx]
	}
	return NewNullable(s.name, outValues, outValid, mem)
}

// Rename returns a series sharing the same data under a new name.
func (s *Series[T]) Rename(name string) *Series[T] {
	s.array.Retain()
	return &Series[T]{name: name, array: s.array}
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d, nulls=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len(),
		s.NullN())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}

// Number is the set of element types the numeric helpers accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// Mean returns the mean of values whose valid flag is set, and the number of
// values that contributed. A nil valid slice counts every value.
func Mean[T Number](values []T, valid []bool) (float64, int) {
	var sum float64
	n := 0
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		sum += float64(v)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// Max returns the largest valid value and whether any value was valid.
func Max[T Number](values []T, valid []bool) (T, bool) {
	var best T
	found := false
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}

// Zip combines two float columns cell by cell into a new column named name.
// A cell is null when either input is null or when fn reports false.
func Zip(name string, a, b *Series[float64], fn func(x, y float64) (float64, bool)) (*Series[float64], error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("zip %s: length mismatch %d != %d", name, a.Len(), b.Len())
	}
	av, aok := a.Values(), a.Valid()
	bv, bok := b.Values(), b.Valid()
	values := make([]float64, len(av))
	valid := make([]bool, len(av))
	for i := range av {
		if !aok[i] || !bok[i] {
			continue
		}
		values[i], valid[i] = fn(av[i], bv[i])
	}
	return NewNullable(name, values, valid, nil), nil
}

// Mul is a Zip function returning x*y.
func Mul(x, y float64) (float64, bool) { return x * y, true }

// Div is a Zip function returning x/y, null when y is zero.
func Div(x, y float64) (float64, bool) {
	if y == 0 {
		return 0, false
	}
	return x / y, true
}
