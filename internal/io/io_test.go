package io_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/io"
	"github.com/paveg/churnlab/internal/series"
	"github.com/paveg/churnlab/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTable(mem memory.Allocator) *dataframe.DataFrame {
	return dataframe.New(
		series.NewNullable("Age", []float64{34, 0, 51.5}, []bool{true, false, true}, mem),
		series.NewNullable("Gender", []string{"Male", "", "Unknown"}, []bool{true, false, true}, mem),
		series.New("Churn", []int64{1, 0, 1}, mem),
	)
}

func TestCSVWriter(t *testing.T) {
	tests := []struct {
		name     string
		options  io.CSVOptions
		expected string
	}{
		{
			name:     "default options",
			options:  io.DefaultCSVOptions(),
			expected: "Age,Gender,Churn\n34,Male,1\n,,0\n51.5,Unknown,1\n",
		},
		{
			name:     "null token without header",
			options:  io.CSVOptions{Delimiter: ';', NullValue: "NaN"},
			expected: "34;Male;1\nNaN;NaN;0\n51.5;Unknown;1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := io.NewCSVWriter(&buf, tt.options).Write(smallTable(memory.NewGoAllocator()))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestParquetWriterPreservesNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := testutil.CreateCustomerTable(mem, testutil.WithNulls())

	var buf bytes.Buffer
	require.NoError(t, io.NewParquetWriter(&buf, io.DefaultParquetOptions()).Write(df))

	pqReader, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, mem)
	require.NoError(t, err)

	table, err := arrowReader.ReadTable(context.Background())
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(df.Len()), table.NumRows())
	require.Equal(t, int64(df.Width()), table.NumCols())

	nulls := 0
	for i := 0; i < int(table.NumCols()); i++ {
		col := table.Column(i)
		assert.Equal(t, df.Columns()[i], col.Name())
		nulls += col.Data().NullN()
	}
	assert.Equal(t, df.TotalNulls(), nulls)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	df := smallTable(memory.NewGoAllocator())

	csvPath := filepath.Join(dir, "nested", "dataset.csv")
	require.NoError(t, io.WriteFile(csvPath, df))

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 4)
	assert.Equal(t, []string{"Age", "Gender", "Churn"}, records[0])

	parquetPath := filepath.Join(dir, "dataset.parquet")
	require.NoError(t, io.WriteFile(parquetPath, df))
	info, err := os.Stat(parquetPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	err = io.WriteFile(filepath.Join(dir, "dataset.xlsx"), df)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file extension")
}
