// Package io exports pipeline tables to CSV and Parquet files.
//
// Writers are null-aware: a null cell is written as an empty CSV field and
// as a Parquet null, so a corrupted dataset round-trips with its gaps intact.
package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/errors"
)

const (
	// DefaultBatchSize is the default row batch size for Parquet writes
	DefaultBatchSize = 1000
)

// DataWriter defines the interface for writing data to various destinations
type DataWriter interface {
	// Write writes the DataFrame to the destination
	Write(df *dataframe.DataFrame) error
}

// CSVOptions contains configuration options for CSV output
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Header indicates whether the first row contains headers
	Header bool
	// NullValue is written in place of null cells
	NullValue string
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter: ',',
		Header:    true,
	}
}

// ParquetOptions contains configuration options for Parquet output
type ParquetOptions struct {
	// Compression is one of snappy, gzip, zstd or uncompressed
	Compression string
	// BatchSize is the number of rows written per row group batch
	BatchSize int
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// CSVWriter writes DataFrames as CSV
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{writer: writer, options: options}
}

// ParquetWriter writes DataFrames as Parquet
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
}

// NewParquetWriter creates a new Parquet writer
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{writer: writer, options: options}
}

// WriteFile writes df to path, choosing the format from the extension
// (.csv or .parquet).
func WriteFile(path string, df *dataframe.DataFrame) (err error) {
	var newWriter func(io.Writer) DataWriter
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		newWriter = func(w io.Writer) DataWriter { return NewCSVWriter(w, DefaultCSVOptions()) }
	case ".parquet":
		newWriter = func(w io.Writer) DataWriter { return NewParquetWriter(w, DefaultParquetOptions()) }
	default:
		return errors.NewValidationError("WriteFile", "", fmt.Sprintf("unsupported file extension %q", filepath.Ext(path)))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	return newWriter(f).Write(df)
}
