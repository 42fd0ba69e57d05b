package io

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/churnlab/internal/dataframe"
)

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table := toArrowTable(df)
	defer table.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.batchSize())),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(memory.NewGoAllocator()))

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	if err := writer.WriteTable(table, int64(w.batchSize())); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

func (w *ParquetWriter) batchSize() int {
	if w.options.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return w.options.BatchSize
}

func codec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// toArrowTable wraps the column arrays, validity bitmaps included, in an
// Arrow table. The caller releases the table.
func toArrowTable(df *dataframe.DataFrame) arrow.Table {
	names := df.Columns()
	fields := make([]arrow.Field, 0, len(names))
	columns := make([]arrow.Column, 0, len(names))

	for _, name := range names {
		col, _ := df.Column(name)
		arr := col.Array()
		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		chunked.Release()
		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	table := array.NewTable(schema, columns, int64(df.Len()))
	for i := range columns {
		columns[i].Release()
	}
	return table
}
