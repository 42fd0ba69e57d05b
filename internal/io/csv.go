package io

import (
	"encoding/csv"
	"fmt"

	"github.com/paveg/churnlab/internal/dataframe"
)

// Write writes the DataFrame to CSV format
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	columns := df.Columns()
	if w.options.Header {
		if err := csvWriter.Write(columns); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	series := make([]dataframe.ISeries, len(columns))
	for j, name := range columns {
		series[j], _ = df.Column(name)
	}

	row := make([]string, len(columns))
	for i := 0; i < df.Len(); i++ {
		for j, col := range series {
			if col.IsNull(i) {
				row[j] = w.options.NullValue
				continue
			}
			row[j] = col.GetAsString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
