package clean

import (
	"strconv"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/schema"
)

// NullToken stands for a null cell in distinct-value listings.
const NullToken = "NaN"

// Distinct lists the values of one column in order of first appearance.
type Distinct struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// Quality summarises the defects of a table before cleaning.
type Quality struct {
	Rows     int                     `json:"rows"`
	Nulls    []dataframe.ColumnNulls `json:"nulls"`
	Distinct []Distinct              `json:"distinct"`
}

// TotalNulls returns the number of null cells over all columns.
func (q Quality) TotalNulls() int {
	total := 0
	for _, c := range q.Nulls {
		total += c.Nulls
	}
	return total
}

// QualitySummary counts nulls per column and lists the distinct values of the
// columns that receive inconsistent categories.
func QualitySummary(df *dataframe.DataFrame) (Quality, error) {
	q := Quality{Rows: df.Len(), Nulls: df.NullCounts()}
	for _, name := range schema.InconsistencyColumns {
		col, err := df.Strings(name)
		if err != nil {
			return Quality{}, err
		}
		seen := make(map[string]struct{})
		d := Distinct{Column: name}
		for i, v := range col.Values() {
			if col.IsNull(i) {
				v = NullToken
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			d.Values = append(d.Values, v)
		}
		q.Distinct = append(q.Distinct, d)
	}
	return q, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
