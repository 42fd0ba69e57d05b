package generator

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/paveg/churnlab/internal/validation"
)

// Options configures a dataset build.
type Options struct {
	Records           int
	ChurnRate         float64
	MissingRate       float64
	OutlierRate       float64
	InconsistencyRate float64
}

// Validate checks the size and every rate before anything is generated.
func (o Options) Validate() error {
	return validation.NewCompoundValidator(
		validation.NewPositiveValidator("size", o.Records, "Generate"),
		validation.NewRateValidator("churn rate", o.ChurnRate, "Generate"),
		validation.NewRateValidator("missing rate", o.MissingRate, "Corrupt"),
		validation.NewRateValidator("outlier rate", o.OutlierRate, "Corrupt"),
		validation.NewRateValidator("inconsistency rate", o.InconsistencyRate, "Corrupt"),
	).Validate()
}

// Generate produces n clean rows: the independent columns followed by
// TotalCharges. It fails fast on n <= 0 or a churn rate outside [0, 1].
func Generate(n int, churnRate float64, src *rng.Source) (*dataframe.DataFrame, error) {
	if err := validation.NewCompoundValidator(
		validation.NewPositiveValidator("size", n, "Generate"),
		validation.NewRateValidator("churn rate", churnRate, "Generate"),
	).Validate(); err != nil {
		return nil, err
	}

	mem := memory.NewGoAllocator()
	specs := Columns(churnRate)
	cols := make([]dataframe.ISeries, 0, len(specs)+1)
	for _, spec := range specs {
		cols = append(cols, spec.Generate(n, src.Stream("generate/"+spec.Name), mem))
	}
	df := dataframe.New(cols...)

	total, err := product(df, schema.TotalCharges, schema.MonthlyCharges, schema.Tenure)
	if err != nil {
		return nil, err
	}
	return df.WithColumn(total)
}

// Derive appends AverageMonthlyCharges and CustomerLifetimeValue. A null
// operand, or a zero tenure, yields a null cell.
func Derive(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := validation.ValidateColumns(df, "Derive", schema.TotalCharges, schema.MonthlyCharges, schema.Tenure); err != nil {
		return nil, err
	}

	avg, err := ratio(df, schema.AverageMonthlyCharges, schema.TotalCharges, schema.Tenure)
	if err != nil {
		return nil, err
	}
	out, err := df.WithColumn(avg)
	if err != nil {
		return nil, err
	}

	clv, err := product(out, schema.CustomerLifetimeValue, schema.MonthlyCharges, schema.Tenure)
	if err != nil {
		return nil, err
	}
	return out.WithColumn(clv)
}

// Build runs generation, the default corruption plan and derivation.
func Build(opts Options, src *rng.Source) (*dataframe.DataFrame, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	df, err := Generate(opts.Records, opts.ChurnRate, src)
	if err != nil {
		return nil, err
	}

	df, err = Corrupt(df, DefaultPlan(df, opts), src)
	if err != nil {
		return nil, err
	}

	return Derive(df)
}

// product returns a*b as a new column named name; null when either is null.
func product(df *dataframe.DataFrame, name, a, b string) (dataframe.ISeries, error) {
	return combine(df, name, a, b, series.Mul)
}

// ratio returns num/den as a new column named name; null when den is zero.
func ratio(df *dataframe.DataFrame, name, num, den string) (dataframe.ISeries, error) {
	return combine(df, name, num, den, series.Div)
}

func combine(
	df *dataframe.DataFrame, name, a, b string, fn func(x, y float64) (float64, bool),
) (dataframe.ISeries, error) {
	left, err := df.Float64(a)
	if err != nil {
		return nil, err
	}
	right, err := df.Float64(b)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateLength(left.Len(), right.Len(), "Derive", name); err != nil {
		return nil, err
	}
	return series.Zip(name, left, right, fn)
}
