package generator

import (
	"fmt"

	"github.com/paveg/churnlab/internal/dataframe"
	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/rng"
	"github.com/paveg/churnlab/internal/schema"
	"github.com/paveg/churnlab/internal/series"
	"github.com/paveg/churnlab/internal/validation"
)

// Operator rewrites the masked cells of one column.
type Operator interface {
	Name() string
	Apply(col dataframe.ISeries, mask []bool) (dataframe.ISeries, error)
}

// Step applies Op to Column on a random fraction Rate of the rows.
type Step struct {
	Column string
	Op     Operator
	Rate   float64
}

// Missing turns masked cells into nulls.
type Missing struct{}

// Outlier replaces masked cells with Factor times the column maximum.
type Outlier struct {
	Factor float64
}

// Inconsistency replaces masked cells with a sentinel category.
type Inconsistency struct {
	Sentinel string
}

// OutlierFactor scales the observed maximum into an outlier.
const OutlierFactor = 10

// DefaultPlan returns the standard corruption sequence for df: missing values
// on every non-protected column, then outliers, then Unknown categories.
func DefaultPlan(df *dataframe.DataFrame, opts Options) []Step {
	plan := missingPlan(df, opts.MissingRate)
	for _, col := range schema.OutlierColumns {
		plan = append(plan, Step{Column: col, Op: Outlier{Factor: OutlierFactor}, Rate: opts.OutlierRate})
	}
	for _, col := range schema.InconsistencyColumns {
		plan = append(plan, Step{Column: col, Op: Inconsistency{Sentinel: schema.Unknown}, Rate: opts.InconsistencyRate})
	}
	return plan
}

// Corrupt applies each step in order. Every call takes a fresh pass of src
// and the mask of a step comes from the pass stream "<operator>/<column>", so
// a second call on the same source hits new rows while a fresh source with
// the same seed replays the same sequence of calls.
func Corrupt(df *dataframe.DataFrame, plan []Step, src *rng.Source) (*dataframe.DataFrame, error) {
	pass := src.Next("corrupt")
	out := df
	for _, step := range plan {
		if err := validation.ValidateRate(step.Op.Name()+" rate", step.Rate, step.Op.Name()); err != nil {
			return nil, err
		}
		col, ok := out.Column(step.Column)
		if !ok {
			return nil, errors.NewColumnNotFoundError(step.Op.Name(), step.Column)
		}
		if step.Rate == 0 {
			continue
		}
		mask := rng.Mask(pass.Streamf("%s/%s", step.Op.Name(), step.Column), col.Len(), step.Rate)
		corrupted, err := step.Op.Apply(col, mask)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(corrupted); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// InjectMissing nulls a fraction rate of every non-protected column.
func InjectMissing(df *dataframe.DataFrame, rate float64, src *rng.Source) (*dataframe.DataFrame, error) {
	return Corrupt(df, missingPlan(df, rate), src)
}

func missingPlan(df *dataframe.DataFrame, rate float64) []Step {
	targets := df.Drop(schema.ProtectedColumns...).Columns()
	plan := make([]Step, 0, len(targets))
	for _, col := range targets {
		plan = append(plan, Step{Column: col, Op: Missing{}, Rate: rate})
	}
	return plan
}

// InjectOutliers scales a fraction rate of the outlier columns.
func InjectOutliers(df *dataframe.DataFrame, rate float64, src *rng.Source) (*dataframe.DataFrame, error) {
	plan := make([]Step, 0, len(schema.OutlierColumns))
	for _, col := range schema.OutlierColumns {
		plan = append(plan, Step{Column: col, Op: Outlier{Factor: OutlierFactor}, Rate: rate})
	}
	return Corrupt(df, plan, src)
}

// InjectInconsistencies writes Unknown into a fraction rate of the
// inconsistency columns.
func InjectInconsistencies(df *dataframe.DataFrame, rate float64, src *rng.Source) (*dataframe.DataFrame, error) {
	plan := make([]Step, 0, len(schema.InconsistencyColumns))
	for _, col := range schema.InconsistencyColumns {
		plan = append(plan, Step{Column: col, Op: Inconsistency{Sentinel: schema.Unknown}, Rate: rate})
	}
	return Corrupt(df, plan, src)
}

// Name implements Operator.
func (Missing) Name() string { return "missing" }

// Apply implements Operator.
func (Missing) Apply(col dataframe.ISeries, mask []bool) (dataframe.ISeries, error) {
	switch s := col.(type) {
	case *series.Series[float64]:
		return series.NewNullable(s.Name(), s.Values(), clearMasked(s.Valid(), mask), nil), nil
	case *series.Series[string]:
		return series.NewNullable(s.Name(), s.Values(), clearMasked(s.Valid(), mask), nil), nil
	case *series.Series[int64]:
		return series.NewNullable(s.Name(), s.Values(), clearMasked(s.Valid(), mask), nil), nil
	default:
		return nil, errors.NewUnsupportedTypeError("missing", col.Name(), col.DataType().String())
	}
}

func clearMasked(valid, mask []bool) []bool {
	for i, m := range mask {
		if m {
			valid[i] = false
		}
	}
	return valid
}

// Name implements Operator.
func (Outlier) Name() string { return "outlier" }

// Apply implements Operator. The maximum is taken over non-null cells before
// any cell of this step is replaced; masked null cells become outliers too.
func (o Outlier) Apply(col dataframe.ISeries, mask []bool) (dataframe.ISeries, error) {
	s, ok := col.(*series.Series[float64])
	if !ok {
		return nil, errors.NewUnsupportedTypeError("outlier", col.Name(), col.DataType().String())
	}
	values, valid := s.Values(), s.Valid()
	maxVal, found := series.Max(values, valid)
	if !found {
		return col, nil
	}
	for i, m := range mask {
		if m {
			values[i] = maxVal * o.Factor
			valid[i] = true
		}
	}
	return series.NewNullable(s.Name(), values, valid, nil), nil
}

// Name implements Operator.
func (Inconsistency) Name() string { return "inconsistency" }

// Apply implements Operator.
func (c Inconsistency) Apply(col dataframe.ISeries, mask []bool) (dataframe.ISeries, error) {
	s, ok := col.(*series.Series[string])
	if !ok {
		return nil, errors.NewUnsupportedTypeError("inconsistency", col.Name(), col.DataType().String())
	}
	values, valid := s.Values(), s.Valid()
	for i, m := range mask {
		if m {
			values[i] = c.Sentinel
			valid[i] = true
		}
	}
	return series.NewNullable(s.Name(), values, valid, nil), nil
}

// String renders a step for logs.
func (s Step) String() string {
	return fmt.Sprintf("%s(%s, %.3f)", s.Op.Name(), s.Column, s.Rate)
}
