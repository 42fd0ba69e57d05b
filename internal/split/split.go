// Package split partitions labelled rows into train, validation and test sets
// and into cross-validation folds, keeping class proportions in every part.
package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/paveg/churnlab/internal/errors"
	"github.com/paveg/churnlab/internal/validation"
)

// Ratios are the fractions of rows assigned to each partition.
type Ratios struct {
	Train      float64
	Validation float64
	Test       float64
}

// Partition holds row indices of the three parts. Each part is sorted.
type Partition struct {
	Train      []int
	Validation []int
	Test       []int
}

// Validate checks that each ratio is in (0, 1) and that they sum to 1.
func (r Ratios) Validate() error {
	for _, v := range []float64{r.Train, r.Validation, r.Test} {
		if !(v > 0 && v < 1) {
			return errors.NewInvalidInputError("Split", fmt.Sprintf("ratio %g must be between 0 and 1 exclusive", v))
		}
	}
	if sum := r.Train + r.Validation + r.Test; math.Abs(sum-1) > 1e-9 {
		return errors.NewInvalidInputError("Split", fmt.Sprintf("ratios must sum to 1, got %g", sum))
	}
	return nil
}

// Sizes returns the number of rows in each part for n rows. The holdout is
// rounded up, then split between test (rounded up) and validation.
func (r Ratios) Sizes(n int) (train, validation, test int) {
	holdout := ceil((r.Validation + r.Test) * float64(n))
	train = n - holdout
	test = ceil(r.Test / (r.Validation + r.Test) * float64(holdout))
	validation = holdout - test
	return train, validation, test
}

// ceil absorbs floating point noise such as 0.2*200 = 40.000000000000004.
func ceil(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

// Stratified shuffles the rows of each class with r and deals them into the
// three parts so that every part holds the class proportions of labels, up to
// rounding. Part sizes are exact.
func Stratified(labels []int, ratios Ratios, r *rand.Rand) (Partition, error) {
	if err := ratios.Validate(); err != nil {
		return Partition{}, err
	}
	n := len(labels)
	if err := validation.ValidatePositive("rows", n, "Split"); err != nil {
		return Partition{}, err
	}
	train, val, test := ratios.Sizes(n)
	if train == 0 || val == 0 || test == 0 {
		return Partition{}, errors.NewInvalidInputError("Split",
			fmt.Sprintf("%d rows are too few for ratios %g/%g/%g", n, ratios.Train, ratios.Validation, ratios.Test))
	}

	classes := byClass(labels)
	counts := make([]int, len(classes))
	for i, c := range classes {
		counts[i] = len(c.rows)
	}

	trainShare := allocate(counts, train)
	rest := make([]int, len(counts))
	for i := range counts {
		rest[i] = counts[i] - trainShare[i]
	}
	testShare := allocate(rest, test)

	var p Partition
	for i, c := range classes {
		rows := append([]int(nil), c.rows...)
		r.Shuffle(len(rows), func(a, b int) { rows[a], rows[b] = rows[b], rows[a] })

		p.Train = append(p.Train, rows[:trainShare[i]]...)
		p.Test = append(p.Test, rows[trainShare[i]:trainShare[i]+testShare[i]]...)
		p.Validation = append(p.Validation, rows[trainShare[i]+testShare[i]:]...)
	}
	sort.Ints(p.Train)
	sort.Ints(p.Validation)
	sort.Ints(p.Test)
	return p, nil
}

// Gather returns the elements of v at idx, in idx order. Rows of a feature
// matrix are shared, not copied.
func Gather[T any](v []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = v[j]
	}
	return out
}

type class struct {
	label int
	rows  []int
}

// byClass groups row indices by label, classes in ascending label order.
func byClass(labels []int) []class {
	index := make(map[int]int)
	var classes []class
	for row, l := range labels {
		i, ok := index[l]
		if !ok {
			i = len(classes)
			index[l] = i
			classes = append(classes, class{label: l})
		}
		classes[i].rows = append(classes[i].rows, row)
	}
	sort.Slice(classes, func(a, b int) bool { return classes[a].label < classes[b].label })
	return classes
}

// allocate splits total across groups in proportion to counts using the
// largest remainder method. Ties in remainder go to the larger group, then to
// the earlier one. No group receives more than its count.
func allocate(counts []int, total int) []int {
	sum := 0
	for _, c := range counts {
		sum += c
	}
	share := make([]int, len(counts))
	if sum == 0 {
		return share
	}

	type rem struct {
		i    int
		frac float64
	}
	rems := make([]rem, len(counts))
	given := 0
	for i, c := range counts {
		exact := float64(total) * float64(c) / float64(sum)
		share[i] = int(math.Floor(exact))
		given += share[i]
		rems[i] = rem{i, exact - float64(share[i])}
	}
	sort.SliceStable(rems, func(a, b int) bool {
		if rems[a].frac != rems[b].frac {
			return rems[a].frac > rems[b].frac
		}
		return counts[rems[a].i] > counts[rems[b].i]
	})
	for k := 0; given < total && k < len(rems); k++ {
		i := rems[k].i
		if share[i] < counts[i] {
			share[i]++
			given++
		}
	}
	return share
}
