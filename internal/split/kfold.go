package split

import (
	"fmt"

	"github.com/paveg/churnlab/internal/errors"
)

// Fold is one cross-validation round.
type Fold struct {
	Train []int
	Test  []int
}

// KFold returns k stratified folds without shuffling. Within each class the
// rows are taken in order and cut into k contiguous chunks, the first
// len(class)%k chunks one row longer. Fold i tests on chunk i of every class
// and trains on the rest.
func KFold(labels []int, k int) ([]Fold, error) {
	if k < 2 {
		return nil, errors.NewInvalidInputError("KFold", fmt.Sprintf("k must be at least 2, got %d", k))
	}
	classes := byClass(labels)
	for _, c := range classes {
		if len(c.rows) < k {
			return nil, errors.NewInvalidInputError("KFold",
				fmt.Sprintf("class %d has %d rows, fewer than %d folds", c.label, len(c.rows), k))
		}
	}

	inTest := make([]int, len(labels))
	for _, c := range classes {
		n := len(c.rows)
		start := 0
		for f := range k {
			size := n / k
			if f < n%k {
				size++
			}
			for _, row := range c.rows[start : start+size] {
				inTest[row] = f
			}
			start += size
		}
	}

	folds := make([]Fold, k)
	for row, f := range inTest {
		for i := range folds {
			if i == f {
				folds[i].Test = append(folds[i].Test, row)
			} else {
				folds[i].Train = append(folds[i].Train, row)
			}
		}
	}
	return folds, nil
}
