// Package metrics scores binary predictions: precision, recall and F1 of the
// positive class, ROC-AUC, the confusion matrix and a per-class report.
package metrics

import (
	"fmt"

	"github.com/paveg/churnlab/internal/errors"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Positive is the label whose precision, recall and F1 are reported.
const Positive = 1

// Confusion is the 2×2 confusion matrix [[TN FP] [FN TP]]; rows are true
// labels and columns predicted labels.
type Confusion [2][2]int

// TN returns the true negatives.
func (c Confusion) TN() int { return c[0][0] }

// FP returns the false positives.
func (c Confusion) FP() int { return c[0][1] }

// FN returns the false negatives.
func (c Confusion) FN() int { return c[1][0] }

// TP returns the true positives.
func (c Confusion) TP() int { return c[1][1] }

// Total returns the number of scored rows.
func (c Confusion) Total() int { return c.TN() + c.FP() + c.FN() + c.TP() }

// String renders the matrix the way numpy prints a 2×2 array.
func (c Confusion) String() string {
	w := len(fmt.Sprint(max(c[0][0], c[0][1], c[1][0], c[1][1])))
	return fmt.Sprintf("[[%*d %*d]\n [%*d %*d]]", w, c[0][0], w, c[0][1], w, c[1][0], w, c[1][1])
}

// Result holds every score of one prediction set.
type Result struct {
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	ROCAUC    float64   `json:"roc_auc"`
	Accuracy  float64   `json:"accuracy"`
	Confusion Confusion `json:"confusion_matrix"`
	Report    Report    `json:"classification_report"`
}

// Evaluate scores yPred against yTrue. zeroDivision is the value a ratio
// takes when its denominator is zero and must be 0 or 1.
func Evaluate(yTrue, yPred []int, zeroDivision float64) (Result, error) {
	if len(yTrue) == 0 {
		return Result{}, errors.ErrEmptyTable
	}
	if len(yTrue) != len(yPred) {
		return Result{}, errors.ErrMismatchedLength
	}
	if zeroDivision != 0 && zeroDivision != 1 {
		return Result{}, errors.NewInvalidInputError("Evaluate",
			fmt.Sprintf("zero division value must be 0 or 1, got %g", zeroDivision))
	}

	var c Confusion
	for i, t := range yTrue {
		p := yPred[i]
		if (t != 0 && t != 1) || (p != 0 && p != 1) {
			return Result{}, errors.NewInvalidInputError("Evaluate",
				fmt.Sprintf("labels must be 0 or 1, got %d and %d at row %d", t, p, i))
		}
		c[t][p]++
	}

	scores := classScores(c, Positive, zeroDivision)
	auc, err := ROCAUC(yTrue, yPred)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Precision: scores.Precision,
		Recall:    scores.Recall,
		F1:        scores.F1,
		ROCAUC:    auc,
		Accuracy:  float64(c.TN()+c.TP()) / float64(c.Total()),
		Confusion: c,
		Report:    newReport(c, yTrue, yPred, zeroDivision),
	}, nil
}

// Precision returns TP / (TP + FP) of the positive class.
func Precision(yTrue, yPred []int, zeroDivision float64) (float64, error) {
	r, err := Evaluate(yTrue, yPred, zeroDivision)
	if err != nil {
		return 0, err
	}
	return r.Precision, nil
}

// ClassScores are the one-vs-rest scores of a single label.
type ClassScores struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

func classScores(c Confusion, label int, zeroDivision float64) ClassScores {
	other := 1 - label
	tp := c[label][label]
	fp := c[other][label]
	fn := c[label][other]
	return ClassScores{
		Label:     fmt.Sprint(label),
		Precision: ratio(tp, tp+fp, zeroDivision),
		Recall:    ratio(tp, tp+fn, zeroDivision),
		F1:        ratio(2*tp, 2*tp+fp+fn, zeroDivision),
		Support:   tp + fn,
	}
}

func ratio(num, den int, zeroDivision float64) float64 {
	if den == 0 {
		return zeroDivision
	}
	return float64(num) / float64(den)
}

// ROCAUC returns the area under the ROC curve of scores against the binary
// truth. Scores may be hard labels, which gives the mean of the true positive
// and true negative rates. With a single class in the truth the curve is
// undefined and 0.5 is returned.
func ROCAUC[S int | float64](yTrue []int, scores []S) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, errors.ErrMismatchedLength
	}
	var positives, negatives int
	for _, t := range yTrue {
		if t == Positive {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5, nil
	}

	y := make([]float64, len(scores))
	classes := make([]bool, len(scores))
	for i, s := range scores {
		y[i] = float64(s)
		classes[i] = yTrue[i] == Positive
	}
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
