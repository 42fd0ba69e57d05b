package metrics

import (
	"fmt"
	"strings"
)

// Report is the per-class breakdown printed after each evaluation, laid out
// like scikit-learn's classification_report.
type Report struct {
	Classes     []ClassScores `json:"classes"`
	Accuracy    float64       `json:"accuracy"`
	MacroAvg    ClassScores   `json:"macro_avg"`
	WeightedAvg ClassScores   `json:"weighted_avg"`
	Support     int           `json:"support"`
}

// newReport lists the labels present in either truth or prediction.
func newReport(c Confusion, yTrue, yPred []int, zeroDivision float64) Report {
	var present [2]bool
	for i := range yTrue {
		present[yTrue[i]] = true
		present[yPred[i]] = true
	}

	r := Report{
		Support:     c.Total(),
		Accuracy:    float64(c.TN()+c.TP()) / float64(c.Total()),
		MacroAvg:    ClassScores{Label: "macro avg"},
		WeightedAvg: ClassScores{Label: "weighted avg"},
	}
	for label, ok := range present {
		if ok {
			r.Classes = append(r.Classes, classScores(c, label, zeroDivision))
		}
	}

	k := float64(len(r.Classes))
	for _, cs := range r.Classes {
		r.MacroAvg.Precision += cs.Precision / k
		r.MacroAvg.Recall += cs.Recall / k
		r.MacroAvg.F1 += cs.F1 / k

		w := float64(cs.Support) / float64(r.Support)
		r.WeightedAvg.Precision += cs.Precision * w
		r.WeightedAvg.Recall += cs.Recall * w
		r.WeightedAvg.F1 += cs.F1 * w
	}
	r.MacroAvg.Support = r.Support
	r.WeightedAvg.Support = r.Support
	return r
}

const labelWidth = len("weighted avg")

// String renders the report with two decimals.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", labelWidth, "", "precision", "recall", "f1-score", "support")
	for _, cs := range r.Classes {
		writeRow(&b, cs)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", labelWidth, "accuracy", "", "", r.Accuracy, r.Support)
	writeRow(&b, r.MacroAvg)
	writeRow(&b, r.WeightedAvg)
	return b.String()
}

func writeRow(b *strings.Builder, cs ClassScores) {
	fmt.Fprintf(b, "%*s  %9.2f %9.2f %9.2f %9d\n", labelWidth, cs.Label, cs.Precision, cs.Recall, cs.F1, cs.Support)
}
