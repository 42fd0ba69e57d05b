package metrics_test

import (
	"testing"

	"github.com/paveg/churnlab/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	// TN=3 FP=1 FN=2 TP=4
	yTrue := []int{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	yPred := []int{0, 0, 0, 1, 0, 0, 1, 1, 1, 1}

	r, err := metrics.Evaluate(yTrue, yPred, 0)
	require.NoError(t, err)

	assert.Equal(t, metrics.Confusion{{3, 1}, {2, 4}}, r.Confusion)
	assert.InDelta(t, 0.8, r.Precision, 1e-12)
	assert.InDelta(t, 4.0/6, r.Recall, 1e-12)
	assert.InDelta(t, 8.0/11, r.F1, 1e-12)
	assert.InDelta(t, 0.7, r.Accuracy, 1e-12)
	// (TPR + TNR) / 2 = (4/6 + 3/4) / 2
	assert.InDelta(t, (4.0/6+0.75)/2, r.ROCAUC, 1e-12)
}

func TestEvaluateZeroDivision(t *testing.T) {
	yTrue := []int{0, 1, 0, 1}
	yPred := []int{0, 0, 0, 0}

	tests := []struct {
		name string
		zd   float64
	}{
		{"zero", 0},
		{"one", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := metrics.Evaluate(yTrue, yPred, tt.zd)
			require.NoError(t, err)
			assert.Equal(t, tt.zd, r.Precision)
			assert.Zero(t, r.Recall)
			assert.Zero(t, r.F1)
			assert.InDelta(t, 0.5, r.ROCAUC, 1e-12)
		})
	}

	_, err := metrics.Evaluate(yTrue, yPred, 0.5)
	assert.Error(t, err)
}

func TestEvaluateInvalid(t *testing.T) {
	_, err := metrics.Evaluate(nil, nil, 0)
	assert.Error(t, err)
	_, err = metrics.Evaluate([]int{0, 1}, []int{0}, 0)
	assert.Error(t, err)
	_, err = metrics.Evaluate([]int{0, 2}, []int{0, 1}, 0)
	assert.Error(t, err)
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		yTrue  []int
		scores []float64
		want   float64
	}{
		{"perfect", []int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1},
		{"inverted", []int{0, 0, 1, 1}, []float64{0.9, 0.8, 0.2, 0.1}, 0},
		{"one inversion", []int{1, 0, 1, 0}, []float64{0.1, 0.35, 0.4, 0.8}, 0.25},
		{"all tied", []int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"single class", []int{1, 1, 1}, []float64{0.2, 0.4, 0.9}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := metrics.ROCAUC(tt.yTrue, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestConfusionString(t *testing.T) {
	c := metrics.Confusion{{380, 20}, {7, 93}}
	assert.Equal(t, "[[380  20]\n [  7  93]]", c.String())
}

func TestReport(t *testing.T) {
	yTrue := []int{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	yPred := []int{0, 0, 0, 1, 0, 0, 1, 1, 1, 1}
	r, err := metrics.Evaluate(yTrue, yPred, 0)
	require.NoError(t, err)

	rep := r.Report
	require.Len(t, rep.Classes, 2)
	assert.Equal(t, "0", rep.Classes[0].Label)
	assert.Equal(t, 4, rep.Classes[0].Support)
	assert.InDelta(t, 0.6, rep.Classes[0].Precision, 1e-12)
	assert.InDelta(t, (0.6+0.8)/2, rep.MacroAvg.Precision, 1e-12)
	assert.InDelta(t, 0.6*0.4+0.8*0.6, rep.WeightedAvg.Precision, 1e-12)

	want := "" +
		"              precision    recall  f1-score   support\n" +
		"\n" +
		"           0       0.60      0.75      0.67         4\n" +
		"           1       0.80      0.67      0.73         6\n" +
		"\n" +
		"    accuracy                           0.70        10\n" +
		"   macro avg       0.70      0.71      0.70        10\n" +
		"weighted avg       0.72      0.70      0.70        10\n"
	assert.Equal(t, want, rep.String())
}

func TestReportSingleLabel(t *testing.T) {
	r, err := metrics.Evaluate([]int{0, 0, 0}, []int{0, 0, 0}, 0)
	require.NoError(t, err)
	require.Len(t, r.Report.Classes, 1)
	assert.Equal(t, "0", r.Report.Classes[0].Label)
}
