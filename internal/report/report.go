// Package report holds the outcome of a churn analysis run and the sinks it
// is written to: a text or JSON printer and a chart renderer.
package report

import (
	"sort"
	"time"

	"github.com/paveg/churnlab/internal/clean"
	"github.com/paveg/churnlab/internal/metrics"
	"github.com/paveg/churnlab/internal/model"
	"github.com/paveg/churnlab/internal/monitoring"
)

// Importance is the score of one input feature.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Candidate is one fitted model family and its validation scores.
type Candidate struct {
	Family      model.Family   `json:"family"`
	Params      string         `json:"params,omitempty"`
	CVPrecision float64        `json:"cv_precision,omitempty"`
	GridPoints  int            `json:"grid_points,omitempty"`
	Validation  metrics.Result `json:"validation"`
}

// Sizes are the row counts of the three partitions.
type Sizes struct {
	Train      int `json:"train"`
	Validation int `json:"validation"`
	Test       int `json:"test"`
}

// Report is everything a run produced.
type Report struct {
	RunID          string                    `json:"run_id"`
	Seed           uint64                    `json:"seed"`
	StartedAt      time.Time                 `json:"started_at"`
	Quality        clean.Quality             `json:"quality"`
	Imputation     clean.ImputeReport        `json:"imputation"`
	RemainingNulls int                       `json:"remaining_nulls"`
	Encodings      clean.Encodings           `json:"encodings"`
	Features       []string                  `json:"features"`
	Split          Sizes                     `json:"split"`
	Candidates     []Candidate               `json:"candidates"`
	Selected       model.Family              `json:"selected"`
	Test           metrics.Result            `json:"test"`
	Importances    []Importance              `json:"importances,omitempty"`
	Stages         []monitoring.StageMetrics `json:"stages,omitempty"`
	Exports        []string                  `json:"exports,omitempty"`
}

// Candidate returns the entry of family.
func (r *Report) Candidate(family model.Family) (Candidate, bool) {
	for _, c := range r.Candidates {
		if c.Family == family {
			return c, true
		}
	}
	return Candidate{}, false
}

// Rank pairs features with their scores and orders them by descending
// importance. Equal scores keep feature order.
func Rank(features []string, scores []float64) []Importance {
	out := make([]Importance, len(features))
	for i, f := range features {
		out[i] = Importance{Feature: f, Importance: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}
