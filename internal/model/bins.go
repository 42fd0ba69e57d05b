package model

import (
	"sort"
)

// maxBins is the largest number of bins a feature is cut into.
const maxBins = 255

// binner maps raw feature values to bin indices. Bin b of feature f holds the
// values v with edges[f][b-1] < v <= edges[f][b].
type binner struct {
	edges [][]float64
}

// binned is a feature-major matrix of bin indices.
type binned struct {
	cols  [][]uint8
	nbins []int
	rows  int
}

// fitBinner cuts every feature at quantiles of its training values. Features
// with few distinct values get one bin per value.
func fitBinner(x [][]float64) *binner {
	width := len(x[0])
	b := &binner{edges: make([][]float64, width)}
	values := make([]float64, len(x))
	for f := range width {
		for i, row := range x {
			values[i] = row[f]
		}
		sort.Float64s(values)
		b.edges[f] = quantileEdges(values)
	}
	return b
}

// quantileEdges returns at most maxBins-1 increasing cut points of sorted.
// The largest value is never a cut point, so every bin is non-empty on the
// training data.
func quantileEdges(sorted []float64) []float64 {
	distinct := make([]float64, 0, maxBins)
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
			if len(distinct) > maxBins {
				break
			}
		}
	}
	if len(distinct) <= maxBins {
		if len(distinct) == 0 {
			return nil
		}
		return distinct[:len(distinct)-1]
	}

	n := len(sorted)
	edges := make([]float64, 0, maxBins-1)
	for k := 1; k < maxBins; k++ {
		v := sorted[k*n/maxBins]
		if v == sorted[n-1] {
			break
		}
		if len(edges) == 0 || v > edges[len(edges)-1] {
			edges = append(edges, v)
		}
	}
	return edges
}

// bin returns the bin index of v for feature f.
func (b *binner) bin(f int, v float64) uint8 {
	return uint8(sort.SearchFloat64s(b.edges[f], v))
}

// transform bins every row of x.
func (b *binner) transform(x [][]float64) *binned {
	width := len(b.edges)
	out := &binned{cols: make([][]uint8, width), nbins: make([]int, width), rows: len(x)}
	for f := range width {
		col := make([]uint8, len(x))
		for i, row := range x {
			col[i] = b.bin(f, row[f])
		}
		out.cols[f] = col
		out.nbins[f] = len(b.edges[f]) + 1
	}
	return out
}
