package model

import (
	"math/rand/v2"
)

// minGain is the smallest criterion improvement accepted as a split.
const minGain = 1e-12

// stats aggregates the rows of a node: W is the total weight, G and H the sums
// the criterion works on, N the number of distinct rows.
type stats struct {
	W, G, H float64
	N       int
}

func (s *stats) add(o stats) {
	s.W += o.W
	s.G += o.G
	s.H += o.H
	s.N += o.N
}

func (s stats) sub(o stats) stats {
	return stats{W: s.W - o.W, G: s.G - o.G, H: s.H - o.H, N: s.N - o.N}
}

// criterion scores candidate splits and values leaves.
type criterion interface {
	// gain returns the improvement of splitting parent into left and right,
	// and false when the split breaks a constraint.
	gain(parent, left, right stats) (float64, bool)
	// leaf returns the prediction of a node.
	leaf(s stats) float64
	// pure reports whether no split can improve the node.
	pure(s stats) bool
}

type treeConfig struct {
	maxDepth        int // 0 means unlimited
	minSamplesSplit int
	maxFeatures     int // 0 means every feature
	crit            criterion
}

type treeNode struct {
	feature   int
	bin       uint8
	threshold float64
	left      int32
	right     int32
	leaf      bool
	value     float64
}

// tree is a fitted binary decision tree. Rows go left when their feature
// value is at most the node threshold.
type tree struct {
	nodes []treeNode
	// gains and splits hold the criterion improvement summed per feature and
	// the number of splits per feature.
	gains  []float64
	splits []int
	rootW  float64
}

// grower fits one tree on a binned matrix. w, g and h give the contribution
// of every row to a node's stats; rows outside the sample are never visited.
type grower struct {
	cfg     treeConfig
	data    *binned
	edges   [][]float64
	w, g, h []float64
	r       *rand.Rand
	t       *tree
	feats   []int
	hist    [maxBins + 1]stats
}

func growTree(cfg treeConfig, data *binned, b *binner, rows []int, w, g, h []float64, r *rand.Rand) *tree {
	width := len(data.cols)
	gr := &grower{
		cfg:   cfg,
		data:  data,
		edges: b.edges,
		w:     w,
		g:     g,
		h:     h,
		r:     r,
		t:     &tree{gains: make([]float64, width), splits: make([]int, width)},
		feats: make([]int, width),
	}
	for f := range gr.feats {
		gr.feats[f] = f
	}
	root := gr.sum(rows)
	gr.t.rootW = root.W
	gr.build(rows, root, 0)
	return gr.t
}

func (gr *grower) sum(rows []int) stats {
	var s stats
	for _, i := range rows {
		s.add(stats{W: gr.w[i], G: gr.g[i], H: gr.h[i], N: 1})
	}
	return s
}

type split struct {
	feature int
	bin     uint8
	gain    float64
	left    stats
}

func (gr *grower) build(rows []int, s stats, depth int) int32 {
	idx := int32(len(gr.t.nodes))
	gr.t.nodes = append(gr.t.nodes, treeNode{leaf: true, value: gr.cfg.crit.leaf(s)})

	if gr.cfg.maxDepth > 0 && depth >= gr.cfg.maxDepth {
		return idx
	}
	if len(rows) < gr.cfg.minSamplesSplit || len(rows) < 2 || gr.cfg.crit.pure(s) {
		return idx
	}

	best, ok := gr.bestSplit(rows, s)
	if !ok {
		return idx
	}

	col := gr.data.cols[best.feature]
	k := 0
	for i, row := range rows {
		if col[row] <= best.bin {
			rows[i], rows[k] = rows[k], rows[i]
			k++
		}
	}

	gr.t.gains[best.feature] += best.gain
	gr.t.splits[best.feature]++

	left := gr.build(rows[:k], best.left, depth+1)
	right := gr.build(rows[k:], s.sub(best.left), depth+1)
	gr.t.nodes[idx] = treeNode{
		feature:   best.feature,
		bin:       best.bin,
		threshold: gr.edges[best.feature][best.bin],
		left:      left,
		right:     right,
	}
	return idx
}

// bestSplit scans the histogram of every candidate feature. Candidates are
// either every feature or, with maxFeatures set, a fresh random subset per
// node. The first best split in scan order wins.
func (gr *grower) bestSplit(rows []int, s stats) (split, bool) {
	feats := gr.feats
	if m := gr.cfg.maxFeatures; m > 0 && m < len(feats) {
		for i := 0; i < m; i++ {
			j := i + gr.r.IntN(len(feats)-i)
			feats[i], feats[j] = feats[j], feats[i]
		}
		feats = feats[:m]
	}

	best := split{gain: minGain}
	found := false
	for _, f := range feats {
		nbins := gr.data.nbins[f]
		if nbins < 2 {
			continue
		}
		hist := gr.hist[:nbins]
		clear(hist)
		col := gr.data.cols[f]
		for _, i := range rows {
			hist[col[i]].add(stats{W: gr.w[i], G: gr.g[i], H: gr.h[i], N: 1})
		}

		var left stats
		for b := 0; b < nbins-1; b++ {
			left.add(hist[b])
			if left.N == 0 {
				continue
			}
			right := s.sub(left)
			if right.N == 0 {
				break
			}
			gain, ok := gr.cfg.crit.gain(s, left, right)
			if ok && gain > best.gain {
				best = split{feature: f, bin: uint8(b), gain: gain, left: left}
				found = true
			}
		}
	}
	return best, found
}

// predict returns the leaf value reached by a raw feature row.
func (t *tree) predict(row []float64) float64 {
	n := &t.nodes[0]
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n.value
}

// predictBinned returns the leaf value reached by row i of a binned matrix.
func (t *tree) predictBinned(data *binned, i int) float64 {
	n := &t.nodes[0]
	for !n.leaf {
		if data.cols[n.feature][i] <= n.bin {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n.value
}

// depth returns the number of edges on the longest root-to-leaf path.
func (t *tree) depth() int {
	var walk func(i int32) int
	walk = func(i int32) int {
		n := t.nodes[i]
		if n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

// gini scores classification splits by weighted Gini impurity decrease. G is
// the weight of class 1.
type gini struct{}

func giniImpurity(s stats) float64 {
	if s.W <= 0 {
		return 0
	}
	p := s.G / s.W
	return 2 * p * (1 - p)
}

func (gini) gain(parent, left, right stats) (float64, bool) {
	return parent.W*giniImpurity(parent) - left.W*giniImpurity(left) - right.W*giniImpurity(right), true
}

func (gini) leaf(s stats) float64 {
	if s.W <= 0 {
		return 0
	}
	return s.G / s.W
}

func (gini) pure(s stats) bool { return giniImpurity(s) <= minGain }

// friedmanMSE scores regression splits on residuals with Friedman's
// improvement. G is the residual sum and H the hessian sum used for the
// Newton leaf value.
type friedmanMSE struct{}

func (friedmanMSE) gain(_, left, right stats) (float64, bool) {
	if left.W <= 0 || right.W <= 0 {
		return 0, false
	}
	diff := left.G/left.W - right.G/right.W
	return left.W * right.W / (left.W + right.W) * diff * diff, true
}

func (friedmanMSE) leaf(s stats) float64 {
	if s.H < 1e-150 {
		return 0
	}
	return s.G / s.H
}

func (friedmanMSE) pure(stats) bool { return false }

// secondOrder scores splits by the regularised second-order loss reduction.
// G and H are gradient and hessian sums.
type secondOrder struct {
	lambda         float64
	gamma          float64
	minChildWeight float64
}

func (c secondOrder) score(s stats) float64 {
	return s.G * s.G / (s.H + c.lambda)
}

func (c secondOrder) gain(parent, left, right stats) (float64, bool) {
	if left.H < c.minChildWeight || right.H < c.minChildWeight {
		return 0, false
	}
	return 0.5*(c.score(left)+c.score(right)-c.score(parent)) - c.gamma, true
}

func (c secondOrder) leaf(s stats) float64 {
	return -s.G / (s.H + c.lambda)
}

func (c secondOrder) pure(s stats) bool { return s.H < 2*c.minChildWeight }
