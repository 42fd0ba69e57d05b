package rng_test

import (
	"testing"

	"github.com/paveg/churnlab/internal/rng"
	"github.com/stretchr/testify/assert"
)

func TestStream_Reproducible(t *testing.T) {
	a := rng.New(42).Stream("generate/Age")
	b := rng.New(42).Stream("generate/Age")

	for range 100 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestStream_NamesAreIndependent(t *testing.T) {
	src := rng.New(42)
	a := src.Stream("generate/Age")
	b := src.Stream("generate/Tenure")

	same := 0
	for range 100 {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Zero(t, same)
}

func TestStream_SeedMatters(t *testing.T) {
	a := rng.New(1).Stream("x")
	b := rng.New(2).Stream("x")
	assert.NotEqual(t, a.Uint64(), b.Uint64())
}

func TestSub(t *testing.T) {
	src := rng.New(7)
	assert.NotEqual(t, src.Stream("x").Uint64(), src.Sub("search").Stream("x").Uint64())
	assert.Equal(t, src.Sub("search").Stream("x").Uint64(), rng.New(7).Sub("search").Stream("x").Uint64())
	assert.Equal(t, src.Streamf("fold/%d", 2).Uint64(), src.Stream("fold/2").Uint64())
}

func TestMask(t *testing.T) {
	r := rng.New(3).Stream("mask")

	assert.Len(t, rng.Mask(r, 10, 0.5), 10)

	for _, v := range rng.Mask(r, 1000, 0) {
		assert.False(t, v)
	}
	for _, v := range rng.Mask(r, 1000, 1) {
		assert.True(t, v)
	}

	hits := 0
	for _, v := range rng.Mask(r, 20000, 0.05) {
		if v {
			hits++
		}
	}
	assert.InDelta(t, 0.05, float64(hits)/20000, 0.01)
}

func TestNext(t *testing.T) {
	src := rng.New(9)
	first := src.Next("corrupt").Stream("x").Uint64()
	second := src.Next("corrupt").Stream("x").Uint64()
	assert.NotEqual(t, first, second)

	replay := rng.New(9)
	assert.Equal(t, first, replay.Next("corrupt").Stream("x").Uint64())
	assert.Equal(t, second, replay.Next("corrupt").Stream("x").Uint64())
}
