package dex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type repeatingSource struct {
	values []int
	next   int
}

func (s *repeatingSource) IntN(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func requireValidBatch(t *testing.T, ids []int, k, n int) {
	t.Helper()
	require.Len(t, ids, k)
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		require.GreaterOrEqual(t, id, 1)
		require.LessOrEqual(t, id, n)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d in %v", id, ids)
		seen[id] = struct{}{}
	}
}

func TestSamplerProducesDistinctIDsInRange(t *testing.T) {
	sampler, err := NewSampler()
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		requireValidBatch(t, sampler.Sample(), BatchSize, MaxID)
	}
}

func TestSampleAdversarialSources(t *testing.T) {
	cases := map[string][]int{
		"always zero":     {0},
		"always max":      {MaxID - 1},
		"short cycle":     {3, 3, 7, 3},
		"out of range":    {-5, 10_000, MaxID, -1},
		"alternating low": {0, 1},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			ids := Sample(&repeatingSource{values: values}, BatchSize, MaxID)
			requireValidBatch(t, ids, BatchSize, MaxID)
		})
	}
}

func TestSampleExhaustsSmallRange(t *testing.T) {
	ids := Sample(&repeatingSource{values: []int{0}}, 5, 5)
	require.ElementsMatch(t, []int{1, 2, 3, 4, 5}, ids)
}

func TestSampleClampsK(t *testing.T) {
	require.Len(t, Sample(&repeatingSource{values: []int{0}}, 10, 3), 3)
	require.Empty(t, Sample(&repeatingSource{values: []int{0}}, 0, 3))
}

func TestSamplerWithRange(t *testing.T) {
	sampler, err := NewSampler(WithSource(&repeatingSource{values: []int{1}}), WithRange(3, 4))
	require.NoError(t, err)
	requireValidBatch(t, sampler.Sample(), 3, 4)
}
