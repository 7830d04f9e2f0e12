package dex

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Source yields integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Sample draws k distinct ids uniformly from [1, n] using a partial
// Fisher-Yates shuffle. It performs exactly k draws regardless of what the
// source returns; out-of-range draws are folded back into range.
func Sample(src Source, k, n int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return []int{}
	}

	// swapped records positions displaced by earlier swaps; absent keys hold
	// their own index.
	swapped := make(map[int]int, 2*k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	out := make([]int, 0, k)
	for i := 0; i < k; i++ {
		j := i + draw(src, n-i)
		picked := at(j)
		swapped[j] = at(i)
		out = append(out, picked+1)
	}
	return out
}

func draw(src Source, n int) int {
	v := src.IntN(n)
	if v < 0 || v >= n {
		v %= n
		if v < 0 {
			v += n
		}
	}
	return v
}

// Sampler produces batches of BatchSize distinct ids in [1, MaxID].
// It is safe for concurrent use.
type Sampler struct {
	mu  sync.Mutex
	src Source
	k   int
	n   int
}

// SamplerOption customises a Sampler.
type SamplerOption func(*Sampler)

// WithSource replaces the crypto-seeded PCG source.
func WithSource(src Source) SamplerOption {
	return func(s *Sampler) {
		if src != nil {
			s.src = src
		}
	}
}

// WithRange overrides batch size and id range.
func WithRange(k, n int) SamplerOption {
	return func(s *Sampler) {
		if k > 0 && n > 0 {
			s.k, s.n = k, n
		}
	}
}

// NewSampler builds a sampler backed by a PCG generator seeded from crypto/rand.
func NewSampler(opts ...SamplerOption) (*Sampler, error) {
	s := &Sampler{k: BatchSize, n: MaxID}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		var seed [16]byte
		if _, err := crand.Read(seed[:]); err != nil {
			return nil, fmt.Errorf("dex: read sampler seed: %w", err)
		}
		s.src = rand.New(rand.NewPCG(
			binary.LittleEndian.Uint64(seed[:8]),
			binary.LittleEndian.Uint64(seed[8:]),
		))
	}
	return s, nil
}

// Sample returns one batch of distinct ids.
func (s *Sampler) Sample() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sample(s.src, s.k, s.n)
}
