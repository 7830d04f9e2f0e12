package dex

import (
	"context"
	"errors"
)

// IDSampler produces one batch of distinct ids.
type IDSampler interface {
	Sample() []int
}

// Fetcher runs the sample-then-enrich cycle for one widget mount.
type Fetcher struct {
	sampler  IDSampler
	enricher *Enricher
}

// NewFetcher wires a sampler to an enricher.
func NewFetcher(sampler IDSampler, enricher *Enricher) (*Fetcher, error) {
	if sampler == nil {
		return nil, errors.New("dex: sampler is required")
	}
	if enricher == nil {
		return nil, errors.New("dex: enricher is required")
	}
	return &Fetcher{sampler: sampler, enricher: enricher}, nil
}

// Load samples a fresh batch of ids and enriches them.
func (f *Fetcher) Load(ctx context.Context) ([]Creature, error) {
	return f.enricher.Enrich(ctx, f.sampler.Sample())
}

// FixedIDs is an IDSampler that always returns the same batch.
type FixedIDs []int

// Sample returns a copy of the fixed ids.
func (f FixedIDs) Sample() []int {
	out := make([]int, len(f))
	copy(out, f)
	return out
}
