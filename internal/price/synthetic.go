package price

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const SyntheticSourceName = "synthetic"

// SyntheticSource produces a bounded random walk around a baseline. It is the last
// tier of the cascade and never fails.
type SyntheticSource struct {
	mu       sync.Mutex
	baseline decimal.Decimal
	band     decimal.Decimal
	step     float64
	rng      *rand.Rand
	now      func() time.Time
	last     decimal.Decimal
}

func NewSyntheticSource(baseline, band decimal.Decimal, step float64, seed uint64, now func() time.Time) *SyntheticSource {
	if now == nil {
		now = time.Now
	}
	return &SyntheticSource{
		baseline: baseline,
		band:     band,
		step:     step,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:      now,
		last:     baseline,
	}
}

func (s *SyntheticSource) Name() string { return SyntheticSourceName }

func (s *SyntheticSource) Fetch(_ context.Context) (PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := decimal.NewFromFloat((s.rng.Float64()*2 - 1) * s.step)
	next := s.last.Add(delta)

	lo, hi := s.baseline.Sub(s.band), s.baseline.Add(s.band)
	if next.LessThan(lo) {
		next = lo
	}
	if next.GreaterThan(hi) {
		next = hi
	}
	s.last = next

	p := NewPoint(next, SyntheticSourceName, s.now())
	p.Provenance = ProvenanceSynthetic
	return p, nil
}
