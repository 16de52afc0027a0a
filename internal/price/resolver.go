package price

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/camuig/gold-ledger/internal/logger"
)

type ResolverOptions struct {
	// Sources in precedence order; the first usable answer wins.
	Sources       []Source
	Fallback      Source
	SourceTimeout time.Duration
	// Baseline backs the result if the fallback itself misbehaves.
	Baseline decimal.Decimal
	Now      func() time.Time
}

// Resolver runs the cascade: fresh cache, live sources, stale cache, synthetic.
// Resolve never fails.
type Resolver struct {
	cache    *Cache
	sources  []Source
	fallback Source
	timeout  time.Duration
	baseline decimal.Decimal
	now      func() time.Time
	logger   *logger.Logger

	// sem serializes cascades so a cold cache is refilled by exactly one caller.
	sem chan struct{}
}

type tier struct {
	name string
	run  func(ctx context.Context) (PricePoint, bool)
}

func NewResolver(cache *Cache, opts ResolverOptions, log *logger.Logger) *Resolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 5 * time.Second
	}
	return &Resolver{
		cache:    cache,
		sources:  opts.Sources,
		fallback: opts.Fallback,
		timeout:  opts.SourceTimeout,
		baseline: opts.Baseline,
		now:      opts.Now,
		logger:   log,
		sem:      make(chan struct{}, 1),
	}
}

// Warm seeds the cache slot, typically from the last persisted snapshot.
func (r *Resolver) Warm(p PricePoint, fetchedAt time.Time) {
	if !p.Usable() {
		return
	}
	p.Provenance = ProvenanceLive
	r.cache.PutAt(p, fetchedAt)
}

func (r *Resolver) Resolve(ctx context.Context) PricePoint {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		// Gave up waiting for an in-flight cascade: serve what we have without upstream calls.
		return r.run(ctx, r.offlineTiers())
	}

	return r.run(ctx, r.tiers())
}

func (r *Resolver) run(ctx context.Context, tiers []tier) PricePoint {
	for _, t := range tiers {
		if p, ok := t.run(ctx); ok {
			r.logger.Debug("price resolved", "tier", t.name, "source", p.Source,
				"provenance", string(p.Provenance), "price", p.AmountPerGram.String())
			return p
		}
	}

	r.logger.Error("every price tier failed, serving baseline")
	p := NewPoint(r.baseline, SyntheticSourceName, r.now())
	p.Provenance = ProvenanceSynthetic
	return p
}

func (r *Resolver) tiers() []tier {
	tiers := make([]tier, 0, len(r.sources)+3)
	tiers = append(tiers, tier{name: "cache", run: r.fromCache})
	for _, s := range r.sources {
		tiers = append(tiers, tier{name: s.Name(), run: r.fromSource(s)})
	}
	return append(tiers,
		tier{name: "stale", run: r.fromStale},
		tier{name: "synthetic", run: r.fromFallback},
	)
}

func (r *Resolver) offlineTiers() []tier {
	return []tier{
		{name: "cache", run: r.fromCache},
		{name: "stale", run: r.fromStale},
		{name: "synthetic", run: r.fromFallback},
	}
}

func (r *Resolver) fromCache(context.Context) (PricePoint, bool) {
	return r.cache.Get()
}

func (r *Resolver) fromSource(s Source) func(ctx context.Context) (PricePoint, bool) {
	return func(ctx context.Context) (PricePoint, bool) {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("price source skipped", "source", s.Name(), "error", err)
			return PricePoint{}, false
		}

		sctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		p, err := s.Fetch(sctx)
		if err != nil {
			kind := KindUnavailable
			var fe *FetchError
			if errors.As(err, &fe) {
				kind = fe.Kind
			}
			r.logger.Warn("price source failed", "source", s.Name(), "kind", kind.String(), "error", err)
			return PricePoint{}, false
		}
		if !p.Usable() {
			r.logger.Warn("price source returned non-positive price", "source", s.Name(),
				"price", p.AmountPerGram.String())
			return PricePoint{}, false
		}

		p.Provenance = ProvenanceLive
		if p.Currency == "" {
			p.Currency = CurrencyCNY
		}
		r.cache.Put(p)
		return p, true
	}
}

func (r *Resolver) fromStale(context.Context) (PricePoint, bool) {
	entry, ok := r.cache.Latest()
	if !ok || !entry.Point.Usable() {
		return PricePoint{}, false
	}
	p := entry.Point
	p.Provenance = ProvenanceStale
	return p, true
}

func (r *Resolver) fromFallback(ctx context.Context) (PricePoint, bool) {
	if r.fallback == nil {
		return PricePoint{}, false
	}
	p, err := r.fallback.Fetch(ctx)
	if err != nil || !p.Usable() {
		return PricePoint{}, false
	}
	p.Provenance = ProvenanceSynthetic
	return p, true
}
