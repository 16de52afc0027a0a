package price

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/camuig/gold-ledger/internal/logger"
)

// MockSource is a testify mock of Source.
type MockSource struct {
	mock.Mock
	name string
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) Fetch(ctx context.Context) (PricePoint, error) {
	args := m.Called(ctx)
	return args.Get(0).(PricePoint), args.Error(1)
}

func newMockSource(name string) *MockSource { return &MockSource{name: name} }

// funcSource adapts a function to Source and counts calls.
type funcSource struct {
	name  string
	calls atomic.Int32
	fn    func(ctx context.Context) (PricePoint, error)
}

func (s *funcSource) Name() string { return s.name }

func (s *funcSource) Fetch(ctx context.Context) (PricePoint, error) {
	s.calls.Add(1)
	return s.fn(ctx)
}

func failing(name string, kind FetchErrorKind) *funcSource {
	return &funcSource{name: name, fn: func(context.Context) (PricePoint, error) {
		return PricePoint{}, &FetchError{Source: name, Kind: kind, Err: errors.New("boom")}
	}}
}

func succeeding(name, amount string) *funcSource {
	return &funcSource{name: name, fn: func(context.Context) (PricePoint, error) {
		return point(amount, name), nil
	}}
}

func newResolver(clock *fakeClock, cache *Cache, fallback Source, sources ...Source) *Resolver {
	return NewResolver(cache, ResolverOptions{
		Sources:       sources,
		Fallback:      fallback,
		SourceTimeout: 50 * time.Millisecond,
		Baseline:      decimal.NewFromInt(480),
		Now:           clock.Now,
	}, logger.Discard())
}

func TestResolve_FreshCacheSkipsSources(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	cached := point("479.50", "jin10")
	cache.Put(cached)
	clock.Advance(30 * time.Second)

	primary := newMockSource("jin10")
	secondary := newMockSource("sina")
	synthetic := newMockSource("synthetic")
	r := newResolver(clock, cache, synthetic, primary, secondary)

	got := r.Resolve(context.Background())

	assert.Equal(t, cached, got)
	primary.AssertNotCalled(t, "Fetch", mock.Anything)
	secondary.AssertNotCalled(t, "Fetch", mock.Anything)
	synthetic.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestResolve_PrimarySuccessIsCached(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	primary := succeeding("jin10", "481.10")
	secondary := succeeding("sina", "490.00")
	r := newResolver(clock, cache, nil, primary, secondary)

	got := r.Resolve(context.Background())

	assert.Equal(t, "jin10", got.Source)
	assert.Equal(t, ProvenanceLive, got.Provenance)
	assert.Equal(t, int32(0), secondary.calls.Load())

	cachedPoint, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, got, cachedPoint)

	// second call within TTL does not reach upstream again
	r.Resolve(context.Background())
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestResolve_FallsThroughToSecondary(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	primary := failing("jin10", KindUnavailable)
	secondary := succeeding("sina", "482.34")
	r := newResolver(clock, cache, nil, primary, secondary)

	got := r.Resolve(context.Background())

	assert.Equal(t, "sina", got.Source)
	assert.Equal(t, "482.34", got.AmountPerGram.StringFixed(2))
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestResolve_NonPositiveTreatedAsFailure(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	primary := succeeding("jin10", "0")
	negative := succeeding("sina", "-3")
	synthetic := succeeding("synthetic", "480.00")
	r := newResolver(clock, cache, synthetic, primary, negative)

	got := r.Resolve(context.Background())

	assert.Equal(t, ProvenanceSynthetic, got.Provenance)
	_, ok := cache.Latest()
	assert.False(t, ok, "invalid prices must not be cached")
}

func TestResolve_StaleWhenSourcesFail(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	cache.Put(point("478.00", "jin10"))
	clock.Advance(10 * time.Minute)

	synthetic := newMockSource("synthetic")
	r := newResolver(clock, cache, synthetic, failing("jin10", KindTimeout), failing("sina", KindParse))

	got := r.Resolve(context.Background())

	assert.Equal(t, ProvenanceStale, got.Provenance)
	assert.Equal(t, "jin10 (stale)", got.SourceLabel())
	assert.Equal(t, "478.00", got.AmountPerGram.StringFixed(2))
	synthetic.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestResolve_SyntheticWhenColdAndAllTimeout(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	synthetic := NewSyntheticSource(decimal.NewFromInt(480), decimal.NewFromInt(15), 2.5, 1, clock.Now)
	r := newResolver(clock, cache, synthetic, failing("jin10", KindTimeout), failing("sina", KindTimeout))

	got := r.Resolve(context.Background())

	assert.Equal(t, ProvenanceSynthetic, got.Provenance)
	assert.Equal(t, "synthetic", got.SourceLabel())
	assert.NotEqual(t, "jin10", got.SourceLabel())
	assert.NotEqual(t, "sina", got.SourceLabel())
	assert.True(t, got.AmountPerGram.IsPositive())
	_, ok := cache.Latest()
	assert.False(t, ok, "synthetic prices are never cached")
}

func TestResolve_SourceTimeoutIsBounded(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	slow := &funcSource{name: "jin10", fn: func(ctx context.Context) (PricePoint, error) {
		<-ctx.Done()
		return PricePoint{}, Classify("jin10", ctx.Err())
	}}
	secondary := succeeding("sina", "483.00")
	r := newResolver(clock, cache, nil, slow, secondary)

	start := time.Now()
	got := r.Resolve(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "sina", got.Source)
}

func TestResolve_CancelledContextStillAnswers(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	primary := succeeding("jin10", "481.00")
	synthetic := succeeding("synthetic", "480.00")
	r := newResolver(clock, cache, synthetic, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.Resolve(ctx)

	assert.True(t, got.Usable())
	assert.Equal(t, int32(0), primary.calls.Load())
	assert.Equal(t, ProvenanceSynthetic, got.Provenance)
}

func TestResolve_BaselineWhenEverythingFails(t *testing.T) {
	clock := newClock()
	r := newResolver(clock, NewCache(time.Minute, clock.Now), failing("synthetic", KindUnavailable), failing("jin10", KindUnavailable))

	got := r.Resolve(context.Background())

	assert.Equal(t, "480.00", got.AmountPerGram.StringFixed(2))
	assert.Equal(t, ProvenanceSynthetic, got.Provenance)
}

func TestResolve_ConcurrentColdCallersHitUpstreamOnce(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	primary := &funcSource{name: "jin10", fn: func(context.Context) (PricePoint, error) {
		time.Sleep(20 * time.Millisecond)
		return point("481.00", "jin10"), nil
	}}
	r := newResolver(clock, cache, nil, primary)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := r.Resolve(context.Background())
			assert.Equal(t, "jin10", p.Source)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestResolver_Warm(t *testing.T) {
	clock := newClock()
	cache := NewCache(time.Minute, clock.Now)
	r := newResolver(clock, cache, nil, failing("jin10", KindUnavailable))

	r.Warm(point("470.00", "sina"), clock.Now().Add(-time.Hour))

	got := r.Resolve(context.Background())
	assert.Equal(t, ProvenanceStale, got.Provenance)
	assert.Equal(t, "sina", got.Source)

	r.Warm(point("0", "sina"), clock.Now())
	entry, _ := cache.Latest()
	assert.Equal(t, "470.00", entry.Point.AmountPerGram.StringFixed(2), "unusable warm point ignored")
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindTimeout, Classify("x", context.DeadlineExceeded).Kind)
	assert.Equal(t, KindUnavailable, Classify("x", errors.New("refused")).Kind)

	parse := ParseError("x", errors.New("bad"))
	assert.Same(t, parse, Classify("x", parse))
	assert.Contains(t, parse.Error(), "parse_error")
}
