package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	PriceCalculations   = "price_calculations"
	QuotesCreated       = "quotes_created"
	TransitionsApplied  = "order_transitions_applied"
	TransitionsRejected = "order_transitions_rejected"
	OptionCacheHits     = "option_cache_hits"
	OptionCacheMisses   = "option_cache_misses"
	EventsPublishFailed = "events_publish_failed"
	RequestsRateLimited = "requests_rate_limited"

	// TransitionsMicros accumulates the time spent applying status changes.
	TransitionsMicros = "order_transitions_duration_us"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry hands out named counters. Counter is safe for concurrent use and
// always returns the same *Counter for a name.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter)}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c = &Counter{}
	r.counters[name] = c
	return c
}

// Snapshot returns the current value of every counter.
func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]uint64, len(r.counters))
	for name, c := range r.counters {
		out[name] = c.Load()
	}
	return out
}
