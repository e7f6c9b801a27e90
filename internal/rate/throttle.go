package rate

import (
	"sync"
	"time"
)

type cachedRate struct {
	rate float64
	at   time.Time
}

// Throttled serves cached rates until a minimum interval has passed since
// the last refresh. A single gate timestamp covers every key: the poll that
// opens the gate (all calls sharing its timestamp) recomputes each key once,
// and later calls inside the interval read the cache without touching the
// underlying tracker.
type Throttled[K comparable] struct {
	mu       sync.Mutex
	tracker  *Tracker[K]
	interval time.Duration
	gate     time.Time
	opened   bool
	cache    map[K]cachedRate
}

func NewThrottled[K comparable](scale Scale, interval time.Duration) *Throttled[K] {
	return &Throttled[K]{
		tracker:  NewTracker[K](scale),
		interval: interval,
		cache:    make(map[K]cachedRate),
	}
}

// Rate returns the cached rate for key while throttled, otherwise records
// value and recomputes. A key first seen while throttled reports 0 and is
// not recorded.
func (t *Throttled[K]) Rate(key K, value uint64, now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.opened || now.Sub(t.gate) >= t.interval:
		t.gate = now
		t.opened = true
	case !now.Equal(t.gate):
		return t.cache[key].rate
	default:
		if c, ok := t.cache[key]; ok && c.at.Equal(t.gate) {
			return c.rate
		}
	}

	r := t.tracker.Rate(key, value, now)
	t.cache[key] = cachedRate{rate: r, at: now}
	return r
}

// Retain drops snapshot and cache entries for keys keep rejects.
func (t *Throttled[K]) Retain(keep func(K) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.cache {
		if !keep(k) {
			delete(t.cache, k)
		}
	}
	return t.tracker.Retain(keep)
}

// RetainKeys keeps only the keys present in live.
func (t *Throttled[K]) RetainKeys(live map[K]struct{}) int {
	return t.Retain(func(k K) bool {
		_, ok := live[k]
		return ok
	})
}

// Len reports how many keys hold a snapshot.
func (t *Throttled[K]) Len() int { return t.tracker.Len() }
