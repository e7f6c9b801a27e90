package rate

import (
	"sync"
	"time"
)

type snapshot struct {
	value uint64
	at    time.Time
}

// Tracker derives a rate per key from successive counter readings. It keeps
// exactly one snapshot per key.
type Tracker[K comparable] struct {
	mu    sync.Mutex
	scale Scale
	last  map[K]snapshot
}

func NewTracker[K comparable](scale Scale) *Tracker[K] {
	if scale == nil {
		scale = BytesPerSecond{}
	}
	return &Tracker[K]{
		scale: scale,
		last:  make(map[K]snapshot),
	}
}

// Rate records value for key at now and returns the rate since the previous
// reading. The first reading of a key, a counter that went backwards, and a
// non-positive time step all yield 0. The new snapshot is stored in every
// case so a reset recovers on the next call.
func (t *Tracker[K]) Rate(key K, value uint64, now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.last[key]
	t.last[key] = snapshot{value: value, at: now}
	if !ok {
		return 0
	}
	elapsed := now.Sub(prev.at)
	if elapsed <= 0 || value < prev.value {
		return 0
	}
	return t.scale.Rate(value-prev.value, elapsed)
}

// Len reports how many keys hold a snapshot.
func (t *Tracker[K]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

// Retain drops every key for which keep returns false and reports how many
// were dropped.
func (t *Tracker[K]) Retain(keep func(K) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k := range t.last {
		if !keep(k) {
			delete(t.last, k)
			n++
		}
	}
	return n
}

// RetainKeys keeps only the keys present in live.
func (t *Tracker[K]) RetainKeys(live map[K]struct{}) int {
	return t.Retain(func(k K) bool {
		_, ok := live[k]
		return ok
	})
}
