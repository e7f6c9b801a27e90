package rate

import (
	"testing"
	"time"
)

func TestThrottledServesCacheInsideInterval(t *testing.T) {
	th := NewThrottled[int](CPUScale{TicksPerSecond: 100, Cores: 1}, time.Second)

	if got := th.Rate(1, 1000, at(0)); got != 0 {
		t.Fatalf("first = %f, want 0", got)
	}
	if got := th.Rate(1, 1050, at(1)); !approx(got, 50) {
		t.Fatalf("refresh = %f, want 50", got)
	}

	// Inside the interval the counter input is ignored.
	for _, tc := range []struct {
		value uint64
		sec   float64
	}{{1090, 1.2}, {5000, 1.5}, {0, 1.99}} {
		if got := th.Rate(1, tc.value, at(tc.sec)); !approx(got, 50) {
			t.Errorf("t=%.2f value=%d: got %f, want cached 50", tc.sec, tc.value, got)
		}
	}

	// The snapshot was untouched, so the next refresh spans t=1..2.
	if got := th.Rate(1, 1080, at(2)); !approx(got, 30) {
		t.Fatalf("second refresh = %f, want 30", got)
	}
}

func TestThrottledSharedGateRefreshesEveryKeyOnce(t *testing.T) {
	th := NewThrottled[int](CPUScale{TicksPerSecond: 100, Cores: 1}, time.Second)
	for pid := 1; pid <= 3; pid++ {
		th.Rate(pid, 0, at(0))
	}

	// All keys of the poll at t=1 are recomputed, not just the first one.
	want := map[int]float64{1: 10, 2: 20, 3: 30}
	for pid := 1; pid <= 3; pid++ {
		if got := th.Rate(pid, uint64(pid*10), at(1)); !approx(got, want[pid]) {
			t.Errorf("pid %d = %f, want %f", pid, got, want[pid])
		}
	}

	// A repeated call for the same key at the gate time is served from cache.
	if got := th.Rate(2, 9999, at(1)); !approx(got, 20) {
		t.Errorf("repeat pid 2 = %f, want cached 20", got)
	}
}

func TestThrottledUnknownKeyWhileThrottled(t *testing.T) {
	th := NewThrottled[int](BytesPerSecond{}, time.Second)
	th.Rate(1, 0, at(0))

	if got := th.Rate(2, 500, at(0.5)); got != 0 {
		t.Fatalf("unseen key while throttled = %f, want 0", got)
	}
	if _, ok := th.cache[2]; ok {
		t.Fatal("unseen key should not be cached while throttled")
	}
	// Its first real sample happens when the gate next opens.
	if got := th.Rate(2, 500, at(1)); got != 0 {
		t.Errorf("first recorded sample = %f, want 0", got)
	}
	if got := th.Rate(2, 1500, at(2)); got != 1000 {
		t.Errorf("second recorded sample = %f, want 1000", got)
	}
}

func TestThrottledZeroIntervalNeverThrottles(t *testing.T) {
	th := NewThrottled[int](BytesPerSecond{}, 0)
	th.Rate(1, 0, at(0))
	if got := th.Rate(1, 100, at(0.5)); got != 200 {
		t.Errorf("rate = %f, want 200", got)
	}
}

func TestThrottledRetain(t *testing.T) {
	th := NewThrottled[int](BytesPerSecond{}, time.Second)
	th.Rate(1, 0, at(0))
	th.Rate(2, 0, at(0))

	th.RetainKeys(map[int]struct{}{1: {}})
	if th.Len() != 1 {
		t.Errorf("Len = %d, want 1", th.Len())
	}
	if _, ok := th.cache[2]; ok {
		t.Error("evicted key still cached")
	}
	if _, ok := th.cache[1]; !ok {
		t.Error("kept key lost its cache")
	}
}
