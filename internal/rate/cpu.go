package rate

import (
	"sync"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// SystemCPU computes host-wide CPU usage from aggregate tick snapshots.
// Unlike Tracker it holds the last good value when a step carries no
// usable delta.
type SystemCPU struct {
	mu    sync.Mutex
	last  model.CPUStat
	seen  bool
	usage float64
}

// Usage records cur and returns 100 * (total - idle) / total over the
// deltas of the eight primary categories. The first call returns 0. A step
// whose total delta is not positive, or in which any category went
// backwards, keeps the previous result.
func (s *SystemCPU) Usage(cur model.CPUStat) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.last, s.seen
	s.last, s.seen = cur, true
	if !seen || decreased(prev, cur) {
		return s.usage
	}

	totalDelta := cur.Total() - prev.Total()
	if totalDelta == 0 {
		return s.usage
	}
	idleDelta := cur.Idle - prev.Idle
	usage := 100 * float64(totalDelta-idleDelta) / float64(totalDelta)
	s.usage = clampPercent(usage)
	return s.usage
}

func decreased(prev, cur model.CPUStat) bool {
	return cur.User < prev.User || cur.Nice < prev.Nice || cur.System < prev.System ||
		cur.Idle < prev.Idle || cur.IOWait < prev.IOWait || cur.IRQ < prev.IRQ ||
		cur.SoftIRQ < prev.SoftIRQ || cur.Steal < prev.Steal
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// CoreSet tracks per-core usage, growing as cores appear.
type CoreSet struct {
	mu    sync.Mutex
	cores []*SystemCPU
}

// Usage returns one percentage per entry of stats, in order.
func (c *CoreSet) Usage(stats []model.CPUStat) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.cores) < len(stats) {
		c.cores = append(c.cores, &SystemCPU{})
	}
	out := make([]float64, len(stats))
	for i, st := range stats {
		out[i] = c.cores[i].Usage(st)
	}
	return out
}
