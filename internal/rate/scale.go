// Package rate turns monotonic kernel counters into rates.
//
// Every tracker owns its retained snapshots and never reads the clock:
// callers pass the sample time explicitly, which keeps delta and throttle
// behavior deterministic under test.
package rate

import (
	"time"

	"github.com/tklauser/go-sysconf"
	"github.com/tklauser/numcpus"
)

// DefaultTicksPerSecond is USER_HZ on every mainstream Linux build.
const DefaultTicksPerSecond = 100

// Scale converts a positive counter delta observed over elapsed into a rate.
// elapsed is always > 0 when Rate is called.
type Scale interface {
	Rate(delta uint64, elapsed time.Duration) float64
}

// BytesPerSecond reports byte counters as bytes/s, uncapped.
type BytesPerSecond struct{}

func (BytesPerSecond) Rate(delta uint64, elapsed time.Duration) float64 {
	return float64(delta) / elapsed.Seconds()
}

// CPUScale reports tick counters as a percentage:
// delta / (seconds * TicksPerSecond) * 100 * Cores, capped at 100 * Cores.
type CPUScale struct {
	TicksPerSecond float64
	Cores          int
}

func (s CPUScale) Rate(delta uint64, elapsed time.Duration) float64 {
	tps := s.TicksPerSecond
	if tps <= 0 {
		tps = DefaultTicksPerSecond
	}
	limit := s.Limit()
	pct := float64(delta) / (elapsed.Seconds() * tps) * limit
	if pct > limit {
		pct = limit
	}
	return pct
}

// Limit is the largest percentage the scale can report.
func (s CPUScale) Limit() float64 {
	cores := s.Cores
	if cores < 1 {
		cores = 1
	}
	return 100 * float64(cores)
}

// HostCPUScale asks the running kernel for CLK_TCK and the online core
// count, falling back to DefaultTicksPerSecond and a single core.
func HostCPUScale() CPUScale {
	s := CPUScale{TicksPerSecond: DefaultTicksPerSecond, Cores: 1}
	if tck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && tck > 0 {
		s.TicksPerSecond = float64(tck)
	}
	if n, err := numcpus.GetOnline(); err == nil && n > 0 {
		s.Cores = n
	}
	return s
}
