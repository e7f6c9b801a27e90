package rate

import (
	"time"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Direction selects the RX or TX half of an interface's counters.
type Direction uint8

const (
	Receive Direction = iota
	Transmit
)

func (d Direction) String() string {
	if d == Transmit {
		return "tx"
	}
	return "rx"
}

// NetKey identifies one counter stream: an interface in one direction.
type NetKey struct {
	Name string
	Dir  Direction
}

// Throughput is the derived byte rate of one interface.
type Throughput struct {
	RX float64 // bytes/s
	TX float64 // bytes/s
}

// Network derives byte rates for every interface of a /proc/net/dev pass.
type Network struct {
	tracker *Tracker[NetKey]
}

func NewNetwork() *Network {
	return &Network{tracker: NewTracker[NetKey](BytesPerSecond{})}
}

// Observe records one pass and returns the rate per interface name.
// Interfaces missing from ifaces are forgotten, so a recreated interface
// starts over with a first sample.
func (n *Network) Observe(ifaces map[string]model.InterfaceCounters, now time.Time) map[string]Throughput {
	out := make(map[string]Throughput, len(ifaces))
	for name, c := range ifaces {
		out[name] = Throughput{
			RX: n.tracker.Rate(NetKey{Name: name, Dir: Receive}, c.RX.Bytes, now),
			TX: n.tracker.Rate(NetKey{Name: name, Dir: Transmit}, c.TX.Bytes, now),
		}
	}
	n.tracker.Retain(func(k NetKey) bool {
		_, ok := ifaces[k.Name]
		return ok
	})
	return out
}
