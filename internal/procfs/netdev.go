package procfs

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

const (
	netDevHeaderLines = 2
	netDevFields      = 16
)

// Interfaces reads /proc/net/dev keyed by interface name.
func (r *Reader) Interfaces() map[string]model.InterfaceCounters {
	data := r.readProc("net/dev")
	if data == nil {
		return map[string]model.InterfaceCounters{}
	}
	return ParseNetDev(data)
}

// ParseNetDev decodes the body of /proc/net/dev. The two header lines are
// skipped; lines without a colon or with fewer than sixteen numeric
// columns are dropped.
func ParseNetDev(data []byte) map[string]model.InterfaceCounters {
	out := make(map[string]model.InterfaceCounters)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for line := 0; sc.Scan(); line++ {
		if line < netDevHeaderLines {
			continue
		}
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		fields := strings.Fields(rest)
		if name == "" || len(fields) < netDevFields {
			continue
		}
		var v [netDevFields]uint64
		bad := false
		for i := range v {
			n, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				bad = true
				break
			}
			v[i] = n
		}
		if bad {
			continue
		}
		out[name] = model.InterfaceCounters{
			Name: name,
			RX: model.RX{
				Bytes: v[0], Packets: v[1], Errs: v[2], Drop: v[3],
				FIFO: v[4], Frame: v[5], Compressed: v[6], Multicast: v[7],
			},
			TX: model.TX{
				Bytes: v[8], Packets: v[9], Errs: v[10], Drop: v[11],
				FIFO: v[12], Colls: v[13], Carrier: v[14], Compressed: v[15],
			},
		}
	}
	return out
}
