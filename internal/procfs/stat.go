package procfs

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// minCPUFields is user, nice, system, idle; everything after is optional.
const minCPUFields = 4

// SystemCPU returns the aggregate "cpu" line of /proc/stat, or a zero
// snapshot when it cannot be read.
func (r *Reader) SystemCPU() model.CPUStat {
	var out model.CPUStat
	r.scanStat(func(label string, st model.CPUStat) bool {
		if label == "cpu" {
			out = st
			return false
		}
		return true
	})
	return out
}

// PerCPU returns the cpuN lines of /proc/stat in file order.
func (r *Reader) PerCPU() []model.CPUStat {
	var out []model.CPUStat
	r.scanStat(func(label string, st model.CPUStat) bool {
		if label != "cpu" {
			out = append(out, st)
		}
		return true
	})
	return out
}

func (r *Reader) scanStat(fn func(label string, st model.CPUStat) bool) {
	data := r.readProc("stat")
	if data == nil {
		return
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}
		fields := strings.Fields(line)
		st, ok := ParseCPUFields(fields[1:])
		if !ok {
			r.logger.Debug("skipping malformed cpu line", "line", line)
			continue
		}
		if !fn(fields[0], st) {
			return
		}
	}
}

// ParseCPUFields decodes the numeric columns of a /proc/stat cpu line.
// Columns beyond the ten known ones are ignored and missing trailing
// columns decode as zero.
func ParseCPUFields(fields []string) (model.CPUStat, bool) {
	if len(fields) < minCPUFields {
		return model.CPUStat{}, false
	}
	var vals [10]uint64
	for i := 0; i < len(vals) && i < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return model.CPUStat{}, false
		}
		vals[i] = v
	}
	return model.CPUStat{
		User:      vals[0],
		Nice:      vals[1],
		System:    vals[2],
		Idle:      vals[3],
		IOWait:    vals[4],
		IRQ:       vals[5],
		SoftIRQ:   vals[6],
		Steal:     vals[7],
		Guest:     vals[8],
		GuestNice: vals[9],
	}, true
}
