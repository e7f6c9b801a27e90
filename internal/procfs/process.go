package procfs

import (
	"bytes"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Field offsets counted from the state column, the first token after the
// closing parenthesis of the command name.
const (
	fieldState = 0
	fieldUTime = 11
	fieldSTime = 12
	fieldVSize = 20
	fieldRSS   = 21
)

// Process reads /proc/<pid>/stat.
func (r *Reader) Process(pid int) (model.ProcessCounters, error) {
	if r.proc == nil {
		return model.ProcessCounters{}, fmt.Errorf("%w: pid %d: no proc root", ErrNotFound, pid)
	}
	name := strconv.Itoa(pid) + "/stat"
	data, err := fs.ReadFile(r.proc, name)
	if err != nil {
		return model.ProcessCounters{}, fmt.Errorf("%w: pid %d: %v", ErrNotFound, pid, err)
	}
	p, err := ParseProcessStat(data, r.pageSize)
	if err != nil {
		return model.ProcessCounters{}, fmt.Errorf("%w: pid %d: %v", ErrNotFound, pid, err)
	}
	p.PID = pid
	return p, nil
}

// Processes enumerates every numeric directory of the proc root in one
// pass. Processes that exit mid-pass or carry malformed records are left
// out. Order follows the directory listing.
func (r *Reader) Processes() []model.ProcessCounters {
	if r.proc == nil {
		return nil
	}
	entries, err := fs.ReadDir(r.proc, ".")
	if err != nil {
		r.logger.Debug("cannot list proc root", "error", err)
		return nil
	}
	procs := make([]model.ProcessCounters, 0, len(entries))
	for _, e := range entries {
		pid, ok := parsePID(e.Name())
		if !ok || !e.IsDir() {
			continue
		}
		p, err := r.Process(pid)
		if err != nil {
			continue
		}
		procs = append(procs, p)
	}
	return procs
}

// StateCounts tallies processes by their state code.
func StateCounts(procs []model.ProcessCounters) map[string]int {
	counts := make(map[string]int)
	for _, p := range procs {
		counts[string(p.State)]++
	}
	return counts
}

func parsePID(name string) (int, bool) {
	if name == "" || name[0] < '0' || name[0] > '9' {
		return 0, false
	}
	pid, err := strconv.Atoi(name)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// ParseProcessStat decodes one /proc/<pid>/stat record. The command name
// may contain spaces and parentheses, so it spans from the first "(" to
// the last ")". pageSize converts the RSS page count to bytes.
func ParseProcessStat(data []byte, pageSize uint64) (model.ProcessCounters, error) {
	open := bytes.IndexByte(data, '(')
	closing := bytes.LastIndexByte(data, ')')
	if open < 0 || closing < open {
		return model.ProcessCounters{}, fmt.Errorf("no command name")
	}
	fields := strings.Fields(string(data[closing+1:]))
	if len(fields) <= fieldRSS {
		return model.ProcessCounters{}, fmt.Errorf("short record: %d fields", len(fields))
	}
	if len(fields[fieldState]) != 1 {
		return model.ProcessCounters{}, fmt.Errorf("bad state %q", fields[fieldState])
	}

	var nums [4]uint64
	for i, idx := range []int{fieldUTime, fieldSTime, fieldVSize, fieldRSS} {
		v, err := strconv.ParseUint(fields[idx], 10, 64)
		if err != nil {
			return model.ProcessCounters{}, fmt.Errorf("field %d: %w", idx, err)
		}
		nums[i] = v
	}

	p := model.ProcessCounters{
		Name:     string(data[open+1 : closing]),
		State:    fields[fieldState][0],
		UTime:    nums[0],
		STime:    nums[1],
		VSize:    nums[2],
		RSSPages: nums[3],
		RSSBytes: nums[3] * pageSize,
	}
	if pid, err := strconv.Atoi(strings.TrimSpace(string(data[:open]))); err == nil {
		p.PID = pid
	}
	return p, nil
}
