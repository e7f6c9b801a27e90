package procfs

import (
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Memory reads RAM and swap from meminfo. Used RAM follows htop: buffers
// and reclaimable cache do not count, shared memory does.
func (r *Reader) Memory() model.Memory {
	vm, err := mem.VirtualMemoryWithContext(r.hostContext())
	if err != nil || vm == nil || vm.Total == 0 {
		r.logger.Debug("memory unavailable", "root", r.procRoot, "error", err)
		return model.Memory{}
	}
	return memoryFrom(vm)
}

// memoryFrom converts gopsutil's view of meminfo. Its Cached already
// includes SReclaimable.
func memoryFrom(vm *mem.VirtualMemoryStat) model.Memory {
	cached := vm.Cached
	if vm.Shared <= cached {
		cached -= vm.Shared
	} else {
		cached = 0
	}
	notUsed := vm.Free + cached + vm.Buffers
	var used uint64
	switch {
	case vm.Total >= notUsed:
		used = vm.Total - notUsed
	case vm.Total >= vm.Free:
		used = vm.Total - vm.Free
	}

	m := model.Memory{
		TotalBytes: vm.Total,
		UsedBytes:  used,
	}
	// Swap comes from the same meminfo pass; mem.SwapMemory asks sysinfo(2)
	// and would ignore the proc root.
	if vm.SwapTotal >= vm.SwapFree {
		m.SwapTotal = vm.SwapTotal
		m.SwapUsed = vm.SwapTotal - vm.SwapFree
	}
	m.Percent = percent(m.UsedBytes, m.TotalBytes)
	m.SwapPercent = percent(m.SwapUsed, m.SwapTotal)
	return m
}

// LoadAvg reads the 1, 5 and 15 minute load averages.
func (r *Reader) LoadAvg() model.Load {
	avg, err := load.AvgWithContext(r.hostContext())
	if err != nil || avg == nil {
		r.logger.Debug("load average unavailable", "error", err)
		return model.Load{}
	}
	return model.Load{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
}

func percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) * 100 / float64(total)
}
