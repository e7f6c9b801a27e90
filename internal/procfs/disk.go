package procfs

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/Dicklesworthstone/sysmoni/internal/model"
)

// Disk reports occupancy of the filesystem holding path. Failure yields a
// zero value carrying only the path.
func (r *Reader) Disk(path string) model.Disk {
	if r.statfs == nil {
		return model.Disk{Path: path}
	}
	d, err := r.statfs(path)
	if err != nil {
		r.logger.Debug("disk usage failed", "path", path, "error", err)
		return model.Disk{Path: path}
	}
	d.Path = path
	if d.Percent == 0 {
		d.Percent = percent(d.UsedBytes, d.TotalBytes)
	}
	return d
}

func diskUsage(path string) (model.Disk, error) {
	u, err := disk.UsageWithContext(context.Background(), path)
	if err != nil {
		return model.Disk{}, err
	}
	return model.Disk{
		TotalBytes: u.Total,
		UsedBytes:  u.Used,
		Percent:    u.UsedPercent,
	}, nil
}
