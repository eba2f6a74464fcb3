package health

import (
	"context"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is the host snapshot reported by /debug.
type HostStats struct {
	Load1         float64 `json:"load_1"`
	Load5         float64 `json:"load_5"`
	MemoryUsedPct float64 `json:"memory_used_pct"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
}

// sampleHost reads load averages and virtual memory through gopsutil.
func sampleHost(ctx context.Context) (HostStats, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return HostStats{}, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return HostStats{}, err
	}
	return HostStats{
		Load1:         avg.Load1,
		Load5:         avg.Load5,
		MemoryUsedPct: vm.UsedPercent,
		MemoryTotalMB: vm.Total / 1024 / 1024,
	}, nil
}
