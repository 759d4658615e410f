package disk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	psdisk "github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/time/rate"
)

// pseudoFS are hidden unless all filesystems are requested.
var pseudoFS = map[string]bool{
	"autofs": true, "binfmt_misc": true, "bpf": true, "cgroup": true, "cgroup2": true,
	"configfs": true, "debugfs": true, "devpts": true, "devtmpfs": true, "efivarfs": true,
	"fusectl": true, "hugetlbfs": true, "mqueue": true, "nsfs": true, "proc": true,
	"pstore": true, "securityfs": true, "sysfs": true, "tracefs": true, "tmpfs": true,
	"rpc_pipefs": true, "overlay": true, "squashfs": true,
}

// Collector reads the mount table and the usage of each mount.
type Collector struct {
	limiter  *rate.Limiter
	workers  int
	all      bool
	errCount atomic.Int64

	partitions func(ctx context.Context, all bool) ([]psdisk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*psdisk.UsageStat, error)
}

// NewCollector creates a collector that issues at most statsPerSecond usage
// calls per second (unlimited when <= 0).
func NewCollector(statsPerSecond float64) *Collector {
	limit := rate.Inf
	if statsPerSecond > 0 {
		limit = rate.Limit(statsPerSecond)
	}
	return &Collector{
		limiter:    rate.NewLimiter(limit, 8),
		workers:    4,
		partitions: psdisk.PartitionsWithContext,
		usage:      psdisk.UsageWithContext,
	}
}

// SetAll controls whether pseudo and empty filesystems are listed.
func (c *Collector) SetAll(all bool) {
	c.all = all
}

// SetWorkers controls how many usage calls run in parallel.
func (c *Collector) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	c.workers = workers
}

// Errors returns how many usage reads have failed so far.
func (c *Collector) Errors() int64 {
	return c.errCount.Load()
}

// Collect returns the mounted filesystems sorted by mount point. When paths
// are given only the mounts containing those paths are returned.
func (c *Collector) Collect(ctx context.Context, paths ...string) ([]Mount, error) {
	parts, err := c.partitions(ctx, c.all || len(paths) > 0)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	// Later entries shadow earlier ones mounted at the same point.
	byPoint := make(map[string]int, len(parts))
	var mounts []Mount
	for _, p := range parts {
		m := newMount(p.Device, p.Mountpoint, p.Fstype, p.Opts)
		if i, ok := byPoint[p.Mountpoint]; ok {
			mounts[i] = m
			continue
		}
		byPoint[p.Mountpoint] = len(mounts)
		mounts = append(mounts, m)
	}

	if len(paths) > 0 {
		mounts, err = selectContaining(mounts, paths)
		if err != nil {
			return nil, err
		}
	} else if !c.all {
		mounts = filterPseudo(mounts)
	}

	if err := c.fillUsage(ctx, mounts); err != nil {
		return nil, err
	}

	if len(paths) == 0 && !c.all {
		kept := mounts[:0]
		for _, m := range mounts {
			if m.Total > 0 {
				kept = append(kept, m)
			}
		}
		mounts = kept
	}

	SortByMountPoint(mounts)
	return mounts, nil
}

func (c *Collector) fillUsage(ctx context.Context, mounts []Mount) error {
	if len(mounts) == 0 {
		return nil
	}
	workers := min(c.workers, len(mounts))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := c.readUsage(ctx, &mounts[idx]); err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Warn("Reading usage failed", "mount", mounts[idx].MountPoint, "err", err)
					mounts[idx].Err = err.Error()
					c.errCount.Add(1)
				}
			}
		}()
	}

	for i := range mounts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

func (c *Collector) readUsage(ctx context.Context, m *Mount) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u, err := c.usage(ctx, m.MountPoint)
	if err != nil {
		return err
	}
	m.Total = u.Total
	m.Used = u.Used
	m.Free = u.Free
	m.InodesTotal = u.InodesTotal
	m.InodesUsed = u.InodesUsed
	m.InodesFree = u.InodesFree
	return nil
}

func filterPseudo(mounts []Mount) []Mount {
	kept := make([]Mount, 0, len(mounts))
	for _, m := range mounts {
		if pseudoFS[m.FSType] {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// selectContaining picks, for every path, the mount with the longest mount
// point containing it. Each mount is returned once.
func selectContaining(mounts []Mount, paths []string) ([]Mount, error) {
	seen := make(map[string]bool)
	var selected []Mount
	for _, p := range paths {
		resolved, err := resolvePath(p)
		if err != nil {
			return nil, err
		}
		best := -1
		for i, m := range mounts {
			if !contains(m.MountPoint, resolved) {
				continue
			}
			if best < 0 || len(m.MountPoint) > len(mounts[best].MountPoint) {
				best = i
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("no filesystem found for %s", p)
		}
		if mp := mounts[best].MountPoint; !seen[mp] {
			seen[mp] = true
			selected = append(selected, mounts[best])
		}
	}
	return selected, nil
}

func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", p, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cannot access %s: %w", p, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	return abs, nil
}

func contains(mountPoint, path string) bool {
	if mountPoint == "/" || path == mountPoint {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(mountPoint, "/")+"/")
}
