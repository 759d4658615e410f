// Package disk lists mounted filesystems and their usage.
package disk

import (
	"sort"

	"github.com/JohnDeved/dfmon/internal/util"
)

// Mount is one mounted filesystem with its usage figures.
type Mount struct {
	Device     string   `json:"device"`
	Alias      string   `json:"alias,omitempty"` // LVM form of a device-mapper device
	MountPoint string   `json:"mount_point"`
	FSType     string   `json:"fs_type"`
	Options    []string `json:"options,omitempty"`

	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"` // available to unprivileged users

	InodesTotal uint64 `json:"inodes_total"`
	InodesUsed  uint64 `json:"inodes_used"`
	InodesFree  uint64 `json:"inodes_free"`

	// Err holds the reason usage could not be read.
	Err string `json:"error,omitempty"`
}

// UsedPercent returns the usage as df computes it, used/(used+free). It
// returns nil when the filesystem reports no capacity.
func (m *Mount) UsedPercent() *float64 {
	return percent(m.Used, m.Free)
}

// InodesPercent is UsedPercent for inodes.
func (m *Mount) InodesPercent() *float64 {
	return percent(m.InodesUsed, m.InodesFree)
}

func percent(used, free uint64) *float64 {
	if used+free == 0 {
		return nil
	}
	p := float64(used) / float64(used+free) * 100
	return &p
}

// DisplayDevice picks the device name to show for the given alias mode.
func (m *Mount) DisplayDevice(mode AliasMode) string {
	switch mode {
	case AliasOnly:
		if m.Alias != "" {
			return m.Alias
		}
	case AliasBoth:
		if m.Alias != "" {
			return m.Device + " (" + m.Alias + ")"
		}
	}
	return m.Device
}

func newMount(device, mountPoint, fsType string, opts []string) Mount {
	m := Mount{
		Device:     device,
		MountPoint: mountPoint,
		FSType:     fsType,
		Options:    opts,
	}
	if alias, ok := util.LVMAlias(device); ok {
		m.Alias = alias
	}
	return m
}

// Total sums the usage of mounts into a single row.
func Total(mounts []Mount) Mount {
	t := Mount{Device: "total", MountPoint: "-", FSType: "-"}
	for _, m := range mounts {
		t.Total += m.Total
		t.Used += m.Used
		t.Free += m.Free
		t.InodesTotal += m.InodesTotal
		t.InodesUsed += m.InodesUsed
		t.InodesFree += m.InodesFree
	}
	return t
}

// SortByMountPoint orders mounts by mount point.
func SortByMountPoint(mounts []Mount) {
	sort.SliceStable(mounts, func(i, j int) bool {
		return mounts[i].MountPoint < mounts[j].MountPoint
	})
}
