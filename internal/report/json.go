package report

import (
	"encoding/json"
	"io"

	"github.com/JohnDeved/dfmon/internal/disk"
)

type mountOut struct {
	disk.Mount
	UsedPercent   *float64 `json:"used_percent"`
	InodesPercent *float64 `json:"inodes_percent"`
	Display       string   `json:"display"`
}

// JSON writes mounts with their computed percentages.
func JSON(w io.Writer, mounts []disk.Mount, opts Options) error {
	out := struct {
		Delimiter float64    `json:"delimiter"`
		Mounts    []mountOut `json:"mounts"`
		Total     *mountOut  `json:"total,omitempty"`
	}{
		Delimiter: opts.Delimiter,
		Mounts:    make([]mountOut, 0, len(mounts)),
	}
	for i := range mounts {
		out.Mounts = append(out.Mounts, newMountOut(&mounts[i], opts))
	}
	if opts.Total {
		t := disk.Total(mounts)
		mo := newMountOut(&t, opts)
		out.Total = &mo
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func newMountOut(m *disk.Mount, opts Options) mountOut {
	return mountOut{
		Mount:         *m,
		UsedPercent:   m.UsedPercent(),
		InodesPercent: m.InodesPercent(),
		Display:       m.DisplayDevice(opts.Alias),
	}
}
