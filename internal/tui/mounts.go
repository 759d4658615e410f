package tui

import (
	"fmt"
	"strings"

	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/report"
	"github.com/JohnDeved/dfmon/internal/util"
)

// mountsModel manages the scrolling mount table.
type mountsModel struct {
	mounts []disk.Mount
	cursor int
	offset int // viewport scroll offset
	height int // visible rows
	err    error
}

func newMountsModel() mountsModel {
	return mountsModel{height: 20}
}

// setMounts replaces the rows and keeps the cursor on the same mount point.
func (v *mountsModel) setMounts(mounts []disk.Mount) {
	var current string
	if sel := v.selected(); sel != nil {
		current = sel.MountPoint
	}
	v.mounts = mounts
	v.err = nil
	for i, m := range mounts {
		if m.MountPoint == current {
			v.cursor = i
			break
		}
	}
	v.normalizeViewport()
}

func (v *mountsModel) setError(err error) {
	v.err = err
}

func (v *mountsModel) normalizeViewport() {
	total := len(v.mounts)
	if total == 0 {
		v.cursor = 0
		v.offset = 0
		return
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.cursor >= total {
		v.cursor = total - 1
	}
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.height > 0 && v.cursor >= v.offset+v.height {
		v.offset = v.cursor - v.height + 1
	}
	maxOffset := max(total-v.height, 0)
	if v.offset > maxOffset {
		v.offset = maxOffset
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

func (v *mountsModel) moveUp() {
	v.cursor--
	v.normalizeViewport()
}

func (v *mountsModel) moveDown() {
	v.cursor++
	v.normalizeViewport()
}

func (v *mountsModel) pageUp() {
	v.cursor -= max(v.height, 1)
	v.normalizeViewport()
}

func (v *mountsModel) pageDown() {
	v.cursor += max(v.height, 1)
	v.normalizeViewport()
}

func (v *mountsModel) goHome() {
	v.cursor = 0
	v.normalizeViewport()
}

func (v *mountsModel) goEnd() {
	v.cursor = len(v.mounts) - 1
	v.normalizeViewport()
}

func (v *mountsModel) selected() *disk.Mount {
	if v.cursor >= 0 && v.cursor < len(v.mounts) {
		return &v.mounts[v.cursor]
	}
	return nil
}

func (v *mountsModel) view(width int, opts report.Options, spin string) string {
	var sb strings.Builder

	if v.err != nil {
		sb.WriteString(errorStyle.Render("  Error: " + v.err.Error()))
		sb.WriteString("\n")
	}
	if len(v.mounts) == 0 {
		if v.err == nil {
			sb.WriteString(helpStyle.Render("  " + spin + " Reading filesystems..."))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	header, lines := report.HighlightedLines(v.mounts, opts, v.cursor, selectedStyle)
	sb.WriteString(header)
	sb.WriteString("\n")

	end := min(v.offset+v.height, len(v.mounts))
	for i := v.offset; i < end; i++ {
		sb.WriteString(lines[i])
		sb.WriteString("\n")
	}
	if opts.Total {
		sb.WriteString(lines[len(lines)-1])
		sb.WriteString("\n")
	}

	if len(v.mounts) > v.height {
		sb.WriteString(helpStyle.Render(
			fmt.Sprintf("  %d/%d filesystems", v.cursor+1, len(v.mounts)),
		))
		sb.WriteString("\n")
	}

	if sel := v.selected(); sel != nil {
		sb.WriteString("\n")
		sb.WriteString(detailStyle.Render(v.detail(sel, opts, width)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v *mountsModel) detail(m *disk.Mount, opts report.Options, width int) string {
	lines := []string{
		fmt.Sprintf("%s on %s (%s)", m.Device, util.TruncatePath(m.MountPoint, max(width-20, 10)), m.FSType),
	}
	if m.Alias != "" {
		lines = append(lines, "lvm: "+m.Alias)
	}
	lines = append(lines,
		fmt.Sprintf("bytes:  %s used of %s, %s free (%s)",
			util.FormatExact(m.Used), util.FormatExact(m.Total), util.FormatExact(m.Free), report.Percent(m.UsedPercent())),
		fmt.Sprintf("inodes: %s used of %s (%s)",
			util.FormatExact(m.InodesUsed), util.FormatExact(m.InodesTotal), report.Percent(m.InodesPercent())),
	)
	if len(m.Options) > 0 {
		lines = append(lines, "options: "+util.TruncatePath(strings.Join(m.Options, ","), max(width-12, 10)))
	}
	if m.Err != "" {
		lines = append(lines, errorStyle.Render("error: "+m.Err))
	}
	return strings.Join(lines, "\n")
}
