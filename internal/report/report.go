// Package report renders collected mounts as a text table, JSON or HTML.
package report

import (
	"fmt"

	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/theme"
	"github.com/JohnDeved/dfmon/internal/util"
)

// Options controls how mounts are rendered.
type Options struct {
	Theme     *theme.Theme
	BarWidth  int
	Delimiter float64
	Inodes    bool
	Raw       bool
	Alias     disk.AliasMode
	Total     bool
}

// Column headings, in output order. The bar column has no heading.
func (o Options) headings() []string {
	if o.Inodes {
		return []string{"Filesystem", "Type", "Inodes", "IUsed", "IFree", "IUse%", "", "Mounted on"}
	}
	return []string{"Filesystem", "Type", "Size", "Used", "Avail", "Use%", "", "Mounted on"}
}

// rightAligned marks the numeric columns.
var rightAligned = []bool{false, false, true, true, true, true, false, false}

// row is one rendered line of the table; the bar cell may carry escapes.
type row []string

func (o Options) count(v uint64) string {
	if o.Raw {
		return util.FormatExact(v)
	}
	return util.FormatCount(float64(v), o.Delimiter)
}

// Percent formats a usage percentage, "-" when unknown.
func Percent(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

func (o Options) row(m *disk.Mount) row {
	var total, used, free uint64
	var pct *float64
	if o.Inodes {
		total, used, free, pct = m.InodesTotal, m.InodesUsed, m.InodesFree, m.InodesPercent()
	} else {
		total, used, free, pct = m.Total, m.Used, m.Free, m.UsedPercent()
	}
	return row{
		m.DisplayDevice(o.Alias),
		m.FSType,
		o.count(total),
		o.count(used),
		o.count(free),
		Percent(pct),
		util.Bar(o.BarWidth, pct, o.Theme),
		m.MountPoint,
	}
}

func (o Options) rows(mounts []disk.Mount) []row {
	rows := make([]row, 0, len(mounts)+1)
	for i := range mounts {
		rows = append(rows, o.row(&mounts[i]))
	}
	if o.Total {
		t := disk.Total(mounts)
		rows = append(rows, o.row(&t))
	}
	return rows
}
