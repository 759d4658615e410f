package util

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/JohnDeved/dfmon/internal/theme"
)

// Bar renders a usage gauge of width cells between the theme's bracket glyphs.
// The filled part is split into low, medium and high bands at the theme's
// thresholds. A nil percentage means the usage is unknown and the empty part
// is drawn in the void color.
func Bar(width int, percentage *float64, t *theme.Theme) string {
	width = max(width, 0)
	low, medium, high := Bands(width, percentage, t)
	total := low + medium + high

	empty := theme.SlotLow
	if percentage == nil {
		empty = theme.SlotVoid
	}

	var sb strings.Builder
	sb.WriteString(t.CharBarOpen)
	sb.WriteString(paint(t, theme.SlotLow, t.CharBarFilled, low))
	sb.WriteString(paint(t, theme.SlotMedium, t.CharBarFilled, medium))
	sb.WriteString(paint(t, theme.SlotHigh, t.CharBarFilled, high))
	sb.WriteString(paint(t, empty, t.CharBarEmpty, width-total))
	sb.WriteString(t.CharBarClose)
	return sb.String()
}

// Bands splits the filled cells of a bar into its low, medium and high parts.
// Each band is clamped at zero so the sum is the filled length even when the
// high threshold is below the medium one.
func Bands(width int, percentage *float64, t *theme.Theme) (low, medium, high int) {
	pct := 0.0
	if percentage != nil {
		pct = *percentage
	}
	total := cells(pct*float64(width)/100, width)
	low = min(total, cells(float64(width)*t.ThresholdUsageMedium/100, width))
	medium = max(min(total, cells(float64(width)*t.ThresholdUsageHigh/100, width))-low, 0)
	high = total - low - medium
	return low, medium, high
}

// cells rounds a fractional cell count up and clamps it to [0, width].
func cells(v float64, width int) int {
	v = math.Ceil(v)
	if !(v > 0) {
		return 0
	}
	if v >= float64(width) {
		return width
	}
	return int(v)
}

func paint(t *theme.Theme, slot theme.Slot, glyph string, n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(t.Color(slot)).Render(strings.Repeat(glyph, n))
}
