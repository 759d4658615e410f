package theme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Slot identifies one of the bar color choices of a theme.
type Slot int

const (
	SlotLow Slot = iota
	SlotMedium
	SlotHigh
	SlotVoid
)

func (s Slot) String() string {
	switch s {
	case SlotLow:
		return "low"
	case SlotMedium:
		return "medium"
	case SlotHigh:
		return "high"
	case SlotVoid:
		return "void"
	default:
		return "unknown"
	}
}

// DefaultColors is consulted whenever a theme leaves a slot unset.
var DefaultColors = map[Slot]string{
	SlotLow:    "green",
	SlotMedium: "yellow",
	SlotHigh:   "red",
	SlotVoid:   "green",
}

var namedColors = map[string]string{
	"black":          "0",
	"red":            "1",
	"green":          "2",
	"yellow":         "3",
	"blue":           "4",
	"magenta":        "5",
	"cyan":           "6",
	"white":          "7",
	"bright_black":   "8",
	"gray":           "8",
	"grey":           "8",
	"bright_red":     "9",
	"bright_green":   "10",
	"bright_yellow":  "11",
	"bright_blue":    "12",
	"bright_magenta": "13",
	"bright_cyan":    "14",
	"bright_white":   "15",
}

// ParseColor converts a color name, an ANSI index (0-255) or a hex value
// (#rgb or #rrggbb) into a lipgloss color.
func ParseColor(s string) (lipgloss.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, ok := namedColors[strings.ReplaceAll(s, "-", "_")]; ok {
		return lipgloss.Color(code), nil
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return "", fmt.Errorf("invalid hex color %q", s)
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", fmt.Errorf("invalid hex color %q", s)
		}
		return lipgloss.Color(s), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return "", fmt.Errorf("unknown color %q", s)
	}
	return lipgloss.Color(strconv.Itoa(n)), nil
}

// Color resolves the color of a slot, falling back to DefaultColors when the
// slot is unset or unparseable.
func (t *Theme) Color(s Slot) lipgloss.Color {
	if raw := t.slotValue(s); raw != "" {
		if c, err := ParseColor(raw); err == nil {
			return c
		}
	}
	c, _ := ParseColor(DefaultColors[s])
	return c
}

func (t *Theme) slotValue(s Slot) string {
	switch s {
	case SlotLow:
		return t.ColorUsageLow
	case SlotMedium:
		return t.ColorUsageMedium
	case SlotHigh:
		return t.ColorUsageHigh
	case SlotVoid:
		return t.ColorUsageVoid
	}
	return ""
}

// xterm defaults for the 16 base colors.
var ansiHex = [16]string{
	"#000000", "#cd0000", "#00cd00", "#cdcd00", "#0000ee", "#cd00cd", "#00cdcd", "#e5e5e5",
	"#7f7f7f", "#ff0000", "#00ff00", "#ffff00", "#5c5cff", "#ff00ff", "#00ffff", "#ffffff",
}

// CSSColor converts a terminal color into a CSS hex color using the xterm
// palette. It returns "" for colors it cannot map.
func CSSColor(c lipgloss.Color) string {
	s := string(c)
	if strings.HasPrefix(s, "#") {
		return s
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return ""
	}
	switch {
	case n < 16:
		return ansiHex[n]
	case n < 232:
		n -= 16
		levels := [6]int{0, 95, 135, 175, 215, 255}
		return fmt.Sprintf("#%02x%02x%02x", levels[n/36], levels[n/6%6], levels[n%6])
	default:
		g := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", g, g, g)
	}
}
