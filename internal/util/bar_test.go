package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/JohnDeved/dfmon/internal/theme"
)

func withANSI(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func pct(v float64) *float64 { return &v }

func TestBarWidth(t *testing.T) {
	withANSI(t)
	th := theme.Default()
	for _, width := range []int{0, 1, 7, 20, 33} {
		for _, p := range []*float64{nil, pct(0), pct(0.1), pct(49.9), pct(50), pct(74), pct(99.99), pct(100)} {
			out := Bar(width, p, &th)
			if got := lipgloss.Width(out); got != width+2 {
				t.Errorf("Bar(%d, %v) visible width = %d, want %d", width, p, got, width+2)
			}
		}
	}
}

func TestBarBands(t *testing.T) {
	th := theme.Default() // medium 50, high 75
	tests := []struct {
		width             int
		percentage        *float64
		low, medium, high int
	}{
		{20, nil, 0, 0, 0},
		{20, pct(0), 0, 0, 0},
		{20, pct(1), 1, 0, 0},
		{20, pct(50), 10, 0, 0},
		{20, pct(51), 10, 1, 0},
		{20, pct(75), 10, 5, 0},
		{20, pct(80), 10, 5, 1},
		{20, pct(100), 10, 5, 5},
		{10, pct(33), 4, 0, 0},
		{0, pct(100), 0, 0, 0},
	}
	for _, tt := range tests {
		low, medium, high := Bands(tt.width, tt.percentage, &th)
		if low != tt.low || medium != tt.medium || high != tt.high {
			t.Errorf("Bands(%d, %v) = %d/%d/%d, want %d/%d/%d",
				tt.width, tt.percentage, low, medium, high, tt.low, tt.medium, tt.high)
		}
	}
}

func TestBarBandsSumToFill(t *testing.T) {
	th := theme.Default()
	for width := 0; width <= 100; width++ {
		for p := 0; p <= 100; p++ {
			v := float64(p)
			low, medium, high := Bands(width, &v, &th)
			if low < 0 || medium < 0 || high < 0 {
				t.Fatalf("negative band at width %d pct %d: %d/%d/%d", width, p, low, medium, high)
			}
			want := (p*width + 99) / 100
			if got := low + medium + high; got != want {
				t.Fatalf("fill at width %d pct %d = %d, want %d", width, p, got, want)
			}
		}
	}
}

func TestBarWholePercentNoOverfill(t *testing.T) {
	th := theme.Default()
	tests := []struct {
		width int
		pct   float64
		want  int
	}{
		{50, 14, 7},
		{25, 28, 7},
		{10, 30, 3},
	}
	for _, tt := range tests {
		low, medium, high := Bands(tt.width, &tt.pct, &th)
		if got := low + medium + high; got != tt.want {
			t.Errorf("fill at width %d pct %v = %d, want %d", tt.width, tt.pct, got, tt.want)
		}
	}
}

func TestBarInconsistentThresholds(t *testing.T) {
	th := theme.Default()
	th.ThresholdUsageMedium = 80
	th.ThresholdUsageHigh = 40

	low, medium, high := Bands(10, pct(100), &th)
	if low != 8 || medium != 0 || high != 2 {
		t.Fatalf("bands = %d/%d/%d, want 8/0/2", low, medium, high)
	}
	low, medium, high = Bands(10, pct(30), &th)
	if low != 3 || medium != 0 || high != 0 {
		t.Fatalf("bands = %d/%d/%d, want 3/0/0", low, medium, high)
	}
	if got := lipgloss.Width(Bar(10, pct(100), &th)); got != 12 {
		t.Fatalf("visible width = %d, want 12", got)
	}
}

func TestBarOutOfRangePercentage(t *testing.T) {
	th := theme.Default()
	for _, p := range []float64{-10, 150} {
		low, medium, high := Bands(10, &p, &th)
		if total := low + medium + high; total < 0 || total > 10 {
			t.Errorf("pct %v gave fill %d", p, total)
		}
	}
}

func TestBarColors(t *testing.T) {
	withANSI(t)
	th := theme.Default()
	th.ColorUsageVoid = ""

	full := Bar(20, pct(100), &th)
	for _, seq := range []string{"\x1b[32m", "\x1b[33m", "\x1b[31m"} {
		if !strings.Contains(full, seq) {
			t.Errorf("full bar missing %q: %q", seq, full)
		}
	}

	void := Bar(10, nil, &th)
	if !strings.Contains(void, "\x1b[32m") {
		t.Errorf("void bar should fall back to green: %q", void)
	}
	if strings.Contains(void, "\x1b[31m") || strings.Contains(void, "\x1b[33m") {
		t.Errorf("void bar has fill colors: %q", void)
	}

	th = theme.Default()
	if void := Bar(10, nil, &th); !strings.Contains(void, "\x1b[34m") {
		t.Errorf("void bar should use the theme's blue: %q", void)
	}
}

func TestBarPlainLayout(t *testing.T) {
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })

	th, _ := theme.Builtin("ascii")
	tests := []struct {
		width      int
		percentage *float64
		want       string
	}{
		{0, pct(50), "[]"},
		{10, nil, "[..........]"},
		{10, pct(0), "[..........]"},
		{10, pct(42), "[#####.....]"},
		{10, pct(100), "[##########]"},
	}
	for _, tt := range tests {
		if got := ansi.Strip(Bar(tt.width, tt.percentage, &th)); got != tt.want {
			t.Errorf("Bar(%d, %v) = %q, want %q", tt.width, tt.percentage, got, tt.want)
		}
	}
}
