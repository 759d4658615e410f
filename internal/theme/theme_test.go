package theme

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func writeTheme(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing theme: %v", err)
	}
	return path
}

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range Names() {
		th, ok := Builtin(name)
		if !ok {
			t.Fatalf("Builtin(%q) missing", name)
		}
		if th.Name != name {
			t.Errorf("Builtin(%q).Name = %q", name, th.Name)
		}
		if err := th.Validate(); err != nil {
			t.Errorf("built-in theme %q invalid: %v", name, err)
		}
	}
}

func TestValidateInconsistentThresholds(t *testing.T) {
	th := Default()
	th.ThresholdUsageMedium = 80
	th.ThresholdUsageHigh = 40
	err := th.Validate()
	if !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
	if !strings.Contains(err.Error(), "below threshold_usage_medium") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRanges(t *testing.T) {
	th := Default()
	th.ThresholdUsageHigh = 120
	if err := th.Validate(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme for threshold > 100, got %v", err)
	}
}

func TestValidateGlyphs(t *testing.T) {
	for _, glyph := range []string{"", "ab", "中"} {
		th := Default()
		th.CharBarFilled = glyph
		if err := th.Validate(); !errors.Is(err, ErrInvalidTheme) {
			t.Errorf("glyph %q accepted", glyph)
		}
	}
}

func TestValidateColors(t *testing.T) {
	th := Default()
	th.ColorUsageHigh = "not-a-color"
	if err := th.Validate(); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme for bad color, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    lipgloss.Color
		wantErr bool
	}{
		{"green", "2", false},
		{"Bright-Red", "9", false},
		{"grey", "8", false},
		{"208", "208", false},
		{"#ff8800", "#ff8800", false},
		{"#F80", "#f80", false},
		{"256", "", true},
		{"#12345", "", true},
		{"#zzzzzz", "", true},
		{"chartreuse", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorFallsBackToDefaults(t *testing.T) {
	var th Theme
	want := map[Slot]lipgloss.Color{
		SlotLow:    "2",
		SlotMedium: "3",
		SlotHigh:   "1",
		SlotVoid:   "2",
	}
	for slot, c := range want {
		if got := th.Color(slot); got != c {
			t.Errorf("unset %s color = %q, want %q", slot, got, c)
		}
	}

	th.ColorUsageHigh = "magenta"
	if got := th.Color(SlotHigh); got != "5" {
		t.Errorf("configured high color = %q, want 5", got)
	}
	th.ColorUsageLow = "bogus"
	if got := th.Color(SlotLow); got != "2" {
		t.Errorf("unparseable low color = %q, want default 2", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeTheme(t, dir, "ocean.toml", `
threshold_usage_medium = 60.0
threshold_usage_high = 90.0
color_usage_low = "cyan"
char_bar_filled = "="
`)

	th, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if th.Name != "ocean" {
		t.Errorf("Name = %q, want ocean", th.Name)
	}
	if th.ThresholdUsageMedium != 60 || th.ThresholdUsageHigh != 90 {
		t.Errorf("thresholds = %v/%v", th.ThresholdUsageMedium, th.ThresholdUsageHigh)
	}
	if th.ColorUsageLow != "cyan" || th.CharBarFilled != "=" {
		t.Errorf("unexpected theme: %+v", th)
	}
	if th.CharBarOpen != "[" || th.ColorUsageHigh != "red" {
		t.Errorf("defaults not kept: %+v", th)
	}
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"unknown-key", "char_bar_fill = \"#\"\n", true},
		{"inverted", "threshold_usage_medium = 90.0\nthreshold_usage_high = 10.0\n", true},
		{"syntax", "threshold_usage_medium = \n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTheme(t, dir, tt.name+".toml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrInvalidTheme) != tt.invalid {
				t.Fatalf("errors.Is(ErrInvalidTheme) = %v for %v", !tt.invalid, err)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	writeTheme(t, dir, "custom.toml", "char_bar_empty = \"-\"\n")

	th, err := Lookup("ascii", dir)
	if err != nil || th.CharBarFilled != "#" {
		t.Fatalf("Lookup(ascii) = %+v, %v", th, err)
	}

	th, err = Lookup("custom", dir)
	if err != nil {
		t.Fatalf("Lookup(custom) returned error: %v", err)
	}
	if th.CharBarEmpty != "-" || th.Name != "custom" {
		t.Fatalf("unexpected custom theme: %+v", th)
	}

	th, err = Lookup("", dir)
	if err != nil || th.Name != "default" {
		t.Fatalf("Lookup(\"\") = %+v, %v", th, err)
	}

	if _, err := Lookup("missing", dir); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	th := Default()
	var buf bytes.Buffer
	if err := th.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	path := writeTheme(t, t.TempDir(), "copy.toml", buf.String())
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded.Name = th.Name
	if loaded != th {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, th)
	}
}

func TestCSSColor(t *testing.T) {
	tests := map[lipgloss.Color]string{
		"2":       "#00cd00",
		"9":       "#ff0000",
		"16":      "#000000",
		"196":     "#ff0000",
		"231":     "#ffffff",
		"244":     "#808080",
		"#abcdef": "#abcdef",
		"nope":    "",
	}
	for in, want := range tests {
		if got := CSSColor(in); got != want {
			t.Errorf("CSSColor(%q) = %q, want %q", in, got, want)
		}
	}
}
