// Package theme holds the colors, thresholds and glyphs used to draw usage bars.
package theme

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-runewidth"
)

var (
	// ErrInvalidTheme is wrapped by every validation failure.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrUnknownTheme is returned when a theme name resolves to nothing.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Theme is a read-only bundle of bar thresholds, colors and glyphs.
// Empty color fields are unset and resolve through DefaultColors.
type Theme struct {
	Name string `toml:"-" json:"name"`

	// Thresholds are percentages of the bar width.
	ThresholdUsageMedium float64 `toml:"threshold_usage_medium" json:"threshold_usage_medium"`
	ThresholdUsageHigh   float64 `toml:"threshold_usage_high" json:"threshold_usage_high"`

	ColorUsageLow    string `toml:"color_usage_low,omitempty" json:"color_usage_low,omitempty"`
	ColorUsageMedium string `toml:"color_usage_medium,omitempty" json:"color_usage_medium,omitempty"`
	ColorUsageHigh   string `toml:"color_usage_high,omitempty" json:"color_usage_high,omitempty"`
	ColorUsageVoid   string `toml:"color_usage_void,omitempty" json:"color_usage_void,omitempty"`

	CharBarFilled string `toml:"char_bar_filled" json:"char_bar_filled"`
	CharBarEmpty  string `toml:"char_bar_empty" json:"char_bar_empty"`
	CharBarOpen   string `toml:"char_bar_open" json:"char_bar_open"`
	CharBarClose  string `toml:"char_bar_close" json:"char_bar_close"`
}

var builtins = map[string]Theme{
	"default": {
		ThresholdUsageMedium: 50,
		ThresholdUsageHigh:   75,
		ColorUsageLow:        "green",
		ColorUsageMedium:     "yellow",
		ColorUsageHigh:       "red",
		ColorUsageVoid:       "blue",
		CharBarFilled:        "■",
		CharBarEmpty:         "■",
		CharBarOpen:          "[",
		CharBarClose:         "]",
	},
	"ascii": {
		ThresholdUsageMedium: 50,
		ThresholdUsageHigh:   75,
		ColorUsageVoid:       "blue",
		CharBarFilled:        "#",
		CharBarEmpty:         ".",
		CharBarOpen:          "[",
		CharBarClose:         "]",
	},
	"mono": {
		ThresholdUsageMedium: 50,
		ThresholdUsageHigh:   75,
		ColorUsageLow:        "white",
		ColorUsageMedium:     "white",
		ColorUsageHigh:       "bright_white",
		ColorUsageVoid:       "gray",
		CharBarFilled:        "█",
		CharBarEmpty:         "░",
		CharBarOpen:          "│",
		CharBarClose:         "│",
	},
}

// Default returns the default built-in theme.
func Default() Theme {
	t, _ := Builtin("default")
	return t
}

// Builtin returns a copy of the named built-in theme.
func Builtin(name string) (Theme, bool) {
	t, ok := builtins[name]
	if !ok {
		return Theme{}, false
	}
	t.Name = name
	return t, true
}

// Names lists the built-in theme names.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// glyphWidth measures glyphs with East Asian ambiguous characters as a
// single cell regardless of the user's locale.
var glyphWidth = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// Validate reports every inconsistency in the theme.
func (t *Theme) Validate() error {
	var errs []error
	for _, th := range []struct {
		name  string
		value float64
	}{
		{"threshold_usage_medium", t.ThresholdUsageMedium},
		{"threshold_usage_high", t.ThresholdUsageHigh},
	} {
		if th.value < 0 || th.value > 100 {
			errs = append(errs, fmt.Errorf("%w: %s %v outside 0..100", ErrInvalidTheme, th.name, th.value))
		}
	}
	if t.ThresholdUsageHigh < t.ThresholdUsageMedium {
		errs = append(errs, fmt.Errorf("%w: threshold_usage_high %v below threshold_usage_medium %v",
			ErrInvalidTheme, t.ThresholdUsageHigh, t.ThresholdUsageMedium))
	}
	for _, g := range []struct {
		name  string
		glyph string
	}{
		{"char_bar_filled", t.CharBarFilled},
		{"char_bar_empty", t.CharBarEmpty},
		{"char_bar_open", t.CharBarOpen},
		{"char_bar_close", t.CharBarClose},
	} {
		if w := glyphWidth.StringWidth(g.glyph); w != 1 {
			errs = append(errs, fmt.Errorf("%w: %s %q must be one cell wide, got %d", ErrInvalidTheme, g.name, g.glyph, w))
		}
	}
	for _, s := range []Slot{SlotLow, SlotMedium, SlotHigh, SlotVoid} {
		raw := t.slotValue(s)
		if raw == "" {
			continue
		}
		if _, err := ParseColor(raw); err != nil {
			errs = append(errs, fmt.Errorf("%w: color_usage_%s: %v", ErrInvalidTheme, s, err))
		}
	}
	return errors.Join(errs...)
}

// Load reads a TOML theme file. Keys missing from the file keep the values of
// the default theme; unknown keys are rejected.
func Load(path string) (Theme, error) {
	t := Default()
	t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	md, err := toml.DecodeFile(path, &t)
	if err != nil {
		return Theme{}, fmt.Errorf("could not decode theme file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Theme{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidTheme, path, strings.Join(keys, ", "))
	}
	if err := t.Validate(); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}

// Lookup resolves a theme by built-in name, by <dir>/<name>.toml, or by an
// explicit file path.
func Lookup(name, dir string) (Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if t, ok := Builtin(name); ok {
		return t, nil
	}

	path := name
	if !strings.ContainsRune(name, os.PathSeparator) && filepath.Ext(name) != ".toml" {
		path = filepath.Join(dir, name+".toml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Theme{}, fmt.Errorf("%w: %s (built-in: %s)", ErrUnknownTheme, name, strings.Join(Names(), ", "))
	} else if err != nil {
		return Theme{}, fmt.Errorf("could not stat theme file %s: %w", path, err)
	}
	return Load(path)
}

// Encode writes the theme as TOML.
func (t *Theme) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(t)
}
