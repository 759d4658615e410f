package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/theme"
	"github.com/JohnDeved/dfmon/internal/util"
)

var testMounts = []disk.Mount{
	{Device: "/dev/mapper/vg-root", Alias: "/dev/vg/root", MountPoint: "/", FSType: "ext4",
		Total: 100 << 30, Used: 40 << 30, Free: 60 << 30, InodesTotal: 1000, InodesUsed: 250, InodesFree: 750},
	{Device: "proc", MountPoint: "/proc", FSType: "proc"},
}

func testOptions(t *testing.T, name string) Options {
	t.Helper()
	th, ok := theme.Builtin(name)
	if !ok {
		t.Fatalf("missing theme %s", name)
	}
	return Options{Theme: &th, BarWidth: 10, Delimiter: 1024, Alias: disk.AliasOnly}
}

func withProfile(t *testing.T, p termenv.Profile) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(p)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

func TestTableString(t *testing.T) {
	withProfile(t, termenv.Ascii)
	opts := testOptions(t, "ascii")

	out := ansi.Strip(TableString(testMounts, opts))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Filesystem") || !strings.HasSuffix(lines[0], "Mounted on") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	for _, want := range []string{"/dev/vg/root", "100.0G", "40.0G", "60.0G", "40.0%", "[####......]"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("root row missing %q: %q", want, lines[1])
		}
	}
	for _, want := range []string{"proc", "-", "[..........]"} {
		if !strings.Contains(lines[2], want) {
			t.Errorf("proc row missing %q: %q", want, lines[2])
		}
	}
	barAt := strings.Index(lines[1], "[")
	if barAt < 0 || barAt != strings.Index(lines[2], "[") {
		t.Errorf("bars not aligned:\n%s", out)
	}
}

func TestTableColoredAlignment(t *testing.T) {
	withProfile(t, termenv.ANSI)
	opts := testOptions(t, "default")
	out := TableString(testMounts, opts)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var widths []int
	for _, l := range lines[1:] {
		widths = append(widths, lipgloss.Width(l))
	}
	// Both rows end with a mount point of different length.
	if widths[0]-len("/") != widths[1]-len("/proc") {
		t.Fatalf("rows misaligned: %v\n%s", widths, out)
	}
}

func TestTableInodesRawTotal(t *testing.T) {
	withProfile(t, termenv.Ascii)
	opts := testOptions(t, "ascii")
	opts.Inodes = true
	opts.Raw = true
	opts.Total = true
	opts.Alias = disk.AliasNone

	out := ansi.Strip(TableString(testMounts, opts))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "IUse%") {
		t.Errorf("missing inode header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "/dev/mapper/vg-root") || !strings.Contains(lines[1], "1,000") || !strings.Contains(lines[1], "25.0%") {
		t.Errorf("unexpected inode row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "total") {
		t.Errorf("missing total row: %q", lines[3])
	}
}

func TestJSON(t *testing.T) {
	opts := testOptions(t, "default")
	opts.Total = true
	var buf bytes.Buffer
	if err := JSON(&buf, testMounts, opts); err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	var out struct {
		Delimiter float64 `json:"delimiter"`
		Mounts    []struct {
			MountPoint  string   `json:"mount_point"`
			Display     string   `json:"display"`
			UsedPercent *float64 `json:"used_percent"`
		} `json:"mounts"`
		Total *struct {
			Total uint64 `json:"total"`
		} `json:"total"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Delimiter != 1024 || len(out.Mounts) != 2 {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if out.Mounts[0].Display != "/dev/vg/root" || out.Mounts[0].UsedPercent == nil || *out.Mounts[0].UsedPercent != 40 {
		t.Errorf("unexpected root entry: %+v", out.Mounts[0])
	}
	if out.Mounts[1].UsedPercent != nil {
		t.Errorf("proc should have null usage")
	}
	if out.Total == nil || out.Total.Total != 100<<30 {
		t.Errorf("unexpected total: %+v", out.Total)
	}
}

func TestHTML(t *testing.T) {
	opts := testOptions(t, "default")
	var buf bytes.Buffer
	when := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	if err := HTML(&buf, testMounts, opts, when); err != nil {
		t.Fatalf("HTML returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>dfmon report</title>",
		"/dev/vg/root",
		`<span class="band-low" style="color: #00cd00">■■■■</span>`,
		`<span class="band-void" style="color: #0000ee">■■■■■■■■■■</span>`,
		"Mon, 19 Oct 2026 08:00:00 UTC",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %q:\n%s", want, out)
		}
	}
}

func TestHighlightedLinesKeepBarColors(t *testing.T) {
	withProfile(t, termenv.ANSI)
	opts := testOptions(t, "default")
	highlight := lipgloss.NewStyle().Reverse(true)

	_, plain := Lines(testMounts, opts)
	_, lines := HighlightedLines(testMounts, opts, 0, highlight)

	if ansi.Strip(lines[0]) != ansi.Strip(plain[0]) {
		t.Fatalf("highlight changed the text:\n%q\n%q", ansi.Strip(lines[0]), ansi.Strip(plain[0]))
	}
	if lines[1] != plain[1] {
		t.Errorf("unselected row changed: %q", lines[1])
	}

	bar := util.Bar(opts.BarWidth, testMounts[0].UsedPercent(), opts.Theme)
	at := strings.Index(lines[0], bar)
	if at < 0 {
		t.Fatalf("bar not rendered verbatim in %q", lines[0])
	}
	if !strings.Contains(lines[0][:at], "\x1b[7m") {
		t.Errorf("cells before the bar not highlighted: %q", lines[0][:at])
	}
	// The highlight resumes after the bar's own reset codes.
	if !strings.Contains(lines[0][at+len(bar):], "\x1b[7m") {
		t.Errorf("cells after the bar not highlighted: %q", lines[0][at+len(bar):])
	}
}
