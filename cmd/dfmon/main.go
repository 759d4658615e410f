package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/JohnDeved/dfmon/internal/config"
	"github.com/JohnDeved/dfmon/internal/disk"
	"github.com/JohnDeved/dfmon/internal/history"
	"github.com/JohnDeved/dfmon/internal/report"
	"github.com/JohnDeved/dfmon/internal/theme"
	"github.com/JohnDeved/dfmon/internal/tui"
	"github.com/JohnDeved/dfmon/internal/util"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dfmon [path...]",
		Short: "Show disk usage with colored usage bars",
		Long: `dfmon lists mounted filesystems with human readable sizes, a usage bar
per filesystem and LVM names for device-mapper devices.

With path arguments only the filesystems containing those paths are shown.`,
		SilenceUsage: true,
		RunE:         runList,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			return setupColor(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolP("all", "a", false, "Include pseudo, duplicate and empty filesystems")
	pf.Bool("si", false, "Use powers of 1000 instead of 1024")
	pf.BoolP("inodes", "i", false, "Show inode usage instead of bytes")
	pf.Bool("raw", false, "Print exact numbers instead of human readable ones")
	pf.Bool("total", false, "Add a total row")
	pf.String("lvm-alias", "", "Show LVM names for device-mapper devices: none, only or both")
	pf.String("color", "auto", "Color output: auto, always or never")
	pf.Int("bar-width", -1, "Number of cells in the usage bar")
	pf.String("theme", "", "Built-in theme name, theme file name or path")
	pf.BoolP("verbose", "v", false, "Log debug information to stderr")

	rootCmd.Flags().Bool("json", false, "Output JSON")

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Live view of disk usage",
		RunE:  runWatch,
	}

	// History command
	historyCmd := &cobra.Command{
		Use:   "history [mount]",
		Short: "Show recorded usage snapshots",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().Int("limit", 20, "Maximum number of snapshots")
	historyCmd.Flags().Bool("json", false, "Output JSON")
	historyCmd.Flags().Bool("stats", false, "Show history statistics")

	// Alias command
	aliasCmd := &cobra.Command{
		Use:   "alias <device>...",
		Short: "Print the LVM name of device-mapper devices",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAlias,
	}

	// Theme command
	themeCmd := &cobra.Command{
		Use:   "theme [name]",
		Short: "Print and validate a theme",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTheme,
	}
	themeCmd.Flags().Bool("list", false, "List built-in themes")

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report [path...]",
		Short: "Write an HTML usage report",
		RunE:  runReport,
	}
	reportCmd.Flags().StringP("output", "o", "", "Output file (required)")
	_ = reportCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(watchCmd, historyCmd, aliasCmd, themeCmd, reportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command) {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func setupColor(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "auto", "":
		fd := os.Stdout.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
		} else {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
	return nil
}

// buildOptions merges flags over the config file.
func buildOptions(cmd *cobra.Command, cfg *config.Config) (report.Options, error) {
	flags := cmd.Flags()

	if flags.Changed("si") {
		cfg.SI, _ = flags.GetBool("si")
	}
	if w, _ := flags.GetInt("bar-width"); w >= 0 {
		cfg.BarWidth = w
	}
	if name, _ := flags.GetString("theme"); name != "" {
		cfg.Theme = name
	}
	if mode, _ := flags.GetString("lvm-alias"); mode != "" {
		cfg.LVMAlias = mode
	}

	alias, err := disk.ParseAliasMode(cfg.LVMAlias)
	if err != nil {
		return report.Options{}, err
	}
	t, err := theme.Lookup(cfg.Theme, config.ThemeDir())
	if err != nil {
		return report.Options{}, fmt.Errorf("loading theme: %w", err)
	}

	inodes, _ := flags.GetBool("inodes")
	raw, _ := flags.GetBool("raw")
	total, _ := flags.GetBool("total")

	return report.Options{
		Theme:     &t,
		BarWidth:  cfg.BarWidth,
		Delimiter: cfg.Delimiter(),
		Inodes:    inodes,
		Raw:       raw,
		Alias:     alias,
		Total:     total,
	}, nil
}

func newCollector(cmd *cobra.Command, cfg *config.Config) *disk.Collector {
	c := disk.NewCollector(cfg.StatsPerSecond)
	all, _ := cmd.Flags().GetBool("all")
	c.SetAll(all)
	return c
}

func collect(cmd *cobra.Command, cfg *config.Config, args []string) ([]disk.Mount, error) {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	c := newCollector(cmd, cfg)
	mounts, err := c.Collect(ctx, args...)
	if err != nil {
		return nil, err
	}
	if n := c.Errors(); n > 0 {
		slog.Warn("Some filesystems could not be read", "count", n)
	}
	if cfg.RecordHistory {
		recordHistory(ctx, cfg, mounts)
	}
	return mounts, nil
}

// recordHistory stores a snapshot and prunes expired ones. Failures are
// logged, never fatal.
func recordHistory(ctx context.Context, cfg *config.Config, mounts []disk.Mount) {
	db, err := history.Open(config.HistoryPath())
	if err != nil {
		slog.Warn("Could not open history database", "err", err)
		return
	}
	defer db.Close()

	now := time.Now()
	if err := db.Record(ctx, history.NewScanID(), now, mounts); err != nil {
		slog.Warn("Recording history failed", "err", err)
		return
	}
	n, err := db.Expire(ctx, now, cfg.HistoryKeepDays)
	if err != nil {
		slog.Warn("Pruning history failed", "err", err)
		return
	}
	slog.Debug("Pruned history", "scans", n, "keep_days", cfg.HistoryKeepDays)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}
	mounts, err := collect(cmd, cfg, args)
	if err != nil {
		return err
	}

	jsonMode, _ := cmd.Flags().GetBool("json")
	if jsonMode {
		return report.JSON(os.Stdout, mounts, opts)
	}
	return report.Table(os.Stdout, mounts, opts)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	if !isInteractiveTerminal() {
		return errors.New("watch needs an interactive terminal")
	}

	var db *history.DB
	if cfg.RecordHistory {
		db, err = history.Open(config.HistoryPath())
		if err != nil {
			slog.Warn("Could not open history database", "err", err)
			db = nil
		}
	}
	if db != nil {
		defer db.Close()
	}

	// The TUI owns the terminal.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return tui.Run(newCollector(cmd, cfg), db, cfg, opts, args)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}

	db, err := history.Open(config.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		stats, err := db.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("reading history stats: %w", err)
		}
		fmt.Printf("Scans:     %s\n", humanize.Comma(int64(stats.Scans)))
		fmt.Printf("Snapshots: %s\n", humanize.Comma(int64(stats.Snapshots)))
		if !stats.Oldest.IsZero() {
			fmt.Printf("Oldest:    %s\n", humanize.Time(stats.Oldest))
		}
		fmt.Printf("Database:  %s\n", config.HistoryPath())
		return nil
	}

	mountPoint := ""
	if len(args) > 0 {
		mountPoint = args[0]
	}
	limit, _ := cmd.Flags().GetInt("limit")

	snaps, err := db.Recent(ctx, mountPoint, limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
		if snaps == nil {
			snaps = []history.Snapshot{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		fmt.Println("No history recorded.")
		if !cfg.RecordHistory {
			fmt.Printf("Tip: set \"record_history\": true in %s\n", config.ConfigPath())
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "When\tMounted on\tUsed\tSize\tUse%\t")
	for i := range snaps {
		s := &snaps[i]
		used, size := s.Used, s.Total
		pct := s.UsedPercent()
		if opts.Inodes {
			used, size = s.InodesUsed, s.InodesTotal
			pct = s.InodesPercent()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(s.TakenAt),
			s.MountPoint,
			formatCount(opts, used),
			formatCount(opts, size),
			report.Percent(pct),
			util.Bar(opts.BarWidth, pct, opts.Theme),
		)
	}
	return tw.Flush()
}

func formatCount(opts report.Options, v uint64) string {
	if opts.Raw {
		return util.FormatExact(v)
	}
	return util.FormatCount(float64(v), opts.Delimiter)
}

func runAlias(cmd *cobra.Command, args []string) error {
	for _, dev := range args {
		if alias, ok := util.LVMAlias(dev); ok {
			fmt.Println(alias)
		} else {
			fmt.Println(dev)
		}
	}
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, name := range theme.Names() {
			fmt.Println(name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) > 0 {
		if err := cmd.Flags().Set("theme", args[0]); err != nil {
			return err
		}
	}
	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}
	t := opts.Theme
	if err := t.Validate(); err != nil {
		return err
	}

	fmt.Printf("# theme: %s\n", t.Name)
	if err := t.Encode(os.Stdout); err != nil {
		return err
	}

	fmt.Println()
	width := max(opts.BarWidth, 10)
	for _, pct := range []float64{0, 25, 50, 75, 100} {
		fmt.Printf("# %5.1f%% %s\n", pct, util.Bar(width, &pct, t))
	}
	fmt.Printf("#      - %s\n", util.Bar(width, nil, t))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return err
	}
	mounts, err := collect(cmd, cfg, args)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := report.HTML(f, mounts, opts, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d filesystems to %s\n", len(mounts), output)
	return nil
}

func isInteractiveTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
