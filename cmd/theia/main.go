// Package main provides the CLI entry point for theia.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ming-qiu/theia/internal/breakdown"
	"github.com/ming-qiu/theia/internal/config"
	"github.com/ming-qiu/theia/internal/diff"
	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/logging"
	"github.com/ming-qiu/theia/internal/model"
	"github.com/ming-qiu/theia/internal/reporter"
	"github.com/ming-qiu/theia/internal/server"
	"github.com/ming-qiu/theia/internal/source"
	"github.com/ming-qiu/theia/internal/store"
)

const (
	appName    = "theia"
	appVersion = "0.3.0"
)

var (
	flagSnapshot string
	flagBridge   string
	flagConfig   string
	flagJSON     bool
	flagVerbose  bool
	flagLogDir   string
	flagNoLog    bool
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Shot breakdown reconstruction from editorial timelines",
	Long:          "Theia rebuilds a VFX shot breakdown from a conformed timeline: cut points in VFX frame space, layered elements per shot, retime and scale detection, and cut-change reports between edits.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Reconstruct the shot model for a timeline",
	RunE:  runBreakdown,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Reconstruct a timeline and diff it against an older edit",
	RunE:  runCompare,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve saved shot models over HTTP",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s version %s\n", appName, appVersion)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSnapshot, "snapshot", "", "read timelines from a YAML project snapshot")
	pf.StringVar(&flagBridge, "bridge", "", "fetch timelines from a host bridge URL")
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.BoolVar(&flagJSON, "json", false, "emit NDJSON events instead of terminal output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flagLogDir, "log-dir", "", "run log directory (default: no log file)")
	pf.BoolVar(&flagNoLog, "no-log", false, "disable run log file creation")

	for _, cmd := range []*cobra.Command{breakdownCmd, compareCmd} {
		f := cmd.Flags()
		f.String("timeline", "", "timeline name (default: current timeline)")
		f.String("sequence", "", "override the sequence derived from the timeline name")
		f.Int("counter-track", config.CounterTrackAuto, "counter track index (0 = detect by name)")
		f.Int("bottom-track", config.DefaultBottomTrack, "lowest element track")
		f.Int("top-track", config.TopTrackAll, "highest element track (0 = all)")
		f.Int64("work-handle", config.DefaultWorkHandle, "work handle in frames")
		f.Int64("scan-handle", config.DefaultScanHandle, "scan handle in frames")
		f.Bool("half-frame", false, "apply half-frame correction to host timestamps")
		f.Float64("tolerance", config.DefaultRetimeTolerance, "constant-speed retime tolerance")
		f.Bool("no-verify", false, "skip model consistency checks")
		f.String("save", "", "save the resulting model to this database")
	}

	compareCmd.Flags().String("old", "", "older edit to diff against (required)")
	compareCmd.Flags().Bool("saved", false, "load the older edit from the database instead of the host")
	compareCmd.Flags().String("db", "", "database path for --saved")
	_ = compareCmd.MarkFlagRequired("old")

	serveCmd.Flags().String("db", "", "database path (required)")
	serveCmd.Flags().Int("port", 7414, "listen port")
	_ = serveCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(breakdownCmd, compareCmd, serveCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig layers CLI flags over the config file (or defaults).
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.NewConfig()
	}

	f := cmd.Flags()
	if f.Changed("timeline") {
		cfg.Timeline, _ = f.GetString("timeline")
	}
	if f.Changed("sequence") {
		cfg.Sequence, _ = f.GetString("sequence")
	}
	if f.Changed("counter-track") {
		cfg.CounterTrack, _ = f.GetInt("counter-track")
	}
	if f.Changed("bottom-track") {
		cfg.BottomTrack, _ = f.GetInt("bottom-track")
	}
	if f.Changed("top-track") {
		cfg.TopTrack, _ = f.GetInt("top-track")
	}
	if f.Changed("work-handle") {
		cfg.WorkHandle, _ = f.GetInt64("work-handle")
	}
	if f.Changed("scan-handle") {
		cfg.ScanHandle, _ = f.GetInt64("scan-handle")
	}
	if f.Changed("half-frame") {
		cfg.HalfFrameCorrection, _ = f.GetBool("half-frame")
	}
	if f.Changed("tolerance") {
		cfg.RetimeTolerance, _ = f.GetFloat64("tolerance")
	}
	if noVerify, _ := f.GetBool("no-verify"); noVerify {
		cfg.VerifyModel = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildAdapter() (source.Adapter, error) {
	switch {
	case flagSnapshot != "" && flagBridge != "":
		return nil, fmt.Errorf("--snapshot and --bridge are mutually exclusive")
	case flagSnapshot != "":
		return source.NewSnapshotAdapter(flagSnapshot), nil
	case flagBridge != "":
		return source.NewBridgeAdapter(flagBridge), nil
	default:
		return nil, fmt.Errorf("a timeline source is required (--snapshot or --bridge)")
	}
}

// buildReporter picks the interactive reporter and, when a run log is open,
// mirrors the event stream into it as NDJSON.
func buildReporter(logger *logging.Logger) reporter.Reporter {
	var rep reporter.Reporter
	if flagJSON {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter(flagVerbose)
	}
	if w := logger.Writer(); w != nil {
		rep = reporter.NewCompositeReporter(rep, reporter.NewJSONReporterWithWriter(w))
	}
	return rep
}

func reportError(rep reporter.Reporter, err error) {
	rep.Error(reporter.ReporterError{
		Title:      errors.Title(err),
		Message:    err.Error(),
		Suggestion: errors.Suggestion(err),
	})
}

// setupLogging opens the run log when --log-dir is set.
func setupLogging() (*logging.Logger, error) {
	if flagLogDir == "" {
		return nil, nil
	}
	return logging.Setup(flagLogDir, flagVerbose, flagNoLog)
}

func saveModel(ctx context.Context, cmd *cobra.Command, m *model.ShotModel, logger *logging.Logger) error {
	path, _ := cmd.Flags().GetString("save")
	if path == "" {
		return nil
	}
	st, err := store.Open(path, logger.Slog())
	if err != nil {
		return err
	}
	defer st.Close()
	return st.Save(ctx, m)
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	adapter, err := buildAdapter()
	if err != nil {
		return err
	}
	logger, err := setupLogging()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	rep := buildReporter(logger)

	logger.Slog().Info("breakdown run",
		"timeline", cfg.Timeline, "work_handle", cfg.WorkHandle, "scan_handle", cfg.ScanHandle)

	m, err := breakdown.Run(cmd.Context(), adapter, cfg, rep)
	if err != nil {
		logger.Slog().Error("breakdown failed", "error", err)
		reportError(rep, err)
		return err
	}
	logger.Slog().Info("breakdown complete", "timeline", m.Timeline, "shots", len(m.Shots))

	if err := saveModel(cmd.Context(), cmd, m, logger); err != nil {
		reportError(rep, err)
		return err
	}

	rep.OperationComplete(fmt.Sprintf("%d shots reconstructed from %s", len(m.Shots), m.Timeline))
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	adapter, err := buildAdapter()
	if err != nil {
		return err
	}
	logger, err := setupLogging()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	rep := buildReporter(logger)

	old, _ := cmd.Flags().GetString("old")
	useSaved, _ := cmd.Flags().GetBool("saved")
	logger.Slog().Info("compare run", "timeline", cfg.Timeline, "old", old, "saved", useSaved)

	cur, err := breakdown.Run(cmd.Context(), adapter, cfg, rep)
	if err != nil {
		logger.Slog().Error("breakdown failed", "error", err)
		reportError(rep, err)
		return err
	}

	oldModel, err := loadOldModel(cmd, adapter, cfg, old, useSaved, logger)
	if err != nil {
		logger.Slog().Error("loading old edit failed", "error", err)
		reportError(rep, err)
		return err
	}

	report := diff.Compare(cur, oldModel)
	rep.ChangesComplete(breakdown.SummarizeChanges(report))
	logger.Slog().Info("compare complete",
		"matched", len(report.Matched), "added", len(report.Added), "removed", len(report.Removed))

	if err := saveModel(cmd.Context(), cmd, cur, logger); err != nil {
		reportError(rep, err)
		return err
	}

	rep.OperationComplete(fmt.Sprintf("compared %s against %s", cur.Timeline, oldModel.Timeline))
	return nil
}

func loadOldModel(cmd *cobra.Command, adapter source.Adapter, cfg *config.Config, old string, useSaved bool, logger *logging.Logger) (*model.ShotModel, error) {
	if useSaved {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			return nil, fmt.Errorf("--db is required with --saved")
		}
		st, err := store.Open(dbPath, logger.Slog())
		if err != nil {
			return nil, err
		}
		defer st.Close()

		m, err := st.Load(cmd.Context(), old)
		if errors.IsModelNotFound(err) {
			return nil, errors.NewOldTimelineNotFoundError(old)
		}
		return m, err
	}

	oldCfg := *cfg
	oldCfg.Timeline = old
	m, err := breakdown.Run(cmd.Context(), adapter, &oldCfg, reporter.NullReporter{})
	if errors.IsKind(err, errors.KindTimelineNotFound) {
		return nil, errors.NewOldTimelineNotFoundError(old)
	}
	return m, err
}

func runServe(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	port, _ := cmd.Flags().GetInt("port")

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	st, err := store.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		Port:      port,
		Store:     st,
		Logger:    logger,
		Version:   appVersion,
		StartTime: time.Now(),
	})

	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv.Start()
}
