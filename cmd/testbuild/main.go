package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/testbuild/internal/adapter"
	"git.home.luguber.info/inful/testbuild/internal/config"
	terrors "git.home.luguber.info/inful/testbuild/internal/errors"
	"git.home.luguber.info/inful/testbuild/internal/history"
	"git.home.luguber.info/inful/testbuild/internal/pipeline"
	"git.home.luguber.info/inful/testbuild/internal/statefile"
	"git.home.luguber.info/inful/testbuild/internal/watcher"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"testbuild.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	BuildTests struct{} `cmd:"" name:"build-tests" help:"Compile test binaries and persist the produced binary path"`

	PrintPath struct{} `cmd:"" name:"print-path" help:"Print the persisted test binary path"`

	DapConfig struct{} `cmd:"" name:"dap-config" help:"Print the debug adapter command and launch configuration"`

	History struct {
		Limit int `short:"n" help:"Number of runs to show (0 uses the configured limit)"`
	} `cmd:"" help:"List recent build-and-discover runs"`

	Watch struct{} `cmd:"" help:"Rebuild test binaries when sources change"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	errAdapter := terrors.NewCLIErrorAdapter(CLI.Verbose, logger)

	if ctx.Command() == "init" {
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			errAdapter.HandleError(terrors.ConfigInvalid("init failed", err))
		}
		slog.Info("Configuration file written", "path", CLI.Config)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errAdapter.HandleError(terrors.ConfigInvalid("load failed", err))
	}

	switch ctx.Command() {
	case "build-tests":
		errAdapter.HandleError(runBuildTests(cfg))
	case "print-path":
		errAdapter.HandleError(runPrintPath(cfg))
	case "dap-config":
		errAdapter.HandleError(runDapConfig(cfg))
	case "history":
		errAdapter.HandleError(runHistory(cfg, CLI.History.Limit))
	case "watch":
		errAdapter.HandleError(runWatch(cfg))
	}
}

// openHistory returns nil when history is disabled; recording then no-ops.
func openHistory(cfg *config.Config) history.Store {
	if !cfg.HistoryEnabled() {
		return nil
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		slog.Warn("Run history unavailable", "path", cfg.History.Path, "error", err)
		return nil
	}
	return store
}

func runBuildTests(cfg *config.Config) error {
	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}

	pipe := pipeline.New(cfg, hist)
	out, err := pipe.Run(context.Background())
	if err != nil {
		return terrors.ToolInvocationError(err)
	}

	if out.ExitCode != 0 {
		// Surface the tool's own diagnostics; its exit code is mirrored.
		fmt.Fprint(os.Stderr, out.Output)
		return terrors.BuildFailed(out.ExitCode)
	}
	if !out.Found {
		fmt.Fprint(os.Stderr, out.Output)
		return terrors.NoBinaryFound()
	}

	fmt.Println(out.BinaryPath)
	return nil
}

func runPrintPath(cfg *config.Config) error {
	path, found, err := statefile.NewStore(cfg.SettingsFilePath()).Read()
	if err != nil {
		return terrors.StateFileError("read", err)
	}
	if !found {
		return terrors.NoBinaryFound().
			WithContext("hint", "run build-tests first")
	}
	fmt.Println(path)
	return nil
}

func runDapConfig(cfg *config.Config) error {
	path, found, err := statefile.NewStore(cfg.SettingsFilePath()).Read()
	if err != nil {
		return terrors.StateFileError("read", err)
	}
	if !found {
		return terrors.NoBinaryFound().
			WithContext("hint", "run build-tests first")
	}

	cmd := adapter.NewCommand(cfg.Adapter.Command, cfg.Adapter.PortArg)
	rendered, err := adapter.NewLaunchConfig(cmd, path).MarshalIndent()
	if err != nil {
		return terrors.Wrap(err, terrors.CategoryInternal, terrors.SeverityFatal, "render launch config")
	}
	fmt.Println(rendered)
	return nil
}

func runHistory(cfg *config.Config, limit int) error {
	if !cfg.HistoryEnabled() {
		return terrors.New(terrors.CategoryHistory, terrors.SeverityError, "run history is disabled in configuration")
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return terrors.HistoryError("open", err)
	}
	defer store.Close()

	if limit <= 0 {
		limit = cfg.History.Limit
	}
	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return terrors.HistoryError("list", err)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		path := r.BinaryPath
		if path == "" {
			path = "-"
		}
		fmt.Printf("%s  exit=%d  %-8s  %s\n",
			r.StartedAt.Format(time.RFC3339), r.ExitCode, r.Duration.Round(time.Millisecond), path)
	}
	return nil
}

func runWatch(cfg *config.Config) error {
	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}
	pipe := pipeline.New(cfg, hist)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var metricsServer *watcher.MetricsServer
	if cfg.Watch.MetricsAddr != "" {
		metricsServer = watcher.NewMetricsServer(cfg.Watch.MetricsAddr)
		pipe = pipe.WithRecorder(metricsServer.Recorder())
		metricsServer.Start()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := metricsServer.Stop(stopCtx); err != nil {
				slog.Warn("Failed to stop metrics server", "error", err)
			}
		}()
	}

	w, err := watcher.New(pipe, cfg.Watch.Dirs, time.Duration(cfg.Watch.DebounceSeconds)*time.Second)
	if err != nil {
		return terrors.WatchError(err)
	}

	if cfg.Watch.Every > 0 {
		sched, err := watcher.NewScheduler(w, time.Duration(cfg.Watch.Every)*time.Second)
		if err != nil {
			return terrors.WatchError(err)
		}
		sched.Start(ctx)
		defer func() {
			if err := sched.Stop(ctx); err != nil {
				slog.Warn("Failed to stop scheduler", "error", err)
			}
		}()
	}

	if err := w.Run(ctx); err != nil {
		return terrors.WatchError(err)
	}
	return nil
}
