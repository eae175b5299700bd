// Package pipeline runs the build-and-discover sequence: invoke the cargo
// test build, extract the produced binary path from its output, persist the
// path for the editor, and record the run. One synchronous pass per call.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/testbuild/internal/cargo"
	"git.home.luguber.info/inful/testbuild/internal/config"
	"git.home.luguber.info/inful/testbuild/internal/history"
	"git.home.luguber.info/inful/testbuild/internal/metrics"
	"git.home.luguber.info/inful/testbuild/internal/statefile"
)

// Outcome summarizes one pipeline pass.
type Outcome struct {
	RunID      string
	ExitCode   int
	BinaryPath string
	Found      bool
	Output     string
	Duration   time.Duration
}

// Pipeline wires the runner, extractor, state file, history and metrics.
type Pipeline struct {
	cfg      *config.Config
	runner   *cargo.Runner
	state    *statefile.Store
	hist     history.Store
	recorder metrics.Recorder
}

// New builds a pipeline from configuration. hist may be nil (history off).
func New(cfg *config.Config, hist history.Store) *Pipeline {
	runner := cargo.NewRunner(cfg.Build.Dir).
		WithBinary(cfg.Build.Binary).
		WithExtraArgs(cfg.Build.ExtraArgs...)
	if cfg.Build.ScratchLog != "" {
		runner = runner.WithScratchLog(cfg.Build.ScratchLog)
	}
	return &Pipeline{
		cfg:      cfg,
		runner:   runner,
		state:    statefile.NewStore(cfg.SettingsFilePath()),
		hist:     hist,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder injects a metrics recorder (watch mode).
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// StateFile exposes the settings store for read-only commands.
func (p *Pipeline) StateFile() *statefile.Store {
	return p.state
}

// Run performs one build-and-discover pass. The settings file is only
// touched when a path was extracted, so a failed run never clobbers a
// previously good path. Errors from cargo invocation or malformed records
// propagate; a failed build or an absent path is reported in Outcome.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()
	out := Outcome{RunID: history.NewRunID()}

	if p.cfg.Build.ScratchLog != "" {
		// The scratch log only ferries output between build and extraction.
		defer func() {
			if err := os.Remove(p.cfg.Build.ScratchLog); err != nil && !os.IsNotExist(err) {
				slog.Warn("Failed to remove scratch log", "path", p.cfg.Build.ScratchLog, "error", err)
			}
		}()
	}

	result, err := p.runner.Run(ctx)
	out.Duration = time.Since(start)
	p.recorder.ObserveBuildDuration(out.Duration)
	if err != nil {
		p.recorder.IncRunOutcome(metrics.OutcomeError)
		return out, err
	}
	out.ExitCode = result.ExitCode
	out.Output = result.CombinedOutput

	path, found, err := p.extract(result.CombinedOutput)
	if err != nil {
		p.recorder.IncRunOutcome(metrics.OutcomeError)
		p.record(ctx, out)
		return out, err
	}
	out.BinaryPath = path
	out.Found = found

	switch {
	case result.ExitCode != 0:
		p.recorder.IncRunOutcome(metrics.OutcomeBuildFailed)
	case !found:
		p.recorder.IncRunOutcome(metrics.OutcomeNoPath)
	default:
		p.recorder.IncRunOutcome(metrics.OutcomeSuccess)
	}

	if found {
		if err := p.state.Write(path); err != nil {
			p.record(ctx, out)
			return out, err
		}
		slog.Info("Test binary path persisted", "path", path, "file", p.state.Path())
	}

	p.record(ctx, out)
	return out, nil
}

// extract tries structured JSON records first and falls back to plain-log
// marker scanning when no record announced a test artifact. Malformed
// records propagate; absent matches never do.
func (p *Pipeline) extract(output string) (string, bool, error) {
	sel := p.cfg.Selection()
	path, found, err := cargo.ExtractFromMessages(output, sel)
	if err != nil {
		return "", false, err
	}
	if !found {
		// The human-readable executable announcement may still be present
		// on stderr even when no JSON record matched.
		path, found = cargo.ExtractFromLog(output, p.cfg.Extract.Marker, sel)
	}
	return path, found, nil
}

func (p *Pipeline) record(ctx context.Context, out Outcome) {
	if p.hist == nil {
		return
	}
	err := p.hist.Record(ctx, history.Run{
		ID:         out.RunID,
		StartedAt:  time.Now().Add(-out.Duration),
		Duration:   out.Duration,
		ExitCode:   out.ExitCode,
		BinaryPath: out.BinaryPath,
	})
	if err != nil {
		slog.Warn("Failed to record run history", "run_id", out.RunID, "error", err)
	}
}
