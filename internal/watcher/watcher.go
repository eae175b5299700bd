// Package watcher re-runs the build-and-discover pipeline when source
// files change, with optional interval rebuilds and a Prometheus endpoint.
// Builds execute sequentially on a single goroutine; a change arriving
// mid-build queues at most one follow-up rebuild.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/testbuild/internal/pipeline"
)

// Watcher monitors source directories and triggers pipeline runs.
type Watcher struct {
	pipe         *pipeline.Pipeline
	dirs         []string
	watcher      *fsnotify.Watcher
	rebuildChan  chan struct{}
	debounceTime time.Duration
}

// New creates a watcher over the given directories.
func New(pipe *pipeline.Pipeline, dirs []string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	abs := make([]string, 0, len(dirs))
	for _, d := range dirs {
		a, err := filepath.Abs(d)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve watch dir %s: %w", d, err)
		}
		abs = append(abs, a)
	}

	return &Watcher{
		pipe:         pipe,
		dirs:         abs,
		watcher:      fsw,
		rebuildChan:  make(chan struct{}, 1),
		debounceTime: debounce,
	}, nil
}

// Run watches until ctx is canceled. It blocks; the caller owns signal
// handling. An initial build runs before watching starts so the settings
// file is current from the first session.
func (w *Watcher) Run(ctx context.Context) error {
	for _, d := range w.dirs {
		if err := w.watcher.Add(d); err != nil {
			w.watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", d, err)
		}
	}
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", "error", err)
		}
	}()

	slog.Info("Starting source watcher", "dirs", strings.Join(w.dirs, ","), "debounce", w.debounceTime)

	w.runBuild(ctx)

	go w.watchLoop(ctx)

	var rebuildTimer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			slog.Info("Source watcher stopped")
			return nil
		case <-w.rebuildChan:
			// Reset/start debounce timer
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			rebuildTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			w.runBuild(ctx)
		}
	}
}

// TriggerRebuild requests a debounced rebuild (also used by the scheduler).
func (w *Watcher) TriggerRebuild() {
	select {
	case w.rebuildChan <- struct{}{}:
		// Rebuild triggered
	default:
		// Rebuild already pending
	}
}

// watchLoop forwards relevant file system events into the rebuild channel.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			slog.Debug("Source change detected", "file", event.Name, "op", event.Op.String())
			w.TriggerRebuild()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", "error", err)
		}
	}
}

// relevantEvent filters chatter: only writes, creates, removes and renames
// of Rust sources and build manifests trigger a rebuild.
func relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, ".rs") {
		return true
	}
	return name == "Cargo.toml" || name == "Cargo.lock"
}

func (w *Watcher) runBuild(ctx context.Context) {
	out, err := w.pipe.Run(ctx)
	switch {
	case err != nil:
		slog.Error("Watch build failed", "run_id", out.RunID, "error", err)
	case out.ExitCode != 0:
		slog.Warn("Watch build exited non-zero", "run_id", out.RunID, "exit_code", out.ExitCode)
	case !out.Found:
		slog.Warn("Watch build produced no test binary path", "run_id", out.RunID)
	default:
		slog.Info("Watch build completed", "run_id", out.RunID, "path", out.BinaryPath, "duration", out.Duration)
	}
}
