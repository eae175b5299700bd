// Package cargo invokes the cargo build tool to compile test binaries
// without running them, and extracts the produced binary path from cargo's
// output. The runner returns a non-zero build exit status as data, not an
// error; only failures to locate or start the tool are errors.
package cargo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// BuildResult captures one cargo invocation. CombinedOutput interleaves
// stdout and stderr in arrival order; ExitCode is the tool's exit status.
type BuildResult struct {
	ExitCode       int
	CombinedOutput string
}

// Runner executes `cargo test --no-run --message-format=json` in a project
// directory. Zero value is not usable; construct with NewRunner.
type Runner struct {
	bin        string
	dir        string
	extraArgs  []string
	scratchLog string
}

// NewRunner creates a runner for the given project directory. An empty dir
// means the current working directory.
func NewRunner(dir string) *Runner {
	return &Runner{bin: "cargo", dir: dir}
}

// WithBinary overrides the tool binary name (for testing with a stub).
func (r *Runner) WithBinary(bin string) *Runner {
	if bin != "" {
		r.bin = bin
	}
	return r
}

// WithExtraArgs appends additional arguments after the fixed command line.
func (r *Runner) WithExtraArgs(args ...string) *Runner {
	r.extraArgs = append(r.extraArgs, args...)
	return r
}

// WithScratchLog tees the combined output to the given file path. The file
// is overwritten on each run and removed again if the run fails before any
// output was produced.
func (r *Runner) WithScratchLog(path string) *Runner {
	r.scratchLog = path
	return r
}

// Run executes the build. A non-zero cargo exit status is returned inside
// BuildResult with a nil error; the caller decides whether to proceed.
func (r *Runner) Run(ctx context.Context) (BuildResult, error) {
	binPath, err := exec.LookPath(r.bin)
	if err != nil {
		return BuildResult{}, fmt.Errorf("%w: %w", ErrToolNotFound, err)
	}

	args := append([]string{"test", "--no-run", "--message-format=json"}, r.extraArgs...)
	// #nosec G204 -- binPath comes from exec.LookPath over a configured name
	cmd := exec.CommandContext(ctx, binPath, args...)
	cmd.Dir = r.dir

	var combined bytes.Buffer
	var sinks io.Writer = &combined

	scratch, cleanup, err := r.openScratch()
	if err != nil {
		return BuildResult{}, err
	}
	defer cleanup(&combined)
	if scratch != nil {
		sinks = io.MultiWriter(&combined, scratch)
	}
	cmd.Stdout = sinks
	cmd.Stderr = sinks

	slog.Debug("Invoking cargo test build", "bin", binPath, "dir", r.dir, "args", args)
	runErr := cmd.Run()

	result := BuildResult{CombinedOutput: combined.String()}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Compile failure is data for the caller, not a runner error.
			result.ExitCode = exitErr.ExitCode()
			slog.Debug("Cargo exited non-zero", "exit_code", result.ExitCode)
			return result, nil
		}
		return BuildResult{}, fmt.Errorf("%w: %w", ErrSpawnFailed, runErr)
	}
	return result, nil
}

// openScratch opens the configured scratch log for writing. The returned
// cleanup closes the handle on every exit path and deletes the file when no
// output was captured, so a failed spawn leaves nothing behind.
func (r *Runner) openScratch() (*os.File, func(captured *bytes.Buffer), error) {
	if r.scratchLog == "" {
		return nil, func(*bytes.Buffer) {}, nil
	}
	f, err := os.Create(r.scratchLog)
	if err != nil {
		return nil, nil, fmt.Errorf("create scratch log %s: %w", r.scratchLog, err)
	}
	cleanup := func(captured *bytes.Buffer) {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close scratch log", "path", r.scratchLog, "error", cerr)
		}
		if captured.Len() == 0 {
			if rerr := os.Remove(r.scratchLog); rerr != nil && !os.IsNotExist(rerr) {
				slog.Warn("Failed to remove empty scratch log", "path", r.scratchLog, "error", rerr)
			}
		}
	}
	return f, cleanup, nil
}
