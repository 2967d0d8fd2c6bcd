// Package runner executes external tools the way every build-mozc flow
// needs them: blocking, with the child's output going straight to the
// terminal, with explicit environment overrides, and with failures turned
// into errors that carry the full command line.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/metrics"
)

// Command is one external invocation.
type Command struct {
	Argv []string
	Env  Env
	Dir  string
	// Quiet discards the child's output. Used for presence probes.
	Quiet bool
}

// String renders the command line.
func (c Command) String() string {
	return Join(c.Argv)
}

// Runner runs commands to completion.
type Runner interface {
	Run(cmd Command) error
}

// RunError reports a command that could not be started or exited with a
// non-zero status.
type RunError struct {
	Argv     []string
	ExitCode int
	Started  bool
	Err      error
}

func (e *RunError) Error() string {
	return strings.Join([]string{
		"",
		"==========",
		" ERROR: " + Join(e.Argv),
		"==========",
	}, "\n")
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NotStarted reports whether the command failed before the process ran,
// e.g. because the executable is not installed.
func (e *RunError) NotStarted() bool {
	return !e.Started
}

// Exec runs commands as child processes of build-mozc.
type Exec struct {
	Logger hclog.Logger
	// Python is the interpreter injected in front of ".py" scripts.
	Python string
	Stdout io.Writer
	Stderr io.Writer
	// BaseEnv is the environment overrides are applied to; nil means
	// os.Environ().
	BaseEnv []string
}

// NewExec returns an Exec writing to the process stdout and stderr.
func NewExec(logger hclog.Logger, python string) *Exec {
	if python == "" {
		python = DefaultPython()
	}
	return &Exec{
		Logger: logger,
		Python: python,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// DefaultPython returns $PYTHON, or "python".
func DefaultPython() string {
	if p := os.Getenv("PYTHON"); p != "" {
		return p
	}
	return "python"
}

// Run executes cmd and waits for it.
func (r *Exec) Run(cmd Command) error {
	if len(cmd.Argv) == 0 {
		return fmt.Errorf("empty command")
	}
	argv := cmd.Argv
	if strings.HasSuffix(argv[0], ".py") {
		argv = append([]string{r.Python}, argv...)
	}

	logger := r.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cmd.Quiet {
		logger.Debug("🔍 Probing", "command", Join(argv))
	} else {
		logger.Info("🚀 Running: " + Join(argv))
	}
	if cmd.Dir != "" {
		logger.Debug("Working directory", "dir", cmd.Dir)
	}
	logEnvironmentTrace(cmd.Env, logger)

	c := exec.Command(argv[0], argv[1:]...)
	c.Dir = cmd.Dir
	base := r.BaseEnv
	if base == nil {
		base = os.Environ()
	}
	c.Env = cmd.Env.Environ(base)
	if !cmd.Quiet {
		c.Stdin = os.Stdin
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	}

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if err == nil {
		metrics.ObserveSubprocess(cmd.Argv[0], metrics.ResultSuccess, elapsed)
		logger.Debug("✅ Process completed successfully", "elapsed", elapsed)
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		metrics.ObserveSubprocess(cmd.Argv[0], metrics.ResultFailure, elapsed)
		logger.Debug("⏹️ Process exited", "code", exitErr.ExitCode())
		return &RunError{Argv: argv, ExitCode: exitErr.ExitCode(), Started: true, Err: err}
	}

	metrics.ObserveSubprocess(cmd.Argv[0], metrics.ResultError, elapsed)
	logger.Debug("Process could not be started", "error", err)
	return &RunError{Argv: argv, ExitCode: -1, Err: err}
}
