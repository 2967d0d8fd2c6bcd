// Package testrun finds the test entities declared in build descriptions,
// builds the selected ones and runs their binaries.
package testrun

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/build"
	"github.com/mozc-build/buildmozc/internal/gyp"
	"github.com/mozc-build/buildmozc/internal/metrics"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/workspace"
	"github.com/mozc-build/buildmozc/pkg"
)

// DefaultTestSize is the size selected when no test is named explicitly.
const DefaultTestSize = "small"

const testSuffix = "_test"

// Test is one runnable test entity.
type Test struct {
	// Target is "<file>:<name>" with the file relative to the source root.
	Target string
	Size   string
}

// FailureError lists every test that failed in a batch.
type FailureError struct {
	Failed []string
}

func (e *FailureError) Error() string {
	return strings.Join(append([]string{"following tests failed"}, e.Failed...), "\n")
}

// Builder builds test targets before they run.
type Builder interface {
	Build(req build.Request) error
}

// Orchestrator lists, selects and runs tests.
type Orchestrator struct {
	Workspace *workspace.Workspace
	Runner    runner.Runner
	Logger    hclog.Logger
}

// New returns an Orchestrator for ws.
func New(ws *workspace.Workspace, r runner.Runner, logger hclog.Logger) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{Workspace: ws, Runner: r, Logger: logger}
}

// ListTests reads files (slash paths relative to the source root) and
// returns their test entities. Unreadable files and malformed entities are
// reported as diagnostics and logged as warnings.
func (o *Orchestrator) ListTests(files []string) ([]Test, []gyp.Diagnostic) {
	var (
		tests []Test
		diags []gyp.Diagnostic
	)
	for _, file := range files {
		desc, fileDiags := gyp.ParseFile(o.Workspace.Path(file))
		for i := range fileDiags {
			fileDiags[i].File = file
		}
		diags = append(diags, fileDiags...)
		if desc == nil {
			continue
		}
		for _, e := range desc.Targets {
			if !strings.HasSuffix(e.Name, testSuffix) {
				continue
			}
			size, ok := e.TestSize()
			if !ok {
				diags = append(diags, gyp.Diagnostic{
					File:    file,
					Message: "test target does not have test_size: " + file + ":" + e.Name,
				})
				continue
			}
			tests = append(tests, Test{Target: file + ":" + e.Name, Size: size})
		}
	}
	for _, d := range diags {
		o.Logger.Warn("⚠️ " + d.String())
	}
	return tests, diags
}

// Select keeps the requested targets that are known tests. When none
// remains, every test of size is selected instead.
func (o *Orchestrator) Select(all []Test, requested []string, size string) []string {
	known := make(map[string]bool, len(all))
	for _, t := range all {
		known[t.Target] = true
	}

	var selected []string
	for _, target := range requested {
		if !known[target] {
			o.Logger.Warn("⚠️ specified target is not a test target", "target", target)
			continue
		}
		selected = append(selected, target)
	}
	if len(selected) > 0 {
		return selected
	}

	if size == "" {
		size = DefaultTestSize
	}
	for _, t := range all {
		if t.Size == size {
			selected = append(selected, t.Target)
		}
	}
	return selected
}

// Run executes the binary of every target from the configuration's output
// directory. All targets run; failures are collected into a FailureError.
func (o *Orchestrator) Run(targets []string, configuration string, coverage bool) error {
	outDir := o.Workspace.OutputDir()
	if outDir == "" {
		return fmt.Errorf("%w: %s", pkg.ErrUnsupportedPlatform, o.Workspace.Platform.OS)
	}
	if coverage {
		o.Logger.Debug("Coverage calculation is not supported; running tests only")
	}
	base := filepath.Join(outDir, configuration)

	var failed []string
	for _, target := range targets {
		o.Logger.Info("🧪 running " + target + "...")
		t, err := build.ParseTarget(target)
		if err != nil {
			o.Logger.Error("Invalid target name", "target", target)
			failed = append(failed, target)
			metrics.ObserveTest(false)
			continue
		}
		err = o.Runner.Run(runner.Command{
			Argv: []string{filepath.Join(base, t.Name)},
			Dir:  o.Workspace.Root,
		})
		if err != nil {
			o.Logger.Error(err.Error())
			failed = append(failed, target)
			metrics.ObserveTest(false)
			continue
		}
		metrics.ObserveTest(true)
	}

	if len(failed) > 0 {
		return &FailureError{Failed: failed}
	}
	return nil
}

// Plan describes one runtests invocation.
type Plan struct {
	// Requested are the targets named on the command line.
	Requested []string
	// Size selects tests when no requested target is a known test.
	Size string
	// Configuration overrides Build.Configuration when set.
	Configuration string
	Coverage      bool
	Build         build.Options
}

// Execute lists the tests of files, selects per plan, builds the selection
// from the source root and runs it.
func (o *Orchestrator) Execute(files []string, builder Builder, plan Plan) error {
	all, _ := o.ListTests(files)
	targets := o.Select(all, plan.Requested, plan.Size)
	if len(targets) == 0 {
		return fmt.Errorf("%w: no test of size %q", pkg.ErrNoTargets, plan.sizeOrDefault())
	}

	opts := plan.Build
	if plan.Configuration != "" {
		opts.Configuration = plan.Configuration
	}
	if opts.Configuration == "" {
		opts.Configuration = build.DefaultConfiguration
	}

	err := builder.Build(build.Request{
		Targets: slices.Clone(targets),
		BaseDir: o.Workspace.Root,
		Options: opts,
	})
	if err != nil {
		return err
	}
	return o.Run(targets, opts.Configuration, plan.Coverage)
}

func (p Plan) sizeOrDefault() string {
	if p.Size == "" {
		return DefaultTestSize
	}
	return p.Size
}

// SplitArgs separates runtests arguments into test targets and build
// options. Targets come first; the options start at "--" (dropped) or at
// the first argument beginning with "-".
func SplitArgs(args []string) (targets, buildArgs []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:]
		}
		if strings.HasPrefix(arg, "-") {
			return args[:i], args[i:]
		}
	}
	return args, nil
}
