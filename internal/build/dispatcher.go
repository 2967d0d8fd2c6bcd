package build

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/version"
	"github.com/mozc-build/buildmozc/internal/workspace"
	"github.com/mozc-build/buildmozc/pkg"
)

// Dispatcher prepares a build (version file, Qt location) and hands the
// targets to the platform's driver.
type Dispatcher struct {
	Workspace      *workspace.Workspace
	Runner         runner.Runner
	Logger         hclog.Logger
	Getenv         func(string) string
	Locator        Locator
	ProcessorCount func() (int, error)
	Stamper        *version.Stamper
}

// NewDispatcher returns a Dispatcher wired to the host.
func NewDispatcher(ws *workspace.Workspace, r runner.Runner, logger hclog.Logger) *Dispatcher {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{
		Workspace: ws,
		Runner:    r,
		Logger:    logger,
		Getenv:    os.Getenv,
		Locator:   DefaultLocator(os.Getenv, logger),
		ProcessorCount: func() (int, error) {
			return platform.ProcessorCount(ws.Platform.OS)
		},
		Stamper: version.NewStamper(logger),
	}
}

// Build runs one build request.
func (d *Dispatcher) Build(req Request) error {
	if len(req.Targets) == 0 {
		return pkg.ErrNoTargets
	}
	targets, err := ParseTargets(req.Targets)
	if err != nil {
		return err
	}
	opts := req.Options.withDefaults()
	ws := d.Workspace

	d.Logger.Info("📝 Generating version definition file...")
	if _, err := d.Stamper.Stamp(ws.VersionTemplate(opts.VersionFile), ws.VersionFile()); err != nil {
		return err
	}

	var env runner.Env
	if !opts.NoQt && opts.QtDir != "" {
		qtDir := ws.Abs(opts.QtDir)
		d.Logger.Info("export $QTDIR = " + qtDir)
		env = env.Set("QTDIR", qtDir)
	}

	driver, err := selectDriver(driverDeps{
		Workspace: ws,
		Runner:    d.Runner,
		Logger:    d.Logger,
		Getenv:    d.Getenv,
	}, d.Locator, d.ProcessorCount)
	if err != nil {
		return err
	}

	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	d.Logger.Info("🔨 Building", "driver", driver.Name(),
		"configuration", opts.Configuration, "targets", strings.Join(names, " "))

	return driver.Build(invocation{
		Targets: targets,
		BaseDir: req.BaseDir,
		Options: opts,
		Env:     env,
	})
}

// Descriptions built by BuildTools, in build order. Each builds the entity
// named after the file.
var buildToolDescriptions = []string{
	"build_tools/primitive_tools/primitive_tools.gyp",
	"build_tools/build_tools.gyp",
}

// BuildTools builds the tools the main build depends on, one build per
// description in order.
func (d *Dispatcher) BuildTools(opts Options) error {
	for _, file := range buildToolDescriptions {
		name := strings.TrimSuffix(file[strings.LastIndex(file, "/")+1:], ".gyp")
		req := Request{
			Targets: []string{file + ":" + name},
			BaseDir: d.Workspace.Root,
			Options: opts,
		}
		if err := d.Build(req); err != nil {
			return err
		}
	}
	return nil
}
