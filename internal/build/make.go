package build

import (
	"fmt"

	"github.com/mozc-build/buildmozc/internal/runner"
)

// Toolchain variables honored by the make build, e.g. when building in a
// Chrome OS chroot.
var toolchainVars = []string{"CFLAGS", "CXXFLAGS", "CXX", "CC", "AR", "AS", "RANLIB", "LD"}

// MakeDriver builds with make on Linux. Make resolves entity names across
// the generated top-level Makefile, so only the names are passed.
type MakeDriver struct {
	driverDeps
}

func (d *MakeDriver) Name() string { return "make" }

func (d *MakeDriver) Build(inv invocation) error {
	names := make([]string, 0, len(inv.Targets))
	for _, t := range inv.Targets {
		names = append(names, t.Name)
	}

	buildCommand := inv.Options.BuildCommand
	if buildCommand == "" {
		buildCommand = d.Getenv("BUILD_COMMAND")
	}
	if buildCommand == "" {
		buildCommand = "make"
	}
	makeArgv, err := runner.Split(buildCommand)
	if err != nil || len(makeArgv) == 0 {
		return fmt.Errorf("invalid build command %q: %v", buildCommand, err)
	}

	env := inv.Env.Clone()
	for _, key := range toolchainVars {
		if value := d.Getenv(key); value != "" {
			env = env.Set(key, value)
		}
	}
	env = env.Set("builddir_name", d.Workspace.Platform.OutputDir)

	argv := append(makeArgv,
		"-j"+inv.Options.Jobs,
		"BUILDTYPE="+inv.Options.Configuration)
	if inv.Options.BuildBase != "" {
		argv = append(argv, "builddir_name="+inv.Options.BuildBase)
	}
	argv = append(argv, names...)

	return d.Runner.Run(runner.Command{Argv: argv, Env: env, Dir: d.Workspace.Root})
}
