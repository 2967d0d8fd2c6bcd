package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mozc-build/buildmozc/internal/runner"
)

// vcbuild variables that would otherwise leak an unrelated toolchain into
// the build; /useenv makes vcbuild read them.
var clearedVars = []string{"INCLUDE", "LIB", "LIBPATH"}

// NativeDriver builds generated Visual Studio solutions with vcbuild on
// Windows.
type NativeDriver struct {
	driverDeps
	Locator        Locator
	ProcessorCount func() (int, error)
}

func (d *NativeDriver) Name() string { return "vcbuild" }

func (d *NativeDriver) Build(inv invocation) error {
	ws := d.Workspace

	dir, err := d.Locator.Locate()
	if err != nil {
		return err
	}
	vcbuild := filepath.Join(dir, vcbuildExe)
	if err := checkFile(vcbuild); err != nil {
		return err
	}
	d.Logger.Debug("Using vcbuild", "path", vcbuild)

	env := inv.Env.Clone()
	if path := d.Getenv("PATH"); path != "" {
		env = env.Set("PATH", dir+string(os.PathListSeparator)+path)
	} else {
		env = env.Set("PATH", dir)
	}
	for _, key := range clearedVars {
		env = env.Set(key, "")
	}

	cpus, err := d.ProcessorCount()
	if err != nil {
		return fmt.Errorf("failed to get processor count: %w", err)
	}
	concurrency := 2 * cpus

	for _, t := range inv.Targets {
		// vcbuild builds whole solutions; the entity name is not used.
		gypFile := ws.Resolve(inv.BaseDir, t.File)
		if err := checkFile(gypFile); err != nil {
			return err
		}
		sln := projectBase(gypFile) + ".sln"
		argv := []string{
			vcbuild,
			"/useenv",
			fmt.Sprintf("/M%d", concurrency),
			"/time",
			"/platform:" + inv.Options.Platform,
			sln,
			inv.Options.Configuration + "|" + inv.Options.Platform,
		}
		if err := d.Runner.Run(runner.Command{Argv: argv, Env: env, Dir: ws.Root}); err != nil {
			return err
		}
	}
	return nil
}
