package build

import (
	"path/filepath"

	"github.com/mozc-build/buildmozc/internal/runner"
)

// ProjectDriver builds generated Xcode projects on Mac, one xcodebuild run
// per target in request order.
type ProjectDriver struct {
	driverDeps
}

func (d *ProjectDriver) Name() string { return "xcodebuild" }

func (d *ProjectDriver) Build(inv invocation) error {
	ws := d.Workspace
	symRoot := inv.Options.BuildBase
	if symRoot == "" {
		symRoot = filepath.Join(ws.Root, ws.Platform.OutputDir)
	}

	for _, t := range inv.Targets {
		abs := ws.Resolve(inv.BaseDir, t.File)
		if err := checkFile(abs); err != nil {
			return err
		}
		// xcodebuild does not accept an absolute -project path, and it runs
		// from the source root.
		rel, err := ws.RelToRoot(abs)
		if err != nil {
			return err
		}
		argv := []string{
			"xcodebuild",
			"-project", projectBase(rel) + ".xcodeproj",
			"-configuration", inv.Options.Configuration,
			"-target", t.Name,
			"-parallelizeTargets",
			"SYMROOT=" + symRoot,
			"BUILD_WITH_GYP=1",
		}
		if err := d.Runner.Run(runner.Command{Argv: argv, Env: inv.Env, Dir: ws.Root}); err != nil {
			return err
		}
	}
	return nil
}
