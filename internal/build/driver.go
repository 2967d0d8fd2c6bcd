package build

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/fsutil"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/workspace"
	"github.com/mozc-build/buildmozc/pkg"
)

// Driver builds parsed targets with one native build tool.
type Driver interface {
	Name() string
	Build(inv invocation) error
}

// driverDeps are the collaborators every driver shares.
type driverDeps struct {
	Workspace *workspace.Workspace
	Runner    runner.Runner
	Logger    hclog.Logger
	Getenv    func(string) string
}

// selectDriver returns the driver of the workspace platform.
func selectDriver(deps driverDeps, locator Locator, cpus func() (int, error)) (Driver, error) {
	switch deps.Workspace.Platform.OS {
	case platform.Linux:
		return &MakeDriver{driverDeps: deps}, nil
	case platform.Mac:
		return &ProjectDriver{driverDeps: deps}, nil
	case platform.Windows:
		return &NativeDriver{driverDeps: deps, Locator: locator, ProcessorCount: cpus}, nil
	default:
		return nil, fmt.Errorf("%w: %s", pkg.ErrUnsupportedPlatform, deps.Workspace.Platform.OS)
	}
}

// checkFile fails with ErrMissingFile unless path is a regular file.
func checkFile(path string) error {
	if !fsutil.IsFile(path) {
		return fmt.Errorf("%w: %s", pkg.ErrMissingFile, path)
	}
	return nil
}
