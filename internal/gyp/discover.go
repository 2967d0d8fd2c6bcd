package gyp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

// Descriptions that are always part of the build even though they live
// below the usual two-level layout.
var dictionaryDescriptions = []string{
	"dictionary/file/dictionary_file.gyp",
	"dictionary/system/system_dictionary.gyp",
}

// optionalLinux lists descriptions that are only built when pkg-config
// finds the system packages they integrate with.
var optionalLinux = []struct {
	file     string
	packages []string
}{
	{"unix/ibus/ibus.gyp", []string{"ibus-1.0"}},
	{"gui/gui.gyp", []string{"QtCore", "QtGui"}},
	{"unix/scim/scim.gyp", []string{"scim"}},
}

// Collector finds the build descriptions relevant to the host.
type Collector struct {
	Workspace *workspace.Workspace
	Runner    runner.Runner
	Logger    hclog.Logger
}

// NewCollector returns a Collector for ws.
func NewCollector(ws *workspace.Workspace, r runner.Runner, logger hclog.Logger) *Collector {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Collector{Workspace: ws, Runner: r, Logger: logger}
}

// Discover returns the sorted, duplicate-free list of description files as
// slash-separated paths relative to the source root. Listed descriptions
// need not exist; readers report missing ones.
func (c *Collector) Discover() ([]string, error) {
	root := os.DirFS(c.Workspace.Root)
	set := make(map[string]bool)

	add := func(names ...string) {
		for _, n := range names {
			set[n] = true
		}
	}
	glob := func(pattern string) error {
		matches, err := fs.Glob(root, pattern)
		if err != nil {
			return fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		add(matches...)
		return nil
	}

	topLevel, err := fs.Glob(root, "*/*.gyp")
	if err != nil {
		return nil, fmt.Errorf("failed to glob top-level descriptions: %w", err)
	}
	for _, name := range topLevel {
		// The gyp directory holds special-purpose descriptions that are
		// copied into place by the generator instead.
		if strings.HasPrefix(name, workspace.SpecialGypDir+"/") {
			continue
		}
		add(name)
	}

	if err := glob("build_tools/*/*.gyp"); err != nil {
		return nil, err
	}
	add(dictionaryDescriptions...)

	switch c.Workspace.Platform.OS {
	case platform.Windows:
		if err := glob("win32/*/*.gyp"); err != nil {
			return nil, err
		}
		if err := glob("third_party/breakpad/*.gyp"); err != nil {
			return nil, err
		}
		add("third_party/mozc/sandbox/sandbox.gyp")
	case platform.Linux:
		if err := glob("unix/*/*.gyp"); err != nil {
			return nil, err
		}
		warned := false
		for _, opt := range optionalLinux {
			installed, checked := c.hasPackages(opt.packages)
			if !checked && !warned {
				c.Logger.Warn("⚠️ pkg-config is not available, optional components are disabled")
				warned = true
			}
			if !installed {
				c.Logger.Debug("Excluding description, packages not installed",
					"file", opt.file, "packages", opt.packages)
				delete(set, opt.file)
			}
		}
	}

	if err := glob("third_party/rx/*.gyp"); err != nil {
		return nil, err
	}

	files := make([]string, 0, len(set))
	for name := range set {
		files = append(files, path.Clean(name))
	}
	sort.Strings(files)
	return files, nil
}

// hasPackages asks pkg-config whether every package is installed. Any
// failure means not installed; checked is false when pkg-config itself
// could not be started.
func (c *Collector) hasPackages(packages []string) (installed, checked bool) {
	argv := append([]string{"pkg-config", "--exists"}, packages...)
	err := c.Runner.Run(runner.Command{Argv: argv, Dir: c.Workspace.Root, Quiet: true})
	if err == nil {
		return true, true
	}
	var runErr *runner.RunError
	if errors.As(err, &runErr) && runErr.NotStarted() {
		return false, false
	}
	return false, true
}
