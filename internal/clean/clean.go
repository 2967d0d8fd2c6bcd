// Package clean removes the files that project generation and builds leave
// in the source tree.
package clean

import (
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/fsutil"
	"github.com/mozc-build/buildmozc/internal/metrics"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

// Discoverer lists the build descriptions of the tree as slash paths
// relative to the source root.
type Discoverer interface {
	Discover() ([]string, error)
}

// generated lists what the generator writes next to each description.
type generated struct {
	filePatterns []string
	dirPatterns  []string
	dirs         []string
}

var perDescription = map[platform.OS]generated{
	platform.Windows: {
		filePatterns: []string{"*.rules", "*.sln", "*.vcproj"},
		dirs:         []string{"Debug", "Optimize", "Release"},
	},
	platform.Mac: {
		dirPatterns: []string{"*.xcodeproj"},
	},
	platform.Linux: {
		filePatterns: []string{"*.target.mk"},
	},
}

// Cleaner removes generated files and build output.
type Cleaner struct {
	Workspace  *workspace.Workspace
	Discoverer Discoverer
	Logger     hclog.Logger
}

// New returns a Cleaner for ws.
func New(ws *workspace.Workspace, d Discoverer, logger hclog.Logger) *Cleaner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cleaner{Workspace: ws, Discoverer: d, Logger: logger}
}

// Clean removes everything generated for the host platform. Missing
// entries are skipped, so cleaning a clean tree does nothing.
func (c *Cleaner) Clean() error {
	files, dirs, err := c.collect()
	if err != nil {
		return err
	}

	for _, f := range files {
		removed, err := fsutil.RemoveFile(c.Workspace.Path(f))
		if err != nil {
			return err
		}
		if removed {
			c.Logger.Info("🗑️ Removing file: " + f)
			metrics.IncRemoved("file")
		}
	}
	for _, d := range dirs {
		removed, err := fsutil.RemoveDir(c.Workspace.Path(d))
		if removed {
			c.Logger.Info("🗑️ Removing directory: " + d)
			metrics.IncRemoved("directory")
		}
		if err != nil {
			c.Logger.Warn("⚠️ "+err.Error(), "directory", d)
		}
	}
	return nil
}

// collect returns the root-relative files and directories to remove.
func (c *Cleaner) collect() (files, dirs []string, err error) {
	descriptions, err := c.Discoverer.Discover()
	if err != nil {
		return nil, nil, err
	}
	o := c.Workspace.Platform.OS
	gen := perDescription[o]
	root := os.DirFS(c.Workspace.Root)

	seen := make(map[string]bool)
	var descDirs []string
	for _, desc := range descriptions {
		dir := path.Dir(desc)
		if !seen[dir] {
			seen[dir] = true
			descDirs = append(descDirs, dir)
		}
	}
	sort.Strings(descDirs)

	for _, dir := range descDirs {
		files = append(files, glob(root, dir, gen.filePatterns)...)
		dirs = append(dirs, glob(root, dir, gen.dirPatterns)...)
		for _, name := range gen.dirs {
			dirs = append(dirs, path.Join(dir, name))
		}
	}

	files = append(files, workspace.VersionFileName, "third_party/rx/rx.gyp")
	dirs = append(dirs, workspace.BuildToolsDir)
	switch o {
	case platform.Mac:
		dirs = append(dirs, platform.OutputDirName(o))
	case platform.Linux:
		files = append(files, "Makefile")
		dirs = append(dirs, platform.OutputDirName(o))
	case platform.Windows:
		files = append(files, "third_party/breakpad/breakpad.gyp")
		dirs = append(dirs, platform.OutputDirName(o))
	}
	return files, dirs, nil
}

func glob(root fs.FS, dir string, patterns []string) []string {
	var matches []string
	for _, p := range patterns {
		// Patterns are constant and valid, so Glob cannot fail.
		m, _ := fs.Glob(root, path.Join(dir, p))
		matches = append(matches, m...)
	}
	return matches
}
