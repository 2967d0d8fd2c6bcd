// Package workspace resolves the paths of a Mozc source tree: the
// top-level source directory every tool runs in, the directory the user
// invoked build-mozc from, and the well-known files inside the tree.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mozc-build/buildmozc/internal/platform"
)

// Well-known locations relative to the source root.
const (
	VersionFileName     = "mozc_version.txt"
	VersionTemplateName = "mozc_version_template.txt"
	DepsFileName        = "DEPS"
	ProjectFileName     = "build_mozc.hcl"
	SpecialGypDir       = "gyp"
	BuildToolsDir       = "mozc_build_tools"
	DefaultGypDir       = "third_party/gyp"
)

// Workspace is the source tree of one invocation.
type Workspace struct {
	// Root is the absolute top-level source directory. External tools run
	// with Root as their working directory.
	Root string
	// OriginalDir is the absolute directory build-mozc was started in.
	// Build targets given on the command line are relative to it.
	OriginalDir string
	Platform    platform.Descriptor
}

// New returns a Workspace rooted at root. An empty root resolves to
// MOZC_SRC_DIR, then to the current directory.
func New(root string, desc platform.Descriptor) (*Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if root == "" {
		root = os.Getenv("MOZC_SRC_DIR")
	}
	if root == "" {
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", abs)
	}
	return &Workspace{Root: abs, OriginalDir: cwd, Platform: desc}, nil
}

// Path joins slash-separated elements onto the source root.
func (w *Workspace) Path(elem ...string) string {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, w.Root)
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	return filepath.Join(parts...)
}

// VersionFile returns the path of the stamped version file.
func (w *Workspace) VersionFile() string {
	return w.Path(VersionFileName)
}

// VersionTemplate returns the path of the named version template.
func (w *Workspace) VersionTemplate(name string) string {
	if name == "" {
		name = VersionTemplateName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return w.Path(name)
}

// OutputDir returns the platform output directory, or "" on platforms
// without one.
func (w *Workspace) OutputDir() string {
	if w.Platform.OutputDir == "" {
		return ""
	}
	return w.Path(w.Platform.OutputDir)
}

// Abs resolves p against the source root unless it is already absolute.
func (w *Workspace) Abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return w.Path(p)
}

// Resolve resolves a file named relative to base (OriginalDir when base is
// empty) into an absolute path.
func (w *Workspace) Resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if base == "" {
		base = w.OriginalDir
	}
	return filepath.Join(base, filepath.FromSlash(p))
}

// RelToRoot rebases an absolute path onto the source root. xcodebuild
// rejects absolute -project arguments, so Mac builds need this form.
func (w *Workspace) RelToRoot(abs string) (string, error) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", fmt.Errorf("failed to rebase %s onto %s: %w", abs, w.Root, err)
	}
	return rel, nil
}
