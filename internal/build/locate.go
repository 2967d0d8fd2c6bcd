package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/fsutil"
	"github.com/mozc-build/buildmozc/pkg"
)

const vcbuildExe = "vcbuild.exe"

// Locator finds the directory holding vcbuild.exe.
type Locator interface {
	Locate() (string, error)
}

// Strategy proposes candidate directories for vcbuild.exe.
type Strategy struct {
	Name       string
	Candidates func() []string
}

// ChainLocator tries strategies in order and returns the first candidate
// directory that contains vcbuild.exe.
type ChainLocator struct {
	Strategies []Strategy
	Logger     hclog.Logger
	// Exists reports whether a file exists; defaults to fsutil.IsFile.
	Exists func(string) bool
}

// Locate implements Locator.
func (c *ChainLocator) Locate() (string, error) {
	exists := c.Exists
	if exists == nil {
		exists = fsutil.IsFile
	}
	logger := c.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var tried []string
	for _, s := range c.Strategies {
		for _, dir := range s.Candidates() {
			if dir == "" {
				continue
			}
			if exists(filepath.Join(dir, vcbuildExe)) {
				logger.Debug("🔍 Found vcbuild", "strategy", s.Name, "dir", dir)
				return dir, nil
			}
			tried = append(tried, dir)
		}
	}
	return "", fmt.Errorf("%w: failed to locate %s (searched: %s)",
		pkg.ErrToolNotFound, vcbuildExe, strings.Join(tried, ", "))
}

// Visual Studio releases that ship vcbuild, newest first.
var vsVersions = []struct {
	version  string
	toolsVar string
	dirName  string
}{
	{"9.0", "VS90COMNTOOLS", "Microsoft Visual Studio 9.0"},
	{"8.0", "VS80COMNTOOLS", "Microsoft Visual Studio 8"},
}

// DefaultLocator searches, in order: $VCBUILD_DIR, the directories of
// $PATH, the Visual Studio registry keys (Windows only), the
// VS*COMNTOOLS variables and the default install locations.
func DefaultLocator(getenv func(string) string, logger hclog.Logger) *ChainLocator {
	strategies := []Strategy{
		{Name: "VCBUILD_DIR", Candidates: func() []string {
			return []string{getenv("VCBUILD_DIR")}
		}},
		{Name: "PATH", Candidates: func() []string {
			return filepath.SplitList(getenv("PATH"))
		}},
	}
	strategies = append(strategies, registryStrategies()...)
	strategies = append(strategies,
		Strategy{Name: "COMNTOOLS", Candidates: func() []string {
			var dirs []string
			for _, vs := range vsVersions {
				if tools := getenv(vs.toolsVar); tools != "" {
					dirs = append(dirs, filepath.Join(tools, "..", "..", "VC", "vcpackages"))
				}
			}
			return dirs
		}},
		Strategy{Name: "install directory", Candidates: func() []string {
			var dirs []string
			for _, root := range []string{getenv("ProgramFiles(x86)"), getenv("ProgramFiles")} {
				if root == "" {
					continue
				}
				for _, vs := range vsVersions {
					dirs = append(dirs, filepath.Join(root, vs.dirName, "VC", "vcpackages"))
				}
			}
			return dirs
		}},
	)
	return &ChainLocator{Strategies: strategies, Logger: logger}
}
