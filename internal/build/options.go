package build

import (
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

// Defaults of the build command.
const (
	DefaultJobs          = "4"
	DefaultConfiguration = "Debug"
	DefaultPlatform      = "Win32"
	// DefaultQtDir matches the Debian build procedure.
	DefaultQtDir = "/usr/local/Trolltech/Qt-4.5.2"
)

// DefaultQtDirFor returns the Qt directory used when neither --qtdir nor
// QTDIR is given. Windows has no default.
func DefaultQtDirFor(o platform.OS) string {
	if o == platform.Windows {
		return ""
	}
	return DefaultQtDir
}

// Options are the options of the build command.
type Options struct {
	Jobs          string
	Configuration string
	BuildBase     string
	NoQt          bool
	VersionFile   string
	// Platform is the Windows target platform: Win32 or x64.
	Platform string
	QtDir    string
	// BuildCommand overrides the make tool; defaults to $BUILD_COMMAND,
	// then "make".
	BuildCommand string
}

func (o Options) withDefaults() Options {
	if o.Jobs == "" {
		o.Jobs = DefaultJobs
	}
	if o.Configuration == "" {
		o.Configuration = DefaultConfiguration
	}
	if o.Platform == "" {
		o.Platform = DefaultPlatform
	}
	if o.VersionFile == "" {
		o.VersionFile = workspace.VersionTemplateName
	}
	return o
}

// Request is one build: target strings, the directory their description
// paths are relative to, and the options.
type Request struct {
	Targets []string
	// BaseDir is where relative description paths start; empty means the
	// directory build-mozc was invoked from.
	BaseDir string
	Options Options
}

// invocation is what a driver receives after the dispatcher has prepared
// the version file and the environment.
type invocation struct {
	Targets []Target
	BaseDir string
	Options Options
	Env     runner.Env
}
