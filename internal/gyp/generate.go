package gyp

import (
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/fsutil"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/version"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

// GenerateOptions are the options of the gyp command.
type GenerateOptions struct {
	OnePass     bool
	Branding    string
	GypDir      string
	NoQt        bool
	Coverage    bool
	ChannelDev  bool
	VersionFile string
	DepsFile    string
}

// auxiliary descriptions the generator expects next to vendored sources.
type auxiliary struct {
	source, destination string
	windowsOnly         bool
}

var auxiliaries = []auxiliary{
	{source: "gyp/rx.gyp", destination: "third_party/rx/rx.gyp"},
	{source: "gyp/breakpad.gyp", destination: "third_party/breakpad/breakpad.gyp", windowsOnly: true},
}

// Generator runs GYP over the discovered descriptions.
type Generator struct {
	Workspace *workspace.Workspace
	Runner    runner.Runner
	Collector *Collector
	Logger    hclog.Logger
	// Python interprets the GYP script.
	Python string
}

// NewGenerator returns a Generator for ws.
func NewGenerator(ws *workspace.Workspace, r runner.Runner, logger hclog.Logger, python string) *Generator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if python == "" {
		python = runner.DefaultPython()
	}
	return &Generator{
		Workspace: ws,
		Runner:    r,
		Collector: NewCollector(ws, r, logger),
		Logger:    logger,
		Python:    python,
	}
}

// Generate writes the native project files.
func (g *Generator) Generate(opts GenerateOptions) error {
	ws := g.Workspace
	if opts.GypDir == "" {
		opts.GypDir = workspace.DefaultGypDir
	}

	for _, aux := range auxiliaries {
		if aux.windowsOnly && ws.Platform.OS != platform.Windows {
			continue
		}
		g.Logger.Info("📄 Copying file", "to", aux.destination)
		if err := fsutil.CopyFile(ws.Path(aux.source), ws.Path(aux.destination)); err != nil {
			return err
		}
	}

	generator := ws.Platform.Generator
	g.Logger.Info("Build tool: " + generator)

	files, err := g.Collector.Discover()
	if err != nil {
		return err
	}
	g.Logger.Info("GYP files:")
	for _, f := range files {
		g.Logger.Info("- " + f)
	}

	gypScript := filepath.Join(filepath.FromSlash(opts.GypDir), "gyp")
	if !fsutil.IsFile(ws.Abs(gypScript)) {
		if err := g.checkoutGyp(opts); err != nil {
			return err
		}
	}

	argv, err := g.commandLine(gypScript, files, opts)
	if err != nil {
		return err
	}

	g.Logger.Info("⚙️ Running GYP...")
	cmd := runner.Command{
		Argv: argv,
		Env:  runner.Env{}.Set("GYP_GENERATORS", generator),
		Dir:  ws.Root,
	}
	if err := g.Runner.Run(cmd); err != nil {
		return err
	}
	g.Logger.Info("✅ Done")
	return nil
}

// checkoutGyp fetches GYP with Subversion at the revision pinned in DEPS.
func (g *Generator) checkoutGyp(opts GenerateOptions) error {
	deps := opts.DepsFile
	if deps == "" {
		deps = workspace.DepsFileName
	}
	url, err := ReadDepsURL(g.Workspace.Abs(deps))
	if err != nil {
		return err
	}
	g.Logger.Info("📥 GYP not found, checking it out", "url", url, "dir", opts.GypDir)
	return g.Runner.Run(runner.Command{
		Argv: []string{"svn", "checkout", url, filepath.FromSlash(opts.GypDir)},
		Dir:  g.Workspace.Root,
	})
}

func (g *Generator) commandLine(gypScript string, files []string, opts GenerateOptions) ([]string, error) {
	argv := []string{
		g.Python, gypScript,
		"--no-circular-check",
		"--depth=.",
		"--include=" + filepath.Join(workspace.SpecialGypDir, "common.gypi"),
	}
	if opts.OnePass {
		argv = append(argv, "-D", "two_pass_build=0")
	}
	for _, f := range files {
		argv = append(argv, filepath.FromSlash(f))
	}

	if opts.Branding != "" {
		argv = append(argv, "-D", "branding="+opts.Branding)
	}
	if opts.NoQt {
		argv = append(argv, "-D", "use_qt=NO")
	}
	if opts.Coverage {
		argv = append(argv, "-D", "coverage=1")
	}

	channelDev := opts.ChannelDev
	if !channelDev {
		v, err := version.Load(g.Workspace.VersionTemplate(opts.VersionFile), false)
		if err != nil {
			return nil, err
		}
		channelDev = v.IsDevChannel()
		g.Logger.Debug("Channel from version template", "revision", v.Get("REVISION"), "dev", channelDev)
	}
	if channelDev {
		argv = append(argv, "-D", "channel_dev=1")
	}
	return argv, nil
}
