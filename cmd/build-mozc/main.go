package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mozc-build/buildmozc/internal/config"
	"github.com/mozc-build/buildmozc/internal/metrics"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/workspace"
	"github.com/mozc-build/buildmozc/pkg/logging"
)

const version = "0.1.0"

var errNoCommand = errors.New("no command is specified")

// Seams replaced by tests.
var (
	detectPlatform = platform.Detect
	newRunner      = func(logger hclog.Logger, python string) runner.Runner {
		return runner.NewExec(logger, python)
	}
	logOutput io.Writer
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	src         string
	configPath  string
	logLevel    string
	metricsFile string
	version     bool
}

// app is what a command needs once the persistent flags are resolved.
type app struct {
	logger      hclog.Logger
	ws          *workspace.Workspace
	cfg         *config.Config
	runner      runner.Runner
	python      string
	metricsFile string
}

func getBuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "build-mozc %s\n", version)
	fmt.Fprintf(w, "Built: %s\n", getBuildTimestamp())
}

func newRootCmd(a *app) *cobra.Command {
	var flags globalFlags
	host := detectPlatform()

	rootCmd := &cobra.Command{
		Use:           "build-mozc",
		Short:         "Build Mozc with GYP and the native build tools",
		Long:          "Generate project files, build, test and clean a Mozc source tree.",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.version {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			_ = cmd.Usage()
			if len(args) > 0 {
				return fmt.Errorf("unknown command %q", args[0])
			}
			return errNoCommand
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.src, "src", "", "Top-level source directory (default $MOZC_SRC_DIR, then the current directory)")
	pf.StringVar(&flags.configPath, "config", "", "Project file (default <src>/"+workspace.ProjectFileName+" if present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, json[:level])")
	pf.StringVar(&flags.metricsFile, "metrics_file", "", "Write Prometheus metrics to this file at exit")
	rootCmd.Flags().BoolVarP(&flags.version, "version", "V", false, "Show version information")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd == rootCmd {
			return nil
		}
		return a.prepare(flags, host)
	}

	rootCmd.AddCommand(
		newGypCmd(a, host),
		newBuildCmd(a, host),
		newBuildToolsCmd(a, host),
		newRuntestsCmd(a, host),
		newCleanCmd(a),
	)
	return rootCmd
}

// prepare resolves the workspace, project file, logger and runner.
func (a *app) prepare(flags globalFlags, host platform.Descriptor) error {
	ws, err := workspace.New(flags.src, host)
	if err != nil {
		return err
	}
	a.ws = ws

	configPath, required := flags.configPath, true
	if configPath == "" {
		configPath, required = ws.Path(workspace.ProjectFileName), false
	}
	cfg, err := config.Load(configPath, required, host.OS, os.Environ())
	if err != nil {
		return err
	}
	a.cfg = cfg

	explicit := flags.logLevel
	if explicit == "" {
		explicit = config.String(cfg.LogLevel, "")
	}
	level, source := logging.GetLogLevel(explicit)
	output := logOutput
	if output == nil {
		output = logging.GetLogOutput()
	}
	a.logger = logging.NewLogger("build-mozc", level, output).With("invocation", uuid.NewString())
	a.logger.Debug("🔧 Logger initialized", "level", level, "source", source)
	a.logger.Debug("📁 Workspace", "root", ws.Root, "original_dir", ws.OriginalDir,
		"platform", host.OS.String(), "generator", host.Generator)
	if cfg.Path != "" {
		a.logger.Debug("⚙️ Project file loaded", "path", cfg.Path)
	}

	a.python = config.String(cfg.Python, runner.DefaultPython())
	a.runner = newRunner(a.logger, a.python)

	a.metricsFile = flags.metricsFile
	if a.metricsFile == "" {
		a.metricsFile = config.String(cfg.MetricsFile, "")
	}
	return nil
}

// execute runs the command line and writes metrics once it finishes.
func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	rootCmd := newRootCmd(a)
	// cobra falls back to os.Args for a nil slice.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if a.metricsFile != "" {
		if werr := metrics.WriteTextfile(a.metricsFile); werr != nil && a.logger != nil {
			a.logger.Warn("⚠️ Failed to write metrics", "path", a.metricsFile, "error", werr)
		}
	}
	return err
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
