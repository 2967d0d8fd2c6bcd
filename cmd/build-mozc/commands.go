package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mozc-build/buildmozc/internal/build"
	"github.com/mozc-build/buildmozc/internal/clean"
	"github.com/mozc-build/buildmozc/internal/config"
	"github.com/mozc-build/buildmozc/internal/gyp"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/testrun"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

func newGypCmd(a *app, host platform.Descriptor) *cobra.Command {
	var opts gyp.GenerateOptions
	cmd := &cobra.Command{
		Use:   "gyp [options]",
		Short: "Generate native project files with GYP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			cfg := a.cfg
			applyString(fs, "branding", &opts.Branding, cfg.Branding)
			applyString(fs, "gypdir", &opts.GypDir, cfg.GypDir)
			applyString(fs, "version_file", &opts.VersionFile, cfg.VersionFile)
			opts.DepsFile = config.String(cfg.DepsFile, workspace.DepsFileName)

			g := gyp.NewGenerator(a.ws, a.runner, a.logger, a.python)
			return g.Generate(opts)
		},
	}
	fs := cmd.Flags()
	fs.BoolVarP(&opts.OnePass, "onepass", "1", false, "Build mozc in one pass. Not recommended for Debug build.")
	fs.StringVar(&opts.Branding, "branding", "Mozc", "Branding of the product")
	fs.StringVar(&opts.GypDir, "gypdir", workspace.DefaultGypDir, "Directory of the GYP checkout")
	fs.BoolVar(&opts.NoQt, "noqt", false, "Do not build the Qt based GUI")
	fs.BoolVar(&opts.Coverage, "coverage", false, "Use code coverage analysis build options")
	fs.BoolVar(&opts.ChannelDev, "channel_dev", false, "Build dev channel explicitly")
	fs.StringVar(&opts.VersionFile, "version_file", workspace.VersionTemplateName, "Use the specified version template file")
	return cmd
}

// addBuildFlags declares the options of the build command on fs.
func addBuildFlags(fs *pflag.FlagSet, opts *build.Options, host platform.Descriptor) {
	fs.StringVarP(&opts.Jobs, "jobs", "j", build.DefaultJobs, "Run N jobs in parallel")
	fs.StringVarP(&opts.Configuration, "configuration", "c", build.DefaultConfiguration, "Build configuration")
	fs.StringVar(&opts.BuildBase, "build_base", "", "Base directory of the built binaries")
	fs.BoolVar(&opts.NoQt, "noqt", false, "Do not export QTDIR")
	fs.StringVar(&opts.VersionFile, "version_file", workspace.VersionTemplateName, "Use the specified version template file")
	if host.OS == platform.Windows {
		fs.StringVarP(&opts.Platform, "platform", "p", build.DefaultPlatform, "Target platform: [Win32|x64]")
	}
	qtDir := os.Getenv("QTDIR")
	if qtDir == "" {
		qtDir = build.DefaultQtDirFor(host.OS)
	}
	fs.StringVar(&opts.QtDir, "qtdir", qtDir, "Qt base directory (default $QTDIR)")
}

// applyBuildConfig fills build options the command line left unset from
// the project file.
func applyBuildConfig(fs *pflag.FlagSet, opts *build.Options, cfg *config.Config) {
	applyString(fs, "jobs", &opts.Jobs, cfg.Jobs)
	applyString(fs, "configuration", &opts.Configuration, cfg.Configuration)
	applyString(fs, "version_file", &opts.VersionFile, cfg.VersionFile)
	applyString(fs, "platform", &opts.Platform, cfg.Platform)
	applyString(fs, "qtdir", &opts.QtDir, cfg.QtDir)
	opts.BuildCommand = config.String(cfg.BuildCommand, "")
}

// applyString copies a project file value into dst unless the flag was
// given on the command line.
func applyString(fs *pflag.FlagSet, name string, dst *string, value *string) {
	if value == nil {
		return
	}
	if f := fs.Lookup(name); f != nil && f.Changed {
		return
	}
	*dst = *value
}

func newBuildCmd(a *app, host platform.Descriptor) *cobra.Command {
	var opts build.Options
	cmd := &cobra.Command{
		Use:   "build [options] file.gyp:target...",
		Short: "Build targets with the native build tool",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyBuildConfig(cmd.Flags(), &opts, a.cfg)
			d := build.NewDispatcher(a.ws, a.runner, a.logger)
			return d.Build(build.Request{Targets: args, BaseDir: a.ws.OriginalDir, Options: opts})
		},
	}
	addBuildFlags(cmd.Flags(), &opts, host)
	return cmd
}

func newBuildToolsCmd(a *app, host platform.Descriptor) *cobra.Command {
	var opts build.Options
	cmd := &cobra.Command{
		Use:   "build_tools [options]",
		Short: "Build the tools the main build depends on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyBuildConfig(cmd.Flags(), &opts, a.cfg)
			return build.NewDispatcher(a.ws, a.runner, a.logger).BuildTools(opts)
		},
	}
	addBuildFlags(cmd.Flags(), &opts, host)
	return cmd
}

// runtestsFlags are the options of runtests itself; build options follow
// the test targets.
type runtestsFlags struct {
	testSize      string
	configuration string
	coverage      bool
}

func newRuntestsCmd(a *app, host platform.Descriptor) *cobra.Command {
	var rf runtestsFlags
	cmd := &cobra.Command{
		Use:   "runtests [options] [file.gyp:target_test...] [-- build options]",
		Short: "Build and run tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			if v := a.cfg.TestSize; v != nil && !fs.Changed("test_size") {
				rf.testSize = *v
			}
			if v := a.cfg.Configuration; v != nil && !fs.Changed("configuration") {
				rf.configuration = *v
			}

			// cobra drops "--"; put it back so targets and build options
			// split where the user separated them.
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				args = append(append(args[:dash:dash], "--"), args[dash:]...)
			}
			targets, buildArgs := testrun.SplitArgs(args)

			var opts build.Options
			bfs := pflag.NewFlagSet("build options", pflag.ContinueOnError)
			bfs.SetOutput(cmd.ErrOrStderr())
			addBuildFlags(bfs, &opts, host)
			if err := bfs.Parse(buildArgs); err != nil {
				return fmt.Errorf("invalid build options: %w", err)
			}
			applyBuildConfig(bfs, &opts, a.cfg)

			files, err := gyp.NewCollector(a.ws, a.runner, a.logger).Discover()
			if err != nil {
				return err
			}
			o := testrun.New(a.ws, a.runner, a.logger)
			return o.Execute(files, build.NewDispatcher(a.ws, a.runner, a.logger), testrun.Plan{
				Requested:     targets,
				Size:          rf.testSize,
				Configuration: rf.configuration,
				Coverage:      rf.coverage,
				Build:         opts,
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&rf.testSize, "test_size", testrun.DefaultTestSize, "Size of the tests to run when no target is given")
	fs.StringVarP(&rf.configuration, "configuration", "c", build.DefaultConfiguration, "Build configuration")
	fs.BoolVar(&rf.coverage, "calculate_coverage", false, "Calculate test coverage")
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated files and build output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := gyp.NewCollector(a.ws, a.runner, a.logger)
			return clean.New(a.ws, collector, a.logger).Clean()
		},
	}
}
