package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/runner/runnertest"
	"github.com/mozc-build/buildmozc/internal/testrun"
	"github.com/mozc-build/buildmozc/pkg"
)

const testGyp = `{
  'targets': [
    {'target_name': 'base'},
    {'target_name': 'base_test', 'variables': {'test_size': 'small'}},
    {'target_name': 'base_large_test', 'variables': {'test_size': 'large'}},
  ],
}
`

// setup points the command at a fresh source tree on platform o and
// records commands instead of running them.
func setup(t *testing.T, o platform.OS, files map[string]string) (string, *runnertest.Recorder) {
	t.Helper()
	root := t.TempDir()
	files["mozc_version_template.txt"] = "MAJOR=0\nMINOR=12\nBUILD=345\nREVISION=102\n"
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	rec := &runnertest.Recorder{}
	oldDetect, oldRunner, oldOutput := detectPlatform, newRunner, logOutput
	detectPlatform = func() platform.Descriptor { return platform.For(o) }
	newRunner = func(hclog.Logger, string) runner.Runner { return rec }
	logOutput = io.Discard
	t.Cleanup(func() {
		detectPlatform, newRunner, logOutput = oldDetect, oldRunner, oldOutput
	})
	return root, rec
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	err := execute(args, &out, &out)
	return out.String(), err
}

func TestNoCommand(t *testing.T) {
	setup(t, platform.Linux, map[string]string{})
	out, err := run()
	require.ErrorIs(t, err, errNoCommand)
	require.Contains(t, out, "Usage:")
}

func TestUnknownCommand(t *testing.T) {
	setup(t, platform.Linux, map[string]string{})
	out, err := run("frobnicate")
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown command "frobnicate"`)
	require.Contains(t, out, "Usage:")
}

func TestVersion(t *testing.T) {
	out, err := run("--version")
	require.NoError(t, err)
	require.Contains(t, out, "build-mozc "+version)
}

func TestBuildLinux(t *testing.T) {
	root, rec := setup(t, platform.Linux, map[string]string{})

	_, err := run("--src", root, "build", "-j", "2", "-c", "Release", "base/base.gyp:base")
	require.NoError(t, err)
	require.Equal(t, []string{"make -j2 BUILDTYPE=Release base"}, rec.Lines())
	require.FileExists(t, filepath.Join(root, "mozc_version.txt"))
}

func TestBuildRejectsInvalidTarget(t *testing.T) {
	root, rec := setup(t, platform.Linux, map[string]string{})

	_, err := run("--src", root, "build", "badtarget")
	require.ErrorIs(t, err, pkg.ErrInvalidTarget)
	require.Empty(t, rec.Commands)
}

func TestBuildWithoutTargets(t *testing.T) {
	root, _ := setup(t, platform.Linux, map[string]string{})
	_, err := run("--src", root, "build")
	require.ErrorIs(t, err, pkg.ErrNoTargets)
}

func TestProjectFileDefaults(t *testing.T) {
	root, rec := setup(t, platform.Linux, map[string]string{
		"build_mozc.hcl": "jobs = 8\nconfiguration = \"Release\"\nbuild_command = \"make V=1\"\n",
	})

	_, err := run("--src", root, "build", "base/base.gyp:base")
	require.NoError(t, err)
	_, err = run("--src", root, "build", "-j", "3", "base/base.gyp:base")
	require.NoError(t, err)

	require.Equal(t, []string{
		"make V=1 -j8 BUILDTYPE=Release base",
		"make V=1 -j3 BUILDTYPE=Release base",
	}, rec.Lines())
}

func TestExplicitProjectFileMustExist(t *testing.T) {
	root, _ := setup(t, platform.Linux, map[string]string{})
	_, err := run("--src", root, "--config", filepath.Join(root, "nope.hcl"), "clean")
	require.Error(t, err)
}

func TestRuntests(t *testing.T) {
	root, rec := setup(t, platform.Mac, map[string]string{"base/base.gyp": testGyp})
	rec.Fail = runnertest.FailContaining(filepath.Join("out_mac", "Release"))

	_, err := run("--src", root, "runtests", "-c", "Release")

	var failure *testrun.FailureError
	require.True(t, errors.As(err, &failure))
	require.Equal(t, []string{"base/base.gyp:base_test"}, failure.Failed)

	require.Len(t, rec.Commands, 2)
	require.Equal(t, "xcodebuild", rec.Commands[0].Argv[0])
	require.Contains(t, rec.Commands[0].Argv, "Release")
	require.Contains(t, rec.Commands[0].Argv, "base_test")
	require.Equal(t, filepath.Join(root, "out_mac", "Release", "base_test"), rec.Commands[1].Argv[0])
}

func TestRuntestsTargetsAndBuildOptions(t *testing.T) {
	root, rec := setup(t, platform.Linux, map[string]string{"base/base.gyp": testGyp})
	// Optional Linux components stay out of the way.
	rec.Fail = runnertest.FailContaining("pkg-config")

	_, err := run("--src", root, "runtests", "base/base.gyp:base_large_test", "--", "-j", "6")
	require.NoError(t, err)

	var lines []string
	for _, l := range rec.Lines() {
		if l[:4] != "pkg-" {
			lines = append(lines, l)
		}
	}
	require.Equal(t, []string{
		"make -j6 BUILDTYPE=Debug base_large_test",
		filepath.Join(root, "out_linux", "Debug", "base_large_test"),
	}, lines)
}

func TestClean(t *testing.T) {
	root, _ := setup(t, platform.Mac, map[string]string{
		"base/base.gyp":                       testGyp,
		"base/base.xcodeproj/project.pbxproj": "",
		"mozc_version.txt":                    "",
	})
	metricsFile := filepath.Join(t.TempDir(), "build_mozc.prom")

	_, err := run("--src", root, "--metrics_file", metricsFile, "clean")
	require.NoError(t, err)
	require.NoDirExists(t, filepath.Join(root, "base", "base.xcodeproj"))
	require.NoFileExists(t, filepath.Join(root, "mozc_version.txt"))
	require.FileExists(t, filepath.Join(root, "base", "base.gyp"))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "build_mozc_clean_removed_total")
}
