package testrun

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mozc-build/buildmozc/internal/build"
	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner/runnertest"
	"github.com/mozc-build/buildmozc/internal/workspace"
	"github.com/mozc-build/buildmozc/pkg"
)

const baseGyp = `{
  'targets': [
    {
      'target_name': 'base',
      'type': 'static_library',
    },
    {
      'target_name': 'base_test',
      'type': 'executable',
      'variables': {
        'test_size': 'small',
      },
    },
    {
      'target_name': 'util_test',
      'variables': {'test_size': 'large'},
    },
  ],
}
`

const sessionGyp = `{
  'targets': [
    {
      # No size declared.
      'target_name': 'session_test',
    },
    {
      'target_name': 'session_handler_test',
      'variables': {'test_size': 'small'},
    },
  ],
}
`

func newWorkspace(t *testing.T, o platform.OS, files map[string]string) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return &workspace.Workspace{Root: root, OriginalDir: root, Platform: platform.For(o)}
}

func TestListTestsSingleEntity(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, map[string]string{
		"foo/foo.gyp": `{'targets': [{'target_name': 'foo_test', 'variables': {'test_size': 'small'}}]}`,
	})
	o := New(ws, &runnertest.Recorder{}, nil)

	tests, diags := o.ListTests([]string{"foo/foo.gyp"})
	require.Empty(t, diags)
	require.Equal(t, []Test{{Target: "foo/foo.gyp:foo_test", Size: "small"}}, tests)
}

func TestListTests(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, map[string]string{
		"base/base.gyp":       baseGyp,
		"session/session.gyp": sessionGyp,
		"broken/broken.gyp":   "['not', 'a', 'mapping']",
	})
	o := New(ws, &runnertest.Recorder{}, nil)

	tests, diags := o.ListTests([]string{
		"base/base.gyp", "broken/broken.gyp", "missing/missing.gyp", "session/session.gyp",
	})

	want := []Test{
		{Target: "base/base.gyp:base_test", Size: "small"},
		{Target: "base/base.gyp:util_test", Size: "large"},
		{Target: "session/session.gyp:session_handler_test", Size: "small"},
	}
	if diff := cmp.Diff(want, tests); diff != "" {
		t.Errorf("ListTests() mismatch (-want +got):\n%s", diff)
	}

	files := make([]string, len(diags))
	for i, d := range diags {
		files[i] = d.File
	}
	require.Equal(t, []string{"broken/broken.gyp", "missing/missing.gyp", "session/session.gyp"}, files)
	require.Contains(t, diags[2].Message, "session/session.gyp:session_test")
}

func TestSelect(t *testing.T) {
	all := []Test{
		{Target: "a.gyp:a_test", Size: "small"},
		{Target: "b.gyp:b_test", Size: "large"},
		{Target: "c.gyp:c_test", Size: "small"},
	}
	o := New(newWorkspace(t, platform.Linux, nil), &runnertest.Recorder{}, nil)

	tests := []struct {
		name      string
		requested []string
		size      string
		want      []string
	}{
		{"requested", []string{"b.gyp:b_test"}, "", []string{"b.gyp:b_test"}},
		{"unknown dropped", []string{"x.gyp:x", "c.gyp:c_test"}, "", []string{"c.gyp:c_test"}},
		{"default size", nil, "", []string{"a.gyp:a_test", "c.gyp:c_test"}},
		{"size", nil, "large", []string{"b.gyp:b_test"}},
		{"all unknown falls back to size", []string{"x.gyp:x"}, "large", []string{"b.gyp:b_test"}},
		{"no match", nil, "medium", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.Select(all, tt.requested, tt.size)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRunAggregatesFailures(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, nil)
	rec := &runnertest.Recorder{Fail: runnertest.FailContaining("bad_test")}
	o := New(ws, rec, nil)

	err := o.Run([]string{"a.gyp:bad_test", "b.gyp:good_test"}, "Release", false)

	var failure *FailureError
	require.True(t, errors.As(err, &failure))
	require.Equal(t, []string{"a.gyp:bad_test"}, failure.Failed)
	require.Equal(t, "following tests failed\na.gyp:bad_test", failure.Error())

	require.Len(t, rec.Commands, 2, "every test runs even after a failure")
	require.Equal(t, []string{filepath.Join(ws.Root, "out_linux", "Release", "bad_test")}, rec.Commands[0].Argv)
	require.Equal(t, []string{filepath.Join(ws.Root, "out_linux", "Release", "good_test")}, rec.Commands[1].Argv)
}

func TestRunRecordsInvalidTarget(t *testing.T) {
	ws := newWorkspace(t, platform.Mac, nil)
	rec := &runnertest.Recorder{}
	o := New(ws, rec, nil)

	err := o.Run([]string{"nocolon", "a.gyp:a_test"}, "Debug", true)
	var failure *FailureError
	require.True(t, errors.As(err, &failure))
	require.Equal(t, []string{"nocolon"}, failure.Failed)
	require.Len(t, rec.Commands, 1)
	require.Equal(t, filepath.Join(ws.Root, "out_mac", "Debug", "a_test"), rec.Commands[0].Argv[0])
}

func TestRunSuccess(t *testing.T) {
	ws := newWorkspace(t, platform.Windows, nil)
	o := New(ws, &runnertest.Recorder{}, nil)
	require.NoError(t, o.Run([]string{"a.gyp:a_test"}, "Debug", false))
}

func TestRunUnsupportedPlatform(t *testing.T) {
	ws := newWorkspace(t, platform.Other, nil)
	rec := &runnertest.Recorder{}
	o := New(ws, rec, nil)

	err := o.Run([]string{"a.gyp:a_test"}, "Debug", false)
	require.True(t, errors.Is(err, pkg.ErrUnsupportedPlatform))
	require.Empty(t, rec.Commands)
}

type fakeBuilder struct {
	requests []build.Request
	err      error
}

func (b *fakeBuilder) Build(req build.Request) error {
	b.requests = append(b.requests, req)
	return b.err
}

func TestExecute(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, map[string]string{"base/base.gyp": baseGyp})
	rec := &runnertest.Recorder{}
	o := New(ws, rec, nil)
	b := &fakeBuilder{}

	err := o.Execute([]string{"base/base.gyp"}, b, Plan{
		Configuration: "Release",
		Build:         build.Options{Jobs: "2", Configuration: "Debug"},
	})
	require.NoError(t, err)

	require.Len(t, b.requests, 1)
	req := b.requests[0]
	require.Equal(t, []string{"base/base.gyp:base_test"}, req.Targets)
	require.Equal(t, ws.Root, req.BaseDir)
	require.Equal(t, "Release", req.Options.Configuration)
	require.Equal(t, "2", req.Options.Jobs)

	require.Equal(t, []string{filepath.Join(ws.Root, "out_linux", "Release", "base_test")}, rec.Commands[0].Argv)
}

func TestExecuteBuildFailureSkipsRun(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, map[string]string{"base/base.gyp": baseGyp})
	rec := &runnertest.Recorder{}
	o := New(ws, rec, nil)
	boom := errors.New("boom")

	err := o.Execute([]string{"base/base.gyp"}, &fakeBuilder{err: boom}, Plan{Requested: []string{"base/base.gyp:util_test"}})
	require.ErrorIs(t, err, boom)
	require.Empty(t, rec.Commands)
}

func TestExecuteNothingSelected(t *testing.T) {
	ws := newWorkspace(t, platform.Linux, map[string]string{"base/base.gyp": baseGyp})
	b := &fakeBuilder{}
	err := New(ws, &runnertest.Recorder{}, nil).Execute([]string{"base/base.gyp"}, b, Plan{Size: "medium"})
	require.ErrorIs(t, err, pkg.ErrNoTargets)
	require.Empty(t, b.requests)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantTargets []string
		wantBuild   []string
	}{
		{"dash dash", []string{"a.gyp:a_test", "--", "-c", "Release"}, []string{"a.gyp:a_test"}, []string{"-c", "Release"}},
		{"first flag", []string{"a.gyp:a_test", "b.gyp:b_test", "-j", "8"}, []string{"a.gyp:a_test", "b.gyp:b_test"}, []string{"-j", "8"}},
		{"targets only", []string{"a.gyp:a_test"}, []string{"a.gyp:a_test"}, nil},
		{"options only", []string{"--noqt"}, []string{}, []string{"--noqt"}},
		{"empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, buildArgs := SplitArgs(tt.args)
			require.Equal(t, tt.wantTargets, targets)
			require.Equal(t, tt.wantBuild, buildArgs)
		})
	}
}
