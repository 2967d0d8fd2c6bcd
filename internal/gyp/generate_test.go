package gyp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozc-build/buildmozc/internal/platform"
	"github.com/mozc-build/buildmozc/internal/runner"
	"github.com/mozc-build/buildmozc/internal/runner/runnertest"
	"github.com/mozc-build/buildmozc/internal/workspace"
)

func newGenerateWorkspace(t *testing.T, o platform.OS, revision string) *workspace.Workspace {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root,
		"base/base.gyp",
		"gyp/rx.gyp",
		"gyp/breakpad.gyp",
		"third_party/gyp/gyp",
	)
	tmpl := "MAJOR=0\nMINOR=12\nBUILD=daily\nREVISION=" + revision + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "mozc_version_template.txt"), []byte(tmpl), 0644))
	return &workspace.Workspace{Root: root, OriginalDir: root, Platform: platform.For(o)}
}

func TestGenerateMac(t *testing.T) {
	ws := newGenerateWorkspace(t, platform.Mac, "202")
	rec := &runnertest.Recorder{}
	g := NewGenerator(ws, rec, nil, "python2.6")

	err := g.Generate(GenerateOptions{
		OnePass:  true,
		Branding: "GoogleJapaneseInput",
		NoQt:     true,
		Coverage: true,
	})
	require.NoError(t, err)

	require.FileExists(t, filepath.Join(ws.Root, "third_party", "rx", "rx.gyp"))
	require.NoFileExists(t, filepath.Join(ws.Root, "third_party", "breakpad", "breakpad.gyp"))

	require.Len(t, rec.Commands, 1)
	cmd := rec.Commands[0]
	require.Equal(t, ws.Root, cmd.Dir)
	gen, ok := cmd.Env.Get("GYP_GENERATORS")
	require.True(t, ok)
	require.Equal(t, "xcode", gen)

	require.Equal(t, []string{
		"python2.6", filepath.Join("third_party", "gyp", "gyp"),
		"--no-circular-check",
		"--depth=.",
		"--include=" + filepath.Join("gyp", "common.gypi"),
		"-D", "two_pass_build=0",
		filepath.Join("base", "base.gyp"),
		filepath.Join("dictionary", "file", "dictionary_file.gyp"),
		filepath.Join("dictionary", "system", "system_dictionary.gyp"),
		filepath.Join("third_party", "rx", "rx.gyp"),
		"-D", "branding=GoogleJapaneseInput",
		"-D", "use_qt=NO",
		"-D", "coverage=1",
	}, cmd.Argv)
}

func TestGenerateDevChannel(t *testing.T) {
	tests := []struct {
		name     string
		revision string
		explicit bool
		want     bool
	}{
		{"template says dev", "102", false, true},
		{"explicit flag", "202", true, true},
		{"stable", "202", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newGenerateWorkspace(t, platform.Linux, tt.revision)
			rec := &runnertest.Recorder{}
			g := NewGenerator(ws, rec, nil, "python")

			require.NoError(t, g.Generate(GenerateOptions{Branding: "Mozc", ChannelDev: tt.explicit}))

			last := rec.Commands[len(rec.Commands)-1]
			line := runner.Join(last.Argv)
			require.Equal(t, tt.want, strings.Contains(line, "channel_dev=1"), line)
			env, _ := last.Env.Get("GYP_GENERATORS")
			require.Equal(t, "make", env)
		})
	}
}

func TestGenerateWindowsCopiesBreakpad(t *testing.T) {
	ws := newGenerateWorkspace(t, platform.Windows, "202")
	rec := &runnertest.Recorder{}
	require.NoError(t, NewGenerator(ws, rec, nil, "python").Generate(GenerateOptions{}))

	require.FileExists(t, filepath.Join(ws.Root, "third_party", "breakpad", "breakpad.gyp"))
	env, _ := rec.Commands[0].Env.Get("GYP_GENERATORS")
	require.Equal(t, "msvs", env)
	require.Contains(t, rec.Commands[0].Argv, filepath.Join("third_party", "breakpad", "breakpad.gyp"))
}

func TestGenerateChecksOutGyp(t *testing.T) {
	ws := newGenerateWorkspace(t, platform.Mac, "202")
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "DEPS"), []byte(depsFile), 0644))
	rec := &runnertest.Recorder{}

	err := NewGenerator(ws, rec, nil, "python").Generate(GenerateOptions{GypDir: "mozc_build_tools/gyp"})
	require.NoError(t, err)

	lines := rec.Lines()
	require.Len(t, lines, 2)
	require.Equal(t, "svn checkout http://gyp.googlecode.com/svn/trunk@800 "+filepath.Join("mozc_build_tools", "gyp"), lines[0])
	require.Contains(t, lines[1], filepath.Join("mozc_build_tools", "gyp", "gyp"))
}

func TestGenerateFailsWithoutDepsURL(t *testing.T) {
	ws := newGenerateWorkspace(t, platform.Mac, "202")
	require.NoError(t, os.WriteFile(filepath.Join(ws.Root, "DEPS"), []byte("deps = {}"), 0644))
	rec := &runnertest.Recorder{}

	err := NewGenerator(ws, rec, nil, "python").Generate(GenerateOptions{GypDir: "elsewhere"})
	require.Error(t, err)
	require.Empty(t, rec.Commands)
}

func TestGenerateGypFailure(t *testing.T) {
	ws := newGenerateWorkspace(t, platform.Mac, "202")
	rec := &runnertest.Recorder{Fail: runnertest.FailContaining("--no-circular-check")}

	err := NewGenerator(ws, rec, nil, "python").Generate(GenerateOptions{})
	var runErr *runner.RunError
	require.ErrorAs(t, err, &runErr)
	require.Contains(t, err.Error(), "--no-circular-check")
}
