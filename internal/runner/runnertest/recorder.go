// Package runnertest provides a runner.Runner that records commands
// instead of executing them.
package runnertest

import (
	"strings"

	"github.com/mozc-build/buildmozc/internal/runner"
)

// Recorder records every command. Fail decides which commands exit
// non-zero; a nil Fail lets everything succeed.
type Recorder struct {
	Commands []runner.Command
	Fail     func(cmd runner.Command) bool
	// Missing marks executables that behave as if not installed.
	Missing map[string]bool
}

// Run implements runner.Runner.
func (r *Recorder) Run(cmd runner.Command) error {
	r.Commands = append(r.Commands, cmd)
	if len(cmd.Argv) > 0 && r.Missing[cmd.Argv[0]] {
		return &runner.RunError{Argv: cmd.Argv, ExitCode: -1}
	}
	if r.Fail != nil && r.Fail(cmd) {
		return &runner.RunError{Argv: cmd.Argv, ExitCode: 1, Started: true}
	}
	return nil
}

// Lines returns the recorded command lines.
func (r *Recorder) Lines() []string {
	lines := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		lines[i] = runner.Join(c.Argv)
	}
	return lines
}

// FailContaining fails every command whose line contains one of subs.
func FailContaining(subs ...string) func(runner.Command) bool {
	return func(cmd runner.Command) bool {
		line := runner.Join(cmd.Argv)
		for _, s := range subs {
			if strings.Contains(line, s) {
				return true
			}
		}
		return false
	}
}
