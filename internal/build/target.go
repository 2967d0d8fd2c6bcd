// Package build turns build requests into invocations of the platform's
// native build driver.
package build

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mozc-build/buildmozc/pkg"
)

// Target names an entity inside a build description: "base/base.gyp:base".
type Target struct {
	File string
	Name string
}

func (t Target) String() string {
	return t.File + ":" + t.Name
}

// ParseTarget parses "file:name". The split happens at the last colon so
// Windows drive letters survive.
func ParseTarget(s string) (Target, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return Target{}, fmt.Errorf("%w: %s", pkg.ErrInvalidTarget, s)
	}
	return Target{File: s[:i], Name: s[i+1:]}, nil
}

// ParseTargets parses every target, stopping at the first invalid one.
func ParseTargets(args []string) ([]Target, error) {
	targets := make([]Target, 0, len(args))
	for _, s := range args {
		t, err := ParseTarget(s)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// projectBase strips the description extension: "base/base.gyp" becomes
// "base/base", the stem of the generated .xcodeproj or .sln.
func projectBase(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
