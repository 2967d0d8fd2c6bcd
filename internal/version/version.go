// Package version reads Mozc version templates and renders the version
// descriptor the build consumes.
//
// A template is a list of KEY=VALUE lines. MAJOR, MINOR, BUILD and
// REVISION are mandatory; the first definition of a key wins. A BUILD
// value of "daily" expands to the number of days since the project's zero
// day when daily expansion is requested.
package version

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mandatory properties, in serialization order.
var Properties = []string{"MAJOR", "MINOR", "BUILD", "REVISION"}

// StampFormat is the layout of the stamped version file.
const StampFormat = "MAJOR=@MAJOR@\nMINOR=@MINOR@\nBUILD=@BUILD@\nREVISION=@REVISION@\n"

// DailyBuild is the BUILD placeholder replaced by the day count.
const DailyBuild = "daily"

var (
	zeroDay  = time.Date(2009, time.May, 24, 0, 0, 0, 0, time.UTC)
	lineExpr = regexp.MustCompile(`^(\w+)=(.*)$`)

	// now is replaced in tests.
	now = time.Now
)

// Version is a parsed version template.
type Version struct {
	props map[string]string
}

// Load parses the template at path.
func Load(path string, expandDaily bool) (*Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open version template: %w", err)
	}
	defer f.Close()

	v, err := Parse(f, expandDaily)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse reads a template from r.
func Parse(r io.Reader, expandDaily bool) (*Version, error) {
	props := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := lineExpr.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		if _, seen := props[m[1]]; !seen {
			props[m[1]] = m[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read version template: %w", err)
	}

	for _, key := range Properties {
		if _, ok := props[key]; !ok {
			return nil, fmt.Errorf("version template lacks mandatory property %s", key)
		}
	}

	if expandDaily && props["BUILD"] == DailyBuild {
		props["BUILD"] = strconv.Itoa(daysSinceZero(now()))
	}
	return &Version{props: props}, nil
}

func daysSinceZero(t time.Time) int {
	y, m, d := t.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(zeroDay).Hours() / 24)
}

// Get returns a property value, or "" if it is not defined.
func (v *Version) Get(key string) string {
	return v.props[key]
}

// Format replaces every @KEY@ placeholder of a defined property.
func (v *Version) Format(tmpl string) string {
	pairs := make([]string, 0, 2*len(v.props))
	for key, value := range v.props {
		pairs = append(pairs, "@"+key+"@", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// String returns the stamped file content.
func (v *Version) String() string {
	return v.Format(StampFormat)
}

// IsDevChannel reports whether the revision belongs to the dev channel:
// revisions carry the channel in their hundreds digit, and 1 marks dev.
func (v *Version) IsDevChannel() bool {
	revision := v.Get("REVISION")
	if len(revision) < 3 {
		return false
	}
	return revision[len(revision)-3] == '1'
}
