package gyp

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mozc-build/buildmozc/pkg"
)

var (
	gypURLExpr      = regexp.MustCompile(`"(https?://[^"@\s]*gyp[^"@\s]*)@`)
	gypRevisionExpr = regexp.MustCompile(`"gyp_revision":\s+"(\d+)"`)
)

// DepsURL extracts the GYP checkout URL from DEPS file content: the quoted
// repository URL up to its "@" and the "gyp_revision" variable, joined as
// url@revision.
func DepsURL(contents []byte) (string, error) {
	m := gypURLExpr.FindSubmatch(contents)
	if m == nil {
		return "", pkg.ErrGypURLNotFound
	}
	rev := gypRevisionExpr.FindSubmatch(contents)
	if rev == nil {
		return "", fmt.Errorf("%w: gyp_revision is not set", pkg.ErrGypURLNotFound)
	}
	return fmt.Sprintf("%s@%s", m[1], rev[1]), nil
}

// ReadDepsURL reads the DEPS file at path and returns its GYP URL.
func ReadDepsURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read DEPS file: %w", err)
	}
	url, err := DepsURL(data)
	if err != nil {
		return "", fmt.Errorf("%w in %s", err, path)
	}
	return url, nil
}
