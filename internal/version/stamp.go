package version

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/mozc-build/buildmozc/internal/metrics"
)

// Stamper renders a template into the version file. The file is rewritten
// only when its content changes, so build tools that key on timestamps do
// not rebuild everything after every invocation.
type Stamper struct {
	Logger    hclog.Logger
	ReadFile  func(string) ([]byte, error)
	WriteFile func(string, []byte, os.FileMode) error
}

// NewStamper returns a Stamper backed by the filesystem.
func NewStamper(logger hclog.Logger) *Stamper {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Stamper{
		Logger:    logger,
		ReadFile:  os.ReadFile,
		WriteFile: os.WriteFile,
	}
}

// Stamp renders templatePath with daily expansion into outputPath and
// reports whether the file was written.
func (s *Stamper) Stamp(templatePath, outputPath string) (bool, error) {
	v, err := Load(templatePath, true)
	if err != nil {
		return false, err
	}
	content := []byte(v.String())

	old, err := s.ReadFile(outputPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", outputPath, err)
	}
	if bytes.Equal(old, content) {
		s.Logger.Debug("Version file is up to date", "path", outputPath)
		return false, nil
	}

	if err := s.WriteFile(outputPath, content, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	metrics.IncVersionWrites()
	s.Logger.Info("📝 Version file updated", "path", outputPath,
		"version", v.Format("@MAJOR@.@MINOR@.@BUILD@.@REVISION@"))
	return true, nil
}
