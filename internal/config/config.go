// Package config loads the optional build_mozc.hcl project file, which
// supplies defaults for command-line options.
//
// Attribute values are HCL expressions evaluated with two variables:
//
//	env       object of the process environment, e.g. env.HOME
//	platform  host OS family: "windows", "mac", "linux" or "other"
//
// Example:
//
//	branding      = "GoogleJapaneseInput"
//	jobs          = 8
//	configuration = platform == "windows" ? "Release" : "Debug"
//	qtdir         = "${env.HOME}/qt"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/mozc-build/buildmozc/internal/platform"
)

// Config holds the project defaults. Nil fields are not set in the file.
type Config struct {
	Branding      *string `hcl:"branding,optional"`
	GypDir        *string `hcl:"gypdir,optional"`
	VersionFile   *string `hcl:"version_file,optional"`
	DepsFile      *string `hcl:"deps_file,optional"`
	Jobs          *string `hcl:"jobs,optional"`
	Configuration *string `hcl:"configuration,optional"`
	QtDir         *string `hcl:"qtdir,optional"`
	Platform      *string `hcl:"platform,optional"`
	BuildCommand  *string `hcl:"build_command,optional"`
	Python        *string `hcl:"python,optional"`
	TestSize      *string `hcl:"test_size,optional"`
	MetricsFile   *string `hcl:"metrics_file,optional"`
	LogLevel      *string `hcl:"log_level,optional"`

	// Path is the file the values came from; empty when none was read.
	Path string
}

// Load reads the project file at path. A missing file yields an empty
// Config unless required is set.
func Load(path string, required bool, o platform.OS, environ []string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}
	cfg, err := Parse(path, src, o, environ)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes project file content; filename is used in diagnostics.
func Parse(filename string, src []byte, o platform.OS, environ []string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse project file %s: %w", filename, diags)
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, EvalContext(o, environ), &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode project file %s: %w", filename, diags)
	}
	cfg.Path = filename
	return &cfg, nil
}

// EvalContext exposes env and platform to project file expressions.
func EvalContext(o platform.OS, environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		// Windows keeps per-drive variables such as "=C:" in its environment.
		if !ok || key == "" {
			continue
		}
		env[key] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":      cty.ObjectVal(env),
			"platform": cty.StringVal(o.String()),
		},
	}
}

// String returns the value of an optional attribute, or fallback.
func String(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
