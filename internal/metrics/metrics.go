// Package metrics records what an invocation did (subprocesses, tests,
// removals, version writes) in a Prometheus registry that can be written
// to a node-exporter textfile when the run ends.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu  sync.RWMutex
	reg *prometheus.Registry

	subprocessRuns     *prometheus.CounterVec
	subprocessDuration *prometheus.HistogramVec
	testResults        *prometheus.CounterVec
	cleanRemoved       *prometheus.CounterVec
	versionWrites      prometheus.Counter
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

func init() {
	resetLocked()
}

// Reset clears and reinitializes all collectors.
// Primarily used by tests to ensure clean state.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resetLocked()
}

// Gatherer exposes the registry.
func Gatherer() prometheus.Gatherer {
	mu.RLock()
	defer mu.RUnlock()
	return reg
}

// WriteTextfile writes the current registry to path in the Prometheus text
// format, creating parent directories as needed.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory %s: %w", dir, err)
	}
	if err := prometheus.WriteToTextfile(path, Gatherer()); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// ObserveSubprocess records one finished external invocation. result is
// one of ResultSuccess, ResultFailure (non-zero exit) or ResultError
// (could not start).
func ObserveSubprocess(tool, result string, duration time.Duration) {
	labelTool := sanitizeLabel(toolName(tool), "unknown")

	mu.RLock()
	defer mu.RUnlock()
	if subprocessRuns != nil {
		subprocessRuns.WithLabelValues(labelTool, result).Inc()
	}
	if subprocessDuration != nil {
		subprocessDuration.WithLabelValues(labelTool).Observe(durationSeconds(duration))
	}
}

// ObserveTest records the outcome of one test binary.
func ObserveTest(passed bool) {
	result := ResultSuccess
	if !passed {
		result = ResultFailure
	}
	mu.RLock()
	defer mu.RUnlock()
	if testResults != nil {
		testResults.WithLabelValues(result).Inc()
	}
}

// IncRemoved counts a removed workspace entry; kind is "file" or "directory".
func IncRemoved(kind string) {
	mu.RLock()
	defer mu.RUnlock()
	if cleanRemoved != nil {
		cleanRemoved.WithLabelValues(sanitizeLabel(kind, "unknown")).Inc()
	}
}

// IncVersionWrites counts a rewrite of the version file.
func IncVersionWrites() {
	mu.RLock()
	defer mu.RUnlock()
	if versionWrites != nil {
		versionWrites.Inc()
	}
}

func resetLocked() {
	registry := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "build_mozc",
		Name:      "subprocess_runs_total",
		Help:      "External tool invocations grouped by tool and result.",
	}, []string{"tool", "result"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "build_mozc",
		Name:      "subprocess_duration_seconds",
		Help:      "Wall time of external tool invocations.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800, 3600},
	}, []string{"tool"})

	tests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "build_mozc",
		Name:      "tests_total",
		Help:      "Test binaries executed grouped by result.",
	}, []string{"result"})

	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "build_mozc",
		Name:      "clean_removed_total",
		Help:      "Files and directories removed by clean.",
	}, []string{"kind"})

	writes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "build_mozc",
		Name:      "version_writes_total",
		Help:      "Times the version file content changed and was rewritten.",
	})

	registry.MustRegister(runs, duration, tests, removed, writes)

	reg = registry
	subprocessRuns = runs
	subprocessDuration = duration
	testResults = tests
	cleanRemoved = removed
	versionWrites = writes
}

// toolName reduces an executable path to its base name without a Windows
// extension, so "C:\VS\vcbuild.exe" and "vcbuild" share a label.
func toolName(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(strings.ToLower(base), ".exe")
}

func sanitizeLabel(v string, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "." {
		return fallback
	}
	var b strings.Builder
	for _, r := range v {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func durationSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}
