package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Prefix marks every text log line written by build-mozc.
const Prefix = "🔨 "

// NewLogger creates a new hclog logger with standard settings.
// A level of the form "json" or "json:<level>" switches to JSON output,
// as does MOZC_JSON_LOG=1.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("MOZC_JSON_LOG") == "1"
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		level = strings.TrimPrefix(strings.TrimPrefix(level, "json"), ":")
		if level == "" {
			level = "info"
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel resolves the log level: an explicit value wins, then
// MOZC_LOG_LEVEL, then "info". The second return value names the source.
func GetLogLevel(explicit string) (string, string) {
	if explicit != "" {
		return explicit, "--log-level"
	}
	if level := os.Getenv("MOZC_LOG_LEVEL"); level != "" {
		return level, "MOZC_LOG_LEVEL"
	}
	return "info", "default"
}

// GetLogOutput returns the file named by MOZC_LOG_PATH opened for append,
// or stderr when it is unset or cannot be opened.
func GetLogOutput() io.Writer {
	if logPath := os.Getenv("MOZC_LOG_PATH"); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return file
		}
	}
	return os.Stderr
}
