package runner

import (
	"runtime"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Var is a single environment override.
type Var struct {
	Key   string
	Value string
}

// Env is an ordered set of environment overrides. It is applied only to
// the child process of a Command; the build-mozc process environment is
// never modified.
type Env []Var

// Set adds or replaces key.
func (e Env) Set(key, value string) Env {
	for i := range e {
		if sameKey(e[i].Key, key) {
			e[i].Value = value
			return e
		}
	}
	return append(e, Var{Key: key, Value: value})
}

// Get returns the override for key.
func (e Env) Get(key string) (string, bool) {
	for _, v := range e {
		if sameKey(v.Key, key) {
			return v.Value, true
		}
	}
	return "", false
}

// Clone returns an independent copy.
func (e Env) Clone() Env {
	if e == nil {
		return nil
	}
	return append(Env(nil), e...)
}

// Environ applies the overrides to base, a list in os.Environ form.
// Overridden entries keep their position; new keys are appended.
func (e Env) Environ(base []string) []string {
	out := make([]string, 0, len(base)+len(e))
	applied := make([]bool, len(e))
	for _, entry := range base {
		key := entry
		if i := strings.IndexByte(entry, '='); i > 0 {
			key = entry[:i]
		}
		replaced := false
		for i, v := range e {
			if sameKey(v.Key, key) {
				if !applied[i] {
					out = append(out, v.Key+"="+v.Value)
					applied[i] = true
				}
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, entry)
		}
	}
	for i, v := range e {
		if !applied[i] {
			out = append(out, v.Key+"="+v.Value)
		}
	}
	return out
}

// Windows environment names are case-insensitive.
func sameKey(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// logEnvironmentTrace logs the overrides handed to a subprocess at trace
// level, redacting sensitive values.
func logEnvironmentTrace(env Env, logger hclog.Logger) {
	if !logger.IsTrace() || len(env) == 0 {
		return
	}

	logger.Trace("🌍 Environment overrides passed to subprocess:")
	for _, v := range env {
		value := v.Value
		if isSensitiveKey(v.Key) {
			value = "***"
		}
		logger.Trace("  →", "key", v.Key, "value", value)
	}
}

func isSensitiveKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range []string{"TOKEN", "SECRET", "PASSWORD", "CREDENTIAL", "API_KEY"} {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
