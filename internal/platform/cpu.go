package platform

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// cpuInfoPath is the Linux pseudo-file listing one vendor_id line per
// logical CPU.
const cpuInfoPath = "/proc/cpuinfo"

// Prober reads the processor count. Its hooks default to the real
// environment, filesystem and process table.
type Prober struct {
	Getenv   func(string) string
	ReadFile func(string) ([]byte, error)
	Output   func(name string, args ...string) ([]byte, error)
}

// NewProber returns a Prober backed by the host.
func NewProber() *Prober {
	return &Prober{
		Getenv:   os.Getenv,
		ReadFile: os.ReadFile,
		Output: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}
}

// ProcessorCount returns the number of processors of the host.
func ProcessorCount(o OS) (int, error) {
	return NewProber().ProcessorCount(o)
}

// ProcessorCount returns the number of logical processors, always >= 1.
// A missing NUMBER_OF_PROCESSORS variable, a failing sysctl or an
// unreadable cpuinfo file is an error; unknown platforms report 1.
func (p *Prober) ProcessorCount(o OS) (int, error) {
	switch o {
	case Windows:
		raw := p.Getenv("NUMBER_OF_PROCESSORS")
		if raw == "" {
			return 0, fmt.Errorf("NUMBER_OF_PROCESSORS is not set")
		}
		return parseCount(raw, "NUMBER_OF_PROCESSORS")
	case Mac:
		out, err := p.Output("sysctl", "-n", "hw.ncpu")
		if err != nil {
			return 0, fmt.Errorf("sysctl -n hw.ncpu: %w", err)
		}
		return parseCount(string(out), "sysctl hw.ncpu")
	case Linux:
		data, err := p.ReadFile(cpuInfoPath)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", cpuInfoPath, err)
		}
		count := 0
		for _, line := range bytes.Split(data, []byte("\n")) {
			if bytes.Contains(line, []byte("vendor_id")) {
				count++
			}
		}
		if count < 1 {
			// Some architectures (ARM) do not report vendor_id.
			count = 1
		}
		return count, nil
	default:
		return 1, nil
	}
}

func parseCount(raw, source string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid processor count from %s: %q", source, raw)
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}
