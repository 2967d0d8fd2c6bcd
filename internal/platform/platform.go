// Package platform identifies the host OS family and the constants that
// depend on it: GYP generator, build output directory and CPU count.
package platform

import "runtime"

// OS is a host operating system family.
type OS int

const (
	Other OS = iota
	Windows
	Mac
	Linux
)

func (o OS) String() string {
	switch o {
	case Windows:
		return "windows"
	case Mac:
		return "mac"
	case Linux:
		return "linux"
	default:
		return "other"
	}
}

// Descriptor bundles the per-platform constants used across a single
// invocation.
type Descriptor struct {
	OS        OS
	Generator string
	OutputDir string
}

// Detect probes the host and returns its Descriptor.
func Detect() Descriptor {
	return For(detectOS(runtime.GOOS, kernelName))
}

// For returns the Descriptor of the given OS family.
func For(o OS) Descriptor {
	return Descriptor{
		OS:        o,
		Generator: GeneratorName(o),
		OutputDir: OutputDirName(o),
	}
}

// detectOS maps a GOOS value, and on POSIX hosts the kernel name reported
// by uname, to an OS family.
func detectOS(goos string, uname func() string) OS {
	if goos == "windows" {
		return Windows
	}
	switch uname() {
	case "Darwin":
		return Mac
	case "Linux":
		return Linux
	}
	return Other
}

// GeneratorName returns the GYP generator for the platform.
func GeneratorName(o OS) string {
	switch o {
	case Windows:
		return "msvs"
	case Mac:
		return "xcode"
	default:
		return "make"
	}
}

// OutputDirName returns the top-level build output directory, or "" when
// the platform has none.
func OutputDirName(o OS) string {
	switch o {
	case Windows:
		return "out_win"
	case Mac:
		return "out_mac"
	case Linux:
		return "out_linux"
	default:
		return ""
	}
}
