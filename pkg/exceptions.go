package pkg

import "errors"

var (
	// Configuration errors ⚙️
	ErrInvalidTarget       = errors.New("❌ invalid target")
	ErrMissingFile         = errors.New("❌ no such file")
	ErrUnsupportedPlatform = errors.New("❌ unsupported platform")
	ErrNoTargets           = errors.New("❌ no build target is specified")

	// Tool lookup errors 🔍
	ErrGypURLNotFound = errors.New("❌ GYP URL not found")
	ErrToolNotFound   = errors.New("❌ build tool not found")
)
