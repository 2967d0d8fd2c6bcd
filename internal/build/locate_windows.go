//go:build windows

package build

import (
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// registryStrategies reads the Visual Studio ProductDir from the 32-bit
// registry view, where Visual Studio 2005/2008 register themselves.
func registryStrategies() []Strategy {
	return []Strategy{{
		Name: "registry",
		Candidates: func() []string {
			var dirs []string
			for _, vs := range vsVersions {
				key, err := registry.OpenKey(registry.LOCAL_MACHINE,
					`SOFTWARE\Microsoft\VisualStudio\`+vs.version+`\Setup\VS`,
					registry.QUERY_VALUE|registry.WOW64_32KEY)
				if err != nil {
					continue
				}
				productDir, _, err := key.GetStringValue("ProductDir")
				key.Close()
				if err != nil || productDir == "" {
					continue
				}
				dirs = append(dirs, filepath.Join(productDir, "VC", "vcpackages"))
			}
			return dirs
		},
	}}
}
