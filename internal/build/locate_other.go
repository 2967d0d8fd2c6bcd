//go:build !windows

package build

func registryStrategies() []Strategy {
	return nil
}
