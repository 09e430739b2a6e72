package main

import "github.com/icl-rocketry/rnp/internal/config"

// resolveConfigPath returns the --config flag value, or the default path
// if unset.
func resolveConfigPath() string {
	if globalConfigPath != "" {
		return globalConfigPath
	}
	return config.DefaultConfigPath()
}
