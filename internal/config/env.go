package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirName is the folder under the user's home directory holding the
// entry tree when no override is configured.
const DefaultDirName = ".kitchenlog"

// ResolveRepoDir turns the configured repository path into an absolute one,
// defaulting to ~/.kitchenlog. A leading ~ expands to the home directory.
func ResolveRepoDir(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, DefaultDirName), nil
	}

	if strings.HasPrefix(configured, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configured = filepath.Join(home, strings.TrimPrefix(configured, "~"))
	}
	return filepath.Abs(configured)
}
