package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process configuration for the kitchenlog tooling. Presentation
// concerns such as the placeholder topic live here, never in the store.
type Config struct {
	RepoDir    string // root of the entry directory tree
	ExportDir  string // target for dokuwiki export, empty disables the command
	ListenAddr string // web form listen address
	GitSync    bool   // pull before opening, commit and push after saving
	Topic      string // placeholder topic for fresh entries
}

const defaultListenAddr = ":8080"

// Load reads configuration from environment variables, with a local .env file
// filling in anything not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	repoDir, err := ResolveRepoDir(os.Getenv("KITCHENLOG_REPO"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RepoDir:    repoDir,
		ExportDir:  os.Getenv("KITCHENLOG_EXPORT"),
		ListenAddr: getEnv("KITCHENLOG_LISTEN", defaultListenAddr),
		Topic:      os.Getenv("KITCHENLOG_TOPIC"),
	}

	if raw := os.Getenv("KITCHENLOG_GIT_SYNC"); raw != "" {
		sync, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("KITCHENLOG_GIT_SYNC must be a boolean: %w", err)
		}
		cfg.GitSync = sync
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
