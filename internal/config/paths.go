package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

func DefaultConfigPath() string {
	if path := os.Getenv("CLAWBRIDGE_CONFIG_PATH"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clawbridge/config.toml"
	}
	return filepath.Join(home, ".clawbridge", "config.toml")
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

// ResolveStorageRoot prefers the CLAWBRIDGE_STATE_DIR override so hosts and
// tests can relocate all bridge state in one move.
func ResolveStorageRoot(cfg Config) (string, error) {
	if dir := os.Getenv("CLAWBRIDGE_STATE_DIR"); dir != "" {
		return filepath.Clean(dir), nil
	}
	expanded, err := ExpandPath(cfg.Storage.Root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

// ResolveSecretsStore expands the configured secrets store path.
func ResolveSecretsStore(cfg Config) (string, error) {
	expanded, err := ExpandPath(cfg.Secrets.Store)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}
