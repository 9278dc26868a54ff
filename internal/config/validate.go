package config

import (
	"fmt"
	"strings"
)

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedChannels = map[string]struct{}{
	"slack": {},
}

var allowedProviders = map[string]struct{}{
	"env":     {},
	"file":    {},
	"literal": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("CFG_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("LOG_CONFIG_LEVEL: invalid logging level %q", cfg.Logging.Level)
	}
	if cfg.Logging.MaxSizeMB < 0 || cfg.Logging.MaxBackups < 0 || cfg.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("LOG_CONFIG_ROTATION: rotation limits must not be negative")
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("CFG_CONFIG_STORAGE: missing storage root")
	}
	if strings.TrimSpace(cfg.Acpx.Command) == "" {
		return fmt.Errorf("ACP_CONFIG_COMMAND: acpx command is required")
	}
	if strings.ContainsAny(cfg.Acpx.ExpectedVersion, " \t") {
		return fmt.Errorf("ACP_CONFIG_VERSION: expected version %q contains whitespace", cfg.Acpx.ExpectedVersion)
	}

	names := map[string]struct{}{}
	for i := range cfg.Channels {
		c := &cfg.Channels[i]
		if c.Name == "" {
			return fmt.Errorf("CHN_CONFIG_CHANNEL: channel name is required")
		}
		if _, ok := names[c.Name]; ok {
			return fmt.Errorf("CHN_CONFIG_CHANNEL: duplicate channel %q", c.Name)
		}
		names[c.Name] = struct{}{}
		if _, ok := allowedChannels[c.Name]; !ok {
			return fmt.Errorf("CHN_CONFIG_CHANNEL: unsupported channel %q", c.Name)
		}
		if c.Name == "slack" {
			if c.AppTokenEnv == "" || c.BotTokenEnv == "" {
				return fmt.Errorf("CHN_CONFIG_SLACK: channel %q missing token env names", c.Name)
			}
		}
	}

	if cfg.Secrets.Store == "" {
		return fmt.Errorf("SEC_CONFIG_STORE: missing secrets store path")
	}
	if _, ok := allowedProviders[cfg.Secrets.DefaultProvider]; !ok {
		return fmt.Errorf("SEC_CONFIG_PROVIDER: invalid default provider %q", cfg.Secrets.DefaultProvider)
	}

	return nil
}
