package config

import "strings"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 10
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 30
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "~/.clawbridge"
	}
	if cfg.Acpx.Command == "" {
		cfg.Acpx.Command = "acpx"
	}
	cfg.Acpx.ExpectedVersion = strings.TrimSpace(cfg.Acpx.ExpectedVersion)
	for i := range cfg.Channels {
		cfg.Channels[i].Name = strings.ToLower(strings.TrimSpace(cfg.Channels[i].Name))
		if cfg.Channels[i].Name == "slack" {
			if cfg.Channels[i].AppTokenEnv == "" {
				cfg.Channels[i].AppTokenEnv = "SLACK_APP_TOKEN"
			}
			if cfg.Channels[i].BotTokenEnv == "" {
				cfg.Channels[i].BotTokenEnv = "SLACK_BOT_TOKEN"
			}
		}
	}
	if cfg.Secrets.Store == "" {
		cfg.Secrets.Store = "~/.clawbridge/secrets.toml"
	}
	if cfg.Secrets.DefaultProvider == "" {
		cfg.Secrets.DefaultProvider = "env"
	}
	return cfg
}
