package config

const (
	SchemaVersion = 1
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
			Console:    true,
		},
		Storage: StorageConfig{
			Root: "~/.clawbridge",
		},
		Acpx: AcpxConfig{
			Command: "acpx",
		},
		Channels: []ChannelConfig{
			{
				Name:        "slack",
				Enabled:     true,
				AppTokenEnv: "SLACK_APP_TOKEN",
				BotTokenEnv: "SLACK_BOT_TOKEN",
			},
		},
		Secrets: SecretsConfig{
			Store:           "~/.clawbridge/secrets.toml",
			DefaultProvider: "env",
		},
	}
}
