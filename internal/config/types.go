package config

// Config is the frozen v1 global schema.
type Config struct {
	Version  int             `toml:"version"`
	Logging  LoggingConfig   `toml:"logging"`
	Storage  StorageConfig   `toml:"storage"`
	Acpx     AcpxConfig      `toml:"acpx"`
	Channels []ChannelConfig `toml:"channels"`
	Secrets  SecretsConfig   `toml:"secrets"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
	Console    bool   `toml:"console"`
}

type StorageConfig struct {
	Root string `toml:"root"`
}

// AcpxConfig pins the helper binary the bridge shells out to.
// A nil InstallAllowed means installing is permitted.
type AcpxConfig struct {
	Command         string `toml:"command"`
	ExpectedVersion string `toml:"expected_version,omitempty"`
	InstallAllowed  *bool  `toml:"install_allowed,omitempty"`
	InstallDir      string `toml:"install_dir,omitempty"`
}

type ChannelConfig struct {
	Name         string   `toml:"name" json:"name"`
	Enabled      bool     `toml:"enabled" json:"enabled"`
	AppTokenEnv  string   `toml:"app_token_env,omitempty" json:"appTokenEnv,omitempty"`
	BotTokenEnv  string   `toml:"bot_token_env,omitempty" json:"botTokenEnv,omitempty"`
	DefaultTo    string   `toml:"default_to,omitempty" json:"defaultTo,omitempty"`
	AllowedRooms []string `toml:"allowed_rooms,omitempty" json:"allowedRooms,omitempty"`
}

type SecretsConfig struct {
	Store           string `toml:"store"`
	DefaultProvider string `toml:"default_provider"`
}
