package config

import (
	"fmt"
	"strings"
)

func FindChannel(cfg Config, name string) (ChannelConfig, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range cfg.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return ChannelConfig{}, false
}

func EnabledChannels(cfg Config) []ChannelConfig {
	var out []ChannelConfig
	for _, c := range cfg.Channels {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// EnableChannel enables an existing channel or adds it if missing.
// Returns true when the config was changed.
func EnableChannel(cfg *Config, name string) (bool, error) {
	if cfg == nil {
		return false, fmt.Errorf("CHN_CONFIG_CHANNEL: nil config")
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false, fmt.Errorf("CHN_CONFIG_CHANNEL: empty channel name")
	}
	for i := range cfg.Channels {
		if cfg.Channels[i].Name != name {
			continue
		}
		if cfg.Channels[i].Enabled {
			return false, nil
		}
		cfg.Channels[i].Enabled = true
		*cfg = Normalize(*cfg)
		return true, Validate(*cfg)
	}
	cfg.Channels = append(cfg.Channels, ChannelConfig{Name: name, Enabled: true})
	*cfg = Normalize(*cfg)
	return true, Validate(*cfg)
}
