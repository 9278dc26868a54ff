package channel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"clawbridge/internal/channel/slack"
	"clawbridge/internal/config"
	"clawbridge/pkg/pluginapi"
)

// Registry holds the channel plugins enabled by config.
type Registry struct {
	channels map[string]pluginapi.Channel
}

func NewRegistry(cfg config.Config, log *zap.Logger) (*Registry, error) {
	r := &Registry{channels: map[string]pluginapi.Channel{}}
	for _, c := range cfg.Channels {
		if !c.Enabled {
			continue
		}
		name := strings.ToLower(c.Name)
		ch, err := buildChannel(name, c, log)
		if err != nil {
			return nil, err
		}
		r.channels[name] = ch
	}
	return r, nil
}

func (r *Registry) Get(name string) (pluginapi.Channel, error) {
	ch, ok := r.channels[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("CHN_NOT_SUPPORTED: channel %q is not configured", name)
	}
	return ch, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.channels))
	for name := range r.channels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) ProbeAll(ctx context.Context) ([]pluginapi.ProbeResult, error) {
	out := make([]pluginapi.ProbeResult, 0, len(r.channels))
	for name, ch := range r.channels {
		res, err := ch.Probe(ctx)
		if err != nil {
			return nil, fmt.Errorf("CHN_PROBE_%s: %w", name, err)
		}
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func buildChannel(name string, c config.ChannelConfig, log *zap.Logger) (pluginapi.Channel, error) {
	switch name {
	case "slack":
		return slack.New(slack.Config{
			AppTokenEnv:    c.AppTokenEnv,
			BotTokenEnv:    c.BotTokenEnv,
			DefaultChannel: c.DefaultTo,
			AllowedRooms:   c.AllowedRooms,
		}, log), nil
	default:
		return nil, fmt.Errorf("CHN_NOT_SUPPORTED: unknown channel %q", name)
	}
}
