package channel

import (
	"context"
	"strings"
	"testing"

	"clawbridge/internal/config"
)

func TestRegistrySkipsDisabledChannels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channels[0].Enabled = false
	r, err := NewRegistry(cfg, nil)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	if names := r.Names(); len(names) != 0 {
		t.Fatalf("expected no channels, got %v", names)
	}
	if _, err := r.Get("slack"); err == nil || !strings.Contains(err.Error(), "CHN_NOT_SUPPORTED") {
		t.Fatalf("expected CHN_NOT_SUPPORTED, got %v", err)
	}
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	r, err := NewRegistry(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	ch, err := r.Get("Slack")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ch.Name() != "slack" {
		t.Fatalf("unexpected channel %q", ch.Name())
	}
}

func TestRegistryProbeAllSorted(t *testing.T) {
	r, err := NewRegistry(config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}
	t.Setenv("SLACK_APP_TOKEN", "")
	t.Setenv("SLACK_BOT_TOKEN", "")
	probes, err := r.ProbeAll(context.Background())
	if err != nil {
		t.Fatalf("probe all failed: %v", err)
	}
	if len(probes) != 1 || probes[0].Name != "slack" {
		t.Fatalf("unexpected probes %+v", probes)
	}
}
