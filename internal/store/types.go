package store

import "time"

const StateVersion = 1

type State struct {
	Version  int             `toml:"version"`
	Acpx     AcpxState       `toml:"acpx"`
	Channels []ChannelRecord `toml:"channels"`
	Secrets  SecretsState    `toml:"secrets"`
}

// AcpxState remembers the last successful ensure so doctor can report
// drift without probing.
type AcpxState struct {
	EnsuredVersion string    `toml:"ensured_version,omitempty"`
	EnsuredAt      time.Time `toml:"ensured_at,omitempty"`
	Installs       int       `toml:"installs,omitempty"`
}

type ChannelRecord struct {
	Name          string    `toml:"name"`
	LastStartedAt time.Time `toml:"last_started_at"`
}

type SecretsState struct {
	PlanDigest    string    `toml:"plan_digest,omitempty"`
	Entries       int       `toml:"entries,omitempty"`
	LastAppliedAt time.Time `toml:"last_applied_at,omitempty"`
}
