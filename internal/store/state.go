package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
)

func EnsureLayout(root string) error {
	dirs := []string{root, LogsRoot(root), PluginsRoot(root)}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func LoadState(root string) (State, error) {
	if err := EnsureLayout(root); err != nil {
		return State{}, err
	}
	path := StatePath(root)
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{Version: StateVersion}, nil
		}
		return State{}, err
	}
	var st State
	if err := toml.Unmarshal(blob, &st); err != nil {
		return State{}, fmt.Errorf("STO_STATE_PARSE: %w", err)
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}
	if st.Version != StateVersion {
		return State{}, fmt.Errorf("STO_STATE_VERSION: unsupported state version %d", st.Version)
	}
	for i := range st.Channels {
		if st.Channels[i].Name == "" {
			return State{}, fmt.Errorf("STO_STATE_SCHEMA: channel record missing name")
		}
	}
	return st, nil
}

func SaveState(root string, st State) error {
	if err := EnsureLayout(root); err != nil {
		return err
	}
	st.Version = StateVersion
	sort.Slice(st.Channels, func(i, j int) bool {
		return st.Channels[i].Name < st.Channels[j].Name
	})
	blob, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("STO_STATE_ENCODE: %w", err)
	}
	path := StatePath(root)
	tmp := filepath.Join(filepath.Dir(path), ".state.toml.tmp")
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func UpsertChannel(st *State, rec ChannelRecord) {
	for i := range st.Channels {
		if st.Channels[i].Name == rec.Name {
			st.Channels[i] = rec
			return
		}
	}
	st.Channels = append(st.Channels, rec)
}

// RecordEnsure tracks a settled ensure; installed marks sequences that ran
// the package manager.
func RecordEnsure(st *State, version string, at time.Time, installed bool) {
	st.Acpx.EnsuredVersion = version
	st.Acpx.EnsuredAt = at
	if installed {
		st.Acpx.Installs++
	}
}
