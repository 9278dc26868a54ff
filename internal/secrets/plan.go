package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const PlanVersion = 1

const (
	ProviderEnv     = "env"
	ProviderFile    = "file"
	ProviderLiteral = "literal"
)

// Plan is the secrets apply plan document, v1. Entries name the secrets a
// bridge host materializes for its channel plugins.
type Plan struct {
	Version  int      `json:"version" yaml:"version"`
	Defaults Defaults `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Secrets  []Entry  `json:"secrets" yaml:"secrets"`
}

type Defaults struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Entry declares one secret. Exactly one provider-specific field is used:
// Key for env, Path for file, Value for literal.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	Provider string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Path     string   `json:"path,omitempty" yaml:"path,omitempty"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Channels []string `json:"channels,omitempty" yaml:"channels,omitempty"`
}

// LoadPlan reads, normalizes, and validates a plan document. JSON and YAML
// are accepted, chosen by extension; unknown fields are rejected so shape
// drift fails loudly instead of applying half a plan.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	var plan Plan
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&plan); err != nil {
			return Plan{}, fmt.Errorf("SEC_PLAN_PARSE: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&plan); err != nil {
			return Plan{}, fmt.Errorf("SEC_PLAN_PARSE: %w", err)
		}
	default:
		return Plan{}, fmt.Errorf("SEC_PLAN_FORMAT: unsupported plan format %q", filepath.Ext(path))
	}
	plan = Normalize(plan)
	if err := Validate(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
