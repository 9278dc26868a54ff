package secrets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"clawbridge/internal/audit"
	"clawbridge/internal/fsutil"
)

// Service resolves plan entries and commits them to the bridge secrets
// store, a TOML file kept at mode 0600.
type Service struct {
	StorePath string
	Audit     *audit.Logger
}

const storeVersion = 1

type storeDoc struct {
	Version int               `toml:"version"`
	Secrets map[string]string `toml:"secrets"`
}

type ApplyResult struct {
	StorePath  string          `json:"storePath"`
	PlanDigest string          `json:"planDigest"`
	DryRun     bool            `json:"dryRun,omitempty"`
	Applied    []AppliedSecret `json:"applied"`
}

type AppliedSecret struct {
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Channels []string `json:"channels,omitempty"`
}

// Apply materializes every plan entry. Entries merge over the existing
// store; nothing is written in dry-run mode. The plan must already be
// normalized and valid (LoadPlan guarantees both).
func (s *Service) Apply(plan Plan, dryRun bool) (ApplyResult, error) {
	_ = s.Audit.Log(audit.Event{
		Operation: "secrets-apply",
		Phase:     "start",
		Status:    "ok",
		Message:   fmt.Sprintf("entries=%d dry_run=%t", len(plan.Secrets), dryRun),
	})

	resolved := make(map[string]string, len(plan.Secrets))
	result := ApplyResult{StorePath: s.StorePath, PlanDigest: Digest(plan), DryRun: dryRun}
	for i := range plan.Secrets {
		e := &plan.Secrets[i]
		value, err := resolve(e)
		if err != nil {
			_ = s.Audit.Log(audit.Event{
				Operation: "secrets-apply",
				Phase:     "resolve",
				Status:    "error",
				Code:      "SEC_APPLY_RESOLVE",
				Message:   err.Error(),
			})
			return ApplyResult{}, err
		}
		resolved[e.Name] = value
		result.Applied = append(result.Applied, AppliedSecret{
			Name:     e.Name,
			Provider: e.Provider,
			Channels: e.Channels,
		})
	}

	if dryRun {
		return result, nil
	}

	doc, err := s.loadStore()
	if err != nil {
		return ApplyResult{}, err
	}
	for name, value := range resolved {
		doc.Secrets[name] = value
	}
	if err := s.saveStore(doc); err != nil {
		return ApplyResult{}, err
	}

	_ = s.Audit.Log(audit.Event{
		Operation: "secrets-apply",
		Phase:     "commit",
		Status:    "ok",
		Message:   fmt.Sprintf("entries=%d store=%s", len(resolved), s.StorePath),
	})
	return result, nil
}

func resolve(e *Entry) (string, error) {
	switch e.Provider {
	case ProviderEnv:
		value, ok := os.LookupEnv(e.Key)
		if !ok {
			return "", fmt.Errorf("SEC_APPLY_ENV: env var %q is not set for secret %q", e.Key, e.Name)
		}
		return value, nil
	case ProviderFile:
		blob, err := os.ReadFile(e.Path)
		if err != nil {
			return "", fmt.Errorf("SEC_APPLY_FILE: secret %q: %w", e.Name, err)
		}
		return strings.TrimRight(string(blob), "\r\n"), nil
	case ProviderLiteral:
		return e.Value, nil
	}
	return "", fmt.Errorf("SEC_APPLY_PROVIDER: secret %q has invalid provider %q", e.Name, e.Provider)
}

func (s *Service) loadStore() (storeDoc, error) {
	doc := storeDoc{Version: storeVersion, Secrets: map[string]string{}}
	blob, err := os.ReadFile(s.StorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return storeDoc{}, err
	}
	if err := toml.Unmarshal(blob, &doc); err != nil {
		return storeDoc{}, fmt.Errorf("SEC_STORE_PARSE: %w", err)
	}
	if doc.Version != storeVersion {
		return storeDoc{}, fmt.Errorf("SEC_STORE_VERSION: unsupported store version %d", doc.Version)
	}
	if doc.Secrets == nil {
		doc.Secrets = map[string]string{}
	}
	return doc, nil
}

func (s *Service) saveStore(doc storeDoc) error {
	doc.Version = storeVersion
	blob, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("SEC_STORE_ENCODE: %w", err)
	}
	if err := fsutil.EnsureParent(s.StorePath); err != nil {
		return err
	}
	return fsutil.AtomicWrite(s.StorePath, blob, 0o600)
}

// Digest fingerprints a normalized plan so state can record which plan was
// last applied without storing any secret material.
func Digest(plan Plan) string {
	blob, err := json.Marshal(plan)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return "sha256:" + hex.EncodeToString(sum[:])
}
