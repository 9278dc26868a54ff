package secrets

import (
	"fmt"
	"regexp"
)

var allowedProviders = map[string]struct{}{
	ProviderEnv:     {},
	ProviderFile:    {},
	ProviderLiteral: {},
}

var allowedChannels = map[string]struct{}{
	"slack": {},
}

var namePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Validate checks shape conformance entry by entry. The plan is expected to
// be normalized first.
func Validate(plan Plan) error {
	if plan.Version != PlanVersion {
		return fmt.Errorf("SEC_PLAN_VERSION: unsupported plan version %d", plan.Version)
	}
	if len(plan.Secrets) == 0 {
		return fmt.Errorf("SEC_PLAN_EMPTY: plan declares no secrets")
	}
	if _, ok := allowedProviders[plan.Defaults.Provider]; !ok {
		return fmt.Errorf("SEC_PLAN_PROVIDER: invalid default provider %q", plan.Defaults.Provider)
	}

	seen := map[string]struct{}{}
	for i := range plan.Secrets {
		e := &plan.Secrets[i]
		if e.Name == "" {
			return fmt.Errorf("SEC_PLAN_NAME: secret %d is missing a name", i)
		}
		if !namePattern.MatchString(e.Name) {
			return fmt.Errorf("SEC_PLAN_NAME: invalid secret name %q", e.Name)
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("SEC_PLAN_DUPLICATE: duplicate secret %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		if _, ok := allowedProviders[e.Provider]; !ok {
			return fmt.Errorf("SEC_PLAN_PROVIDER: secret %q has invalid provider %q", e.Name, e.Provider)
		}
		switch e.Provider {
		case ProviderEnv:
			if e.Path != "" || e.Value != "" {
				return fmt.Errorf("SEC_PLAN_SHAPE: env secret %q must only set key", e.Name)
			}
		case ProviderFile:
			if e.Path == "" {
				return fmt.Errorf("SEC_PLAN_SHAPE: file secret %q is missing path", e.Name)
			}
			if e.Key != "" || e.Value != "" {
				return fmt.Errorf("SEC_PLAN_SHAPE: file secret %q must only set path", e.Name)
			}
		case ProviderLiteral:
			if e.Value == "" {
				return fmt.Errorf("SEC_PLAN_SHAPE: literal secret %q is missing value", e.Name)
			}
			if e.Key != "" || e.Path != "" {
				return fmt.Errorf("SEC_PLAN_SHAPE: literal secret %q must only set value", e.Name)
			}
		}
		for _, ch := range e.Channels {
			if _, ok := allowedChannels[ch]; !ok {
				return fmt.Errorf("SEC_PLAN_CHANNEL: secret %q targets unsupported channel %q", e.Name, ch)
			}
		}
	}
	return nil
}
