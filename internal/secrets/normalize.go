package secrets

import "strings"

// Normalize fills defaults in place: names become env-style upper case,
// providers inherit the plan default, and env entries key off their own
// name when no key is given.
func Normalize(plan Plan) Plan {
	if plan.Version == 0 {
		plan.Version = PlanVersion
	}
	plan.Defaults.Provider = strings.ToLower(strings.TrimSpace(plan.Defaults.Provider))
	if plan.Defaults.Provider == "" {
		plan.Defaults.Provider = ProviderEnv
	}
	for i := range plan.Secrets {
		e := &plan.Secrets[i]
		e.Name = strings.ToUpper(strings.TrimSpace(e.Name))
		e.Provider = strings.ToLower(strings.TrimSpace(e.Provider))
		if e.Provider == "" {
			e.Provider = plan.Defaults.Provider
		}
		e.Key = strings.TrimSpace(e.Key)
		if e.Provider == ProviderEnv && e.Key == "" {
			e.Key = e.Name
		}
		e.Path = strings.TrimSpace(e.Path)
		for j := range e.Channels {
			e.Channels[j] = strings.ToLower(strings.TrimSpace(e.Channels[j]))
		}
	}
	return plan
}
