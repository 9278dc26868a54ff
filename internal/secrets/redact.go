package secrets

// Redacted returns a copy of the plan safe for printing: literal values are
// masked, everything else is unchanged.
func Redacted(plan Plan) Plan {
	out := plan
	out.Secrets = make([]Entry, len(plan.Secrets))
	copy(out.Secrets, plan.Secrets)
	for i := range out.Secrets {
		if out.Secrets[i].Provider == ProviderLiteral {
			out.Secrets[i].Value = Redact(out.Secrets[i].Value)
		}
	}
	return out
}

// Redact masks a secret value, keeping just enough to recognize it.
func Redact(value string) string {
	if len(value) <= 8 {
		return "********"
	}
	return value[:2] + "********" + value[len(value)-2:]
}
