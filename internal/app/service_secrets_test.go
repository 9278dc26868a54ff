package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clawbridge/internal/store"
)

func writePlan(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write plan failed: %v", err)
	}
	return path
}

const validPlan = `{
  "version": 1,
  "secrets": [
    {"name": "slack_bot_token", "provider": "env", "key": "TEST_BOT_TOKEN", "channels": ["slack"]},
    {"name": "webhook_secret", "provider": "literal", "value": "super-secret-value"}
  ]
}`

func TestSecretsValidateRedactsLiterals(t *testing.T) {
	svc := newTestService(t, nil, &fakeRunner{})
	path := writePlan(t, t.TempDir(), "plan.json", validPlan)

	plan, err := svc.SecretsValidate(path)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if len(plan.Secrets) != 2 {
		t.Fatalf("expected two entries, got %d", len(plan.Secrets))
	}
	if plan.Secrets[0].Name != "SLACK_BOT_TOKEN" {
		t.Fatalf("expected normalized name, got %q", plan.Secrets[0].Name)
	}
	if strings.Contains(plan.Secrets[1].Value, "super-secret-value") {
		t.Fatalf("literal value must be redacted, got %q", plan.Secrets[1].Value)
	}
}

func TestSecretsValidateRejectsBadPlan(t *testing.T) {
	svc := newTestService(t, nil, &fakeRunner{})
	path := writePlan(t, t.TempDir(), "plan.json", `{"version": 1, "secrets": [{"name": "X", "provider": "vault"}]}`)

	_, err := svc.SecretsValidate(path)
	if err == nil || !strings.Contains(err.Error(), "SEC_PLAN_PROVIDER") {
		t.Fatalf("expected SEC_PLAN_PROVIDER, got %v", err)
	}
}

func TestSecretsApplyDryRunWritesNothing(t *testing.T) {
	svc := newTestService(t, nil, &fakeRunner{})
	t.Setenv("TEST_BOT_TOKEN", "xoxb-test")
	path := writePlan(t, t.TempDir(), "plan.json", validPlan)

	result, err := svc.SecretsApply(path, true)
	if err != nil {
		t.Fatalf("dry-run apply failed: %v", err)
	}
	if !result.DryRun || len(result.Applied) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(svc.Secrets.StorePath); !os.IsNotExist(err) {
		t.Fatalf("dry run must not write the store: %v", err)
	}
	st, err := store.LoadState(svc.StateRoot)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if st.Secrets.Entries != 0 {
		t.Fatalf("dry run must not record state, got %+v", st.Secrets)
	}
}

func TestSecretsApplyWritesStoreAndState(t *testing.T) {
	svc := newTestService(t, nil, &fakeRunner{})
	t.Setenv("TEST_BOT_TOKEN", "xoxb-test")
	path := writePlan(t, t.TempDir(), "plan.json", validPlan)

	result, err := svc.SecretsApply(path, false)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(result.Applied) != 2 {
		t.Fatalf("expected two applied entries, got %+v", result)
	}

	info, err := os.Stat(svc.Secrets.StorePath)
	if err != nil {
		t.Fatalf("store should exist: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("store must be 0600, got %o", perm)
	}
	blob, err := os.ReadFile(svc.Secrets.StorePath)
	if err != nil {
		t.Fatalf("read store failed: %v", err)
	}
	if !strings.Contains(string(blob), "SLACK_BOT_TOKEN") || !strings.Contains(string(blob), "xoxb-test") {
		t.Fatalf("store missing resolved secret:\n%s", blob)
	}

	st, err := store.LoadState(svc.StateRoot)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if st.Secrets.Entries != 2 || st.Secrets.PlanDigest == "" || st.Secrets.LastAppliedAt.IsZero() {
		t.Fatalf("unexpected secrets state %+v", st.Secrets)
	}
	if st.Secrets.PlanDigest != result.PlanDigest {
		t.Fatalf("state digest %q != result digest %q", st.Secrets.PlanDigest, result.PlanDigest)
	}
}

func TestSecretsApplyMissingEnvFails(t *testing.T) {
	svc := newTestService(t, nil, &fakeRunner{})
	path := writePlan(t, t.TempDir(), "plan.yaml", "version: 1\nsecrets:\n  - name: missing_one\n    provider: env\n    key: CLAWBRIDGE_TEST_UNSET_VAR\n")

	_, err := svc.SecretsApply(path, false)
	if err == nil || !strings.Contains(err.Error(), "SEC_APPLY_ENV") {
		t.Fatalf("expected SEC_APPLY_ENV, got %v", err)
	}
	if _, statErr := os.Stat(svc.Secrets.StorePath); !os.IsNotExist(statErr) {
		t.Fatalf("failed apply must not write the store")
	}
}
