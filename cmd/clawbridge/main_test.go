package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clawbridge/internal/app"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	_ = r.Close()
	return buf.String()
}

func boolPtr(v bool) *bool { return &v }

func isolatedSvc(t *testing.T) func() (*app.Service, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLAWBRIDGE_STATE_DIR", filepath.Join(home, "state"))
	t.Setenv("CLAWBRIDGE_CONFIG_PATH", "")
	cfgPath := filepath.Join(home, ".clawbridge", "config.toml")
	return func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: cfgPath})
	}
}

func TestNewRootCmdIncludesCoreCommands(t *testing.T) {
	cmd := newRootCmd()
	got := map[string]bool{}
	for _, c := range cmd.Commands() {
		got[c.Name()] = true
	}
	for _, want := range []string{"channels", "run", "ensure", "secrets", "doctor", "audit", "version"} {
		if !got[want] {
			t.Fatalf("expected command %q", want)
		}
	}
}

func TestRunRequiresChannelBeforeService(t *testing.T) {
	called := false
	cmd := newRunCmd(func() (*app.Service, error) {
		called = true
		return nil, errors.New("should not be called")
	}, boolPtr(false))
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--channel is required") {
		t.Fatalf("expected channel required error, got %v", err)
	}
	if called {
		t.Fatalf("newSvc should not be called when --channel missing")
	}
	var ex ExitCoder
	if !errors.As(err, &ex) || ex.ExitCode() != 2 {
		t.Fatalf("expected exit code 2, got %v", err)
	}
}

func TestPrintMessageAndJSON(t *testing.T) {
	msgOut := captureStdout(t, func() {
		if err := print(false, nil, "ok-message"); err != nil {
			t.Fatalf("print message failed: %v", err)
		}
	})
	if !strings.Contains(msgOut, "ok-message") {
		t.Fatalf("expected message output, got %q", msgOut)
	}

	jsonOut := captureStdout(t, func() {
		if err := print(true, map[string]string{"k": "v"}, "ignored"); err != nil {
			t.Fatalf("print json failed: %v", err)
		}
	})
	var parsed map[string]string
	if err := json.Unmarshal([]byte(jsonOut), &parsed); err != nil {
		t.Fatalf("expected valid json output, got %q: %v", jsonOut, err)
	}
	if parsed["k"] != "v" {
		t.Fatalf("unexpected json payload: %+v", parsed)
	}
}

func TestEnsureCmdRegistersFlags(t *testing.T) {
	cmd := newEnsureCmd(func() (*app.Service, error) {
		t.Fatalf("newSvc should not be called for flag check")
		return nil, nil
	}, boolPtr(false))
	for _, flag := range []string{"command", "expect", "dir", "no-install", "check"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Fatalf("expected --%s flag to be registered", flag)
		}
	}
}

func TestSecretsApplyHasDryRunFlag(t *testing.T) {
	cmd := newSecretsCmd(func() (*app.Service, error) {
		t.Fatalf("newSvc should not be called for flag check")
		return nil, nil
	}, boolPtr(false))
	for _, sub := range cmd.Commands() {
		if sub.Name() == "apply" {
			if sub.Flags().Lookup("dry-run") == nil {
				t.Fatalf("expected --dry-run flag on secrets apply")
			}
			return
		}
	}
	t.Fatalf("expected secrets apply subcommand")
}

func TestSecretsValidateReportsInvalidPlan(t *testing.T) {
	newSvc := isolatedSvc(t)
	planPath := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(planPath, []byte(`{"version": 1, "secrets": []}`), 0o644); err != nil {
		t.Fatalf("write plan failed: %v", err)
	}

	cmd := newSecretsCmd(newSvc, boolPtr(false))
	cmd.SetArgs([]string{"validate", planPath})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "SEC_PLAN_EMPTY") {
		t.Fatalf("expected SEC_PLAN_EMPTY, got %v", err)
	}
}

func TestSecretsValidateJSONRedactsLiterals(t *testing.T) {
	newSvc := isolatedSvc(t)
	planPath := filepath.Join(t.TempDir(), "plan.json")
	plan := `{"version": 1, "secrets": [{"name": "API_KEY", "provider": "literal", "value": "very-long-secret-value"}]}`
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		t.Fatalf("write plan failed: %v", err)
	}

	cmd := newSecretsCmd(newSvc, boolPtr(true))
	out := captureStdout(t, func() {
		cmd.SetArgs([]string{"validate", planPath})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("validate failed: %v", err)
		}
	})
	if strings.Contains(out, "very-long-secret-value") {
		t.Fatalf("literal value must not appear in output:\n%s", out)
	}
	if !strings.Contains(out, "API_KEY") {
		t.Fatalf("expected secret name in output:\n%s", out)
	}
}

func TestEnsureCheckOnlyReportsMissingBinaryWithoutFailing(t *testing.T) {
	newSvc := isolatedSvc(t)
	cmd := newEnsureCmd(newSvc, boolPtr(true))
	out := captureStdout(t, func() {
		cmd.SetArgs([]string{"--check", "--command", "clawbridge-test-missing-binary", "--expect", "1.2.3"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("check-only must not fail: %v", err)
		}
	})
	var res struct {
		OK             bool   `json:"ok"`
		Reason         string `json:"reason"`
		InstallCommand string `json:"installCommand"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("expected json check result, got %q: %v", out, err)
	}
	if res.OK || res.Reason != "command-missing" {
		t.Fatalf("unexpected check result: %+v", res)
	}
	if !strings.Contains(res.InstallCommand, "@openclaw/acpx@1.2.3") {
		t.Fatalf("expected pinned install command, got %q", res.InstallCommand)
	}
}
