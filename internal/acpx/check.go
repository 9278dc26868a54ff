package acpx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"clawbridge/internal/execx"
)

// Reason classifies a failed version check.
type Reason string

const (
	ReasonCommandMissing     Reason = "command-missing"
	ReasonVersionUnparseable Reason = "version-unparseable"
	ReasonVersionMismatch    Reason = "version-mismatch"
	ReasonExecutionFailed    Reason = "execution-failed"
)

// CheckResult reports a version probe. Exactly one side is populated: OK
// with Version, or Reason with a non-empty Message and InstallCommand.
// Mismatches carry both ExpectedVersion and InstalledVersion.
type CheckResult struct {
	OK               bool   `json:"ok"`
	Version          string `json:"version,omitempty"`
	ExpectedVersion  string `json:"expectedVersion,omitempty"`
	Reason           Reason `json:"reason,omitempty"`
	Message          string `json:"message,omitempty"`
	InstalledVersion string `json:"installedVersion,omitempty"`
	InstallCommand   string `json:"installCommand,omitempty"`
}

type CheckOptions struct {
	Command         string
	Dir             string
	ExpectedVersion string
}

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+(-[\w.-]+)?`)

// Check probes opts.Command and reports whether it is runnable and, when an
// expected version is configured, whether the installed version matches it
// exactly. All failures come back as data; Check never returns an error.
func Check(ctx context.Context, runner execx.Runner, opts CheckOptions) CheckResult {
	expected := strings.TrimSpace(opts.ExpectedVersion)
	probe := "--help"
	if expected != "" {
		probe = "--version"
	}
	install := InstallCommand(expected)

	res, err := runner.Run(ctx, execx.Request{Command: opts.Command, Args: []string{probe}, Dir: opts.Dir})
	if err != nil {
		if execx.IsNotFound(err) {
			return CheckResult{
				Reason:          ReasonCommandMissing,
				Message:         fmt.Sprintf("%s not found: %v", opts.Command, err),
				ExpectedVersion: expected,
				InstallCommand:  install,
			}
		}
		return CheckResult{
			Reason:          ReasonExecutionFailed,
			Message:         fmt.Sprintf("failed to run %s: %v", opts.Command, err),
			ExpectedVersion: expected,
			InstallCommand:  install,
		}
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("%s %s exited with code %d", opts.Command, probe, res.ExitCode)
		}
		return CheckResult{
			Reason:          ReasonExecutionFailed,
			Message:         msg,
			ExpectedVersion: expected,
			InstallCommand:  install,
		}
	}
	if expected == "" {
		// Presence is enough when nobody asked for a specific version.
		return CheckResult{OK: true, Version: "unknown"}
	}
	found := versionPattern.FindString(res.Stdout + res.Stderr)
	if found == "" {
		return CheckResult{
			Reason:          ReasonVersionUnparseable,
			Message:         fmt.Sprintf("no version in %s %s output", opts.Command, probe),
			ExpectedVersion: expected,
			InstallCommand:  install,
		}
	}
	if found != expected {
		return CheckResult{
			Reason:           ReasonVersionMismatch,
			Message:          fmt.Sprintf("%s is %s, expected %s", opts.Command, found, expected),
			ExpectedVersion:  expected,
			InstalledVersion: found,
			InstallCommand:   install,
		}
	}
	return CheckResult{OK: true, Version: found, ExpectedVersion: expected}
}
