package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"

	"clawbridge/internal/acpx"
	"clawbridge/internal/channel"
	"clawbridge/internal/config"
	"clawbridge/internal/execx"
	"clawbridge/internal/store"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
	Channels []string  `json:"channels,omitempty"`
}

// minNPMVersion is the oldest npm known to honor --omit=dev.
const minNPMVersion = "v7.0.0"

type Service struct {
	ConfigPath string
	StateRoot  string
	Registry   *channel.Registry
	Runner     execx.Runner
}

// Run collects findings without mutating anything. Probes stay offline; a
// warn-level finding never makes the report unhealthy.
func (s *Service) Run(ctx context.Context) Report {
	findings := []Finding{}
	runner := s.Runner
	if runner == nil {
		runner = execx.New()
	}

	var cfg config.Config
	cfgLoaded := false
	if _, err := os.Stat(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_MISSING", Level: "error", Message: err.Error()})
	} else if cfg, err = config.Load(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_INVALID", Level: "error", Message: err.Error()})
	} else {
		cfgLoaded = true
	}

	if _, err := store.LoadState(s.StateRoot); err != nil {
		findings = append(findings, Finding{Code: "DOC_STATE_INVALID", Level: "error", Message: err.Error()})
	}

	findings = append(findings, s.checkNPM(ctx, runner)...)

	if cfgLoaded {
		findings = append(findings, s.checkAcpx(ctx, runner, cfg)...)
		findings = append(findings, s.checkTokens(cfg)...)
		findings = append(findings, s.checkLogFile(cfg)...)
	}

	var names []string
	if s.Registry != nil {
		names = s.Registry.Names()
		if probes, err := s.Registry.ProbeAll(ctx); err != nil {
			findings = append(findings, Finding{Code: "CHN_PROBE_FAIL", Level: "error", Message: err.Error()})
		} else {
			for _, p := range probes {
				if !p.Available {
					findings = append(findings, Finding{Code: "CHN_UNAVAILABLE", Level: "warn", Message: p.Name + " unavailable: " + p.Message})
				}
			}
		}
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	return Report{Healthy: healthy, Findings: findings, Channels: names}
}

// checkNPM verifies the package manager acpx installs depend on. Absence is
// a warning: hosts that pre-provision acpx never shell out to npm.
func (s *Service) checkNPM(ctx context.Context, runner execx.Runner) []Finding {
	if _, err := runner.LookPath("npm"); err != nil {
		return []Finding{{Code: "DOC_NPM_MISSING", Level: "warn", Message: "npm not found on PATH; acpx installs will fail"}}
	}
	res, err := runner.Run(ctx, execx.Request{Command: "npm", Args: []string{"--version"}})
	if err != nil || res.ExitCode != 0 {
		return []Finding{{Code: "DOC_NPM_BROKEN", Level: "warn", Message: "npm --version failed"}}
	}
	v := "v" + strings.TrimSpace(res.Stdout)
	if !semver.IsValid(v) {
		return []Finding{{Code: "DOC_NPM_VERSION", Level: "warn", Message: fmt.Sprintf("npm reported unparseable version %q", strings.TrimSpace(res.Stdout))}}
	}
	if semver.Compare(v, minNPMVersion) < 0 {
		return []Finding{{Code: "DOC_NPM_VERSION", Level: "warn", Message: fmt.Sprintf("npm %s is older than %s; install flags may be rejected", v, minNPMVersion)}}
	}
	return nil
}

func (s *Service) checkAcpx(ctx context.Context, runner execx.Runner, cfg config.Config) []Finding {
	res := acpx.Check(ctx, runner, acpx.CheckOptions{
		Command:         cfg.Acpx.Command,
		Dir:             store.PluginsRoot(s.StateRoot),
		ExpectedVersion: cfg.Acpx.ExpectedVersion,
	})
	if res.OK {
		return nil
	}
	return []Finding{{
		Code:    "ACP_UNAVAILABLE",
		Level:   "warn",
		Message: res.Message + "; run: " + res.InstallCommand,
	}}
}

func (s *Service) checkTokens(cfg config.Config) []Finding {
	var findings []Finding
	for _, c := range config.EnabledChannels(cfg) {
		for _, env := range []string{c.AppTokenEnv, c.BotTokenEnv} {
			if env == "" {
				continue
			}
			if os.Getenv(env) == "" {
				findings = append(findings, Finding{
					Code:    "CHN_TOKEN_MISSING",
					Level:   "warn",
					Message: fmt.Sprintf("%s is not set for channel %s", env, c.Name),
				})
			}
		}
	}
	return findings
}

// checkLogFile proves the configured log destination is appendable. The
// default in-state-dir path is covered by the state check already.
func (s *Service) checkLogFile(cfg config.Config) []Finding {
	if cfg.Logging.File == "" {
		return nil
	}
	path, err := config.ExpandPath(cfg.Logging.File)
	if err != nil {
		return []Finding{{Code: "LOG_FILE_UNWRITABLE", Level: "warn", Message: err.Error()}}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return []Finding{{Code: "LOG_FILE_UNWRITABLE", Level: "warn", Message: err.Error()}}
	}
	_ = f.Close()
	return nil
}
