package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clawbridge/internal/acpx"
	"clawbridge/internal/audit"
	"clawbridge/internal/channel"
	"clawbridge/internal/config"
	"clawbridge/internal/doctor"
	"clawbridge/internal/execx"
	"clawbridge/internal/logging"
	"clawbridge/internal/secrets"
	storepkg "clawbridge/internal/store"
	"clawbridge/pkg/pluginapi"
)

type Options struct {
	ConfigPath string
	// Runner overrides the process runner, for tests.
	Runner execx.Runner
}

// Service wires the bridge together: config, state, logging, the acpx
// coordinator, the secrets store, channel plugins, and doctor.
type Service struct {
	ConfigPath string
	Config     config.Config
	StateRoot  string

	Log      *zap.Logger
	Audit    *audit.Logger
	Runner   execx.Runner
	Acpx     *acpx.Coordinator
	Secrets  *secrets.Service
	Channels *channel.Registry
	Doctor   *doctor.Service
}

func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Ensure(configPath)
	if err != nil {
		return nil, err
	}
	stateRoot, err := config.ResolveStorageRoot(cfg)
	if err != nil {
		return nil, err
	}
	if err := storepkg.EnsureLayout(stateRoot); err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if logCfg.File == "" {
		logCfg.File = storepkg.DefaultLogPath(stateRoot)
	} else if logCfg.File, err = config.ExpandPath(logCfg.File); err != nil {
		return nil, err
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	runner := opts.Runner
	if runner == nil {
		runner = execx.New()
	}
	storePath, err := config.ResolveSecretsStore(cfg)
	if err != nil {
		return nil, err
	}
	auditLog := audit.New(storepkg.AuditPath(stateRoot))
	registry, err := channel.NewRegistry(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Service{
		ConfigPath: configPath,
		Config:     cfg,
		StateRoot:  stateRoot,
		Log:        log,
		Audit:      auditLog,
		Runner:     runner,
		Acpx:       acpx.NewCoordinator(runner),
		Secrets:    &secrets.Service{StorePath: storePath, Audit: auditLog},
		Channels:   registry,
		Doctor: &doctor.Service{
			ConfigPath: configPath,
			StateRoot:  stateRoot,
			Registry:   registry,
			Runner:     runner,
		},
	}, nil
}

func (s *Service) SaveConfig() error {
	return config.Save(s.ConfigPath, s.Config)
}

// Close flushes buffered log output. Stderr sync failures are expected on
// some platforms and are ignored.
func (s *Service) Close() error {
	if s.Log != nil {
		_ = s.Log.Sync()
	}
	return nil
}

// acpxDir resolves the working directory acpx probes and installs run in:
// the configured install dir, or the plugins dir inside the state root.
func (s *Service) acpxDir() (string, error) {
	if s.Config.Acpx.InstallDir != "" {
		return config.ExpandPath(s.Config.Acpx.InstallDir)
	}
	return storepkg.PluginsRoot(s.StateRoot), nil
}

// AcpxCheck probes the helper binary without side effects.
func (s *Service) AcpxCheck(ctx context.Context) (acpx.CheckResult, error) {
	dir, err := s.acpxDir()
	if err != nil {
		return acpx.CheckResult{}, err
	}
	return acpx.Check(ctx, s.Runner, acpx.CheckOptions{
		Command:         s.Config.Acpx.Command,
		Dir:             dir,
		ExpectedVersion: s.Config.Acpx.ExpectedVersion,
	}), nil
}

// EnsureAcpx guarantees the helper binary is usable, installing it when the
// config permits, and records the settled outcome in bridge state.
func (s *Service) EnsureAcpx(ctx context.Context) (acpx.CheckResult, error) {
	dir, err := s.acpxDir()
	if err != nil {
		return acpx.CheckResult{}, err
	}
	pre, err := s.AcpxCheck(ctx)
	if err != nil {
		return acpx.CheckResult{}, err
	}
	if pre.OK {
		s.recordEnsure(pre.Version, false)
		return pre, nil
	}

	_ = s.Audit.Log(audit.Event{
		Operation: "acpx-ensure",
		Phase:     "install",
		Status:    "start",
		Message:   pre.Message,
	})
	ensureErr := s.Acpx.Ensure(ctx, acpx.EnsureOptions{
		Command:         s.Config.Acpx.Command,
		Dir:             dir,
		ExpectedVersion: s.Config.Acpx.ExpectedVersion,
		InstallAllowed:  s.Config.Acpx.InstallAllowed,
		Logger:          logging.PluginLogger(s.Log),
	})
	if ensureErr != nil {
		_ = s.Audit.Log(audit.Event{
			Operation: "acpx-ensure",
			Phase:     "settle",
			Status:    "error",
			Message:   ensureErr.Error(),
		})
		return acpx.CheckResult{}, ensureErr
	}

	post, err := s.AcpxCheck(ctx)
	if err != nil {
		return acpx.CheckResult{}, err
	}
	s.recordEnsure(post.Version, true)
	_ = s.Audit.Log(audit.Event{
		Operation: "acpx-ensure",
		Phase:     "settle",
		Status:    "ok",
		Message:   "version " + post.Version,
	})
	return post, nil
}

func (s *Service) recordEnsure(version string, installed bool) {
	st, err := storepkg.LoadState(s.StateRoot)
	if err != nil {
		s.Log.Warn("state load failed, skipping ensure record", zap.Error(err))
		return
	}
	storepkg.RecordEnsure(&st, version, time.Now().UTC(), installed)
	if err := storepkg.SaveState(s.StateRoot, st); err != nil {
		s.Log.Warn("state save failed", zap.Error(err))
	}
}

// ChannelNames lists the channels enabled by config.
func (s *Service) ChannelNames() []string {
	return s.Channels.Names()
}

// ProbeChannels probes every enabled channel without connecting.
func (s *Service) ProbeChannels(ctx context.Context) ([]pluginapi.ProbeResult, error) {
	return s.Channels.ProbeAll(ctx)
}

// ChannelRun ensures acpx, then blocks inside the named channel's event
// loop until ctx is cancelled. With echo set, every inbound message is sent
// straight back to its origin, threading onto the original message.
func (s *Service) ChannelRun(ctx context.Context, name string, echo bool) error {
	ch, err := s.Channels.Get(name)
	if err != nil {
		return err
	}
	if _, err := s.EnsureAcpx(ctx); err != nil {
		return err
	}

	st, err := storepkg.LoadState(s.StateRoot)
	if err != nil {
		return err
	}
	storepkg.UpsertChannel(&st, storepkg.ChannelRecord{Name: ch.Name(), LastStartedAt: time.Now().UTC()})
	if err := storepkg.SaveState(s.StateRoot, st); err != nil {
		return err
	}
	_ = s.Audit.Log(audit.Event{Operation: "channel-run", Phase: "start", Status: "ok", Channel: ch.Name()})

	handler := func(ctx context.Context, msg pluginapi.Message) error {
		s.Log.Info("inbound message",
			zap.String("channel", msg.Channel),
			zap.String("message_id", msg.ID),
			zap.String("user", msg.UserID),
		)
		if !echo {
			return nil
		}
		thread := msg.ThreadID
		if thread == "" {
			thread = msg.Timestamp
		}
		return ch.Send(ctx, pluginapi.Outbound{ChannelID: msg.ChannelID, ThreadID: thread, Text: msg.Text})
	}
	return ch.Start(ctx, handler)
}

// SecretsValidate loads, normalizes, and validates a plan, returning a
// redacted copy safe for display.
func (s *Service) SecretsValidate(path string) (secrets.Plan, error) {
	plan, err := secrets.LoadPlan(path)
	if err != nil {
		return secrets.Plan{}, err
	}
	return secrets.Redacted(plan), nil
}

// SecretsApply validates and applies a plan, then records the plan digest
// in bridge state so doctor and operators can see what was last applied.
func (s *Service) SecretsApply(path string, dryRun bool) (secrets.ApplyResult, error) {
	plan, err := secrets.LoadPlan(path)
	if err != nil {
		return secrets.ApplyResult{}, err
	}
	result, err := s.Secrets.Apply(plan, dryRun)
	if err != nil {
		return secrets.ApplyResult{}, err
	}
	if !dryRun {
		st, err := storepkg.LoadState(s.StateRoot)
		if err != nil {
			return secrets.ApplyResult{}, err
		}
		st.Secrets = storepkg.SecretsState{
			PlanDigest:    result.PlanDigest,
			Entries:       len(result.Applied),
			LastAppliedAt: time.Now().UTC(),
		}
		if err := storepkg.SaveState(s.StateRoot, st); err != nil {
			return secrets.ApplyResult{}, err
		}
	}
	return result, nil
}

func (s *Service) DoctorRun(ctx context.Context) doctor.Report {
	return s.Doctor.Run(ctx)
}

// AuditTail returns the most recent audit events, newest last.
func (s *Service) AuditTail(n int) ([]audit.Event, error) {
	if n <= 0 {
		return nil, fmt.Errorf("AUD_TAIL: limit must be positive, got %d", n)
	}
	return audit.Tail(s.Audit.Path(), n)
}
