package acpx

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"clawbridge/internal/execx"
	"clawbridge/pkg/pluginapi"
)

// EnsureOptions configures one ensure sequence. A nil InstallAllowed means
// installing is permitted; Logger may be nil.
type EnsureOptions struct {
	Command         string
	Dir             string
	ExpectedVersion string
	InstallAllowed  *bool
	Logger          pluginapi.Logger
}

// Coordinator runs ensure sequences with at most one in flight at a time.
// Callers arriving while a sequence runs share its outcome instead of
// triggering duplicate installs; the in-flight token clears when the
// sequence settles, success or failure.
type Coordinator struct {
	Runner execx.Runner

	group singleflight.Group
}

func NewCoordinator(runner execx.Runner) *Coordinator {
	return &Coordinator{Runner: runner}
}

const ensureKey = "acpx-ensure"

// Ensure guarantees that opts.Command is installed at the expected version
// (or merely runnable when none is configured) by the time it returns nil.
// The sequence is check, then install via npm when allowed, then re-check.
// No retries and no timeout; ctx is passed through to process invocations.
func (c *Coordinator) Ensure(ctx context.Context, opts EnsureOptions) error {
	_, err, _ := c.group.Do(ensureKey, func() (any, error) {
		return nil, c.run(ctx, opts)
	})
	return err
}

func (c *Coordinator) run(ctx context.Context, opts EnsureOptions) error {
	runner := c.Runner
	if runner == nil {
		runner = execx.New()
	}
	checkOpts := CheckOptions{Command: opts.Command, Dir: opts.Dir, ExpectedVersion: opts.ExpectedVersion}

	check := Check(ctx, runner, checkOpts)
	if check.OK {
		return nil
	}
	if opts.InstallAllowed != nil && !*opts.InstallAllowed {
		return fmt.Errorf("ACP_ENSURE: %s", check.Message)
	}

	pluginapi.Warn(opts.Logger, fmt.Sprintf("%s; installing via %q", check.Message, check.InstallCommand))

	res, err := runner.Run(ctx, execx.Request{
		Command: packageManager,
		Args:    installArgs(pinVersion(opts.ExpectedVersion)),
		Dir:     opts.Dir,
	})
	if err != nil {
		if execx.IsNotFound(err) {
			return fmt.Errorf("ACP_INSTALL: %s not found; install Node.js to provision %s", packageManager, PackageName)
		}
		return fmt.Errorf("ACP_INSTALL: running %s failed: %w", packageManager, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("ACP_INSTALL: %s", installFailure(res))
	}

	recheck := Check(ctx, runner, checkOpts)
	if !recheck.OK {
		return fmt.Errorf("ACP_ENSURE_VERIFY: verification failed after installation: %s", recheck.Message)
	}
	pluginapi.Info(opts.Logger, fmt.Sprintf("%s %s ready", opts.Command, recheck.Version))
	return nil
}

// installFailure prefers stderr, then stdout, then the bare exit code.
func installFailure(res execx.Result) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s install exited with code %d", packageManager, res.ExitCode)
}

var defaultCoordinator = NewCoordinator(nil)

// Ensure runs on the process-wide coordinator, so concurrent callers across
// the whole bridge share a single in-flight sequence.
func Ensure(ctx context.Context, opts EnsureOptions) error {
	return defaultCoordinator.Ensure(ctx, opts)
}
