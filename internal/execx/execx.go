package execx

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
)

// Request describes a single child-process invocation.
type Request struct {
	Command string
	Args    []string
	Dir     string
}

// Result carries what the child reported. Exited is false when the process
// never started; ExitCode is meaningful only when Exited is true.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Exited   bool
}

// Runner spawns child processes. A returned error is a spawn-level failure
// (command missing, permission denied, context cancelled before start). A
// process that ran and exited non-zero is not an error; the code is in Result.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
	LookPath(name string) (string, error)
}

// New returns the os/exec backed Runner.
func New() Runner { return &execRunner{} }

type execRunner struct{}

func (*execRunner) Run(ctx context.Context, req Request) (Result, error) {
	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		res.Exited = true
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Exited = true
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

func (*execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// IsNotFound reports whether a spawn-level error means the command does not
// exist, either on PATH or at an explicit path.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
