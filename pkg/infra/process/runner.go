package process

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/interfaces"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
	"github.com/groundwork-dev/groundwork/pkg/utils/async"
)

type config struct {
	stdout io.Writer
	stderr io.Writer
}

// Option is a functional option for Runner configuration
type Option func(*config)

// WithOutput redirects the output of executed processes
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

type runner struct {
	cfg config
}

// NewRunner creates a process runner writing child output to the terminal
func NewRunner(opts ...Option) interfaces.ProcessRunner {
	cfg := config{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &runner{cfg: cfg}
}

// Run executes name with args in dir and waits for a zero exit status
func (r *runner) Run(ctx context.Context, dir, name string, args ...string) error {
	logger := ctxlog.From(ctx)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.cfg.stdout
	cmd.Stderr = r.cfg.stderr

	logger.Info("Running", "cmd", name, "args", args, "dir", dir)

	if err := cmd.Run(); err != nil {
		vals := []goerr.Option{
			goerr.V("cmd", name),
			goerr.V("args", args),
			goerr.V("dir", dir),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			vals = append(vals, goerr.V("exit_code", exitErr.ExitCode()))
		}
		return goerr.Wrap(errors.Join(types.ErrProcess, err), "process failed", vals...)
	}

	return nil
}

// Launch starts name and returns once the process is running. The exit of
// the process is reaped in the background and only logged.
func (r *runner) Launch(ctx context.Context, name string, args ...string) error {
	// the shell launcher on windows reports a missing file in a dialog only
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return goerr.Wrap(errors.Join(types.ErrProcess, err), "failed to launch process", goerr.V("cmd", name))
		}
	}

	cmd := launchCommand(name, args...)
	cmd.Stdout = r.cfg.stdout
	cmd.Stderr = r.cfg.stderr

	if err := cmd.Start(); err != nil {
		return goerr.Wrap(errors.Join(types.ErrProcess, err), "failed to launch process", goerr.V("cmd", name), goerr.V("args", args))
	}

	ctxlog.From(ctx).Info("Launched", "cmd", name, "pid", cmd.Process.Pid)

	async.Detach(ctx, name, func(ctx context.Context) error {
		return cmd.Wait()
	})
	return nil
}
