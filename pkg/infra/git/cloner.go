package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/vcs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/interfaces"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

// waitDelay bounds how long a killed git may hold its output pipes
const waitDelay = 2 * time.Second

type config struct {
	timeout time.Duration
}

// Option is a functional option for Cloner configuration
type Option func(*config)

// WithTimeout bounds clone and checkout of one repository
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

type cloner struct {
	cfg config
}

// NewCloner creates a git cloner backed by the git command line client
func NewCloner(opts ...Option) interfaces.Cloner {
	cfg := config{
		timeout: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cloner{cfg: cfg}
}

// Clone clones url into dir and checks out ref. An existing dir is trusted
// regardless of its checked out revision. Submodules are not fetched.
func (c *cloner) Clone(ctx context.Context, url, dir, ref string) (bool, error) {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return false, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to create container directory", goerr.V("dir", filepath.Dir(dir)))
	}

	if _, err := os.Stat(dir); err == nil {
		logger.Info("Folder already exists, skipping", "dir", dir)
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to stat clone target", goerr.V("dir", dir))
	}

	if err := ctx.Err(); err != nil {
		return false, goerr.Wrap(err, "clone cancelled", goerr.V("url", url))
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	logger.Info("Cloning repository", "url", url, "dir", dir, "ref", ref)

	if out, err := run(ctx, "", "clone", "--quiet", url, dir); err != nil {
		c.cleanup(ctx, dir)
		return false, wrapGitError(ctx, err, "git clone failed",
			goerr.V("url", url),
			goerr.V("dir", dir),
			goerr.V("output", out),
		)
	}

	repo, err := vcs.NewGitRepo(url, dir)
	if err != nil {
		c.cleanup(ctx, dir)
		return false, goerr.Wrap(errors.Join(types.ErrProcess, err), "failed to open cloned repository", goerr.V("url", url), goerr.V("dir", dir))
	}

	if ref != "" {
		if !repo.IsReference(ref) {
			c.cleanup(ctx, dir)
			return false, goerr.Wrap(types.ErrProcess, "reference not found in repository",
				goerr.V("url", url),
				goerr.V("ref", ref),
			)
		}

		if out, err := run(ctx, dir, "checkout", "--quiet", ref); err != nil {
			c.cleanup(ctx, dir)
			return false, wrapGitError(ctx, err, "git checkout failed",
				goerr.V("url", url),
				goerr.V("dir", dir),
				goerr.V("ref", ref),
				goerr.V("output", out),
			)
		}
	}

	revision, err := repo.Version()
	if err != nil {
		logger.Warn("Failed to read checked out revision", "dir", dir, "error", err)
	}

	logger.Info("Cloned repository", "url", url, "dir", dir, "ref", ref, "revision", revision)
	return false, nil
}

// cleanup removes a half-made clone so the next run does not treat it as done
func (c *cloner) cleanup(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		ctxlog.From(ctx).Warn("Failed to remove incomplete clone", "dir", dir, "error", err)
	}
}

// run executes git under ctx. git never prompts for credentials, a missing
// credential fails the command instead of stalling it.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.WaitDelay = waitDelay

	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// wrapGitError reports a git killed by the deadline or cancellation as a
// network failure and every other failure as a process failure
func wrapGitError(ctx context.Context, err error, msg string, opts ...goerr.Option) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return goerr.Wrap(errors.Join(types.ErrNetwork, ctxErr, err), msg+": did not finish in time", opts...)
	}
	return goerr.Wrap(errors.Join(types.ErrProcess, err), msg, opts...)
}
