package download

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"go.bug.st/downloader/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/interfaces"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

// Progress receives the progress of each download
type Progress interface {
	// Update reports the bytes written so far and the expected total. total
	// is 0 when the server sent no Content-Length.
	Update(dest string, written, total int64)

	// Done is called once the transfer of dest ends, successfully or not
	Done(dest string)
}

type config struct {
	httpClient   *http.Client
	timeout      time.Duration
	progress     Progress
	pollInterval time.Duration
}

// Option is a functional option for Client configuration
type Option func(*config)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithTimeout bounds each download including reading the body
func WithTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.timeout = d
	}
}

// WithProgress sets the progress receiver
func WithProgress(p Progress) Option {
	return func(cfg *config) {
		cfg.progress = p
	}
}

// WithPollInterval sets how often progress is reported
func WithPollInterval(d time.Duration) Option {
	return func(cfg *config) {
		cfg.pollInterval = d
	}
}

type client struct {
	cfg config
}

// NewClient creates a new HTTP downloader
func NewClient(opts ...Option) interfaces.Downloader {
	cfg := config{
		httpClient:   http.DefaultClient,
		timeout:      10 * time.Minute,
		pollInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &client{cfg: cfg}
}

// Download fetches url into dest. An existing dest is trusted as is.
func (c *client) Download(ctx context.Context, url, dest string) (bool, error) {
	logger := ctxlog.From(ctx)

	if info, err := os.Stat(dest); err == nil {
		if info.IsDir() {
			return false, goerr.Wrap(types.ErrFilesystem, "download destination is a directory", goerr.V("dest", dest))
		}
		logger.Info("Already downloaded, skipping", "dest", dest)
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to stat download destination", goerr.V("dest", dest))
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to create destination directory", goerr.V("dest", dest))
	}

	logger.Info("Downloading", "url", url, "dest", dest)

	// dest never holds partial content
	tmp := dest + "." + uuid.NewString() + ".part"
	written, err := c.fetch(ctx, url, dest, tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return false, goerr.Wrap(err, "failed to download", goerr.V("url", url), goerr.V("dest", dest))
	}

	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return false, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to move download into place", goerr.V("dest", dest))
	}

	logger.Info("Downloaded", "url", url, "dest", dest, "size_bytes", written)
	return false, nil
}

// fetch streams url into tmp and returns the number of bytes written
func (c *client) fetch(ctx context.Context, url, dest, tmp string) (int64, error) {
	httpClient := *c.cfg.httpClient
	httpClient.Transport = &contextTransport{ctx: ctx, base: c.cfg.httpClient.Transport}

	d, err := downloader.DownloadWithConfig(tmp, url, downloader.Config{HttpClient: httpClient}, downloader.NoResume)
	if err != nil {
		return 0, errors.Join(types.ErrNetwork, err)
	}
	if d == nil {
		return 0, goerr.Wrap(types.ErrNetwork, "no response to read")
	}

	if status := d.Resp.StatusCode; status < 200 || status > 299 {
		_ = d.Close()
		return 0, goerr.Wrap(types.ErrNetwork, "unexpected status code", goerr.V("status", status))
	}

	total := d.Size()
	if total < 0 {
		total = 0
	}

	report := func(written int64) {}
	if c.cfg.progress != nil {
		defer c.cfg.progress.Done(dest)
		report = func(written int64) {
			c.cfg.progress.Update(dest, written, total)
		}
	}

	if err := d.RunAndPoll(report, c.cfg.pollInterval); err != nil {
		return d.Completed(), errors.Join(types.ErrNetwork, err)
	}
	report(d.Completed())

	info, err := os.Stat(tmp)
	if err != nil {
		return d.Completed(), goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to stat downloaded file")
	}
	if info.Size() != d.Completed() {
		return d.Completed(), goerr.Wrap(types.ErrFilesystem, "downloaded file is incomplete",
			goerr.V("received", d.Completed()),
			goerr.V("written", info.Size()),
		)
	}

	return info.Size(), nil
}

// contextTransport binds every request to ctx so that cancellation and the
// download deadline also interrupt reading the body
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}
