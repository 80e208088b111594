package config

import (
	"runtime"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

// Fetch holds dependency fetching configuration
type Fetch struct {
	Root     string
	Timeout  time.Duration
	Platform string
	FailFast bool
}

// Flags returns CLI flags for fetch configuration
func (c *Fetch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "root",
			Usage:       "Project root receiving the third-party directory, relative to the working directory",
			Value:       "..",
			Destination: &c.Root,
			Sources:     cli.EnvVars("GROUNDWORK_ROOT"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Timeout of each download and each repository clone",
			Value:       10 * time.Minute,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("GROUNDWORK_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "platform",
			Usage:       "Platform recipes to use (windows, linux, darwin)",
			Value:       runtime.GOOS,
			Destination: &c.Platform,
			Sources:     cli.EnvVars("GROUNDWORK_PLATFORM"),
		},
		&cli.BoolFlag{
			Name:        "fail-fast",
			Usage:       "Stop at the first failed dependency instead of continuing",
			Destination: &c.FailFast,
			Sources:     cli.EnvVars("GROUNDWORK_FAIL_FAST"),
		},
	}
}

// RootDir returns the project root with a leading ~ expanded
func (c *Fetch) RootDir() (string, error) {
	root, err := homedir.Expand(c.Root)
	if err != nil {
		return "", goerr.Wrap(err, "failed to expand root", goerr.V("root", c.Root))
	}
	return root, nil
}

// HostPlatform returns the configured platform
func (c *Fetch) HostPlatform() model.Platform {
	if c.Platform == "" {
		return model.Platform(runtime.GOOS)
	}
	return model.Platform(c.Platform)
}
