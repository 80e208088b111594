package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/mattn/go-shellwords"
	"github.com/urfave/cli/v3"
)

// Generator holds solution generator configuration
type Generator struct {
	Args string
}

// Flags returns CLI flags for generator configuration
func (c *Generator) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "generator-args",
			Usage:       `Extra arguments passed to premake after the action, e.g. "--cc=clang --os=linux"`,
			Destination: &c.Args,
			Sources:     cli.EnvVars("GROUNDWORK_GENERATOR_ARGS"),
		},
	}
}

// ExtraArgs splits Args the way a POSIX shell would
func (c *Generator) ExtraArgs() ([]string, error) {
	if c.Args == "" {
		return nil, nil
	}
	args, err := shellwords.Parse(c.Args)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse generator arguments", goerr.V("args", c.Args))
	}
	return args, nil
}
