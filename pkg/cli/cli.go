package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/groundwork-dev/groundwork/pkg/cli/config"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return newCommand(os.Stdout, os.Stderr).Run(ctx, args)
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	var (
		loggerCfg    = config.Logger{Writer: stderr}
		fetchCfg     config.Fetch
		generatorCfg config.Generator
		manifestCfg  config.Manifest
		logger       *slog.Logger
	)

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, fetchCfg.Flags()...)
	flags = append(flags, generatorCfg.Flags()...)
	flags = append(flags, manifestCfg.Flags()...)

	return &cli.Command{
		Name:      "groundwork",
		Usage:     "Fetch third-party dependencies and generate the project solution",
		ArgsUsage: "[target]",
		Version:   types.Version,
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			err := runBootstrap(ctx, c, &fetchCfg, &generatorCfg, &manifestCfg)
			if err != nil && logger != nil {
				logger.Error("Bootstrap failed", slog.Any("error", err))
			}
			return err
		},
		Commands: []*cli.Command{
			cmdManifest(&manifestCfg),
		},
	}
}
