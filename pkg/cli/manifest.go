package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/groundwork-dev/groundwork/pkg/cli/config"
)

func cmdManifest(manifestCfg *config.Manifest) *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Print the effective dependency manifest as TOML",
		Action: func(ctx context.Context, c *cli.Command) error {
			m, err := manifestCfg.Load()
			if err != nil {
				return err
			}

			data, err := config.EncodeManifest(m)
			if err != nil {
				return err
			}

			if _, err := c.Root().Writer.Write(data); err != nil {
				return goerr.Wrap(err, "failed to write manifest")
			}
			return nil
		},
	}
}
