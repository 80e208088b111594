package main

import (
	"context"
	"os"

	"github.com/groundwork-dev/groundwork/pkg/cli"
	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(types.ExitCode(err))
	}
}
