package interfaces

import (
	"context"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

// BootstrapUseCase fetches every third-party dependency and generates the solution
type BootstrapUseCase interface {
	// Run executes the full bootstrap sequence. args are the positional
	// command-line arguments.
	Run(ctx context.Context, args []string) (*model.Report, error)
}
