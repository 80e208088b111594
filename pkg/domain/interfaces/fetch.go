package interfaces

import (
	"context"

	"github.com/groundwork-dev/groundwork/pkg/domain/model"
)

// Downloader fetches remote files
type Downloader interface {
	// Download stores url at dest unless dest already exists. skipped is true
	// when no request was made.
	Download(ctx context.Context, url, dest string) (skipped bool, err error)
}

// Extractor unpacks archives
type Extractor interface {
	// Decompress extracts every entry of archive into destDir
	Decompress(ctx context.Context, archive, destDir string) (*model.ExtractResult, error)
}

// Cloner materializes source repositories
type Cloner interface {
	// Clone clones url into dir and checks out ref unless dir already exists.
	// skipped is true when no git command was run.
	Clone(ctx context.Context, url, dir, ref string) (skipped bool, err error)
}

// ProcessRunner runs external executables
type ProcessRunner interface {
	// Run executes name in dir and waits for it to exit successfully
	Run(ctx context.Context, dir, name string, args ...string) error

	// Launch starts name without waiting for it to finish
	Launch(ctx context.Context, name string, args ...string) error
}
