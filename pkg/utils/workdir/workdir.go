// Package workdir changes the process working directory for the duration of
// a scope.
package workdir

import (
	"errors"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/groundwork-dev/groundwork/pkg/domain/types"
)

// Scope remembers the working directory that was current when it was entered
type Scope struct {
	prev   string
	closed bool
}

// Enter changes the working directory to path, relative paths resolving
// against the current one. The caller must Close the scope on every exit
// path, typically with defer.
func Enter(path string) (*Scope, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to get working directory")
	}

	if err := os.Chdir(path); err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to change working directory", goerr.V("path", path))
	}

	return &Scope{prev: prev}, nil
}

// Previous returns the directory restored by Close
func (s *Scope) Previous() string {
	return s.prev
}

// Close restores the previous working directory. Calling it more than once
// is a no-op.
func (s *Scope) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	if err := os.Chdir(s.prev); err != nil {
		return goerr.Wrap(errors.Join(types.ErrFilesystem, err), "failed to restore working directory", goerr.V("path", s.prev))
	}
	return nil
}
