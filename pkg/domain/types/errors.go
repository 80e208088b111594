package types

import "errors"

// Error categories. Every failure surfaced by groundwork wraps exactly one of
// these so the exit status can be derived from it.
var (
	ErrNetwork             = errors.New("network failure")
	ErrProcess             = errors.New("external process failure")
	ErrMissingInput        = errors.New("missing input")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrUnsupportedArchive  = errors.New("unsupported archive format")
	ErrFilesystem          = errors.New("filesystem failure")
)

// Exit codes returned by the groundwork binary.
const (
	ExitOK                  = 0
	ExitGeneric             = 1
	ExitNetwork             = 2
	ExitProcess             = 3
	ExitUnsupportedPlatform = 4
	ExitMissingInput        = 5
	ExitFilesystem          = 6
)

// ExitCode maps an error to the process exit status. For a joined error the
// first member decides.
func ExitCode(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return ExitCode(errs[0])
		}
	}

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNetwork):
		return ExitNetwork
	case errors.Is(err, ErrProcess):
		return ExitProcess
	case errors.Is(err, ErrUnsupportedPlatform):
		return ExitUnsupportedPlatform
	case errors.Is(err, ErrMissingInput):
		return ExitMissingInput
	case errors.Is(err, ErrFilesystem), errors.Is(err, ErrUnsupportedArchive):
		return ExitFilesystem
	default:
		return ExitGeneric
	}
}
