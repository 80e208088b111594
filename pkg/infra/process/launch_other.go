//go:build !windows

package process

import "os/exec"

func launchCommand(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}
