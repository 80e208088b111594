//go:build windows

package process

import "os/exec"

// launchCommand goes through the shell so that an installer requesting
// elevation shows the UAC prompt. CreateProcess would fail with
// ERROR_ELEVATION_REQUIRED instead.
func launchCommand(name string, args ...string) *exec.Cmd {
	return exec.Command("cmd", append([]string{"/c", "start", "", name}, args...)...)
}
