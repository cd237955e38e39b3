//go:build !windows

package adb

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detachProcessGroup starts the spawned "adb start-server" in its own
// process group so it survives after cmd.Run() returns and isn't killed if
// our process receives a signal meant for its group (spec.md §4.2's
// auto-recovery spawn is fire-and-forget; the server is meant to outlive
// the client that triggered it).
func detachProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}
}

// pgid reports the process group id of pid, used by tests that want to
// confirm the spawned server actually detached.
func pgid(pid int) (int, error) {
	return unix.Getpgid(pid)
}
