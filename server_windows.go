//go:build windows

package adb

import "os/exec"

// detachProcessGroup is a no-op on windows; golang.org/x/sys/unix's
// process-group primitives don't apply there.
func detachProcessGroup(cmd *exec.Cmd) {}
