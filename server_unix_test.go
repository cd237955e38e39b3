//go:build !windows

package adb

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDetachProcessGroup confirms detachProcessGroup actually starts the
// child in its own process group (Setpgid with Pgid 0 makes the new
// group's id equal the child's own pid), the property spec.md §4.2's
// fire-and-forget start-server spawn relies on.
func TestDetachProcessGroup(t *testing.T) {
	cmd := exec.Command("sleep", "0.2")
	detachProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		t.Skip("sleep not available:", err)
	}
	defer cmd.Wait()
	defer cmd.Process.Kill()

	got, err := pgid(cmd.Process.Pid)
	assert.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, got)
}
