package async

import (
	"io"
	"testing"
	"time"

	"github.com/adbkit/goadb"
)

// TestRunShellCommandAsync mirrors Tryanks-gadb's
// TestDevice_RunShellCommandAsync: it exercises the real adb server and
// a real attached device when available, and skips otherwise, since this
// package has no mock server of its own to drive against (spec.md §5).
func TestRunShellCommandAsync(t *testing.T) {
	client, err := adb.New()
	if err != nil {
		t.Skip("adb server not available:", err)
	}

	serials, err := client.ListDeviceSerials()
	if err != nil || len(serials) == 0 {
		t.Skip("no devices attached")
	}

	dev := New(client.Device(adb.DeviceWithSerial(serials[0])))

	sh, err := dev.RunShellCommandAsync("logcat")
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		for range sh.Lines {
		}
	}()

	select {
	case <-time.After(500 * time.Millisecond):
	case <-sh.Done:
	}
	if err := sh.Close(); err != nil {
		t.Fatal(err)
	}
	<-sh.Done
	if err := sh.Err(); err != nil && err != io.EOF {
		t.Log("shell ended with:", err)
	}
}
