// Package async is the cooperative facade spec.md §5 describes alongside
// the blocking one in package adb: the same host/device command strings,
// frame formats, and escape rules, driven by goroutines and channels
// instead of a call that occupies the calling thread for its duration
// (grounded in Tryanks-gadb's RunShellCommandAsync/Shell and the adb
// package's own AsyncWriter).
package async

import (
	"bufio"
	"io"

	"github.com/adbkit/goadb"
	"github.com/adbkit/goadb/internal/errors"
)

// Device wraps an *adb.Device, adding non-blocking variants of its
// stream-shaped operations. The blocking operations are unchanged --
// callers mix both facades on the same Device freely, since they share
// one protocol core (spec.md §5).
type Device struct {
	*adb.Device
}

// New wraps d for cooperative-style use.
func New(d *adb.Device) *Device {
	return &Device{Device: d}
}

// Shell is a running "shell:<cmd>" session whose output arrives over a
// channel instead of being read synchronously (spec.md §5 "cooperative
// facade"; grounded in Tryanks-gadb's device_shell_async_test.go).
type Shell struct {
	// Lines delivers each line of combined stdout/stderr as it arrives.
	Lines chan string
	// Done closes once the remote command's stream ends, for any reason.
	Done chan struct{}

	stream io.ReadCloser
	err    error
}

// Err returns the error the stream ended with, if any. Only meaningful
// after Done closes.
func (s *Shell) Err() error {
	return s.err
}

// Close forcibly terminates the running remote command by closing the
// underlying connection (spec.md §5 "the connection is closed when the
// operation's result... is dropped"), mirroring Tryanks-gadb's Shell.Close.
func (s *Shell) Close() error {
	return s.stream.Close()
}

// RunShellCommandAsync starts cmd on the device and returns immediately;
// output streams to the returned Shell's Lines channel as it arrives
// (spec.md §5: a suspension point per socket read, modeled in Go as a
// per-line goroutine handoff over a channel).
func (d *Device) RunShellCommandAsync(cmd string, args ...string) (*Shell, error) {
	stream, err := d.ShellStream(cmd, args...)
	if err != nil {
		return nil, err
	}

	sh := &Shell{
		Lines:  make(chan string),
		Done:   make(chan struct{}),
		stream: stream,
	}

	go func() {
		defer close(sh.Done)
		defer close(sh.Lines)

		br := bufio.NewReader(stream)
		for {
			line, err := br.ReadString('\n')
			if line != "" {
				sh.Lines <- line
			}
			if err != nil {
				if err != io.EOF {
					sh.err = errors.WrapErrorf(err, errors.NetworkError, "reading async shell output")
				}
				return
			}
		}
	}()

	return sh, nil
}
