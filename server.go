package adb

import (
	"os/exec"
	"sync"
	"time"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

func deadlineFromNow(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// server is the L2 transport abstraction: open a connection to the adb
// server, and (once) make sure it's running. MockServer in
// server_mock_test.go implements this directly atop canned Scanner/Sender
// behavior for protocol-level unit tests.
type server interface {
	Dial() (*wire.Conn, error)
	Start() error
}

// startServerOnce guards the spawn of "adb start-server" so concurrent
// first-dials from multiple goroutines don't race each other into spawning
// it twice (spec.md §5: "guard this spawn with a once-only latch").
var startServerOnce sync.Once
var startServerErr error

func newServer(config ServerConfig) (server, error) {
	return &tcpServer{config: config}, nil
}

// tcpServer dials the real adb server over TCP, retrying once via
// "adb start-server" on the first failure (spec.md §4.2).
type tcpServer struct {
	config ServerConfig
}

func (s *tcpServer) Dial() (*wire.Conn, error) {
	conn, err := wire.Dial(s.config.addr())
	if err == nil {
		if dErr := conn.SetReadDeadline(deadlineFromNow(s.config.readTimeout())); dErr != nil {
			conn.Close()
			return nil, errors.WrapErrorf(dErr, errors.NetworkError, "error setting read deadline")
		}
		return conn, nil
	}

	// Auto-recovery: spawn "adb start-server" exactly once per process, then
	// retry the dial exactly once (spec.md §4.2/§5).
	startServerOnce.Do(func() {
		startServerErr = s.Start()
	})
	if startServerErr != nil {
		return nil, errors.WrapErrorf(err, errors.ServerNotAvailable,
			"adb server unreachable at %s and start-server failed", s.config.addr())
	}

	conn, err = wire.Dial(s.config.addr())
	if err != nil {
		return nil, errors.WrapErrorf(err, errors.ServerNotAvailable,
			"adb server still unreachable at %s after start-server", s.config.addr())
	}
	if dErr := conn.SetReadDeadline(deadlineFromNow(s.config.readTimeout())); dErr != nil {
		conn.Close()
		return nil, errors.WrapErrorf(dErr, errors.NetworkError, "error setting read deadline")
	}
	return conn, nil
}

// Start invokes "<adb> start-server" and waits for it to exit. Spawning is
// detached from our process group on unix so the server outlives us (see
// server_unix.go); on other platforms the plain os/exec behavior is used.
func (s *tcpServer) Start() error {
	path, err := s.config.resolveAdbPath()
	if err != nil {
		return errors.WrapErrorf(err, errors.ServerNotAvailable, "could not find adb executable")
	}
	cmd := exec.Command(path, "start-server")
	detachProcessGroup(cmd)
	if err := cmd.Run(); err != nil {
		return errors.WrapErrorf(err, errors.ServerNotAvailable, "%s start-server failed", path)
	}
	defaultLogger.WithField("adb", path).Debug("started adb server")
	return nil
}
