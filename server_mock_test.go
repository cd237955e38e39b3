package adb

import (
	"bytes"
	"io"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// MockServer implements server, wire.Scanner, and wire.Sender so protocol
// tests can drive Adb/Device without a real adb server (grounded in the
// pack's own server_mock_test.go).
type MockServer struct {
	// Each time an operation is performed, if this slice is non-empty, the
	// head element is returned and removed. A nil head is removed but not
	// returned.
	Errs []error

	Status string

	// Messages are returned from read calls in order, each representing
	// one length-prefixed response body.
	Messages     []string
	nextMsgIndex int

	// Requests records every message passed to SendMessage, in order.
	Requests []string

	// Trace records every method called, in order.
	Trace []string

	// SyncResponse is raw, already wire-encoded SYNC response bytes played
	// back to NewSyncScanner's reader (spec.md §4.5/§9 end-to-end
	// scenarios). Left nil, SYNC reads simply hit EOF.
	SyncResponse []byte

	// SyncWritten accumulates every byte a SyncSender writes, for tests to
	// assert against the exact wire encoding of a SYNC request.
	SyncWritten bytes.Buffer
}

var _ server = &MockServer{}
var _ wire.Scanner = &MockServer{}
var _ wire.Sender = &MockServer{}

func (s *MockServer) Dial() (*wire.Conn, error) {
	s.logMethod("Dial")
	if err := s.nextErr(); err != nil {
		return nil, err
	}
	return wire.NewConn(s, s), nil
}

func (s *MockServer) Start() error {
	s.logMethod("Start")
	return s.nextErr()
}

func (s *MockServer) ReadStatus(req string) (string, error) {
	s.logMethod("ReadStatus")
	if err := s.nextErr(); err != nil {
		return "", err
	}
	if s.Status == wire.StatusFailure {
		msg, _ := s.ReadMessage()
		return "", errors.Errorf(errors.AdbError, "server returned error for %s: %s", req, string(msg))
	}
	return s.Status, nil
}

func (s *MockServer) Read(p []byte) (int, error) {
	s.logMethod("Read")
	if err := s.nextErr(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *MockServer) Write(p []byte) (int, error) {
	s.logMethod("Write")
	if err := s.nextErr(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *MockServer) ReadMessage() ([]byte, error) {
	s.logMethod("ReadMessage")
	if err := s.nextErr(); err != nil {
		return nil, err
	}
	if s.nextMsgIndex >= len(s.Messages) {
		return nil, errors.WrapErrorf(io.EOF, errors.NetworkError, "no more messages")
	}
	s.nextMsgIndex++
	return []byte(s.Messages[s.nextMsgIndex-1]), nil
}

func (s *MockServer) ReadUntilEof() ([]byte, error) {
	s.logMethod("ReadUntilEof")
	if err := s.nextErr(); err != nil {
		return nil, err
	}
	var parts []string
	for ; s.nextMsgIndex < len(s.Messages); s.nextMsgIndex++ {
		parts = append(parts, s.Messages[s.nextMsgIndex])
	}
	return []byte(strings.Join(parts, "")), nil
}

func (s *MockServer) SendMessage(msg []byte) error {
	s.logMethod("SendMessage")
	if err := s.nextErr(); err != nil {
		return err
	}
	s.Requests = append(s.Requests, string(msg))
	return nil
}

func (s *MockServer) NewSyncScanner() wire.SyncScanner {
	s.logMethod("NewSyncScanner")
	return wire.NewSyncScannerFromReader(bytes.NewReader(s.SyncResponse))
}

func (s *MockServer) NewSyncSender() wire.SyncSender {
	s.logMethod("NewSyncSender")
	return wire.NewSyncSenderFromWriter(&s.SyncWritten)
}

func (s *MockServer) Close() error {
	s.logMethod("Close")
	return s.nextErr()
}

func (s *MockServer) nextErr() (err error) {
	if len(s.Errs) > 0 {
		err = s.Errs[0]
		s.Errs = s.Errs[1:]
	}
	return
}

func (s *MockServer) logMethod(name string) {
	s.Trace = append(s.Trace, name)
}
