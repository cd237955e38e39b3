// Package wire implements the ADB host/device wire codec: framing a command
// as a 4-hex-ASCII length prefix, parsing OKAY/FAIL status words, and the
// length-prefixed and read-until-close primitives built on top of a raw
// net.Conn. It has no knowledge of host-scope or device-scope command
// semantics — those live in the adb package.
package wire

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/adbkit/goadb/internal/errors"
)

const (
	// StatusSuccess is the 4-byte status word the adb server sends after a
	// command it accepted.
	StatusSuccess = "OKAY"

	// StatusFailure is the 4-byte status word preceding a length-prefixed
	// error message.
	StatusFailure = "FAIL"

	// maxMessageLength is the largest length a 4-hex-ASCII header can encode.
	maxMessageLength = 0xffff

	// readUntilEofChunkSize bounds a single read in ReadUntilEof (spec.md §4.1).
	readUntilEofChunkSize = 64 * 1024
)

// Scanner reads framed and raw data off an adb connection.
type Scanner interface {
	ReadStatus(req string) (string, error)
	ReadMessage() ([]byte, error)
	ReadUntilEof() ([]byte, error)
	io.Reader
	NewSyncScanner() SyncScanner
}

// Sender writes framed commands to an adb connection.
type Sender interface {
	SendMessage(msg []byte) error
	io.Writer
	NewSyncSender() SyncSender
}

// Conn is a single logical connection to the adb server: one operation,
// start to finish (spec.md §3 invariant (a)).
type Conn struct {
	Scanner
	Sender
}

// NewConn wraps a Scanner/Sender pair into a Conn. Used directly by tests
// (see MockServer) and indirectly by Dial.
func NewConn(s Scanner, sd Sender) *Conn {
	return &Conn{Scanner: s, Sender: sd}
}

// Dial opens a TCP connection to addr (host:port) for use as an adb server
// connection.
func Dial(addr string) (*Conn, error) {
	netConn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.WrapErrorf(err, errors.NetworkError, "dialing %s", addr)
	}
	return &Conn{Scanner: &realScanner{netConn}, Sender: &realSender{netConn}}, nil
}

// Close closes the underlying socket, whatever it is. Safe to call on a
// Conn built from a Scanner/Sender pair that doesn't implement io.Closer.
func (c *Conn) Close() error {
	if closer, ok := c.Sender.(io.Closer); ok {
		return closer.Close()
	}
	if closer, ok := c.Scanner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RoundTripSingleResponse sends a message, reads a single status word,
// and reads a single length-prefixed response message. This is for
// one-shot commands, not long-running streams.
func (c *Conn) RoundTripSingleResponse(req []byte) ([]byte, error) {
	if err := c.SendMessage(req); err != nil {
		return nil, err
	}
	if _, err := c.ReadStatus(string(req)); err != nil {
		return nil, err
	}
	return c.ReadMessage()
}

// SendMessageString is a convenience wrapper for SendMessage([]byte(msg)).
func SendMessageString(s Sender, msg string) error {
	return s.SendMessage([]byte(msg))
}

// deadliner is implemented by net.Conn; checked via type assertion so Conn
// works the same whether it's backed by a real socket or a MockServer.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// SetReadDeadline applies a read deadline to the underlying socket, if the
// Conn's Scanner supports one (spec.md §4.2: read_timeout, default 3s).
func (c *Conn) SetReadDeadline(t time.Time) error {
	if d, ok := c.Scanner.(deadliner); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

// realScanner implements Scanner atop a raw net.Conn.
type realScanner struct {
	net.Conn
}

func (s *realScanner) ReadStatus(req string) (string, error) {
	status := make([]byte, 4)
	if _, err := io.ReadFull(s.Conn, status); err != nil {
		return "", errors.WrapErrorf(err, errors.NetworkError, "error reading status for %s", req)
	}
	switch string(status) {
	case StatusSuccess:
		return StatusSuccess, nil
	case StatusFailure:
		msg, err := s.ReadMessage()
		if err != nil {
			return "", errors.WrapErrorf(err, errors.NetworkError, "error reading failure message for %s", req)
		}
		return "", errors.Errorf(errors.AdbError, "server returned error for %s: %s", req, string(msg))
	default:
		return "", errors.Errorf(errors.ProtocolError, "unexpected status for %s: %q", req, string(status))
	}
}

func (s *realScanner) ReadMessage() ([]byte, error) {
	length, err := s.readHexLength()
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(s.Conn, data); err != nil {
			return nil, errors.WrapErrorf(err, errors.NetworkError, "error reading message body")
		}
	}
	return data, nil
}

func (s *realScanner) readHexLength() (int, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(s.Conn, buf); err != nil {
		return 0, errors.WrapErrorf(err, errors.NetworkError, "error reading length header")
	}
	var length int
	if _, err := fmt.Sscanf(string(buf), "%04x", &length); err != nil {
		return 0, errors.WrapErrorf(err, errors.ProtocolError, "invalid hex length header %q", string(buf))
	}
	return length, nil
}

func (s *realScanner) ReadUntilEof() ([]byte, error) {
	var out []byte
	buf := make([]byte, readUntilEofChunkSize)
	for {
		n, err := s.Conn.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, errors.WrapErrorf(err, errors.NetworkError, "error reading until eof")
		}
	}
}

func (s *realScanner) NewSyncScanner() SyncScanner {
	return &realSyncScanner{s.Conn}
}

// realSender implements Sender atop a raw net.Conn.
type realSender struct {
	net.Conn
}

func (s *realSender) SendMessage(msg []byte) error {
	if len(msg) > maxMessageLength {
		return errors.AssertionErrorf("message length %d exceeds max %d", len(msg), maxMessageLength)
	}
	header := fmt.Sprintf("%04x", len(msg))
	if _, err := s.Conn.Write([]byte(header)); err != nil {
		return errors.WrapErrorf(err, errors.NetworkError, "error writing length header")
	}
	if _, err := s.Conn.Write(msg); err != nil {
		return errors.WrapErrorf(err, errors.NetworkError, "error writing message body")
	}
	return nil
}

func (s *realSender) NewSyncSender() SyncSender {
	return &realSyncSender{s.Conn}
}
