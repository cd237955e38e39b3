package wire

import (
	"encoding/binary"
	"io"
	"os"
	"time"

	"github.com/adbkit/goadb/internal/errors"
)

// Sync protocol tags (spec.md §4.5/§6). Always 4 ASCII bytes.
const (
	tagStat = "STAT"
	tagList = "LIST"
	tagDent = "DENT"
	tagRecv = "RECV"
	tagSend = "SEND"
	tagData = "DATA"
	tagDone = "DONE"
	tagFail = "FAIL"
)

// syncMaxChunkSize bounds a single SYNC DATA chunk (spec.md §4.5/§6).
const syncMaxChunkSize = 64 * 1024

// FileInfo is a STAT/LIST record: spec.md §3.
type FileInfo struct {
	Name  string
	Mode  os.FileMode
	Size  uint32
	Mtime time.Time
}

// SyncScanner reads SYNC sub-protocol responses off a Conn already switched
// into sync mode.
type SyncScanner interface {
	ReadStatus(req string) (string, error)
	ReadInt32() (int32, error)
	ReadFileMode() (os.FileMode, error)
	ReadTime() (time.Time, error)
	ReadString() (string, error)
	ReadBytes(buf []byte) error
	io.Closer
}

// SyncSender writes SYNC sub-protocol requests to a Conn already switched
// into sync mode.
type SyncSender interface {
	SendOctetString(s string) error
	SendInt32(i int32) error
	SendFileMode(mode os.FileMode) error
	SendTime(t time.Time) error
	SendBytes(data []byte) error
	io.Closer
}

// SyncConn is a Conn that has entered SYNC mode via "sync:" (spec.md §4.5).
// A SyncConn is used for exactly one SYNC operation and then closed; it is
// never reused (spec.md §4.5 invariant).
type SyncConn struct {
	SyncScanner
	SyncSender
	conn *Conn
}

// NewSyncConn wraps c, already past the sync: handshake, as a SyncConn.
func (c *Conn) NewSyncConn() *SyncConn {
	return &SyncConn{SyncScanner: c.NewSyncScanner(), SyncSender: c.NewSyncSender(), conn: c}
}

func (s *SyncConn) Close() error {
	return s.conn.Close()
}

// SendOctetRequest writes tag(4) || len(4 LE u32) || path(len) — the
// request framing shared by STAT/LIST/RECV/SEND (spec.md §4.5).
func (s *SyncConn) SendOctetRequest(tag, path string) error {
	if err := s.SendBytes([]byte(tag)); err != nil {
		return err
	}
	return s.SendOctetString(path)
}

// ReadOctetRequestTag reads a 4-byte tag off the wire (spec.md §6: "SYNC
// tags (4 ASCII bytes)"). The adb package reads every STAT/LIST/RECV
// response tag with it; ReadStatus is used only for the final SEND status.
func (s *SyncConn) ReadOctetRequestTag() (string, error) {
	buf := make([]byte, 4)
	if err := s.ReadBytes(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// NewSyncScannerFromReader adapts any io.Reader into a SyncScanner,
// letting tests drive SYNC decoding without a real socket (used by
// MockServer).
func NewSyncScannerFromReader(r io.Reader) SyncScanner {
	return &realSyncScanner{conn: io.NopCloser(r)}
}

// NewSyncSenderFromWriter adapts any io.Writer into a SyncSender, for the
// same reason as NewSyncScannerFromReader.
func NewSyncSenderFromWriter(w io.Writer) SyncSender {
	return &realSyncSender{conn: w}
}

// realSyncScanner implements SyncScanner atop a net.Conn.
type realSyncScanner struct {
	conn io.ReadCloser
}

func (s *realSyncScanner) ReadBytes(buf []byte) error {
	_, err := io.ReadFull(s.conn, buf)
	if err != nil {
		return errors.WrapErrorf(err, errors.NetworkError, "error reading sync bytes")
	}
	return nil
}

func (s *realSyncScanner) ReadInt32() (int32, error) {
	buf := make([]byte, 4)
	if err := s.ReadBytes(buf); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

func (s *realSyncScanner) ReadFileMode() (os.FileMode, error) {
	v, err := s.ReadInt32()
	if err != nil {
		return 0, err
	}
	return os.FileMode(uint32(v)), nil
}

func (s *realSyncScanner) ReadTime() (time.Time, error) {
	v, err := s.ReadInt32()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0), nil
}

func (s *realSyncScanner) ReadString() (string, error) {
	length, err := s.ReadInt32()
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if length > 0 {
		if err := s.ReadBytes(buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

func (s *realSyncScanner) ReadStatus(req string) (string, error) {
	tag := make([]byte, 4)
	if err := s.ReadBytes(tag); err != nil {
		return "", err
	}
	switch string(tag) {
	case StatusSuccess:
		return StatusSuccess, nil
	case tagFail:
		msg, err := s.ReadString()
		if err != nil {
			return "", err
		}
		return "", errors.Errorf(errors.AdbError, "sync %s failed: %s", req, msg)
	default:
		return "", errors.Errorf(errors.ProtocolError, "unexpected sync status for %s: %q", req, string(tag))
	}
}

func (s *realSyncScanner) Close() error {
	if closer, ok := s.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// realSyncSender implements SyncSender atop a net.Conn.
type realSyncSender struct {
	conn io.Writer
}

func (s *realSyncSender) SendBytes(data []byte) error {
	_, err := s.conn.Write(data)
	if err != nil {
		return errors.WrapErrorf(err, errors.NetworkError, "error writing sync bytes")
	}
	return nil
}

func (s *realSyncSender) SendInt32(i int32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(i))
	return s.SendBytes(buf)
}

func (s *realSyncSender) SendFileMode(mode os.FileMode) error {
	return s.SendInt32(int32(mode))
}

func (s *realSyncSender) SendTime(t time.Time) error {
	return s.SendInt32(int32(t.Unix()))
}

func (s *realSyncSender) SendOctetString(str string) error {
	if err := s.SendInt32(int32(len(str))); err != nil {
		return err
	}
	return s.SendBytes([]byte(str))
}

func (s *realSyncSender) Close() error {
	if closer, ok := s.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// MaxSyncChunkSize is the largest DATA chunk this implementation ever sends
// or expects to receive in one piece (spec.md §4.5/§6).
const MaxSyncChunkSize = syncMaxChunkSize
