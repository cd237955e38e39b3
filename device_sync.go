package adb

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// MtimeOfClose tells OpenWrite to use the moment Close is called as a
// pushed file's modification time, instead of a caller-supplied time.
var MtimeOfClose = time.Time{}

// getSyncConn dials the device and switches the connection into SYNC mode
// (spec.md §4.5: "After sync:+OKAY the connection speaks a binary
// protocol"). Every SYNC operation gets its own fresh connection
// (spec.md §4.5 invariant); this is never cached or reused.
func (d *Device) getSyncConn() (*wire.SyncConn, error) {
	conn, err := d.dialDevice()
	if err != nil {
		return nil, err
	}
	if err := wire.SendMessageString(conn, "sync:"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.ReadStatus("sync:"); err != nil {
		conn.Close()
		return nil, err
	}
	return conn.NewSyncConn(), nil
}

// stat issues a STAT request and decodes its 12-byte response
// (spec.md §4.5/§6: "STAT binary layout").
func stat(conn *wire.SyncConn, path string) (FileInfo, error) {
	if err := conn.SendOctetRequest("STAT", path); err != nil {
		return FileInfo{}, err
	}
	tag, err := conn.ReadOctetRequestTag()
	if err != nil {
		return FileInfo{}, err
	}
	if tag != "STAT" {
		return FileInfo{}, errors.Errorf(errors.ProtocolError, "expected STAT response, got %q", tag)
	}
	mode, err := conn.ReadFileMode()
	if err != nil {
		return FileInfo{}, err
	}
	size, err := conn.ReadInt32()
	if err != nil {
		return FileInfo{}, err
	}
	mtime, err := conn.ReadTime()
	if err != nil {
		return FileInfo{}, err
	}
	info := FileInfo{Mode: mode, Size: uint32(size), Path: path}
	// mtime == 0 means "no such path" (spec.md §4.5/§8 "STAT decode").
	if mtime.Unix() != 0 {
		info.Mtime = mtime
	}
	return info, nil
}

// Stat runs SYNC STAT on path (spec.md §4.6: "stat(path) -> FileInfo").
func (d *Device) Stat(path string) (FileInfo, error) {
	conn, err := d.getSyncConn()
	if err != nil {
		return FileInfo{}, wrapClientError(err, d, "Stat")
	}
	defer conn.Close()

	info, err := stat(conn, path)
	return info, wrapClientError(err, d, "Stat")
}

// Exists reports whether path exists on the device (spec.md §4.6:
// "exists()"; mtime == 0 means does-not-exist).
func (d *Device) Exists(path string) (bool, error) {
	info, err := d.Stat(path)
	if err != nil {
		return false, err
	}
	return info.exists(), nil
}

// listDirEntries issues a LIST request and decodes each DENT entry until
// DONE (spec.md §4.5/§9: the tag must be checked explicitly; only DENT is
// an entry, anything else that isn't DONE is a protocol error).
func listDirEntries(conn *wire.SyncConn, path string) ([]FileInfo, error) {
	if err := conn.SendOctetRequest("LIST", path); err != nil {
		return nil, err
	}
	var entries []FileInfo
	for {
		tag, err := conn.ReadOctetRequestTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case "DENT":
			mode, err := conn.ReadFileMode()
			if err != nil {
				return nil, err
			}
			size, err := conn.ReadInt32()
			if err != nil {
				return nil, err
			}
			mtime, err := conn.ReadTime()
			if err != nil {
				return nil, err
			}
			name, err := conn.ReadString()
			if err != nil {
				return nil, err
			}
			entries = append(entries, FileInfo{Mode: mode, Size: uint32(size), Mtime: mtime, Path: name})
		case "DONE":
			// DONE is followed by 16 zero bytes (spec.md §9 "SYNC LIST
			// decode" scenario).
			drain := make([]byte, 16)
			if err := conn.ReadBytes(drain); err != nil {
				return nil, err
			}
			return entries, nil
		default:
			return nil, errors.Errorf(errors.ProtocolError, "unexpected LIST tag: %q", tag)
		}
	}
}

// List runs SYNC LIST on path (spec.md §4.6: "list(path) -> [FileInfo]").
func (d *Device) List(path string) ([]FileInfo, error) {
	conn, err := d.getSyncConn()
	if err != nil {
		return nil, wrapClientError(err, d, "List")
	}
	defer conn.Close()

	entries, err := listDirEntries(conn, path)
	return entries, wrapClientError(err, d, "List")
}

// IterDirectory is a callback-based variant of List for large directories;
// the connection is held open only for the duration of the call
// (spec.md §9: "Iterators that own a connection").
func (d *Device) IterDirectory(path string, fn func(FileInfo) (stop bool)) error {
	entries, err := d.List(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if fn(e) {
			break
		}
	}
	return nil
}

// syncChunkReader adapts the RECV chunk loop to io.Reader, terminating the
// stream on DONE or a FAIL message (spec.md §4.5 "Server -> client chunks
// (RECV)", §7 propagation policy: "previously-yielded chunks remain
// valid").
type syncChunkReader struct {
	conn    *wire.SyncConn
	pending []byte
	done    bool
	err     error
}

func receiveFile(conn *wire.SyncConn, path string) (io.ReadCloser, error) {
	if err := conn.SendOctetRequest("RECV", path); err != nil {
		conn.Close()
		return nil, err
	}
	return &syncChunkReader{conn: conn}, nil
}

func (r *syncChunkReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			if r.err != nil {
				return 0, r.err
			}
			return 0, io.EOF
		}
		tag, err := r.conn.ReadOctetRequestTag()
		if err != nil {
			r.done = true
			r.err = err
			return 0, err
		}
		switch tag {
		case "DATA":
			size, err := r.conn.ReadInt32()
			if err != nil {
				r.done = true
				r.err = err
				return 0, err
			}
			if size < 0 || size > wire.MaxSyncChunkSize {
				r.done = true
				r.err = errors.Errorf(errors.ProtocolError, "sync DATA chunk too large: %d", size)
				return 0, r.err
			}
			buf := make([]byte, size)
			if err := r.conn.ReadBytes(buf); err != nil {
				r.done = true
				r.err = err
				return 0, err
			}
			r.pending = buf
		case "DONE":
			r.done = true
		case "FAIL":
			msg, err := r.conn.ReadString()
			r.done = true
			if err != nil {
				r.err = err
			} else {
				r.err = errors.Errorf(errors.AdbError, "sync RECV failed: %s", msg)
			}
		default:
			r.done = true
			r.err = errors.Errorf(errors.ProtocolError, "unexpected sync chunk tag: %q", tag)
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *syncChunkReader) Close() error {
	return r.conn.Close()
}

// OpenRead opens path for SYNC RECV streaming (spec.md §4.6:
// "push/pull" -- the RECV half; "iter_content" in §8).
func (d *Device) OpenRead(path string) (io.ReadCloser, error) {
	conn, err := d.getSyncConn()
	if err != nil {
		return nil, wrapClientError(err, d, "OpenRead")
	}
	r, err := receiveFile(conn, path)
	return r, wrapClientError(err, d, "OpenRead")
}

// Pull copies remotePath to a local file at localPath, returning the
// number of bytes written (spec.md §4.6: "pull(remote, local-path) ->
// bytes-written", §8 scenario 4 "pull 3 chunks").
func (d *Device) Pull(remotePath, localPath string) (int64, error) {
	info, err := d.Stat(remotePath)
	if err != nil {
		return 0, err
	}
	if !info.exists() {
		return 0, wrapClientError(errors.Errorf(errors.FileNoExistError, "%s does not exist on device", remotePath), d, "Pull")
	}

	remote, err := d.OpenRead(remotePath)
	if err != nil {
		return 0, err
	}
	defer remote.Close()

	local, err := os.Create(localPath)
	if err != nil {
		return 0, wrapClientError(errors.WrapErrorf(err, errors.PermissionError, "creating local file %s", localPath), d, "Pull")
	}
	defer local.Close()

	n, err := io.Copy(local, remote)
	if err != nil {
		return n, wrapClientError(err, d, "Pull")
	}
	return n, nil
}

// ReadText is a small convenience over OpenRead for text files
// (spec.md §8 "Public API surface": "read_text").
func (d *Device) ReadText(remotePath string) (string, error) {
	r, err := d.OpenRead(remotePath)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", wrapClientError(err, d, "ReadText")
	}
	return string(data), nil
}

// syncChunkWriter implements the SEND half of SYNC: path+mode header,
// chunked DATA writes bounded at 64KiB, DONE+mtime, then a final status
// check (spec.md §4.5 "SEND (push)").
type syncChunkWriter struct {
	conn   *wire.SyncConn
	mtime  time.Time
	closed bool
}

func sendFile(conn *wire.SyncConn, path string, perms os.FileMode, mtime time.Time) (io.WriteCloser, error) {
	header := path + "," + modeSuffix(perms)
	if err := conn.SendOctetRequest("SEND", header); err != nil {
		conn.Close()
		return nil, err
	}
	return &syncChunkWriter{conn: conn, mtime: mtime}, nil
}

func modeSuffix(perms os.FileMode) string {
	return strconv.Itoa(int(perms.Perm()))
}

func (w *syncChunkWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > wire.MaxSyncChunkSize {
			chunk = chunk[:wire.MaxSyncChunkSize]
		}
		if err := w.conn.SendBytes([]byte("DATA")); err != nil {
			return written, err
		}
		if err := w.conn.SendInt32(int32(len(chunk))); err != nil {
			return written, err
		}
		if err := w.conn.SendBytes(chunk); err != nil {
			return written, err
		}
		written += len(chunk)
		p = p[len(chunk):]
	}
	return written, nil
}

func (w *syncChunkWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.conn.Close()

	mtime := w.mtime
	if mtime.IsZero() {
		mtime = time.Now()
	}
	if err := w.conn.SendBytes([]byte("DONE")); err != nil {
		return err
	}
	if err := w.conn.SendTime(mtime); err != nil {
		return err
	}
	_, err := w.conn.ReadStatus("SEND")
	return err
}

// OpenWrite opens remotePath for SYNC SEND streaming, creating it with
// perms and setting its mtime to mtime on Close (MtimeOfClose to use the
// close time instead) (spec.md §4.5 "SEND (push)").
func (d *Device) OpenWrite(remotePath string, perms os.FileMode, mtime time.Time) (io.WriteCloser, error) {
	conn, err := d.getSyncConn()
	if err != nil {
		return nil, wrapClientError(err, d, "OpenWrite")
	}
	w, err := sendFile(conn, remotePath, perms, mtime)
	return w, wrapClientError(err, d, "OpenWrite")
}
