package adb

import (
	"io"
	"os"
	"sync/atomic"

	pb "github.com/cheggaaa/pb/v2"
)

// AsyncWriter drives a background push of a local file to a device path,
// reporting progress over channels instead of blocking the caller until
// completion (spec.md §5 "cooperative facade"; grounded in the pack's own
// asyncwriter_test.go). Construct one with Device.DoSyncLocalFile.
type AsyncWriter struct {
	// C fires every time a chunk is flushed to the device.
	C chan struct{}
	// DoneCopy fires once the local file has been fully read and written.
	DoneCopy chan struct{}
	// Done fires once the remote file's mtime/permissions have been
	// finalized and the sync connection closed -- the operation is
	// complete only after this fires.
	Done chan struct{}

	// TotalSize is the local file's size in bytes, known up front.
	TotalSize int64

	bar  *pb.ProgressBar
	done int64
	err  atomic.Value
}

// BytesCompleted returns the number of bytes written to the device so far.
func (w *AsyncWriter) BytesCompleted() int64 {
	return atomic.LoadInt64(&w.done)
}

// Progress returns the fraction, in [0,1], of TotalSize written so far.
func (w *AsyncWriter) Progress() float64 {
	if w.TotalSize == 0 {
		return 1
	}
	return float64(w.BytesCompleted()) / float64(w.TotalSize)
}

// Err returns the error the background copy failed with, if any. Only
// meaningful after Done fires.
func (w *AsyncWriter) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

func (w *AsyncWriter) setErr(err error) {
	if err != nil {
		w.err.Store(err)
	}
}

// progressReportingWriter wraps the SYNC writer returned by OpenWrite,
// bumping AsyncWriter's counters and firing C after each chunk.
type progressReportingWriter struct {
	io.WriteCloser
	aw *AsyncWriter
}

func (p *progressReportingWriter) Write(buf []byte) (int, error) {
	n, err := p.WriteCloser.Write(buf)
	if n > 0 {
		atomic.AddInt64(&p.aw.done, int64(n))
		if p.aw.bar != nil {
			p.aw.bar.Add(n)
		}
		select {
		case p.aw.C <- struct{}{}:
		default:
		}
	}
	return n, err
}

// DoSyncLocalFile pushes localPath to remotePath on the device in a
// background goroutine, returning immediately with an AsyncWriter the
// caller can select on for progress (spec.md EXPANSION: async push,
// grounded in the pack's asyncwriter_test.go ExampleDoSyncLocalFile).
func (d *Device) DoSyncLocalFile(remotePath, localPath string, perms os.FileMode) (*AsyncWriter, error) {
	local, err := os.Open(localPath)
	if err != nil {
		return nil, wrapClientError(err, d, "DoSyncLocalFile")
	}

	stat, err := local.Stat()
	if err != nil {
		local.Close()
		return nil, wrapClientError(err, d, "DoSyncLocalFile")
	}

	remote, err := d.OpenWrite(remotePath, perms, MtimeOfClose)
	if err != nil {
		local.Close()
		return nil, err
	}

	aw := &AsyncWriter{
		C:         make(chan struct{}, 1),
		DoneCopy:  make(chan struct{}),
		Done:      make(chan struct{}),
		TotalSize: stat.Size(),
		bar:       pb.New64(stat.Size()),
	}

	pw := &progressReportingWriter{WriteCloser: remote, aw: aw}

	go func() {
		defer local.Close()
		defer close(aw.Done)

		_, copyErr := io.Copy(pw, local)
		close(aw.DoneCopy)

		closeErr := remote.Close()
		if copyErr != nil {
			aw.setErr(copyErr)
		} else if closeErr != nil {
			aw.setErr(closeErr)
		}
	}()

	return aw, nil
}
