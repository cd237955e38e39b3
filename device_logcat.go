package adb

import "io"

// defaultLogcatArgs is what runs when the caller supplies no extra_cmd
// (spec.md §4.6: "logcat" defaults to ["logcat", "-v", "time"]).
var defaultLogcatArgs = []string{"-v", "time"}

// Logcat streams "logcat", optionally clearing the buffer first, and
// returns the live, still-open connection to the caller (spec.md §4.6:
// "logcat"; spec.md §9 "Iterators that own a connection" -- the caller
// owns this stream until Close).
func (d *Device) Logcat(flush bool, extraArgs ...string) (io.ReadCloser, error) {
	if flush {
		if _, err := d.Shell("logcat", "-c"); err != nil {
			return nil, wrapClientError(err, d, "Logcat")
		}
	}
	args := extraArgs
	if len(args) == 0 {
		args = defaultLogcatArgs
	}
	return d.ShellStream("logcat", args...)
}

// LogcatLines streams Logcat line by line, calling fn for each line until
// fn returns true or the stream ends.
func (d *Device) LogcatLines(flush bool, extraArgs []string, fn func(line string) (stop bool)) error {
	stream, err := d.Logcat(flush, extraArgs...)
	if err != nil {
		return err
	}
	defer stream.Close()
	return bufferedLines(stream, fn)
}
