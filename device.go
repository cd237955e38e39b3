package adb

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// Device communicates with a specific Android device (spec.md §4.4, L4).
// Get an instance by calling Device on an Adb client.
type Device struct {
	server     server
	descriptor DeviceDescriptor

	// deviceListFunc backs DeviceInfo(); adb doesn't provide a way to get
	// this for an individual device, so it's found by listing them all.
	deviceListFunc func() ([]*DeviceInfo, error)
}

func (d *Device) String() string {
	return d.descriptor.String()
}

// getAttribute runs "<host-prefix>:<attr>" on a fresh connection and
// returns the single response message (spec.md §4.3 sub-command row).
func (d *Device) getAttribute(attr string) (string, error) {
	resp, err := roundTripSingleResponse(d.server, fmt.Sprintf("%s:%s", d.descriptor.getHostPrefix(), attr))
	if err != nil {
		return "", err
	}
	return string(resp), nil
}

// Serial returns the device's serial number ("get-serialno").
func (d *Device) Serial() (string, error) {
	attr, err := d.getAttribute("get-serialno")
	return attr, wrapClientError(err, d, "Serial")
}

// DevicePath returns the device's USB/local bus path ("get-devpath").
func (d *Device) DevicePath() (string, error) {
	attr, err := d.getAttribute("get-devpath")
	return attr, wrapClientError(err, d, "DevicePath")
}

// State returns the device's connection state ("get-state").
func (d *Device) State() (DeviceState, error) {
	attr, err := d.getAttribute("get-state")
	return DeviceState(attr), wrapClientError(err, d, "State")
}

// GetFeatures returns the server-reported feature set ("get-features"),
// split on commas as adb itself does.
func (d *Device) GetFeatures() ([]string, error) {
	attr, err := d.getAttribute("get-features")
	if err != nil {
		return nil, wrapClientError(err, d, "GetFeatures")
	}
	var out []string
	for _, f := range strings.Split(attr, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

// DeviceInfo returns the DeviceInfo record for this device, found by
// listing all devices and matching on serial (adb doesn't expose a
// per-device lookup; spec.md §4.6).
func (d *Device) DeviceInfo() (*DeviceInfo, error) {
	serial, err := d.Serial()
	if err != nil {
		return nil, wrapClientError(err, d, "DeviceInfo(Serial)")
	}

	devices, err := d.deviceListFunc()
	if err != nil {
		return nil, wrapClientError(err, d, "DeviceInfo(ListDevices)")
	}

	for _, info := range devices {
		if info.Serial == serial {
			return info, nil
		}
	}

	err = errors.Errorf(errors.DeviceNotFound, "device list doesn't contain serial %s", serial)
	return nil, wrapClientError(err, d, "DeviceInfo")
}

// ShellExitError is returned by RunCommandWithExitCode when the remote
// command's exit code is non-zero.
type ShellExitError struct {
	Command  string
	ExitCode int
}

func (e ShellExitError) Error() string {
	return fmt.Sprintf("shell %q exited with code %d", e.Command, e.ExitCode)
}

// dialDevice opens a fresh connection and pins its transport to this
// device (spec.md §4.3 "Transport selection", §4.4).
func (d *Device) dialDevice() (*wire.Conn, error) {
	conn, err := d.server.Dial()
	if err != nil {
		return nil, err
	}

	req := d.descriptor.transportSelector()
	if err := conn.SendMessage([]byte(req)); err != nil {
		conn.Close()
		return nil, errors.WrapErrf(err, "error connecting to device '%s'", d.descriptor)
	}
	if _, err := conn.ReadStatus(req); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenCommand pins a transport and issues "shell:<cmd>", returning the
// live connection after OKAY (spec.md §4.4's "shell:<cmdline>" row). The
// caller owns the returned connection's lifetime.
func (d *Device) OpenCommand(cmd string, args ...string) (*wire.Conn, error) {
	line, err := prepareCommandLine(cmd, args...)
	if err != nil {
		return nil, wrapClientError(err, d, "OpenCommand")
	}
	conn, err := d.dialDevice()
	if err != nil {
		return nil, wrapClientError(err, d, "OpenCommand")
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	req := "shell:" + line
	// Shell responses don't carry a length header; the caller reads until
	// the stream closes, so RoundTripSingleResponse doesn't apply here.
	if err = conn.SendMessage([]byte(req)); err != nil {
		return nil, wrapClientError(err, d, "OpenCommand")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return nil, wrapClientError(err, d, "OpenCommand")
	}
	return conn, nil
}

// Shell runs cmd (with args quoted per spec.md §4.7) and returns its full
// output, read until the connection closes (spec.md §4.6: "shell(cmd) ->
// string").
func (d *Device) Shell(cmd string, args ...string) (string, error) {
	conn, err := d.OpenCommand(cmd, args...)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	resp, err := conn.ReadUntilEof()
	if err != nil {
		return "", wrapClientError(err, d, "Shell")
	}
	// adb's shell converts "\n" to "\r\n"; convert it back for text output.
	return strings.Replace(string(resp), "\r\n", "\n", -1), nil
}

// ShellStream runs cmd and hands the raw, still-open stdout+stderr stream
// to the caller (spec.md §4.6: "shell_stream(cmd)"). The caller must Close
// it.
func (d *Device) ShellStream(cmd string, args ...string) (io.ReadCloser, error) {
	conn, err := d.OpenCommand(cmd, args...)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ShellTrim runs Shell and trims trailing whitespace from its output
// (spec.md §4.6: "shell_trim").
func (d *Device) ShellTrim(cmd string, args ...string) (string, error) {
	out, err := d.Shell(cmd, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, " \t\r\n"), nil
}

// RunCommandWithExitCode runs cmd and recovers its exit code using the
// "; echo :$?" trick every fork in the pack relies on, since the adb shell
// service doesn't otherwise expose one (SPEC_FULL.md "Supplemented
// features").
func (d *Device) RunCommandWithExitCode(cmd string, args ...string) (string, int, error) {
	line, err := prepareCommandLine(cmd, args...)
	if err != nil {
		return "", 0, wrapClientError(err, d, "RunCommandWithExitCode")
	}
	// The suffix is appended after escaping so the shell sees ";" as a
	// separator and expands $?.
	out, err := d.Shell(line + "; echo :$?")
	if err != nil {
		return out, 0, err
	}
	idx := strings.LastIndexByte(out, ':')
	if idx == -1 {
		return out, 0, wrapClientError(
			errors.Errorf(errors.ParseError, "could not parse exit code from shell output"), d, "RunCommandWithExitCode")
	}
	exitCode, _ := strconv.Atoi(strings.TrimSpace(out[idx+1:]))
	outStr := out[:idx]
	if exitCode != 0 {
		err = ShellExitError{strings.Join(append([]string{cmd}, args...), " "), exitCode}
	}
	return outStr, exitCode, err
}

// Remount asks adbd to remount the device's filesystem read-write
// (spec.md EXPANSION: "Remount"; SERVICES.TXT's "remount").
func (d *Device) Remount() (string, error) {
	conn, err := d.dialDevice()
	if err != nil {
		return "", wrapClientError(err, d, "Remount")
	}
	defer conn.Close()

	resp, err := conn.RoundTripSingleResponse([]byte("remount"))
	return string(resp), wrapClientError(err, d, "Remount")
}

var propLineRe = regexp.MustCompile(`\[(.*?)\]:\s*\[(.*?)\]`)

// Properties runs "getprop" and parses its "[key]: [value]" output into a
// map (spec.md §3: "Properties are populated lazily by getprop").
func (d *Device) Properties() (map[string]string, error) {
	out, err := d.Shell("getprop")
	if err != nil {
		return nil, wrapClientError(err, d, "Properties")
	}
	props := make(map[string]string)
	for _, m := range propLineRe.FindAllStringSubmatch(out, -1) {
		props[m[1]] = m[2]
	}
	return props, nil
}

// getprop reads a single property, trimmed (used by the Get* wrappers in
// device_input.go).
func (d *Device) getprop(key string) (string, error) {
	out, err := d.ShellTrim("getprop", key)
	if err != nil {
		return "", err
	}
	return out, nil
}

// prepareCommandLine validates the command and argument strings, quotes
// arguments if required, and joins them into a single command string
// (spec.md §4.6: "shell:<cmdline> payload is not re-escaped by the
// server -- callers must pre-escape").
func prepareCommandLine(cmd string, args ...string) (string, error) {
	if strings.TrimSpace(cmd) == "" {
		return "", errors.AssertionErrorf("command cannot be empty")
	}
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = EscapeArg(a)
	}
	if len(escaped) == 0 {
		return cmd, nil
	}
	return cmd + " " + strings.Join(escaped, " "), nil
}

// bufferedLines is a small helper used by LogcatLines: read lines off r
// until EOF, calling fn for each.
func bufferedLines(r io.Reader, fn func(line string) (stop bool)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if fn(strings.TrimRight(line, "\r\n")) {
				return nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
