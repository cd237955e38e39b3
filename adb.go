/*
Package adb implements a client for the ADB host/device wire protocol
(spec.md). Adb talks to host-scope services on a local adb server; call
Device to get a Device bound to one attached device and to the session-,
sync-, and shell-level operations layered on top (spec.md §4.4-§4.6).

Eg.

	client, _ := adb.New()
	client.ListDevices()

See the list of host services at
https://android.googlesource.com/platform/system/core/+/master/adb/SERVICES.TXT.
*/
package adb

import (
	"strconv"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// Adb communicates with host services on the adb server (spec.md §4.3, L3).
type Adb struct {
	server server
}

// New creates a new Adb client using the default server address
// (127.0.0.1:5037).
func New() (*Adb, error) {
	return NewWithConfig(ServerConfig{})
}

// NewWithConfig creates a new Adb client using config.
func NewWithConfig(config ServerConfig) (*Adb, error) {
	srv, err := newServer(config)
	if err != nil {
		return nil, err
	}
	return &Adb{srv}, nil
}

// Dial opens a fresh connection to the adb server. Most callers don't need
// this directly; it's exposed for callers issuing raw host commands spec.md
// doesn't otherwise name.
func (c *Adb) Dial() (*wire.Conn, error) {
	return c.server.Dial()
}

// StartServer starts the adb server if it isn't already running.
func (c *Adb) StartServer() error {
	return c.server.Start()
}

// Device returns a Device bound to descriptor, sharing this Adb's server
// connection settings.
func (c *Adb) Device(descriptor DeviceDescriptor) *Device {
	return &Device{
		server:         c.server,
		descriptor:     descriptor,
		deviceListFunc: c.ListDevices,
	}
}

// NewDeviceWatcher starts a DeviceWatcher polling this server's device list
// (spec.md EXPANSION: DeviceWatcher).
func (c *Adb) NewDeviceWatcher() *DeviceWatcher {
	return newDeviceWatcher(c.server)
}

// ServerVersion asks the adb server for its internal protocol version
// (spec.md §4.3: "host:version").
func (c *Adb) ServerVersion() (int, error) {
	resp, err := roundTripSingleResponse(c.server, "host:version")
	if err != nil {
		return 0, wrapClientError(err, c, "ServerVersion")
	}
	version, err := parseServerVersion(resp)
	if err != nil {
		return 0, wrapClientError(err, c, "ServerVersion")
	}
	return version, nil
}

// KillServer tells the adb server to quit immediately (spec.md §4.3:
// "host:kill"). Corresponds to "adb kill-server".
func (c *Adb) KillServer() error {
	conn, err := c.server.Dial()
	if err != nil {
		return wrapClientError(err, c, "KillServer")
	}
	defer conn.Close()

	if err = wire.SendMessageString(conn, "host:kill"); err != nil {
		return wrapClientError(err, c, "KillServer")
	}
	return nil
}

// ListDeviceSerials returns the serial numbers of all attached devices
// (spec.md §4.3: "host:devices"). Corresponds to "adb devices".
func (c *Adb) ListDeviceSerials() ([]string, error) {
	devices, err := c.ListDevices()
	if err != nil {
		return nil, err
	}
	serials := make([]string, len(devices))
	for i, d := range devices {
		serials[i] = d.Serial
	}
	return serials, nil
}

// ListDevices returns the list of connected devices (spec.md §4.3/§8
// scenario 1). Corresponds to "adb devices".
func (c *Adb) ListDevices() ([]*DeviceInfo, error) {
	resp, err := roundTripSingleResponse(c.server, "host:devices")
	if err != nil {
		return nil, wrapClientError(err, c, "ListDevices")
	}
	devices, err := parseDeviceList(string(resp))
	if err != nil {
		return nil, wrapClientError(err, c, "ListDevices")
	}
	return devices, nil
}

// IterDevices is a callback-based variant of ListDevices: it stops calling
// fn once fn returns false. The full device list is still fetched first.
func (c *Adb) IterDevices(fn func(*DeviceInfo) bool) error {
	devices, err := c.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		if !fn(d) {
			break
		}
	}
	return nil
}

// Connect connects the adb server to a device over TCP/IP (spec.md §4.3:
// "host:connect:<addr>"). Corresponds to "adb connect <addr>".
func (c *Adb) Connect(addr string) error {
	resp, err := roundTripSingleResponse(c.server, "host:connect:"+addr)
	if err != nil {
		return wrapClientError(err, c, "Connect")
	}
	msg := string(resp)
	if !strings.HasPrefix(msg, "connected to") && !strings.HasPrefix(msg, "already connected to") {
		return wrapClientError(errors.Errorf(errors.AdbError, "%s", msg), c, "Connect")
	}
	return nil
}

// Disconnect disconnects the adb server from a device previously connected
// via Connect (spec.md §4.3: "host:disconnect:<addr>").
func (c *Adb) Disconnect(addr string) error {
	resp, err := roundTripSingleResponse(c.server, "host:disconnect:"+addr)
	if err != nil {
		return wrapClientError(err, c, "Disconnect")
	}
	msg := string(resp)
	if !strings.HasPrefix(msg, "disconnected") {
		return wrapClientError(errors.Errorf(errors.AdbError, "%s", msg), c, "Disconnect")
	}
	return nil
}

func parseServerVersion(versionRaw []byte) (int, error) {
	versionStr := string(versionRaw)
	version, err := strconv.ParseInt(versionStr, 16, 32)
	if err != nil {
		return 0, errors.WrapErrorf(err, errors.ParseError, "error parsing server version: %s", versionStr)
	}
	return int(version), nil
}

// roundTripSingleResponse sends req on a fresh connection and returns the
// single length-prefixed response message (spec.md §4.3: host-scope
// commands are one request/response on a fresh connection).
func roundTripSingleResponse(s server, req string) ([]byte, error) {
	conn, err := s.Dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.RoundTripSingleResponse([]byte(req))
}

// roundTripSingleNoResponse sends req on a fresh connection, checks the
// status, and discards any response body.
func roundTripSingleNoResponse(s server, req string) error {
	conn, err := s.Dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SendMessage([]byte(req)); err != nil {
		return err
	}
	_, err = conn.ReadStatus(req)
	return err
}

// wrapClientError wraps err with the calling method's name and the client's
// string form, matching the pack's wrapClientError convention
// (device.go/adb.go in every fork).
func wrapClientError(err error, c interface{ String() string }, method string) error {
	if err == nil {
		return nil
	}
	return errors.WrapErrf(err, "%s(%s)", method, c.String())
}

func (c *Adb) String() string {
	return "Adb"
}
