package adb

import (
	"fmt"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// Tcpip restarts adbd on the device listening over TCP/IP on port. Its
// reply carries no length header -- the caller reads until the connection
// closes, the same as Shell (spec.md §4.4/§9: "tcpip:<port>" is a
// read-until-close message; resolved Open Question: a response that does
// not start with "restarting" is a TCPIPEnableFailed error, not silently
// swallowed).
func (d *Device) Tcpip(port int) error {
	conn, err := d.dialDevice()
	if err != nil {
		return wrapClientError(err, d, "Tcpip")
	}
	defer conn.Close()

	req := fmt.Sprintf("tcpip:%d", port)
	if err := conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, d, "Tcpip")
	}
	if _, err := conn.ReadStatus(req); err != nil {
		return wrapClientError(err, d, "Tcpip")
	}
	resp, err := conn.ReadUntilEof()
	if err != nil {
		return wrapClientError(err, d, "Tcpip")
	}
	msg := strings.TrimSpace(string(resp))
	if !strings.HasPrefix(msg, "restarting") {
		return wrapClientError(errors.Errorf(errors.TCPIPEnableFailed, "unexpected tcpip response: %s", msg), d, "Tcpip")
	}
	return nil
}

// CreateConnection opens a raw, live stream to a device-local socket of the
// given NetworkType and address -- the stage-2 dial-through described in
// spec.md §4.4/§6 (e.g. NetTCP+"7912" to reach a device-local TCP server,
// or NetLocalAbstract+"foo" for an abstract Unix socket). The caller owns
// the returned connection.
func (d *Device) CreateConnection(netType NetworkType, addr string) (*wire.Conn, error) {
	conn, err := d.dialDevice()
	if err != nil {
		return nil, wrapClientError(err, d, "CreateConnection")
	}

	req := string(netType) + addr
	if err := conn.SendMessage([]byte(req)); err != nil {
		conn.Close()
		return nil, wrapClientError(err, d, "CreateConnection")
	}
	if _, err := conn.ReadStatus(req); err != nil {
		conn.Close()
		return nil, wrapClientError(err, d, "CreateConnection")
	}
	return conn, nil
}
