package adb

import (
	"fmt"
	"net"

	"github.com/adbkit/goadb/internal/errors"
)

// ForwardSpec formats one side of a forward/reverse mapping, e.g.
// "tcp:6800" or "localabstract:foo" (spec.md §4.3 "forward:<local>;<remote>").
func ForwardSpec(netType NetworkType, addr string) string {
	return string(netType) + addr
}

// Forward sets up "adb forward <local> <remote>": connections to local on
// the host are relayed to remote on the device (spec.md §4.3:
// "host-serial:<serial>:forward:<local>;<remote>").
func (d *Device) Forward(local, remote string, noRebind bool) error {
	req := fmt.Sprintf("%s:forward", d.descriptor.getHostPrefix())
	if noRebind {
		req += ":norebind"
	}
	req += ":" + local + ";" + remote
	err := roundTripSingleNoResponse(d.server, req)
	return wrapClientError(err, d, "Forward")
}

// ForwardToFreePort sets up a forward from a free local TCP port to remote,
// returning the chosen local address (SPEC_FULL.md "Supplemented
// features": the pack's "forward to any free port" convenience, grounded
// in the 0-port net.Listen idiom used across the examples' test helpers).
func (d *Device) ForwardToFreePort(remote string) (string, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", wrapClientError(errors.WrapErrorf(err, errors.NetworkError, "allocating free local port"), d, "ForwardToFreePort")
	}
	local := lis.Addr().String()
	lis.Close()

	if err := d.Forward("tcp:"+portOf(local), remote, false); err != nil {
		return "", err
	}
	return local, nil
}

func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return port
}

// ForwardRemotePort returns the local port already forwarded to
// remotePort on this device, reusing an existing mapping instead of
// opening a new one (spec.md §9 scenario 6: "forward_remote_port reuse").
// If no such mapping exists, one is created via ForwardToFreePort. For a
// device selected by serial, only mappings listed under that serial are
// reused; for other descriptors the listed serial is not compared.
func (d *Device) ForwardRemotePort(remotePort int) (int, error) {
	remote := fmt.Sprintf("tcp:%d", remotePort)
	items, err := d.ForwardList()
	if err != nil {
		return 0, err
	}
	serial := d.descriptor.serial
	for _, item := range items {
		if item.Remote == remote && (serial == "" || item.Serial == serial) {
			port, err := parseTCPPort(item.Local)
			if err == nil {
				return port, nil
			}
		}
	}

	local, err := d.ForwardToFreePort(remote)
	if err != nil {
		return 0, err
	}
	return parseTCPPort("tcp:" + portOf(local))
}

func parseTCPPort(spec string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(spec, "tcp:%d", &port); err != nil {
		return 0, errors.Errorf(errors.ParseError, "invalid tcp forward spec: %q", spec)
	}
	return port, nil
}

// ForwardRemove tears down a single forward ("adb forward --remove <local>",
// spec.md §4.3: "host-serial:<serial>:killforward:<local>").
func (d *Device) ForwardRemove(local string) error {
	req := fmt.Sprintf("%s:killforward:%s", d.descriptor.getHostPrefix(), local)
	err := roundTripSingleNoResponse(d.server, req)
	return wrapClientError(err, d, "ForwardRemove")
}

// ForwardRemoveAll tears down every forward set up for this device ("adb
// forward --remove-all", spec.md §4.3: "host-serial:<serial>:killforward-all").
func (d *Device) ForwardRemoveAll() error {
	req := fmt.Sprintf("%s:killforward-all", d.descriptor.getHostPrefix())
	err := roundTripSingleNoResponse(d.server, req)
	return wrapClientError(err, d, "ForwardRemoveAll")
}

// ForwardList returns the forward mappings for this device ("adb forward
// --list", spec.md §4.3: "host-serial:<serial>:list-forward").
func (d *Device) ForwardList() ([]ForwardItem, error) {
	req := fmt.Sprintf("%s:list-forward", d.descriptor.getHostPrefix())
	resp, err := roundTripSingleResponse(d.server, req)
	if err != nil {
		return nil, wrapClientError(err, d, "ForwardList")
	}
	return parseForwardList(string(resp)), nil
}

// Reverse sets up "adb reverse <remote> <local>": connections to remote on
// the device are relayed to local on the host (spec.md EXPANSION/§9:
// reverse uses the device's transport, unlike forward's host-serial
// prefix, since the device must be live to accept the relayed connection).
func (d *Device) Reverse(remote, local string, noRebind bool) error {
	conn, err := d.dialDevice()
	if err != nil {
		return wrapClientError(err, d, "Reverse")
	}
	defer conn.Close()

	req := "reverse:forward"
	if noRebind {
		req += ":norebind"
	}
	req += ":" + remote + ";" + local
	resp, err := conn.RoundTripSingleResponse([]byte(req))
	if err != nil {
		return wrapClientError(err, d, "Reverse")
	}
	// Reverse acks with a second OKAY carrying an (often empty) response.
	_ = resp
	return nil
}

// ReverseRemove tears down a single reverse mapping.
func (d *Device) ReverseRemove(remote string) error {
	conn, err := d.dialDevice()
	if err != nil {
		return wrapClientError(err, d, "ReverseRemove")
	}
	defer conn.Close()

	req := "reverse:killforward:" + remote
	_, err = conn.RoundTripSingleResponse([]byte(req))
	return wrapClientError(err, d, "ReverseRemove")
}

// ReverseRemoveAll tears down every reverse mapping for this device.
func (d *Device) ReverseRemoveAll() error {
	conn, err := d.dialDevice()
	if err != nil {
		return wrapClientError(err, d, "ReverseRemoveAll")
	}
	defer conn.Close()

	_, err = conn.RoundTripSingleResponse([]byte("reverse:killforward-all"))
	return wrapClientError(err, d, "ReverseRemoveAll")
}
