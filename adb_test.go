package adb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

// TestListDevices exercises spec.md §9 scenario 1.
func TestListDevices(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"emulator-5554\tdevice\nemulator-5556\toffline\n"},
	}
	client := &Adb{s}

	devices, err := client.ListDevices()
	assert.NoError(t, err)
	assert.Equal(t, "host:devices", s.Requests[0])
	assert.Equal(t, 2, len(devices))
	assert.Equal(t, "emulator-5554", devices[0].Serial)
	assert.Equal(t, DeviceState("device"), devices[0].State)
	assert.Equal(t, "emulator-5556", devices[1].Serial)
	assert.Equal(t, DeviceState("offline"), devices[1].State)
}

func TestListDeviceSerials(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"emulator-5554\tdevice\n"},
	}
	client := &Adb{s}

	serials, err := client.ListDeviceSerials()
	assert.NoError(t, err)
	assert.Equal(t, []string{"emulator-5554"}, serials)
}

func TestServerVersion(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"1f"},
	}
	client := &Adb{s}

	version, err := client.ServerVersion()
	assert.NoError(t, err)
	assert.Equal(t, "host:version", s.Requests[0])
	assert.Equal(t, 31, version)
}

func TestConnect(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"connected to 192.168.1.1:5555"},
	}
	client := &Adb{s}

	err := client.Connect("192.168.1.1:5555")
	assert.NoError(t, err)
	assert.Equal(t, "host:connect:192.168.1.1:5555", s.Requests[0])
}

func TestConnectFailureMessage(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"unable to connect to 192.168.1.1:5555"},
	}
	client := &Adb{s}

	err := client.Connect("192.168.1.1:5555")
	assert.True(t, errors.HasErrCode(err, errors.AdbError))
}

func TestDisconnect(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"disconnected 192.168.1.1:5555"},
	}
	client := &Adb{s}

	err := client.Disconnect("192.168.1.1:5555")
	assert.NoError(t, err)
	assert.Equal(t, "host:disconnect:192.168.1.1:5555", s.Requests[0])
}

func TestKillServer(t *testing.T) {
	s := &MockServer{Status: wire.StatusSuccess}
	client := &Adb{s}

	err := client.KillServer()
	assert.NoError(t, err)
	assert.Equal(t, "host:kill", s.Requests[0])
}

func TestIterDevicesStopsEarly(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"a\tdevice\nb\tdevice\nc\tdevice\n"},
	}
	client := &Adb{s}

	var seen []string
	err := client.IterDevices(func(d *DeviceInfo) bool {
		seen = append(seen, d.Serial)
		return d.Serial != "b"
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}
