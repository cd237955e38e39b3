package adb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adbkit/goadb/internal/errors"
	"github.com/adbkit/goadb/wire"
)

func TestGetAttribute(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"value"},
	}
	client := (&Adb{s}).Device(DeviceWithSerial("serial"))

	v, err := client.getAttribute("attr")
	assert.Equal(t, "host-serial:serial:attr", s.Requests[0])
	assert.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestGetDeviceInfo(t *testing.T) {
	deviceLister := func() ([]*DeviceInfo, error) {
		return []*DeviceInfo{
			{Serial: "abc", ServerAddr: "Foo"},
			{Serial: "def", ServerAddr: "Bar"},
		}, nil
	}

	client := newDeviceClientWithDeviceLister("abc", deviceLister)
	device, err := client.DeviceInfo()
	assert.NoError(t, err)
	assert.Equal(t, "Foo", device.ServerAddr)

	client = newDeviceClientWithDeviceLister("def", deviceLister)
	device, err = client.DeviceInfo()
	assert.NoError(t, err)
	assert.Equal(t, "Bar", device.ServerAddr)

	client = newDeviceClientWithDeviceLister("serial", deviceLister)
	device, err = client.DeviceInfo()
	assert.True(t, errors.HasErrCode(err, errors.DeviceNotFound))
	assert.Nil(t, device)
}

func newDeviceClientWithDeviceLister(serial string, deviceLister func() ([]*DeviceInfo, error)) *Device {
	client := (&Adb{&MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{serial},
	}}).Device(DeviceWithSerial(serial))
	client.deviceListFunc = deviceLister
	return client
}

func TestShellNoArgs(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"output"},
	}
	client := (&Adb{s}).Device(AnyDevice())

	v, err := client.Shell("cmd")
	assert.Equal(t, "host:transport-any", s.Requests[0])
	assert.Equal(t, "shell:cmd", s.Requests[1])
	assert.NoError(t, err)
	assert.Equal(t, "output", v)
}

func TestShellCrLfTranslation(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"line one\r\nline two\r\n"},
	}
	client := (&Adb{s}).Device(AnyDevice())

	v, err := client.Shell("cmd")
	assert.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", v)
}

func TestForward(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{""},
	}
	client := (&Adb{s}).Device(DeviceWithSerial("abc"))
	err := client.Forward("tcp:8999", "localabstract:demo", false)
	assert.Equal(t, "host-serial:abc:forward:tcp:8999;localabstract:demo", s.Requests[0])
	assert.NoError(t, err)
}

func TestForwardList(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"serial tcp:8999 tcp:d1\nabc tcp:8994 udp:d2\nabc tcp:8995 udp:d3"},
	}
	client := (&Adb{s}).Device(DeviceWithSerial("abc"))
	fws, err := client.ForwardList()
	assert.NoError(t, err)
	assert.Equal(t, "host-serial:abc:list-forward", s.Requests[0])
	assert.Equal(t, 3, len(fws))
	assert.Equal(t, "abc", fws[1].Serial)
	assert.Equal(t, "tcp:8994", fws[1].Local)
	assert.Equal(t, "udp:d2", fws[1].Remote)
	assert.Equal(t, "udp:d3", fws[2].Remote)
}

func TestForwardRemove(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{""},
	}
	client := (&Adb{s}).Device(DeviceWithSerial("abc"))
	err := client.ForwardRemove("tcp:8999")
	assert.Equal(t, "host-serial:abc:killforward:tcp:8999", s.Requests[0])
	assert.NoError(t, err)
}

func TestForwardRemoveAll(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{""},
	}
	client := (&Adb{s}).Device(DeviceWithSerial("abc"))
	err := client.ForwardRemoveAll()
	assert.Equal(t, "host-serial:abc:killforward-all", s.Requests[0])
	assert.NoError(t, err)
}

func TestProperties(t *testing.T) {
	s := &MockServer{
		Status:   wire.StatusSuccess,
		Messages: []string{"[wifi.interface]: [wlan0]\r\n[wlan.driver.ath]: [0]\r\n"},
	}
	client := (&Adb{s}).Device(AnyDevice())
	props, err := client.Properties()
	assert.NoError(t, err)
	assert.Equal(t, 2, len(props))
	assert.Equal(t, "wlan0", props["wifi.interface"])
	assert.Equal(t, "0", props["wlan.driver.ath"])
}

func TestPrepareCommandLineNoArgs(t *testing.T) {
	result, err := prepareCommandLine("cmd")
	assert.NoError(t, err)
	assert.Equal(t, "cmd", result)
}

func TestPrepareCommandLineEmptyCommand(t *testing.T) {
	_, err := prepareCommandLine("")
	assert.Equal(t, errors.AssertionError, code(err))
	assert.Equal(t, "command cannot be empty", message(err))
}

func TestPrepareCommandLineBlankCommand(t *testing.T) {
	_, err := prepareCommandLine("  ")
	assert.Equal(t, errors.AssertionError, code(err))
	assert.Equal(t, "command cannot be empty", message(err))
}

func TestPrepareCommandLineCleanArgs(t *testing.T) {
	result, err := prepareCommandLine("cmd", "arg1", "arg2")
	assert.NoError(t, err)
	assert.Equal(t, "cmd arg1 arg2", result)
}

func TestPrepareCommandLineArgWithWhitespaceQuotes(t *testing.T) {
	result, err := prepareCommandLine("cmd", "arg with spaces")
	assert.NoError(t, err)
	assert.Equal(t, `cmd "arg with spaces"`, result)
}

func code(err error) errors.ErrCode {
	return err.(*errors.Err).Code
}

func message(err error) string {
	return err.(*errors.Err).Message
}
