package adb

import (
	"encoding/binary"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adbkit/goadb/wire"
)

func le32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func newSyncDevice(syncResponse []byte) (*Device, *MockServer) {
	s := &MockServer{Status: wire.StatusSuccess}
	s.SyncResponse = syncResponse
	return (&Adb{s}).Device(DeviceWithSerial("emulator-5554")), s
}

// TestStatMissing exercises spec.md §9 scenario 3: a STAT response of all
// zeroes means the path doesn't exist.
func TestStatMissing(t *testing.T) {
	resp := append([]byte("STAT"), make([]byte, 12)...)
	dev, s := newSyncDevice(resp)

	info, err := dev.Stat("/nope")
	assert.NoError(t, err)
	assert.False(t, info.exists())
	assert.Equal(t, "host:transport:emulator-5554", s.Requests[0])
	assert.Equal(t, "sync:", s.Requests[1])
}

// TestStatExists exercises the mtime != 0 half of spec.md §9 scenario 3.
func TestStatExists(t *testing.T) {
	var resp []byte
	resp = append(resp, []byte("STAT")...)
	resp = append(resp, le32(0755)...)
	resp = append(resp, le32(0)...)
	resp = append(resp, le32(1)...)
	dev, _ := newSyncDevice(resp)

	info, err := dev.Stat("/exists")
	assert.NoError(t, err)
	assert.True(t, info.exists())
}

// TestListDecode exercises spec.md §9's "SYNC LIST decode" scenario
// exactly.
func TestListDecode(t *testing.T) {
	var resp []byte
	resp = append(resp, []byte("DENT")...)
	resp = append(resp, le32(0755)...)
	resp = append(resp, le32(0)...)
	resp = append(resp, le32(1710556393)...)
	resp = append(resp, le32(uint32(len(".studio")))...)
	resp = append(resp, []byte(".studio")...)
	resp = append(resp, []byte("DONE")...)
	resp = append(resp, make([]byte, 16)...)

	dev, _ := newSyncDevice(resp)
	entries, err := dev.List("/sdcard")
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
	assert.Equal(t, os.FileMode(0755), entries[0].Mode)
	assert.Equal(t, uint32(0), entries[0].Size)
	assert.Equal(t, ".studio", entries[0].Path)
}

// TestPullThreeChunks exercises spec.md §9 scenario 4.
func TestPullThreeChunks(t *testing.T) {
	var resp []byte
	resp = append(resp, []byte("DATA")...)
	resp = append(resp, le32(3)...)
	resp = append(resp, []byte("abc")...)
	resp = append(resp, []byte("DATA")...)
	resp = append(resp, le32(2)...)
	resp = append(resp, []byte("de")...)
	resp = append(resp, []byte("DONE")...)

	dev, _ := newSyncDevice(resp)
	r, err := dev.OpenRead("/sdcard/f")
	assert.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "abcde", string(data))
}

// TestPullFailMidStream exercises spec.md §9 scenario 5.
func TestPullFailMidStream(t *testing.T) {
	var resp []byte
	resp = append(resp, []byte("DATA")...)
	resp = append(resp, le32(2)...)
	resp = append(resp, []byte("ok")...)
	resp = append(resp, []byte("FAIL")...)
	resp = append(resp, le32(uint32(len("not allowed")))...)
	resp = append(resp, []byte("not allowed")...)

	dev, _ := newSyncDevice(resp)
	r, err := dev.OpenRead("/sdcard/f")
	assert.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 2)
	n, err := r.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "ok", string(buf[:n]))

	_, err = r.Read(buf)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}
