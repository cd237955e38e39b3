package wire

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeNetConn adapts a *bytes.Buffer to the net.Conn interface, enough to
// drive realScanner/realSender in isolation without a real socket.
type fakeNetConn struct {
	*bytes.Buffer
}

func (fakeNetConn) Close() error                      { return nil }
func (fakeNetConn) LocalAddr() net.Addr                { return nil }
func (fakeNetConn) RemoteAddr() net.Addr               { return nil }
func (fakeNetConn) SetDeadline(t time.Time) error      { return nil }
func (fakeNetConn) SetReadDeadline(t time.Time) error  { return nil }
func (fakeNetConn) SetWriteDeadline(t time.Time) error { return nil }

func newFakeConn(serverReply string) (Scanner, Sender, *bytes.Buffer) {
	written := &bytes.Buffer{}
	r := bytes.NewBufferString(serverReply)
	return &realScanner{fakeNetConn{r}}, &realSender{fakeNetConn{written}}, written
}

func TestRoundTripSingleResponse(t *testing.T) {
	scanner, sender, written := newFakeConn("OKAY0005hello")
	conn := NewConn(scanner, sender)

	resp, err := conn.RoundTripSingleResponse([]byte("host:version"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(resp))
	assert.Equal(t, "000chost:version", written.String())
}

func TestRoundTripFailureResponse(t *testing.T) {
	scanner, sender, _ := newFakeConn("FAIL000eno such device")
	conn := NewConn(scanner, sender)

	_, err := conn.RoundTripSingleResponse([]byte("host:transport:x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such device")
}

func TestSendMessageStringWritesHexLength(t *testing.T) {
	scanner, sender, written := newFakeConn("")
	_ = scanner
	err := SendMessageString(sender, "shell:echo hi")
	assert.NoError(t, err)
	assert.Equal(t, "000dshell:echo hi", written.String())
}
