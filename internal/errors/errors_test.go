package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorfNoCause(t *testing.T) {
	err := Errorf(ParseError, "bad value %d", 5)
	e := err.(*Err)
	assert.Equal(t, ParseError, e.Code)
	assert.Equal(t, "bad value 5", e.Message)
	assert.Nil(t, e.Cause)
	assert.Equal(t, "ParseError: bad value 5", err.Error())
}

func TestWrapErrorfPreservesFormatCode(t *testing.T) {
	cause := errors.New("boom")
	err := WrapErrorf(cause, NetworkError, "dialing %s", "host:1")
	e := err.(*Err)
	assert.Equal(t, NetworkError, e.Code)
	assert.Equal(t, cause, e.Cause)
	assert.Equal(t, "NetworkError: dialing host:1: boom", err.Error())
}

func TestWrapErrfPreservesInnerCode(t *testing.T) {
	inner := Errorf(DeviceNotFound, "no such device")
	wrapped := WrapErrf(inner, "Device(%s)", "serial")
	assert.True(t, HasErrCode(wrapped, DeviceNotFound))
}

func TestWrapErrfNilIsNil(t *testing.T) {
	assert.Nil(t, WrapErrf(nil, "Foo(%s)", "x"))
}

func TestHasErrCodeWalksCauseChain(t *testing.T) {
	inner := Errorf(FileNoExistError, "no such file")
	outer := WrapErrorf(inner, NetworkError, "pull failed")
	assert.True(t, HasErrCode(outer, NetworkError))
	assert.True(t, HasErrCode(outer, FileNoExistError))
	assert.False(t, HasErrCode(outer, AdbError))
}

func TestHasErrCodeNonErrType(t *testing.T) {
	assert.False(t, HasErrCode(errors.New("plain"), ParseError))
}

func TestErrorWithCauseChainNil(t *testing.T) {
	assert.Equal(t, "", ErrorWithCauseChain(nil))
}

func TestErrorWithCauseChain(t *testing.T) {
	inner := Errorf(FileNoExistError, "no such file")
	outer := WrapErrorf(inner, NetworkError, "pull failed")
	chain := ErrorWithCauseChain(outer)
	assert.Contains(t, chain, "NetworkError: pull failed")
	assert.Contains(t, chain, "caused by: FileNoExistError: no such file")
}

func TestAssertionErrorf(t *testing.T) {
	err := AssertionErrorf("command cannot be empty")
	assert.Equal(t, AssertionError, err.(*Err).Code)
}

func TestErrCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "UnknownError", ErrCode(999).String())
}
