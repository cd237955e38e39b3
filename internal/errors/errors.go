// Package errors defines the single typed error used throughout goadb.
//
// Errors from device and server operations are *Err values, carrying a
// coarse ErrCode a caller can switch on, a human message, and (optionally)
// the underlying cause for debugging.
package errors

import "fmt"

// ErrCode classifies an Err. Names match the failure kinds in spec.md §7.
type ErrCode int

const (
	// AssertionError indicates a violated precondition, e.g. an empty command.
	AssertionError ErrCode = iota + 1

	// ParseError indicates malformed server text that could not be parsed
	// (a version string, a device-list line, a forward-list line).
	ParseError

	// NetworkError wraps a generic underlying I/O failure (spec.md: network-error).
	NetworkError

	// ConnectionResetError indicates the adb server closed the connection unexpectedly.
	ConnectionResetError

	// ServerNotAvailable indicates the adb server could not be reached even
	// after the start-server recovery attempt (spec.md: connection-failed).
	ServerNotAvailable

	// DeviceNotFound indicates a serial/transport_id absent from host:devices,
	// or an ambiguous device selection (spec.md: device-not-found).
	DeviceNotFound

	// AdbError wraps a FAIL response from the adb server (spec.md: command-failed).
	AdbError

	// ApplicationError indicates an install/uninstall/app_info failure
	// (spec.md: application-error).
	ApplicationError

	// FileNoExistError indicates a SYNC STAT with mtime == 0 (spec.md §4.5/§4.6).
	FileNoExistError

	// TCPIPEnableFailed indicates the tcpip: stage-2 command did not report success.
	TCPIPEnableFailed

	// ProtocolError indicates an unexpected tag, malformed length, or short
	// read from the adb server (spec.md: protocol-error).
	ProtocolError

	// PermissionError indicates an OS-level denial on a local file operation
	// (spec.md: permission-denied).
	PermissionError

	// TimeoutError indicates a read timeout elapsed (spec.md: timeout(secs)).
	TimeoutError
)

func (c ErrCode) String() string {
	switch c {
	case AssertionError:
		return "AssertionError"
	case ParseError:
		return "ParseError"
	case NetworkError:
		return "NetworkError"
	case ConnectionResetError:
		return "ConnectionResetError"
	case ServerNotAvailable:
		return "ServerNotAvailable"
	case DeviceNotFound:
		return "DeviceNotFound"
	case AdbError:
		return "AdbError"
	case ApplicationError:
		return "ApplicationError"
	case FileNoExistError:
		return "FileNoExistError"
	case TCPIPEnableFailed:
		return "TCPIPEnableFailed"
	case ProtocolError:
		return "ProtocolError"
	case PermissionError:
		return "PermissionError"
	case TimeoutError:
		return "TimeoutError"
	default:
		return "UnknownError"
	}
}

// Err is the error type returned by goadb's device and server operations.
// RunCommandWithExitCode's ShellExitError and errors from local config
// parsing (LoadServerConfig, NetworkTypeFromString) are not *Err.
type Err struct {
	Code    ErrCode
	Message string
	Cause   error

	// Details holds free-form context, e.g. {"device": "emulator-5554"}.
	// None of goadb's own constructors or wrappers set it.
	Details map[string]string
}

func (e *Err) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Err) Unwrap() error {
	return e.Cause
}

// Errorf creates an Err with no cause.
func Errorf(code ErrCode, format string, args ...interface{}) error {
	return &Err{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapErrorf wraps cause in an Err with code, recording format as the message.
// The new Err always carries code, even if cause is already an *Err (the inner
// code stays reachable through HasErrCode) — callers that want the outer Err
// to keep an inner code should use WrapErrf instead.
func WrapErrorf(cause error, code ErrCode, format string, args ...interface{}) error {
	if cause == nil {
		return Errorf(code, format, args...)
	}
	return &Err{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WrapErrf wraps cause, preserving its ErrCode if it is already an *Err.
func WrapErrf(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	code := NetworkError
	if e, ok := cause.(*Err); ok {
		code = e.Code
	}
	return &Err{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AssertionErrorf creates an AssertionError-coded Err.
func AssertionErrorf(format string, args ...interface{}) error {
	return Errorf(AssertionError, format, args...)
}

// HasErrCode reports whether err is an *Err (possibly wrapped) with the given code.
func HasErrCode(err error, code ErrCode) bool {
	for err != nil {
		if e, ok := err.(*Err); ok {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		break
	}
	return false
}

// ErrorWithCauseChain renders err and every wrapped cause, innermost last.
func ErrorWithCauseChain(err error) string {
	if err == nil {
		return ""
	}
	var msgs []string
	for err != nil {
		msgs = append(msgs, err.Error())
		e, ok := err.(*Err)
		if !ok {
			break
		}
		err = e.Cause
	}
	out := msgs[0]
	for _, m := range msgs[1:] {
		out += "\n\tcaused by: " + m
	}
	return out
}
