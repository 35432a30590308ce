package locrag

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFIG   = "config"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	EIO       = "io"
	ENOSTORE  = "no_store"
	EREMOTE   = "remote"
)

// Error represents an application-specific error. Op names the operation
// that failed (e.g. "create store") so the user can decide whether to retry.
type Error struct {
	Code    string
	Op      string
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError annotates err with a code and operation name. Application
// errors keep their code; the innermost operation name wins.
func WrapError(code, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			return &Error{Code: e.Code, Op: op, Message: e.Message, Err: e.Err}
		}
		return err
	}
	return &Error{Code: code, Op: op, Message: err.Error(), Err: err}
}

// RemoteError wraps a failure of the external service.
func RemoteError(op string, err error) error {
	return WrapError(EREMOTE, op, err)
}

// IOError wraps a failure of local persistence.
func IOError(op string, err error) error {
	return WrapError(EIO, op, err)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message,
// prefixed with the operation name when one is set.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Error()
	}
	return "Internal error"
}

// ErrorOp unwraps an application error and returns the failed operation name.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
