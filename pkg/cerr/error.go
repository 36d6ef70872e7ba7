package cerr

import (
	"errors"
	"fmt"
	"runtime"
)

type Error struct {
	Code  Code
	Msg   string // message safe to show next to the code
	Err   error  // underlying cause, logged
	Stack string // captured for fatal codes
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if code.Fatal() {
		stackTrace := make([]byte, 4096)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

// NewErrorWithStack is NewError with an externally captured stack, e.g. from a recovered panic.
func NewErrorWithStack(code Code, msg string, underlying error, stack string) *Error {
	return &Error{
		Code:  code,
		Msg:   msg,
		Err:   underlying,
		Stack: stack,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// StackOf returns the stack carried by the first *Error in err's chain.
func StackOf(err error) string {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Stack
	}
	return ""
}
