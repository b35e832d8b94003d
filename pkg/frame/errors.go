package frame

import (
	"errors"
	"fmt"

	"github.com/tauraamui/xerror"
)

// Op names the stage of a run an error came from.
type Op string

const (
	OpConfigure Op = "configure"
	OpOpen      Op = "open"
	OpAcquire   Op = "acquire"
	OpDisplay   Op = "display"
)

var (
	ErrConfiguration     = xerror.New("invalid configuration")
	ErrFileNotFound      = xerror.New("frame file not found")
	ErrDecodeFailed      = xerror.New("unable to decode frame")
	ErrDeviceUnavailable = xerror.New("capture device unavailable")
	ErrDeviceFault       = xerror.New("capture device fault")
	ErrTimeout           = xerror.New("timed out waiting for frame")
	ErrNotOpened         = xerror.New("source has not been opened")
	ErrAlreadyOpened     = xerror.New("source has already been opened")
	ErrDimensionsChanged = xerror.New("frame dimensions changed")
	ErrDisplay           = xerror.New("consumer failed to display frame")
)

// Error records the op and source behind a failure. The reason is kept
// in Err and is matched with errors.Is against the sentinels above.
type Error struct {
	Op     Op
	Source string
	Err    error
}

func NewError(op Op, source string, err error) *Error {
	return &Error{Op: op, Source: source, Err: err}
}

func (e *Error) Error() string {
	if len(e.Source) == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func opOf(err error) (Op, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Op, true
	}
	return "", false
}

func IsConfigurationError(err error) bool {
	op, ok := opOf(err)
	return ok && op == OpConfigure
}

func IsOpenError(err error) bool {
	op, ok := opOf(err)
	return ok && op == OpOpen
}

func IsAcquireError(err error) bool {
	op, ok := opOf(err)
	return ok && op == OpAcquire
}

func IsDisplayError(err error) bool {
	op, ok := opOf(err)
	return ok && op == OpDisplay
}
