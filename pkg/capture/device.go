package capture

import (
	"context"
	"strings"
	"time"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
)

var (
	ErrNotOpen      = xerror.New("capture device is not open")
	ErrOpenFailed   = xerror.New("unable to open capture device")
	ErrReadFailed   = xerror.New("unable to read from capture device")
	ErrReadTimeout  = xerror.New("capture device read timed out")
	ErrOpenCanceled = xerror.New("capture device open cancelled")
)

// Config is applied once when a device is opened.
type Config struct {
	Channel     int
	Scale       int
	Framerate   int
	ReadTimeout time.Duration
}

// Device is a frame grabber. Read blocks until the next frame is
// available and writes it into buf.
type Device interface {
	ID() string
	Open(context.Context, Config) error
	Read(buf *frame.Buffer, mode frame.Fill) error
	Close() error
}

func Default() Device {
	return OpenCV()
}

func Resolve(name string) Device {
	switch strings.ToLower(name) {
	case "synthetic", "mock":
		return Synthetic()
	default:
		return Default()
	}
}
