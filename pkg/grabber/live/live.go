package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tauraamui/framegrab/pkg/capture"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
)

const (
	DefaultChannel   = 0
	DefaultScale     = 2
	DefaultFramerate = 30
)

type Settings struct {
	Channel     int
	Scale       int
	Framerate   int
	ReadTimeout time.Duration
}

// Source pulls frames from a capture device. Its settings are copied at
// construction and handed to the device once on Open.
type Source struct {
	settings Settings
	device   capture.Device
	opened   bool
	closed   bool
}

func New(settings Settings, device capture.Device) (*Source, error) {
	if device == nil {
		return nil, frame.NewError(
			frame.OpConfigure, "live", xerror.Errorf("%w: no capture device", frame.ErrConfiguration),
		)
	}
	if settings.Scale < 1 || settings.Framerate < 1 {
		return nil, frame.NewError(
			frame.OpConfigure, "live",
			xerror.Errorf("%w: scale %d and framerate %d must be positive", frame.ErrConfiguration, settings.Scale, settings.Framerate),
		)
	}
	if settings.ReadTimeout < 0 {
		return nil, frame.NewError(
			frame.OpConfigure, "live", xerror.Errorf("%w: negative read timeout", frame.ErrConfiguration),
		)
	}
	return &Source{settings: settings, device: device}, nil
}

func (s *Source) Settings() Settings { return s.settings }

// Open initialises the device and grabs one frame synchronously so the
// buffer takes whatever size the device actually delivers.
func (s *Source) Open(ctx context.Context, buf *frame.Buffer) error {
	if s.opened || s.closed {
		return frame.NewError(frame.OpOpen, s.String(), frame.ErrAlreadyOpened)
	}

	err := s.device.Open(ctx, capture.Config{
		Channel:     s.settings.Channel,
		Scale:       s.settings.Scale,
		Framerate:   s.settings.Framerate,
		ReadTimeout: s.settings.ReadTimeout,
	})
	if err != nil {
		return frame.NewError(frame.OpOpen, s.String(), xerror.Errorf("%w: %v", frame.ErrDeviceUnavailable, err))
	}

	if err := s.device.Read(buf, frame.Establish); err != nil {
		if cerr := s.device.Close(); cerr != nil {
			log.Warn("Unable to release capture device [%d]: %v", s.settings.Channel, cerr)
		}
		return frame.NewError(frame.OpOpen, s.String(), xerror.Errorf("%w: %v", frame.ErrDeviceUnavailable, err))
	}

	s.opened = true
	log.Debug("Opened %s, frame size %s", s.String(), buf.Dimensions())
	return nil
}

func (s *Source) Acquire(_ context.Context, buf *frame.Buffer) error {
	if !s.opened || s.closed {
		return frame.NewError(frame.OpAcquire, s.String(), frame.ErrNotOpened)
	}

	if err := s.device.Read(buf, frame.Reuse); err != nil {
		return frame.NewError(frame.OpAcquire, s.String(), classify(err))
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, capture.ErrReadTimeout):
		return xerror.Errorf("%w: %v", frame.ErrTimeout, err)
	case errors.Is(err, frame.ErrDimensionsChanged):
		return err
	default:
		return xerror.Errorf("%w: %v", frame.ErrDeviceFault, err)
	}
}

func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.opened {
		return nil
	}
	return s.device.Close()
}

func (s *Source) String() string {
	return fmt.Sprintf(
		"live capture channel %d (scale %d, %d fps)", s.settings.Channel, s.settings.Scale, s.settings.Framerate,
	)
}
