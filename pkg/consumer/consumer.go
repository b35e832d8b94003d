package consumer

import (
	"io"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
)

// Multi fans each frame out to every consumer in order. The first
// consumer to fail stops the fan out.
func Multi(consumers ...frame.Consumer) frame.Consumer {
	return multi(consumers)
}

type multi []frame.Consumer

func (m multi) Display(buf *frame.Buffer) error {
	for _, c := range m {
		if err := c.Display(buf); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Flush() error {
	for _, c := range m {
		if err := c.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Close() error {
	var first error
	for _, c := range m {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Log is a headless consumer which only reports deliveries.
func Log() *Logger {
	return &Logger{}
}

type Logger struct {
	delivered int
	dims      frame.Dimensions
}

func (l *Logger) Display(buf *frame.Buffer) error {
	l.delivered++
	l.dims = buf.Dimensions()
	return nil
}

func (l *Logger) Flush() error {
	log.Debug("Delivered frame %d (%s)", l.delivered, l.dims)
	return nil
}

func (l *Logger) Delivered() int { return l.delivered }

// Close releases c if it holds any resources.
func Close(c frame.Consumer) {
	closer, ok := c.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Error("Unable to close frame consumer: %v", err)
	}
}
