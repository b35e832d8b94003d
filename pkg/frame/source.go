package frame

import "context"

// Source produces frames into a caller owned Buffer. Open must be called
// once before any Acquire and establishes the buffer's dimensions. Close
// is idempotent and safe to call after a failed Open.
type Source interface {
	Open(context.Context, *Buffer) error
	Acquire(context.Context, *Buffer) error
	Close() error
	String() string
}

// Consumer receives every delivered frame. Display is always followed by
// Flush for the same frame.
type Consumer interface {
	Display(*Buffer) error
	Flush() error
}
