package session

import (
	"context"
	"time"

	"github.com/tauraamui/framegrab/pkg/consumer"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/journal"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/framegrab/pkg/pacer"
	"github.com/tauraamui/xerror"
)

var timeNow = func() time.Time {
	return time.Now()
}

// Journal is where finished runs are recorded.
type Journal interface {
	Begin(source, kind string) (*journal.Run, error)
	Finish(run *journal.Run, delivered int, failure error) error
}

type Result struct {
	Delivered  int
	Elapsed    time.Duration
	Slowest    time.Duration
	Dimensions frame.Dimensions
}

type Option func(*Session)

// WithJournal records every Play in j under kind.
func WithJournal(j Journal, kind string) Option {
	return func(s *Session) {
		s.journal = j
		s.kind = kind
	}
}

// WithBuffer plays into buf instead of a buffer owned by the session.
func WithBuffer(buf *frame.Buffer) Option {
	return func(s *Session) { s.buf = buf }
}

// Session plays one source into one consumer. The frame read by Open is
// the first of the loop's Count frames.
type Session struct {
	src      frame.Source
	consumer frame.Consumer
	loop     pacer.Loop
	buf      *frame.Buffer
	journal  Journal
	kind     string
}

func New(src frame.Source, c frame.Consumer, loop pacer.Loop, opts ...Option) (*Session, error) {
	if src == nil {
		return nil, frame.NewError(frame.OpConfigure, "session", xerror.Errorf("%w: no frame source", frame.ErrConfiguration))
	}
	if c == nil {
		return nil, frame.NewError(frame.OpConfigure, "session", xerror.Errorf("%w: no frame consumer", frame.ErrConfiguration))
	}

	s := Session{src: src, consumer: c, loop: loop, buf: frame.NewBuffer()}
	for _, opt := range opts {
		opt(&s)
	}
	return &s, nil
}

func (s *Session) Source() frame.Source { return s.src }

func (s *Session) Buffer() *frame.Buffer { return s.buf }

// Play opens the source, delivers the opened frame and then paces the
// remaining Count-1 frames. The source is closed before Play returns
// whatever the outcome.
func (s *Session) Play(ctx context.Context) (Result, error) {
	run := s.begin()
	began := timeNow()

	result, err := s.play(ctx)
	result.Elapsed = timeNow().Sub(began)

	if cerr := s.src.Close(); cerr != nil {
		log.Error("Unable to close %s: %v", s.src, cerr)
	}

	s.finish(run, result, err)
	return result, err
}

func (s *Session) play(ctx context.Context) (Result, error) {
	result := Result{}
	if s.loop.Count <= 0 {
		log.Warn("Nothing to play, frame count is %d", s.loop.Count)
		return result, nil
	}

	if err := s.src.Open(ctx, s.buf); err != nil {
		return result, err
	}
	result.Dimensions = s.buf.Dimensions()
	log.Info("Image size: %d %d", result.Dimensions.W, result.Dimensions.H)

	if err := pacer.Deliver(s.buf, s.consumer); err != nil {
		return result, err
	}
	result.Delivered = 1

	loop := pacer.Loop{Period: s.loop.Period, Count: s.loop.Count - 1}
	stats, err := loop.Run(ctx, s.src, s.buf, s.consumer)
	result.Delivered += stats.Iterations
	result.Slowest = stats.Slowest
	return result, err
}

func (s *Session) begin() *journal.Run {
	if s.journal == nil {
		return nil
	}
	run, err := s.journal.Begin(s.src.String(), s.kind)
	if err != nil {
		log.Warn("Unable to record run start in journal: %v", err)
		return nil
	}
	return run
}

func (s *Session) finish(run *journal.Run, result Result, failure error) {
	if run == nil {
		return
	}
	if err := s.journal.Finish(run, result.Delivered, failure); err != nil {
		log.Warn("Unable to record run outcome in journal: %v", err)
	}
}

// Close releases the consumer. The source is already closed by Play.
func (s *Session) Close() {
	consumer.Close(s.consumer)
}
