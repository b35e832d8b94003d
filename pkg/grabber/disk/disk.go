package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/decode"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
)

var fs afero.Fs = afero.NewOsFs()

type Settings struct {
	Directory string
	Prefix    string
	Extension string
	First     uint
	Step      uint
	ZeroPad   uint
}

type Option func(*Source)

// WithFs reads the sequence from fsys instead of the OS file system.
func WithFs(fsys afero.Fs) Option {
	return func(s *Source) { s.fs = fsys }
}

// Source reads a sequence of numbered image files from a directory. It
// has no notion of the end of a sequence, reading past the last file is
// reported like any other missing file.
type Source struct {
	settings Settings
	decoder  decode.Decoder
	fs       afero.Fs
	cursor   Cursor
	opened   bool
	closed   bool
}

func New(settings Settings, decoder decode.Decoder, opts ...Option) (*Source, error) {
	if len(strings.TrimSpace(settings.Directory)) == 0 {
		return nil, frame.NewError(
			frame.OpConfigure, "disk", xerror.Errorf("%w: sequence directory is empty", frame.ErrConfiguration),
		)
	}
	if len(settings.Prefix) == 0 {
		return nil, frame.NewError(
			frame.OpConfigure, "disk", xerror.Errorf("%w: file name prefix is empty", frame.ErrConfiguration),
		)
	}
	if decoder == nil {
		return nil, frame.NewError(
			frame.OpConfigure, "disk", xerror.Errorf("%w: no image decoder", frame.ErrConfiguration),
		)
	}

	s := Source{
		settings: settings,
		decoder:  decoder,
		fs:       fs,
		cursor: Cursor{
			Directory: settings.Directory,
			Prefix:    settings.Prefix,
			Extension: settings.Extension,
			Index:     settings.First,
			Step:      settings.Step,
			ZeroPad:   settings.ZeroPad,
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return &s, nil
}

func (s *Source) Open(_ context.Context, buf *frame.Buffer) error {
	if s.opened || s.closed {
		return frame.NewError(frame.OpOpen, s.cursor.FileName(), frame.ErrAlreadyOpened)
	}

	s.cursor.Index = s.settings.First
	name := s.cursor.FileName()
	if err := s.read(name, buf, frame.Establish); err != nil {
		return frame.NewError(frame.OpOpen, name, err)
	}
	s.opened = true
	log.Debug("Opened image sequence at [%s]", name)
	return nil
}

// Acquire steps the cursor forward and reads the file it now points at.
// The step is kept even when the read fails.
func (s *Source) Acquire(_ context.Context, buf *frame.Buffer) error {
	if !s.opened || s.closed {
		return frame.NewError(frame.OpAcquire, s.String(), frame.ErrNotOpened)
	}

	if err := s.cursor.advance(); err != nil {
		return frame.NewError(frame.OpAcquire, s.cursor.FileName(), err)
	}
	name := s.cursor.FileName()
	if err := s.read(name, buf, frame.Reuse); err != nil {
		return frame.NewError(frame.OpAcquire, name, err)
	}
	log.Debug("Read image [%s]", name)
	return nil
}

func (s *Source) read(name string, buf *frame.Buffer, mode frame.Fill) error {
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		if os.IsNotExist(err) {
			return xerror.Errorf("%w: %v", frame.ErrFileNotFound, err)
		}
		return xerror.Errorf("%w: %v", frame.ErrDecodeFailed, err)
	}

	if err := s.decoder.Decode(data, buf, mode); err != nil {
		if errors.Is(err, frame.ErrDecodeFailed) || errors.Is(err, frame.ErrDimensionsChanged) {
			return err
		}
		return xerror.Errorf("%w: %v", frame.ErrDecodeFailed, err)
	}
	return nil
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Cursor returns a copy of the current sequence position.
func (s *Source) Cursor() Cursor { return s.cursor }

// CurrentFile is the path of the file most recently read or attempted.
func (s *Source) CurrentFile() string { return s.cursor.FileName() }

func (s *Source) String() string {
	return fmt.Sprintf(
		"disk sequence %s/%s%s%s",
		strings.TrimRight(s.settings.Directory, "/"), s.settings.Prefix,
		strings.Repeat("#", int(s.settings.ZeroPad)), s.settings.Extension,
	)
}
