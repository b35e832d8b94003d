package session_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/capture"
	"github.com/tauraamui/framegrab/pkg/configdef"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/grabber/disk"
	"github.com/tauraamui/framegrab/pkg/session"
)

func rawPGM(w, h int, fill byte) []byte {
	header := []byte(fmt.Sprintf("P5\n%d %d\n255\n", w, h))
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = fill
	}
	return append(header, pix...)
}

func writeSequence(t *testing.T, fsys afero.Fs, from, to uint) {
	for i := from; i <= to; i++ {
		name := fmt.Sprintf("/seq/image.%s.pgm", disk.Pad(i, 4))
		if err := afero.WriteFile(fsys, name, rawPGM(3, 2, byte(i)), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func noEnv(string) (string, bool) { return "", false }

func TestDiskSequencePlaysEveryFrameInOrderAtPace(t *testing.T) {
	is := is.New(t)
	fsys := afero.NewMemMapFs()
	writeSequence(t, fsys, 5, 74)

	const period = 2 * time.Millisecond
	values := configdef.Default()
	values.Disk.Directory = "/seq"
	values.Disk.PeriodMS = int(period / time.Millisecond)

	c := &recordingConsumer{}
	s, err := session.FromValues(values, session.Deps{Fs: fsys, Lookup: noEnv, Consumer: c})
	is.NoErr(err)

	result, err := s.Play(context.Background())
	is.NoErr(err)

	is.Equal(result.Delivered, 70)
	is.Equal(result.Dimensions, frame.Dimensions{W: 3, H: 2})
	is.True(result.Elapsed >= 69*period)
	is.Equal(len(c.displayed), 70)
	for n, v := range c.displayed {
		is.Equal(v, byte(5+n)) // frames must arrive in file order
	}
}

func TestDiskSequenceStopsAtFirstMissingFile(t *testing.T) {
	is := is.New(t)
	fsys := afero.NewMemMapFs()
	writeSequence(t, fsys, 5, 9)

	values := configdef.Default()
	values.Disk.PeriodMS = 0

	c := &recordingConsumer{}
	s, err := session.FromValues(values, session.Deps{
		Fs:       fsys,
		Consumer: c,
		Lookup: func(key string) (string, bool) {
			return "/seq", key == configdef.InputPathEnv
		},
	})
	is.NoErr(err)

	result, err := s.Play(context.Background())
	is.True(frame.IsAcquireError(err))
	is.True(errors.Is(err, frame.ErrFileNotFound))
	is.Equal(result.Delivered, 5)
	is.Equal(s.Source().(*disk.Source).CurrentFile(), "/seq/image.0010.pgm")
}

func TestFromValuesWithoutInputDirectoryIsConfigurationError(t *testing.T) {
	is := is.New(t)
	_, err := session.FromValues(configdef.Default(), session.Deps{Lookup: noEnv, Consumer: &recordingConsumer{}})
	is.True(frame.IsConfigurationError(err))
}

func TestFromValuesUnknownSourceKind(t *testing.T) {
	is := is.New(t)
	values := configdef.Default()
	values.Source = "tape"
	_, err := session.FromValues(values, session.Deps{Lookup: noEnv, Consumer: &recordingConsumer{}})
	is.True(frame.IsConfigurationError(err))
}

func TestLiveSessionFollowsDeviceDimensions(t *testing.T) {
	is := is.New(t)
	values := configdef.Default()
	values.Source = configdef.SourceLive
	values.Live.Count = 3
	values.Live.Scale = 4
	values.Live.Framerate = 240

	c := &recordingConsumer{}
	s, err := session.FromValues(values, session.Deps{
		Consumer: c,
		Device:   capture.Synthetic(),
	})
	is.NoErr(err)

	result, err := s.Play(context.Background())
	is.NoErr(err)
	is.Equal(result.Delivered, 3)
	is.Equal(result.Dimensions, frame.Dimensions{W: 600, H: 400})
}
