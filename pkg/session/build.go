package session

import (
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/capture"
	"github.com/tauraamui/framegrab/pkg/configdef"
	"github.com/tauraamui/framegrab/pkg/consumer"
	"github.com/tauraamui/framegrab/pkg/decode"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/grabber/disk"
	"github.com/tauraamui/framegrab/pkg/grabber/live"
	"github.com/tauraamui/framegrab/pkg/pacer"
	"github.com/tauraamui/xerror"
)

// Deps are the collaborators FromValues cannot derive from config. Every
// field is optional.
type Deps struct {
	Lookup   func(string) (string, bool)
	Fs       afero.Fs
	Device   capture.Device
	Journal  Journal
	Consumer frame.Consumer
}

// FromValues builds a ready to play session out of validated config. When
// deps carries no consumer one is assembled from the configured outputs.
func FromValues(values configdef.Values, deps Deps) (*Session, error) {
	if deps.Lookup == nil {
		deps.Lookup = os.LookupEnv
	}

	src, loop, err := buildSource(values, deps)
	if err != nil {
		return nil, err
	}

	c := deps.Consumer
	if c == nil {
		c, err = buildConsumer(values.Outputs)
		if err != nil {
			return nil, err
		}
	}

	opts := []Option{}
	if deps.Journal != nil {
		opts = append(opts, WithJournal(deps.Journal, string(values.Source)))
	}
	return New(src, c, loop, opts...)
}

func buildSource(values configdef.Values, deps Deps) (frame.Source, pacer.Loop, error) {
	switch values.Source {
	case configdef.SourceDisk:
		dir, err := configdef.ResolveInputPath(values.Disk.Directory, deps.Lookup)
		if err != nil {
			return nil, pacer.Loop{}, err
		}
		opts := []disk.Option{}
		if deps.Fs != nil {
			opts = append(opts, disk.WithFs(deps.Fs))
		}
		src, err := disk.New(disk.Settings{
			Directory: dir,
			Prefix:    values.Disk.Prefix,
			Extension: values.Disk.Extension,
			First:     values.Disk.First,
			Step:      values.Disk.Step,
			ZeroPad:   values.Disk.ZeroPad,
		}, decode.Resolve(values.Decoder), opts...)
		if err != nil {
			return nil, pacer.Loop{}, err
		}
		return src, pacer.Loop{Period: millis(values.Disk.PeriodMS), Count: values.Disk.Count}, nil

	case configdef.SourceLive:
		device := deps.Device
		if device == nil {
			device = capture.Resolve(values.Live.Device)
		}
		src, err := live.New(live.Settings{
			Channel:     values.Live.Channel,
			Scale:       values.Live.Scale,
			Framerate:   values.Live.Framerate,
			ReadTimeout: millis(values.Live.TimeoutMS),
		}, device)
		if err != nil {
			return nil, pacer.Loop{}, err
		}
		return src, pacer.Loop{Period: millis(values.Live.PeriodMS), Count: values.Live.Count}, nil
	}

	return nil, pacer.Loop{}, configdef.ConfigurationError(
		xerror.Errorf("unknown source kind [%s]", values.Source),
	)
}

func buildConsumer(outputs configdef.Outputs) (frame.Consumer, error) {
	consumers := []frame.Consumer{consumer.Log()}
	if outputs.Window {
		consumers = append(consumers, consumer.NewWindow(outputs.WindowTitle))
	}
	if len(outputs.Record) > 0 {
		consumers = append(consumers, consumer.NewRecorder(outputs.Record, outputs.RecordFPS))
	}
	if len(outputs.Preview) > 0 {
		preview := consumer.NewPreview(outputs.Preview)
		if err := preview.Start(); err != nil {
			consumer.Close(consumer.Multi(consumers...))
			return nil, configdef.ConfigurationError(err)
		}
		consumers = append(consumers, preview)
	}

	if len(consumers) == 1 {
		return consumers[0], nil
	}
	return consumer.Multi(consumers...), nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
