package main

import (
	"flag"
	"io"
	"time"

	"github.com/tauraamui/framegrab/pkg/configdef"
	"github.com/tauraamui/xerror"
)

// options are the command line flags of a playback command. Only flags
// given on the command line replace what the config file says.
type options struct {
	set map[string]bool

	configPath string
	window     bool
	record     string
	preview    string
	journal    string
	decoder    string

	directory string
	prefix    string
	extension string
	first     uint
	count     int
	step      uint
	zeros     uint
	period    time.Duration

	channel   int
	scale     int
	framerate int
	timeout   time.Duration
	device    string
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *options) {
	opts := options{set: map[string]bool{}}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&opts.configPath, "config", "", "config file to load (JSON or YAML)")
	fs.BoolVar(&opts.window, "window", false, "show frames in a window")
	fs.StringVar(&opts.record, "record", "", "record delivered frames to this video file")
	fs.StringVar(&opts.preview, "preview", "", "serve a browser preview on this address")
	fs.StringVar(&opts.journal, "journal", "", "record the run in this sqlite journal")

	switch name {
	case string(configdef.SourceDisk):
		fs.StringVar(&opts.directory, "i", "", "directory holding the image sequence")
		fs.StringVar(&opts.prefix, "b", configdef.DefaultPrefix, "file name prefix")
		fs.StringVar(&opts.extension, "e", configdef.DefaultExtension, "file name extension")
		fs.UintVar(&opts.first, "f", configdef.DefaultFirst, "number of the first frame")
		fs.IntVar(&opts.count, "n", configdef.DefaultDiskCount, "number of frames to deliver")
		fs.UintVar(&opts.step, "s", configdef.DefaultStep, "step between frame numbers")
		fs.UintVar(&opts.zeros, "z", configdef.DefaultZeroPad, "digits the frame number is zero padded to")
		fs.DurationVar(&opts.period, "p", configdef.DefaultDiskMS*time.Millisecond, "minimum time between frames")
		fs.StringVar(&opts.decoder, "decoder", "netpbm", "image decoder, netpbm or opencv")
	case string(configdef.SourceLive):
		fs.IntVar(&opts.channel, "c", configdef.DefaultChannel, "capture device channel")
		fs.IntVar(&opts.scale, "scale", configdef.DefaultScale, "capture size divisor")
		fs.IntVar(&opts.framerate, "fps", configdef.DefaultFramerate, "capture framerate")
		fs.IntVar(&opts.count, "n", configdef.DefaultLiveCount, "number of frames to deliver")
		fs.DurationVar(&opts.timeout, "timeout", 0, "give up on a frame after this long, 0 waits forever")
		fs.DurationVar(&opts.period, "p", 0, "minimum time between frames")
		fs.StringVar(&opts.device, "device", "opencv", "capture device, opencv or synthetic")
	}
	return fs, &opts
}

func (o *options) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return nil
}

// apply overlays the flags given on the command line onto values.
func (o *options) apply(kind configdef.SourceKind, values configdef.Values) (configdef.Values, error) {
	values.Source = kind

	if o.set["window"] {
		values.Outputs.Window = o.window
	}
	if o.set["record"] {
		values.Outputs.Record = o.record
	}
	if o.set["preview"] {
		values.Outputs.Preview = o.preview
	}
	if o.set["journal"] {
		values.Journal = o.journal
	}
	if o.set["decoder"] {
		values.Decoder = o.decoder
	}

	switch kind {
	case configdef.SourceDisk:
		d := &values.Disk
		if o.set["i"] {
			d.Directory = o.directory
		}
		if o.set["b"] {
			d.Prefix = o.prefix
		}
		if o.set["e"] {
			d.Extension = o.extension
		}
		if o.set["f"] {
			d.First = o.first
		}
		if o.set["s"] {
			d.Step = o.step
		}
		if o.set["z"] {
			d.ZeroPad = o.zeros
		}
		if o.set["n"] {
			d.Count = o.count
		}
		if o.set["p"] {
			ms, err := wholeMillis("p", o.period)
			if err != nil {
				return values, err
			}
			d.PeriodMS = ms
		}
	case configdef.SourceLive:
		l := &values.Live
		if o.set["c"] {
			l.Channel = o.channel
		}
		if o.set["scale"] {
			l.Scale = o.scale
		}
		if o.set["fps"] {
			l.Framerate = o.framerate
		}
		if o.set["timeout"] {
			ms, err := wholeMillis("timeout", o.timeout)
			if err != nil {
				return values, err
			}
			l.TimeoutMS = ms
		}
		if o.set["device"] {
			l.Device = o.device
		}
		if o.set["n"] {
			l.Count = o.count
		}
		if o.set["p"] {
			ms, err := wholeMillis("p", o.period)
			if err != nil {
				return values, err
			}
			l.PeriodMS = ms
		}
	}
	return values, nil
}

// wholeMillis converts a duration flag to the millisecond values the config
// holds. Zero has a meaning of its own, so a non-zero duration may not
// round down to it.
func wholeMillis(name string, d time.Duration) (int, error) {
	if d < 0 {
		return 0, configdef.ConfigurationError(xerror.Errorf("-%s must not be negative, got %s", name, d))
	}
	if d > 0 && d < time.Millisecond {
		return 0, configdef.ConfigurationError(xerror.Errorf("-%s must be at least 1ms or exactly 0, got %s", name, d))
	}
	return int(d / time.Millisecond), nil
}
