package configdef

import (
	"strings"

	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
	"gopkg.in/dealancer/validate.v2"
)

type SourceKind string

const (
	SourceDisk SourceKind = "disk"
	SourceLive SourceKind = "live"
)

type Disk struct {
	Directory string `json:"directory" yaml:"directory"`
	Prefix    string `json:"prefix" yaml:"prefix" validate:"empty=false"`
	Extension string `json:"extension" yaml:"extension"`
	First     uint   `json:"first" yaml:"first"`
	Step      uint   `json:"step" yaml:"step"`
	ZeroPad   uint   `json:"zero_pad" yaml:"zero_pad" validate:"lte=20"`
	Count     int    `json:"count" yaml:"count" validate:"gte=0"`
	PeriodMS  int    `json:"period_ms" yaml:"period_ms" validate:"gte=0"`
}

type Live struct {
	Channel   int    `json:"channel" yaml:"channel" validate:"gte=0"`
	Scale     int    `json:"scale" yaml:"scale" validate:"gte=1"`
	Framerate int    `json:"framerate" yaml:"framerate" validate:"gte=1 & lte=240"`
	TimeoutMS int    `json:"timeout_ms" yaml:"timeout_ms" validate:"gte=0"`
	Device    string `json:"device" yaml:"device"`
	Count     int    `json:"count" yaml:"count" validate:"gte=0"`
	PeriodMS  int    `json:"period_ms" yaml:"period_ms" validate:"gte=0"`
}

type Outputs struct {
	Window      bool    `json:"window" yaml:"window"`
	WindowTitle string  `json:"window_title" yaml:"window_title"`
	Record      string  `json:"record" yaml:"record"`
	RecordFPS   float64 `json:"record_fps" yaml:"record_fps"`
	Preview     string  `json:"preview" yaml:"preview"`
}

type Values struct {
	Source  SourceKind `json:"source" yaml:"source"`
	Decoder string     `json:"decoder" yaml:"decoder"`
	Disk    Disk       `json:"disk" yaml:"disk"`
	Live    Live       `json:"live" yaml:"live"`
	Outputs Outputs    `json:"outputs" yaml:"outputs"`
	Journal string     `json:"journal" yaml:"journal"`
}

// RunValidate checks the field rules declared in the struct tags and
// then the rules which span more than one field.
func (v Values) RunValidate() error {
	if err := validate.Validate(&v); err != nil {
		return err
	}
	return v.Validate()
}

func (v Values) Validate() error {
	const validationErrorHeader = "validation failed: %w"
	switch v.Source {
	case SourceDisk, SourceLive:
	default:
		return xerror.Errorf(validationErrorHeader, xerror.Errorf("unknown source kind [%s]", v.Source))
	}

	switch strings.ToLower(v.Decoder) {
	case "", "netpbm", "opencv":
	default:
		return xerror.Errorf(validationErrorHeader, xerror.Errorf("unknown decoder [%s]", v.Decoder))
	}

	if len(v.Outputs.Record) > 0 && v.Outputs.RecordFPS <= 0 {
		return xerror.Errorf(validationErrorHeader, xerror.New("record_fps must be positive when recording"))
	}
	return nil
}

// ConfigurationError wraps a validation failure as a configure op error.
func ConfigurationError(err error) error {
	return frame.NewError(frame.OpConfigure, "config", xerror.Errorf("%w: %v", frame.ErrConfiguration, err))
}
