package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tauraamui/framegrab/pkg/cvmat"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

const (
	fullWidth  = 640
	fullHeight = 480
)

func OpenCV() Device {
	return &openCVDevice{}
}

type openCVDevice struct {
	uuid    string
	mu      sync.Mutex
	cfg     Config
	vc      *gocv.VideoCapture
	scratch gocv.Mat
	pending chan bool
}

func (d *openCVDevice) ID() string {
	if len(d.uuid) == 0 {
		d.uuid = uuid.NewString()
	}
	return d.uuid
}

type openVideoCaptureResult struct {
	vc  *gocv.VideoCapture
	err error
}

var openVideoCapture = func(channel int) (*gocv.VideoCapture, error) {
	return gocv.OpenVideoCapture(channel)
}

var closeVideoCapture = func(vc *gocv.VideoCapture) error {
	return vc.Close()
}

var readFromVideoCapture = func(vc *gocv.VideoCapture, mat *gocv.Mat) bool {
	if vc.IsOpened() {
		return vc.Read(mat)
	}
	return false
}

func (d *openCVDevice) Open(ctx context.Context, cfg Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	open := openVideoCapture
	opened := make(chan openVideoCaptureResult, 1)
	go func() {
		vc, err := open(cfg.Channel)
		opened <- openVideoCaptureResult{vc: vc, err: err}
	}()

	select {
	case r := <-opened:
		if r.err != nil {
			return xerror.Errorf("%w: channel %d: %v", ErrOpenFailed, cfg.Channel, r.err)
		}
		d.vc = r.vc
	case <-ctx.Done():
		// the open may still succeed after we give up on it
		go func() {
			if r := <-opened; r.err == nil && r.vc != nil {
				if err := closeVideoCapture(r.vc); err != nil {
					log.Warn("Unable to release abandoned capture device [%d]: %v", cfg.Channel, err)
				}
			}
		}()
		return ErrOpenCanceled
	}

	d.cfg = cfg
	d.scratch = gocv.NewMat()
	applyConfig(d.vc, cfg)
	log.Debug("Opened OpenCV capture device [%d] (%s)", cfg.Channel, d.ID())
	return nil
}

// applyConfig hints the driver with the requested rate and a size derived
// from the scale. The driver is free to ignore both, the frame size is
// always taken from what is actually read.
func applyConfig(vc *gocv.VideoCapture, cfg Config) {
	if cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}
	if cfg.Scale > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(fullWidth/cfg.Scale))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(fullHeight/cfg.Scale))
	}
}

func (d *openCVDevice) Read(buf *frame.Buffer, mode frame.Fill) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return ErrNotOpen
	}
	if d.pending != nil {
		return xerror.Errorf("%w: previous read still in progress", ErrReadTimeout)
	}

	read := readFromVideoCapture
	result := make(chan bool, 1)
	go func(vc *gocv.VideoCapture, mat *gocv.Mat) {
		result <- read(vc, mat)
	}(d.vc, &d.scratch)

	var timeout <-chan time.Time
	if d.cfg.ReadTimeout > 0 {
		timer := time.NewTimer(d.cfg.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ok := <-result:
		if !ok {
			return ErrReadFailed
		}
	case <-timeout:
		d.pending = result
		return xerror.Errorf("%w: no frame within %s", ErrReadTimeout, d.cfg.ReadTimeout)
	}

	return cvmat.CopyTo(d.scratch, buf, mode)
}

func (d *openCVDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	vc, scratch, pending := d.vc, d.scratch, d.pending
	d.vc, d.pending = nil, nil

	if pending != nil {
		// a timed out read still owns the capture handle and scratch mat
		go func() {
			<-pending
			vc.Close()
			scratch.Close()
		}()
		return nil
	}

	scratch.Close()
	return vc.Close()
}
