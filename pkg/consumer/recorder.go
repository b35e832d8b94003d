package consumer

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tauraamui/framegrab/pkg/cvmat"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/framegrab/pkg/log"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

const codec = "MJPG"

var fs = afero.NewOsFs()

type videoWriter interface {
	Write(gocv.Mat) error
	Close() error
}

var openVideoWriter = func(filename, codec string, fps float64, width, height int, isColor bool) (videoWriter, error) {
	return gocv.VideoWriterFile(filename, codec, fps, width, height, isColor)
}

// Recorder writes every delivered frame to a video file. The file is
// opened on the first frame using that frame's dimensions.
type Recorder struct {
	path    string
	fps     float64
	vw      videoWriter
	written int
}

func NewRecorder(path string, fps float64) *Recorder {
	return &Recorder{path: path, fps: fps}
}

func (r *Recorder) init(buf *frame.Buffer) error {
	if err := ensureDirectoryPathExists(filepath.Dir(r.path)); err != nil {
		return xerror.Errorf("unable to create recording directory: %w", err)
	}

	d := buf.Dimensions()
	vw, err := openVideoWriter(r.path, codec, r.fps, d.W, d.H, buf.Format() == frame.BGR24)
	if err != nil {
		return xerror.Errorf("unable to open video writer [%s]: %w", r.path, err)
	}
	r.vw = vw
	log.Info("Recording frames to [%s]", r.path)
	return nil
}

func ensureDirectoryPathExists(path string) error {
	err := fs.MkdirAll(path, os.ModePerm|os.ModeDir)
	if err == nil || os.IsExist(err) {
		return nil
	}
	return err
}

func (r *Recorder) Display(buf *frame.Buffer) error {
	if r.vw == nil {
		if err := r.init(buf); err != nil {
			return err
		}
	}

	mat, err := cvmat.FromBuffer(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if err := r.vw.Write(mat); err != nil {
		return xerror.Errorf("unable to write frame to [%s]: %w", r.path, err)
	}
	r.written++
	return nil
}

func (r *Recorder) Flush() error { return nil }

func (r *Recorder) Written() int { return r.written }

func (r *Recorder) Close() error {
	if r.vw == nil {
		return nil
	}
	err := r.vw.Close()
	r.vw = nil
	return err
}
