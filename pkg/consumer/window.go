package consumer

import (
	"github.com/tauraamui/framegrab/pkg/cvmat"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

var ErrWindowClosed = xerror.New("display window was closed")

// Window shows frames in an OpenCV highgui window, created on the first
// frame so it takes that frame's size.
type Window struct {
	title string
	win   *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{title: title}
}

func (w *Window) Display(buf *frame.Buffer) error {
	if w.win == nil {
		w.win = gocv.NewWindow(w.title)
	}

	mat, err := cvmat.FromBuffer(buf)
	if err != nil {
		return xerror.Errorf("unable to wrap frame for display: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return nil
}

// Flush lets the window process its events so the frame is painted.
func (w *Window) Flush() error {
	if w.win == nil {
		return nil
	}
	w.win.WaitKey(1)
	if !w.win.IsOpen() {
		return ErrWindowClosed
	}
	return nil
}

func (w *Window) Close() error {
	if w.win == nil {
		return nil
	}
	err := w.win.Close()
	w.win = nil
	return err
}
