// Package cvmat moves pixels between OpenCV mats and frame buffers.
package cvmat

import (
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// CopyTo writes mat into buf. Single channel mats become Gray8, three
// channel mats BGR24 and four channel mats are converted to BGR24 first.
func CopyTo(mat gocv.Mat, buf *frame.Buffer, mode frame.Fill) error {
	if mat.Empty() {
		return xerror.Errorf("%w: empty mat", frame.ErrDecodeFailed)
	}

	src := mat
	switch mat.Channels() {
	case 1, 3:
	case 4:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorBGRAToBGR)
		src = bgr
	default:
		return xerror.Errorf("%w: unsupported channel count %d", frame.ErrDecodeFailed, mat.Channels())
	}

	format := frame.Gray8
	if src.Channels() == 3 {
		format = frame.BGR24
	}

	d := frame.Dimensions{W: src.Cols(), H: src.Rows()}
	if err := buf.Prepare(d, format, mode); err != nil {
		return err
	}

	if n := copy(buf.Pix, src.ToBytes()); n != len(buf.Pix) {
		return xerror.Errorf("%w: copied %d of %d bytes from mat", frame.ErrDecodeFailed, n, len(buf.Pix))
	}
	return nil
}

// FromBuffer returns a mat backed by the buffer's pixels. It is only valid
// until the buffer is next written and the caller must close it.
func FromBuffer(buf *frame.Buffer) (gocv.Mat, error) {
	d := buf.Dimensions()
	mt := gocv.MatTypeCV8UC1
	if buf.Format() == frame.BGR24 {
		mt = gocv.MatTypeCV8UC3
	}
	return gocv.NewMatFromBytes(d.H, d.W, mt, buf.Pix)
}
