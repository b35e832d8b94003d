package decode

import (
	"bytes"
	"strings"

	"github.com/spakin/netpbm"
	"github.com/tauraamui/framegrab/pkg/cvmat"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
	"gocv.io/x/gocv"
)

// Decoder turns the raw contents of an image file into pixels held by buf.
type Decoder interface {
	Decode(data []byte, buf *frame.Buffer, mode frame.Fill) error
}

func Default() Decoder {
	return Netpbm()
}

func Netpbm() Decoder {
	return netpbmDecoder{}
}

func OpenCV() Decoder {
	return openCVDecoder{}
}

func Resolve(name string) Decoder {
	switch strings.ToLower(name) {
	case "opencv":
		return OpenCV()
	default:
		return Default()
	}
}

// Sniff reports the buffer format a Netpbm payload decodes to, based on
// its magic number.
func Sniff(data []byte) (frame.Format, error) {
	if len(data) < 2 || data[0] != 'P' {
		return frame.FormatUnknown, xerror.Errorf("%w: missing netpbm magic number", frame.ErrDecodeFailed)
	}
	switch data[1] {
	case '1', '2', '4', '5':
		return frame.Gray8, nil
	case '3', '6':
		return frame.BGR24, nil
	default:
		return frame.FormatUnknown, xerror.Errorf("%w: unsupported netpbm type P%c", frame.ErrDecodeFailed, data[1])
	}
}

type netpbmDecoder struct{}

func (d netpbmDecoder) Decode(data []byte, buf *frame.Buffer, mode frame.Fill) error {
	format, err := Sniff(data)
	if err != nil {
		return err
	}

	target := netpbm.PGM
	if format == frame.BGR24 {
		target = netpbm.PPM
	}

	img, err := netpbm.Decode(bytes.NewReader(data), &netpbm.DecodeOptions{
		Target:      target,
		Exact:       false,
		PBMMaxValue: 255,
	})
	if err != nil {
		return xerror.Errorf("%w: %v", frame.ErrDecodeFailed, err)
	}

	b := img.Bounds()
	if err := buf.Prepare(frame.Dimensions{W: b.Dx(), H: b.Dy()}, format, mode); err != nil {
		return err
	}
	buf.Draw(img)
	return nil
}

type openCVDecoder struct{}

func (d openCVDecoder) Decode(data []byte, buf *frame.Buffer, mode frame.Fill) error {
	if len(data) == 0 {
		return xerror.Errorf("%w: empty file", frame.ErrDecodeFailed)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadAnyColor)
	if err != nil {
		return xerror.Errorf("%w: %v", frame.ErrDecodeFailed, err)
	}
	defer mat.Close()

	return cvmat.CopyTo(mat, buf, mode)
}
