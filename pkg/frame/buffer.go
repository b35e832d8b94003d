package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tauraamui/xerror"
)

type Dimensions struct {
	W, H int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.W, d.H)
}

// Format is the pixel element type held by a Buffer.
type Format int

const (
	FormatUnknown Format = iota
	// Gray8 stores one byte per pixel.
	Gray8
	// BGR24 stores three bytes per pixel in blue, green, red order.
	BGR24
)

func (f Format) BytesPerPixel() int {
	switch f {
	case Gray8:
		return 1
	case BGR24:
		return 3
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case BGR24:
		return "bgr24"
	default:
		return "unknown"
	}
}

// Fill tells Prepare whether the incoming frame sets the buffer's
// dimensions or must match the ones already set.
type Fill int

const (
	Establish Fill = iota
	Reuse
)

// Buffer owns the pixels of the most recently acquired frame. It is
// created empty, sized by the first Prepare in Establish mode and then
// written in place by every acquisition.
type Buffer struct {
	dims        Dimensions
	format      Format
	established bool
	allocs      int
	Pix         []byte
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Prepare readies the buffer to receive a frame of the given dimensions
// and format. Storage is only reallocated in Establish mode and only when
// the required size differs from what is already held.
func (b *Buffer) Prepare(d Dimensions, f Format, mode Fill) error {
	if d.W <= 0 || d.H <= 0 || f.BytesPerPixel() == 0 {
		return xerror.Errorf("%w: invalid frame geometry %s %s", ErrDecodeFailed, d, f)
	}

	if mode == Reuse {
		if !b.established {
			return ErrNotOpened
		}
		if d != b.dims || f != b.format {
			return xerror.Errorf(
				"%w: expected %s %s, got %s %s", ErrDimensionsChanged, b.dims, b.format, d, f,
			)
		}
		return nil
	}

	size := d.W * d.H * f.BytesPerPixel()
	if len(b.Pix) != size {
		b.Pix = make([]byte, size)
		b.allocs++
	}
	b.dims = d
	b.format = f
	b.established = true
	return nil
}

func (b *Buffer) Dimensions() Dimensions { return b.dims }

func (b *Buffer) Format() Format { return b.format }

func (b *Buffer) Established() bool { return b.established }

// Stride is the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.dims.W * b.format.BytesPerPixel()
}

// Allocations reports how many times the pixel storage has been allocated.
func (b *Buffer) Allocations() int { return b.allocs }

// Image returns a copy of the current frame as a Go image.
func (b *Buffer) Image() image.Image {
	r := image.Rect(0, 0, b.dims.W, b.dims.H)
	switch b.format {
	case Gray8:
		img := image.NewGray(r)
		copy(img.Pix, b.Pix)
		return img
	case BGR24:
		img := image.NewRGBA(r)
		for i, j := 0, 0; i+2 < len(b.Pix); i, j = i+3, j+4 {
			img.Pix[j] = b.Pix[i+2]
			img.Pix[j+1] = b.Pix[i+1]
			img.Pix[j+2] = b.Pix[i]
			img.Pix[j+3] = 0xff
		}
		return img
	default:
		return image.NewGray(image.Rect(0, 0, 0, 0))
	}
}

// SetGray writes a single pixel of a Gray8 buffer.
func (b *Buffer) SetGray(x, y int, c color.Gray) {
	b.Pix[y*b.Stride()+x] = c.Y
}

// SetBGR writes a single pixel of a BGR24 buffer.
func (b *Buffer) SetBGR(x, y int, c color.RGBA) {
	i := y*b.Stride() + x*3
	b.Pix[i] = c.B
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.R
}

// Draw copies img into the buffer, converting colours to the buffer's
// format. The buffer must already be prepared for img's bounds.
func (b *Buffer) Draw(img image.Image) {
	r := img.Bounds()
	for y := 0; y < b.dims.H && y < r.Dy(); y++ {
		for x := 0; x < b.dims.W && x < r.Dx(); x++ {
			c := img.At(r.Min.X+x, r.Min.Y+y)
			switch b.format {
			case Gray8:
				b.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
			case BGR24:
				b.SetBGR(x, y, color.RGBAModel.Convert(c).(color.RGBA))
			}
		}
	}
}
