package capture

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"github.com/tauraamui/framegrab/pkg/frame"
	"github.com/tauraamui/xerror"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const (
	syntheticWidth  = 600
	syntheticHeight = 400
	labelFontSize   = 48.0
)

var timeNow = func() time.Time {
	return time.Now()
}

var sleep = func(d time.Duration) {
	time.Sleep(d)
}

// Synthetic returns a device that needs no hardware. Every frame is a
// fixed size canvas labelled with the channel and the capture time.
func Synthetic() Device {
	return &syntheticDevice{size: image.Pt(syntheticWidth, syntheticHeight)}
}

type syntheticDevice struct {
	uuid     string
	size     image.Point
	open     bool
	cfg      Config
	base     image.Image
	face     font.Face
	nextSlot time.Time
	frames   int
}

func (d *syntheticDevice) ID() string {
	if len(d.uuid) == 0 {
		d.uuid = uuid.NewString()
	}
	return d.uuid
}

func (d *syntheticDevice) Open(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return ErrOpenCanceled
	}

	ttf, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return xerror.Errorf("%w: unable to load label font: %v", ErrOpenFailed, err)
	}

	d.face = truetype.NewFace(ttf, &truetype.Options{Size: labelFontSize, Hinting: font.HintingFull})
	d.base = renderBaseCanvas(d.size.X, d.size.Y)
	d.cfg = cfg
	d.nextSlot = timeNow()
	d.frames = 0
	d.open = true
	return nil
}

func (d *syntheticDevice) Read(buf *frame.Buffer, mode frame.Fill) error {
	if !d.open {
		return ErrNotOpen
	}

	d.waitForSlot()

	canvas := cloneImage(d.base)
	drawLabel(canvas, d.face, 10, 60, fmt.Sprintf("CHANNEL %d", d.cfg.Channel))
	drawLabel(canvas, d.face, 10, 130, fmt.Sprintf("FRAME %d", d.frames))
	drawLabel(canvas, d.face, 10, 200, timeNow().Format("15:04:05.000"))

	if err := buf.Prepare(frame.Dimensions{W: d.size.X, H: d.size.Y}, frame.BGR24, mode); err != nil {
		return err
	}
	buf.Draw(canvas)
	d.frames++
	return nil
}

// waitForSlot blocks until the next frame is due at the configured rate.
func (d *syntheticDevice) waitForSlot() {
	if d.cfg.Framerate <= 0 {
		return
	}
	if wait := d.nextSlot.Sub(timeNow()); wait > 0 {
		sleep(wait)
	}
	d.nextSlot = d.nextSlot.Add(time.Second / time.Duration(d.cfg.Framerate))
}

func (d *syntheticDevice) Close() error {
	d.open = false
	d.base = nil
	if d.face != nil {
		d.face.Close()
		d.face = nil
	}
	return nil
}

func renderBaseCanvas(w, h int) image.Image {
	hw, hh := float64(w/2), float64(h/2)
	r := float64(h) / 2
	θ := 2 * math.Pi / 3
	cr := &circle{hw - r*math.Sin(0), hh - r*math.Cos(0), float64(h) * 0.75}
	cg := &circle{hw - r*math.Sin(θ), hh - r*math.Cos(θ), float64(h) * 0.75}
	cb := &circle{hw - r*math.Sin(-θ), hh - r*math.Cos(-θ), float64(h) * 0.75}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, color.RGBA{
				cr.brightness(float64(x), float64(y)),
				cg.brightness(float64(x), float64(y)),
				cb.brightness(float64(x), float64(y)),
				255,
			})
		}
	}
	return img
}

func cloneImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

func drawLabel(canvas *image.RGBA, face font.Face, x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	drawer.DrawString(text)
}

type circle struct {
	X, Y, R float64
}

func (c *circle) brightness(x, y float64) uint8 {
	dx, dy := c.X-x, c.Y-y
	if math.Sqrt(dx*dx+dy*dy)/c.R > 1 {
		return 0
	}
	return 255
}
