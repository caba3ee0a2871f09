// Package canvas draws into a surface's pixel buffer between BeginFrame and
// EndFrame.
package canvas

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/1broseidon/nativewm/internal/platform"
)

var (
	ErrFrameInProgress = errors.New("frame already begun")
	ErrNoFrame         = errors.New("no frame in progress")
)

// Canvas is the drawing surface handed to widgets during painting.
// Coordinates are relative to the current origin.
type Canvas interface {
	BeginFrame(dirty platform.Rect) error
	EndFrame() error
	InFrame() bool

	Origin() (int, int)
	SetOrigin(x, y int)

	FillRect(r platform.Rect, c color.Color)
	DrawText(text string, x, y int, c color.Color)
	MeasureText(text string) int
	FontHeight() int
	Size() (int, int)
}

// Target is what an Image canvas draws into.
type Target interface {
	Pixels() *image.RGBA
	Present(r platform.Rect) error
}

// Image is a Canvas over an RGBA buffer.
type Image struct {
	target Target
	face   font.Face

	pixels  *image.RGBA
	clip    image.Rectangle
	dirty   platform.Rect
	ox, oy  int
	inFrame bool
	frames  int
}

var _ Canvas = (*Image)(nil)

// New creates a canvas drawing into target.
func New(target Target) *Image {
	return &Image{target: target, face: basicfont.Face7x13}
}

// NewOffscreen creates a canvas with a private w x h buffer. It is used for
// text measurement outside of painting.
func NewOffscreen(w, h int) *Image {
	return New(&offscreen{pixels: image.NewRGBA(image.Rect(0, 0, w, h))})
}

// BeginFrame starts a frame limited to dirty.
func (c *Image) BeginFrame(dirty platform.Rect) error {
	if c.inFrame {
		return ErrFrameInProgress
	}
	c.pixels = c.target.Pixels()
	c.clip = dirty.Image().Intersect(c.pixels.Rect)
	c.dirty = dirty
	c.ox, c.oy = 0, 0
	c.inFrame = true
	c.frames++
	return nil
}

// EndFrame finishes the frame and presents the dirty region.
func (c *Image) EndFrame() error {
	if !c.inFrame {
		return ErrNoFrame
	}
	c.inFrame = false
	if c.clip.Empty() {
		return nil
	}
	return c.target.Present(platform.Rect{
		X:      c.clip.Min.X,
		Y:      c.clip.Min.Y,
		Width:  c.clip.Dx(),
		Height: c.clip.Dy(),
	})
}

func (c *Image) InFrame() bool { return c.inFrame }

// Frames returns how many frames have been begun on the canvas.
func (c *Image) Frames() int { return c.frames }

// Dirty returns the region passed to the most recent BeginFrame.
func (c *Image) Dirty() platform.Rect { return c.dirty }

func (c *Image) Origin() (int, int) { return c.ox, c.oy }

func (c *Image) SetOrigin(x, y int) {
	c.ox, c.oy = x, y
}

// FillRect fills r with col, clipped to the frame's dirty region.
func (c *Image) FillRect(r platform.Rect, col color.Color) {
	if !c.inFrame {
		return
	}
	rr := r.Translate(c.ox, c.oy).Image().Intersect(c.clip)
	if rr.Empty() {
		return
	}
	draw.Draw(c.pixels, rr, image.NewUniform(col), image.Point{}, draw.Over)
}

// DrawText draws text with its top-left corner at (x, y).
func (c *Image) DrawText(text string, x, y int, col color.Color) {
	if !c.inFrame || c.clip.Empty() {
		return
	}
	dst, ok := c.pixels.SubImage(c.clip).(*image.RGBA)
	if !ok {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x+c.ox, y+c.oy+c.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// MeasureText returns the advance width of text in pixels.
func (c *Image) MeasureText(text string) int {
	return font.MeasureString(c.face, text).Ceil()
}

func (c *Image) FontHeight() int {
	return c.face.Metrics().Height.Ceil()
}

// Size returns the size of the underlying buffer.
func (c *Image) Size() (int, int) {
	p := c.pixels
	if p == nil {
		p = c.target.Pixels()
	}
	return p.Rect.Dx(), p.Rect.Dy()
}

type offscreen struct {
	pixels *image.RGBA
}

func (o *offscreen) Pixels() *image.RGBA          { return o.pixels }
func (o *offscreen) Present(platform.Rect) error { return nil }
