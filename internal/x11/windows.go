package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// eventMask selects the events a toolkit window needs to receive.
const eventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease

// putImageChunk bounds the payload of a single PutImage request.
const putImageChunk = 256 * 1024

// Window is a toolkit-owned top-level X window and its graphics context.
type Window struct {
	ID xproto.Window
	GC xproto.Gcontext
}

// CreateWindow creates and maps a managed top-level window.
func (c *Connection) CreateWindow(title string, x, y, width, height int, resizable bool) (*Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}

	// Value list order follows the bit positions of the mask (low → high).
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(width), uint16(height),
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{0, eventMask},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	if err := ewmh.WmNameSet(c.XUtil, wid, title); err != nil {
		// Not every WM supports EWMH; fall back to the ICCCM name.
		icccm.WmNameSet(c.XUtil, wid, title)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}
	if !resizable {
		icccm.WmNormalHintsSet(c.XUtil, wid, &icccm.NormalHints{
			Flags:     icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize,
			MinWidth:  uint(width),
			MinHeight: uint(height),
			MaxWidth:  uint(width),
			MaxHeight: uint(height),
		})
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("create gc: %w", err)
	}

	xproto.MapWindow(conn, wid)

	return &Window{ID: wid, GC: gc}, nil
}

// MoveWindow moves a window to the given root-relative position.
func (c *Connection) MoveWindow(w *Window, x, y int) error {
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		w.ID,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)},
	).Check()
}

// ResizeWindow changes a window's size.
func (c *Connection) ResizeWindow(w *Window, width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		w.ID,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	).Check()
}

// WindowGeometry returns the server's current geometry for a window.
func (c *Connection) WindowGeometry(w *Window) (x, y, width, height int, err error) {
	geom, err := xwindow.New(c.XUtil, w.ID).Geometry()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return geom.X(), geom.Y(), geom.Width(), geom.Height(), nil
}

// PutImage uploads region r of img into the window at the same position.
func (c *Connection) PutImage(w *Window, img *image.RGBA, r image.Rectangle) error {
	r = r.Intersect(img.Rect)
	if r.Empty() {
		return nil
	}

	conn := c.XUtil.Conn()
	depth := c.XUtil.Screen().RootDepth
	width := r.Dx()
	rowsPerChunk := max(1, putImageChunk/(width*4))

	for y0 := r.Min.Y; y0 < r.Max.Y; y0 += rowsPerChunk {
		y1 := min(y0+rowsPerChunk, r.Max.Y)
		data := make([]byte, 0, width*(y1-y0)*4)
		for y := y0; y < y1; y++ {
			row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
			// ZPixmap on little-endian TrueColor visuals is BGRX.
			for i := 0; i < len(row); i += 4 {
				data = append(data, row[i+2], row[i+1], row[i], 0)
			}
		}
		err := xproto.PutImageChecked(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(w.ID),
			w.GC,
			uint16(width), uint16(y1-y0),
			int16(r.Min.X), int16(y0),
			0, depth,
			data,
		).Check()
		if err != nil {
			return fmt.Errorf("put image: %w", err)
		}
	}
	return nil
}

// cursorShapes maps toolkit cursor names to X cursor font glyphs.
var cursorShapes = map[string]uint16{
	"default":   xcursor.LeftPtr,
	"arrow":     xcursor.LeftPtr,
	"hand":      xcursor.Hand2,
	"pointer":   xcursor.Hand2,
	"text":      xcursor.XTerm,
	"wait":      xcursor.Watch,
	"cross":     xcursor.Crosshair,
	"crosshair": xcursor.Crosshair,
	"move":      xcursor.Fleur,
}

// SetCursor sets the pointer cursor shown over a window.
func (c *Connection) SetCursor(w *Window, name string) error {
	shape, ok := cursorShapes[name]
	if !ok {
		return fmt.Errorf("unknown cursor %q", name)
	}
	cursor, err := xcursor.CreateCursor(c.XUtil, shape)
	if err != nil {
		return fmt.Errorf("create cursor %q: %w", name, err)
	}
	conn := c.XUtil.Conn()
	defer xproto.FreeCursor(conn, cursor)
	return xproto.ChangeWindowAttributesChecked(conn, w.ID, xproto.CwCursor, []uint32{uint32(cursor)}).Check()
}

// DestroyWindow frees the graphics context and destroys the window.
func (c *Connection) DestroyWindow(w *Window) {
	conn := c.XUtil.Conn()
	if w.GC != 0 {
		xproto.FreeGC(conn, w.GC)
	}
	if w.ID != 0 {
		xproto.DestroyWindow(conn, w.ID)
	}
	w.GC = 0
	w.ID = 0
}
