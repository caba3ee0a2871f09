package wm

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/1broseidon/nativewm/internal/nativewindow"
	"github.com/1broseidon/nativewm/internal/platform"
	"github.com/1broseidon/nativewm/internal/widget"
)

var (
	fpsBackground = color.RGBA{A: 0xc0}
	fpsForeground = color.RGBA{R: 0xff, G: 0xff, B: 0x60, A: 0xff}
)

// Paint renders one frame. Frames are begun on every dirty native window
// before any window is painted and ended only after all of them are, so
// surfaces shared by several windows are bracketed exactly once.
func (m *Native) Paint() error {
	var frames []*nativewindow.Window
	begun := make(map[*nativewindow.Window]bool)

	for win := range m.root.BackToFront() {
		nw, ok := m.paintable(win)
		if !ok || begun[nw] || nw.DirtyRect().Empty() {
			continue
		}
		if err := nw.Canvas().BeginFrame(nw.CalcDirtyRect()); err != nil {
			m.logger.Warn("begin frame failed", "handle", nw.Handle(), "error", err)
			continue
		}
		begun[nw] = true
		frames = append(frames, nw)
	}
	if len(frames) == 0 {
		return nil
	}

	for win := range m.root.BackToFront() {
		nw, ok := m.paintable(win)
		if !ok || !begun[nw] {
			continue
		}
		c := nw.Canvas()
		b := nw.Bounds()
		c.SetOrigin(win.X-b.X, win.Y-b.Y)
		win.Paint(c)
	}
	for _, nw := range frames {
		nw.UpdateLastDirtyRect()
	}

	if m.showFPS {
		fps := m.fps.tick(m.now())
		for _, nw := range frames {
			m.paintFPS(nw, fps)
		}
	}

	var errs []error
	for _, nw := range frames {
		if err := nw.Canvas().EndFrame(); err != nil {
			errs = append(errs, fmt.Errorf("end frame on %d: %w", nw.Handle(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Native) paintable(win *widget.Widget) (*nativewindow.Window, bool) {
	if !win.Visible || win.Stage() != widget.StageOpen {
		return nil, false
	}
	nw, ok := win.NativeWindow()
	if !ok || nw.Closed() {
		return nil, false
	}
	return nw, true
}

// paintFPS draws the frame rate in the top-left corner and keeps that
// corner dirty so the counter refreshes every frame.
func (m *Native) paintFPS(nw *nativewindow.Window, fps int) {
	text := fmt.Sprintf("FPS: %d", fps)
	c := nw.Canvas()
	c.SetOrigin(0, 0)
	r := platform.Rect{Width: m.MeasureText(text) + 4, Height: c.FontHeight() + 2}
	c.FillRect(r, fpsBackground)
	c.DrawText(text, 2, 1, fpsForeground)
	nw.Invalidate(r)
}
