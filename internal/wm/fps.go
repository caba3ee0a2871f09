package wm

import "time"

// fpsCounter averages the frame rate over one-second windows.
type fpsCounter struct {
	start  time.Time
	frames int
	fps    int
}

func (f *fpsCounter) tick(now time.Time) int {
	if f.start.IsZero() {
		f.start = now
		return f.fps
	}
	f.frames++
	if elapsed := now.Sub(f.start); elapsed >= time.Second {
		f.fps = int(time.Duration(f.frames) * time.Second / elapsed)
		f.frames = 0
		f.start = now
	}
	return f.fps
}
