package ggmix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/gpucontext"
)

// Presenter shows a finished frame. The pixmap is only valid for the
// duration of the call.
type Presenter interface {
	Present(frame *gg.Pixmap) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(frame *gg.Pixmap) error

// Present implements Presenter.
func (f PresenterFunc) Present(frame *gg.Pixmap) error { return f(frame) }

// Compositor is the real-time driver. It owns the back buffer the units
// composite into and the front buffer that is presented, runs the repaint
// loop, forwards input to units and the channel editor, and draws the
// edit-mode overlay.
type Compositor struct {
	opts   options
	logger *slog.Logger
	clock  Clock

	events   *EventQueue
	channels *ChannelRegistry
	units    *UnitRegistry
	editor   *ChannelEditor
	pointer  pointerTracker

	paintMu sync.Mutex // guards the buffers and everything drawn into them
	back    *Canvas
	front   *Canvas
	face    text.Face

	refreshMu   sync.Mutex
	refresh     bool
	refreshDone chan struct{}

	sleep   atomic.Int64 // nanoseconds between paints
	running atomic.Bool
	frames  atomic.Uint64
	last    PassStats
}

// NewCompositor creates a compositor with an empty channel and unit
// registry and a cleared back buffer.
func NewCompositor(opts ...Option) *Compositor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	c := &Compositor{
		opts:        o,
		logger:      logger,
		clock:       o.clock,
		events:      NewEventQueue(),
		back:        newCanvas(gg.NewContext(o.width, o.height)),
		front:       newCanvas(gg.NewContext(o.width, o.height)),
		face:        o.labelFace,
		refresh:     true,
		refreshDone: make(chan struct{}),
	}
	for _, l := range o.listeners {
		c.events.Subscribe(l)
	}

	c.units = NewUnitRegistry(c.events)
	c.units.logger = logger
	c.channels = NewChannelRegistry(c.events, c.units)
	c.channels.logger = logger
	c.editor = NewChannelEditor(c.channels)

	c.sleep.Store(int64(frameSleep(o.maxFrameRate)))
	c.back.Context.ClearWithColor(o.background)
	return c
}

// Channels returns the channel registry.
func (c *Compositor) Channels() *ChannelRegistry { return c.channels }

// Units returns the unit registry.
func (c *Compositor) Units() *UnitRegistry { return c.units }

// Editor returns the channel editor.
func (c *Compositor) Editor() *ChannelEditor { return c.editor }

// Events returns the change notification queue. It is drained after every
// paint.
func (c *Compositor) Events() *EventQueue { return c.events }

// Host returns the instantiation parameters for units on this surface.
func (c *Compositor) Host() Host {
	w, h := c.Size()
	return Host{Width: w, Height: h, DataPath: c.opts.dataPath}
}

// Size returns the buffer size.
func (c *Compositor) Size() (width, height int) {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	return c.back.Width(), c.back.Height()
}

// Frame returns the last presented frame. It is overwritten by the next
// paint; callers that keep it must copy it.
func (c *Compositor) Frame() *gg.Pixmap {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	return c.front.ResizeTarget()
}

// Buffer returns the composite buffer without the edit-mode overlay.
func (c *Compositor) Buffer() *gg.Pixmap {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	return c.back.ResizeTarget()
}

// SavePNG writes the last presented frame to path.
func (c *Compositor) SavePNG(path string) error {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	return c.front.SavePNG(path)
}

// Frames returns the number of paints performed.
func (c *Compositor) Frames() uint64 { return c.frames.Load() }

// LastPass returns the statistics of the most recent composite pass.
func (c *Compositor) LastPass() PassStats {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()
	return c.last
}

// Resize reallocates both buffers, clears them on the next paint and makes
// every unit run its setup again.
func (c *Compositor) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: %w", width, height, ErrInvalidArgument)
	}

	c.paintMu.Lock()
	if c.back.Width() == width && c.back.Height() == height {
		c.paintMu.Unlock()
		return nil
	}
	if err := c.back.Resize(width, height); err != nil {
		c.paintMu.Unlock()
		c.logger.Error("ggmix: back buffer reallocation failed", "width", width, "height", height, "err", err)
		return fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	if err := c.front.Resize(width, height); err != nil {
		c.paintMu.Unlock()
		c.logger.Error("ggmix: front buffer reallocation failed", "width", width, "height", height, "err", err)
		return fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	c.setRefresh()
	c.paintMu.Unlock()

	c.units.DispatchResize(width, height)
	c.logger.Info("ggmix: resized", "width", width, "height", height)
	return nil
}

func (c *Compositor) setRefresh() chan struct{} {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.refresh = true
	return c.refreshDone
}

// takeRefresh consumes the refresh flag. done is closed by the caller once
// the paint that consumed it has finished.
func (c *Compositor) takeRefresh() (force bool, done chan struct{}) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if !c.refresh {
		return false, nil
	}
	c.refresh = false
	done = c.refreshDone
	c.refreshDone = make(chan struct{})
	return true, done
}

// ForceRefresh clears the back buffer on the next paint. While the render
// loop is running it waits for that paint to finish, up to the refresh
// timeout or until ctx ends.
func (c *Compositor) ForceRefresh(ctx context.Context) error {
	done := c.setRefresh()
	if !c.running.Load() {
		return nil
	}

	timer := time.NewTimer(c.opts.refreshTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// frameSleep converts a frame rate into the loop's sleep, rounded to whole
// milliseconds and never below MinFrameSleep.
func frameSleep(fps float64) time.Duration {
	ms := math.Round(1000 / fps)
	d := time.Duration(ms) * time.Millisecond
	if d < MinFrameSleep {
		d = MinFrameSleep
	}
	return d
}

// MaxFrameRate returns the effective repaint rate in frames per second.
func (c *Compositor) MaxFrameRate() float64 {
	return float64(time.Second) / float64(c.sleep.Load())
}

// SetMaxFrameRate changes the repaint rate. Rates above 100 fps are capped
// by MinFrameSleep.
func (c *Compositor) SetMaxFrameRate(fps float64) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return fmt.Errorf("frame rate %v: %w", fps, ErrInvalidArgument)
	}
	c.sleep.Store(int64(frameSleep(fps)))
	c.logger.Info("ggmix: max frame rate", "requested", fps, "effective", c.MaxFrameRate())
	return nil
}

// Paint performs one frame: consume a forced refresh, run the composite
// pass, copy the result to the front buffer, draw the edit overlay there,
// present it and deliver queued notifications.
func (c *Compositor) Paint(now time.Time) PassStats {
	force, done := c.takeRefresh()

	c.paintMu.Lock()
	if force {
		c.back.Identity()
		c.back.ResetClip()
		c.back.Context.ClearWithColor(c.opts.background)
	}
	c.back.pointer = c.pointer.state()
	stats := c.units.CompositePass(c.back, c.channels, now)

	copy(c.front.ResizeTarget().Data(), c.back.ResizeTarget().Data())
	if c.channels.EditMode() {
		c.paintOverlay()
	}
	if p := c.opts.presenter; p != nil {
		if err := p.Present(c.front.ResizeTarget()); err != nil {
			c.logger.Warn("ggmix: present failed", "err", err)
		}
	}
	c.last = stats
	c.paintMu.Unlock()

	c.frames.Add(1)
	if done != nil {
		close(done)
	}
	c.events.Drain()

	if stats.Failed > 0 || stats.Filled > 0 {
		c.logger.Debug("ggmix: pass", "drawn", stats.Drawn, "throttled", stats.Throttled,
			"failed", stats.Failed, "filled", stats.Filled)
	}
	return stats
}

func (c *Compositor) paintOverlay() {
	if c.face == nil {
		c.face = DefaultLabelFace(LabelSize)
	}
	f := c.front
	f.Identity()
	f.ResetClip()
	c.channels.PaintOutlines(f, c.face)
	c.editor.PaintInProgress(f)

	if c.face == nil {
		return
	}
	st := CaptureState(f)
	f.SetFont(c.face)
	w, h := f.MeasureString(editModeLabel)
	f.SetFillBrush(gg.Solid(gg.Black))
	f.DrawRectangle(10, 10, w+8, h+4)
	_ = f.Fill()
	f.SetFillBrush(gg.Solid(gg.Red))
	f.DrawStringAnchored(editModeLabel, 14, 12, 0, 0)
	st.Apply(f)
}

const editModeLabel = "EDIT MODE"

// Run paints repeatedly, sleeping between paints according to the max frame
// rate, until ctx is cancelled. Only one Run may be active at a time.
func (c *Compositor) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("ggmix: compositor already running")
	}
	defer c.running.Store(false)

	c.logger.Info("ggmix: render loop started", "max_frame_rate", c.MaxFrameRate())
	defer c.logger.Info("ggmix: render loop stopped", "frames", c.frames.Load())

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		c.Paint(c.clock.Now())
		timer.Reset(time.Duration(c.sleep.Load()))
	}
}

// Running reports whether Run is active.
func (c *Compositor) Running() bool { return c.running.Load() }

// PointerMove forwards a pointer move to subscribed units.
func (c *Compositor) PointerMove(x, y float64) {
	c.units.DispatchPointer(c.pointer.move(x, y))
}

// PointerPress forwards a button press to subscribed units.
func (c *Compositor) PointerPress(button gpucontext.MouseButton, x, y float64) {
	c.units.DispatchPointer(c.pointer.press(button, x, y))
}

// PointerRelease forwards a button release, and a click when the release
// completes one, to subscribed units and to the channel editor.
func (c *Compositor) PointerRelease(button gpucontext.MouseButton, x, y float64) {
	rel, click := c.pointer.release(button, x, y, c.clock.Now())
	c.units.DispatchPointer(rel)
	clicks := 0
	if click != nil {
		c.units.DispatchPointer(*click)
		clicks = click.Clicks
	}
	if button == gpucontext.MouseButtonLeft {
		c.editor.HandleRelease(x, y, clicks)
	}
}

// KeyPress forwards a key press to subscribed units. Escape in edit mode
// cancels the channel editor's path instead.
func (c *Compositor) KeyPress(key gpucontext.Key, mods gpucontext.Modifiers) {
	if key == gpucontext.KeyEscape && c.channels.EditMode() && c.editor.Cancel() {
		return
	}
	c.units.DispatchKey(KeyEvent{Kind: KeyPressed, Key: key, Mods: mods})
}

// KeyRelease forwards a key release to subscribed units.
func (c *Compositor) KeyRelease(key gpucontext.Key, mods gpucontext.Modifiers) {
	c.units.DispatchKey(KeyEvent{Kind: KeyReleased, Key: key, Mods: mods})
}

// KeyTyped forwards a typed character to subscribed units.
func (c *Compositor) KeyTyped(r rune) {
	c.units.DispatchKey(KeyEvent{Kind: KeyTyped, Rune: r})
}

// AttachEvents subscribes the compositor to a window's input and resize
// events.
func (c *Compositor) AttachEvents(src gpucontext.EventSource) {
	src.OnMouseMove(c.PointerMove)
	src.OnMousePress(c.PointerPress)
	src.OnMouseRelease(c.PointerRelease)
	src.OnKeyPress(c.KeyPress)
	src.OnKeyRelease(c.KeyRelease)
	src.OnTextInput(func(s string) {
		for _, r := range s {
			c.KeyTyped(r)
		}
	})
	src.OnResize(func(w, h int) {
		if err := c.Resize(w, h); err != nil {
			c.logger.Warn("ggmix: resize from window failed", "err", err)
		}
	})
}
