package ggmix

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/zclconf/go-cty/cty"
)

// Host describes the surface a generator is instantiated for.
type Host struct {
	Width, Height int
	DataPath      string
}

// Template builds generators. It is the blueprint a Unit instantiates.
type Template interface {
	Name() string
	Instantiate(host Host) (Generator, error)
}

type templateFunc struct {
	name string
	fn   func(Host) (Generator, error)
}

func (t templateFunc) Name() string                         { return t.name }
func (t templateFunc) Instantiate(h Host) (Generator, error) { return t.fn(h) }

// NewTemplate returns a Template called name that instantiates with fn.
func NewTemplate(name string, fn func(Host) (Generator, error)) Template {
	return templateFunc{name: name, fn: fn}
}

// Generator is a live visual draw loop. Setup runs once before the first
// Draw and again after every restart or resize; Draw runs once per frame the
// unit is due.
type Generator interface {
	Setup(c *Canvas)
	Draw(c *Canvas)
}

// FramePeriodHinter is implemented by generators that want their own frame
// cadence. A zero or negative period means every paint.
type FramePeriodHinter interface {
	FramePeriod() time.Duration
}

// PointerHandler is implemented by generators that consume pointer events.
type PointerHandler interface {
	PointerEvent(ev PointerEvent)
}

// KeyHandler is implemented by generators that consume keyboard events.
type KeyHandler interface {
	KeyEvent(ev KeyEvent)
}

// Resizer is implemented by generators that want to know the new surface
// size. It is called before the setup that follows a resize.
type Resizer interface {
	Resize(width, height int)
}

// Destroyer is implemented by generators holding resources.
type Destroyer interface {
	Destroy()
}

// VariableAccessor exposes a generator's tunable variables to scripting and
// automation. SetVariable returns an error wrapping ErrUnsupported when the
// value's type does not fit the variable.
type VariableAccessor interface {
	Variables() []string
	Variable(name string) (cty.Value, bool)
	SetVariable(name string, v cty.Value) error
}

// Unit wraps one generator: its template, its live instance, its setup flag,
// its channel binding, its opacity, its event subscriptions and its private
// drawing state. A unit without an instance is inert.
//
// Unit metadata is guarded by mu. Calls into the generator are serialized by
// genMu so the render goroutine and event delivery never overlap.
type Unit struct {
	name     string
	template Template

	genMu sync.Mutex
	gen   Generator

	mu            sync.Mutex
	host          Host
	setupDone     bool
	setupEpoch    uint64
	opacity       float64
	pointerEvents bool
	keyEvents     bool
	channel       *Channel
	lastDraw      time.Time
	drawn         bool
	frameCount    int
	frameRate     float64
	state         DrawState
	logger        *slog.Logger
}

func newUnit(t Template, logger *slog.Logger) *Unit {
	return &Unit{
		name:     normalizeName(t.Name()),
		template: t,
		opacity:  1,
		logger:   logger,
	}
}

// Name returns the unit's name, taken from its template.
func (u *Unit) Name() string { return u.name }

// Template returns the unit's blueprint.
func (u *Unit) Template() Template { return u.template }

func (u *Unit) String() string { return "unit " + u.name }

// Instantiate builds the live generator for host. If the unit already has
// one it is returned unchanged.
func (u *Unit) Instantiate(host Host) (Generator, error) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	if u.gen != nil {
		return u.gen, nil
	}

	gen, err := u.template.Instantiate(host)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", u, err)
	}
	if gen == nil {
		return nil, fmt.Errorf("instantiate %s: template returned no generator: %w", u, ErrNotInstantiated)
	}
	u.gen = gen

	u.mu.Lock()
	u.host = host
	u.setupDone = false
	u.setupEpoch++
	u.frameCount = 0
	u.drawn = false
	u.mu.Unlock()

	u.logger.Info("ggmix: unit instantiated", "unit", u.name, "width", host.Width, "height", host.Height)
	return gen, nil
}

// Instantiated reports whether the unit has a live generator.
func (u *Unit) Instantiated() bool {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	return u.gen != nil
}

// Generator returns the live generator, or nil.
func (u *Unit) Generator() Generator {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	return u.gen
}

// ResetSetup makes the next composite pass run the generator's setup again.
func (u *Unit) ResetSetup() {
	u.mu.Lock()
	u.setupDone = false
	u.setupEpoch++
	u.mu.Unlock()
}

// SetupDone reports whether setup has run since the last reset.
func (u *Unit) SetupDone() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.setupDone
}

// Destroy releases the generator and returns the unit to the
// uninstantiated state. Bindings and settings are kept.
func (u *Unit) Destroy() {
	u.genMu.Lock()
	gen := u.gen
	u.gen = nil
	if d, ok := gen.(Destroyer); ok {
		d.Destroy()
	}
	u.genMu.Unlock()

	u.mu.Lock()
	u.setupDone = false
	u.setupEpoch++
	u.drawn = false
	u.frameCount = 0
	u.frameRate = 0
	u.mu.Unlock()
}

// FramePeriod returns the generator's requested frame period, or 0.
func (u *Unit) FramePeriod() time.Duration {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	if h, ok := u.gen.(FramePeriodHinter); ok {
		return h.FramePeriod()
	}
	return 0
}

// NeedsRedraw reports whether the unit is due at now: it has never drawn,
// it states no frame period, or its period has elapsed since the last draw.
func (u *Unit) NeedsRedraw(now time.Time) bool {
	period := u.FramePeriod()
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.drawn || period <= 0 {
		return true
	}
	return now.Sub(u.lastDraw) >= period
}

// SetOpacity sets the unit's opacity, clamped to [0, 1].
func (u *Unit) SetOpacity(v float64) {
	switch {
	case math.IsNaN(v) || v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	u.mu.Lock()
	u.opacity = v
	u.mu.Unlock()
}

// Opacity returns the unit's opacity.
func (u *Unit) Opacity() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.opacity
}

// SetPointerEvents subscribes or unsubscribes the unit from pointer events.
func (u *Unit) SetPointerEvents(on bool) {
	u.mu.Lock()
	u.pointerEvents = on
	u.mu.Unlock()
}

// PointerEvents reports whether the unit receives pointer events.
func (u *Unit) PointerEvents() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.pointerEvents
}

// SetKeyEvents subscribes or unsubscribes the unit from keyboard events.
func (u *Unit) SetKeyEvents(on bool) {
	u.mu.Lock()
	u.keyEvents = on
	u.mu.Unlock()
}

// KeyEvents reports whether the unit receives keyboard events.
func (u *Unit) KeyEvents() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.keyEvents
}

// Channel returns the channel the unit is bound to, or nil.
func (u *Unit) Channel() *Channel {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.channel
}

func (u *Unit) setChannel(ch *Channel) {
	u.mu.Lock()
	u.channel = ch
	u.mu.Unlock()
}

// FrameCount returns the number of frames drawn since the last setup.
func (u *Unit) FrameCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.frameCount
}

// FrameRate returns the unit's measured frame rate in frames per second.
func (u *Unit) FrameRate() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.frameRate
}

// LastDraw returns when the unit last drew.
func (u *Unit) LastDraw() time.Time {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastDraw
}

// SavedState returns the drawing state the unit checkpointed after its last
// frame.
func (u *Unit) SavedState() DrawState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Variables lists the generator's variables in sorted order.
func (u *Unit) Variables() ([]string, error) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	va, err := u.accessorLocked()
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), va.Variables()...)
	sort.Strings(names)
	return names, nil
}

// Variable reads a generator variable.
func (u *Unit) Variable(name string) (cty.Value, error) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	va, err := u.accessorLocked()
	if err != nil {
		return cty.NilVal, err
	}
	v, ok := va.Variable(name)
	if !ok {
		return cty.NilVal, fmt.Errorf("%s variable %q: %w", u, name, ErrNotFound)
	}
	return v, nil
}

// SetVariable writes a generator variable. Writes are serialized with Draw.
func (u *Unit) SetVariable(name string, v cty.Value) error {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	va, err := u.accessorLocked()
	if err != nil {
		return err
	}
	if _, ok := va.Variable(name); !ok {
		return fmt.Errorf("%s variable %q: %w", u, name, ErrNotFound)
	}
	if err := va.SetVariable(name, v); err != nil {
		return fmt.Errorf("%s variable %q: %w", u, name, err)
	}
	return nil
}

func (u *Unit) accessorLocked() (VariableAccessor, error) {
	if u.gen == nil {
		return nil, fmt.Errorf("%s: %w", u, ErrNotInstantiated)
	}
	va, ok := u.gen.(VariableAccessor)
	if !ok {
		return nil, fmt.Errorf("%s has no variables: %w", u, ErrUnsupported)
	}
	return va, nil
}

func (u *Unit) deliverPointer(ev PointerEvent) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	if h, ok := u.gen.(PointerHandler); ok {
		u.guard("pointer event", func() { h.PointerEvent(ev) })
	}
}

func (u *Unit) deliverKey(ev KeyEvent) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	if h, ok := u.gen.(KeyHandler); ok {
		u.guard("key event", func() { h.KeyEvent(ev) })
	}
}

// resize records the new host size and forces a new setup.
func (u *Unit) resize(width, height int) {
	u.genMu.Lock()
	if r, ok := u.gen.(Resizer); ok {
		u.guard("resize", func() { r.Resize(width, height) })
	}
	u.genMu.Unlock()

	u.mu.Lock()
	u.host.Width, u.host.Height = width, height
	u.setupDone = false
	u.setupEpoch++
	u.mu.Unlock()
}

// guard runs fn and converts a panic into a log line.
func (u *Unit) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Warn("ggmix: unit panicked", "unit", u.name, "during", what, "panic", r)
		}
	}()
	fn()
}

// runOneFrame draws one frame of the unit into c, clipped to clip:
// reset transform and clip, run setup if due, load the unit's state, apply
// opacity, draw, save the state back and update the frame bookkeeping.
func (u *Unit) runOneFrame(c *Canvas, clip Shape, defaults DrawState, pointer PointerState, now time.Time) (err error) {
	u.genMu.Lock()
	defer u.genMu.Unlock()
	gen := u.gen
	if gen == nil {
		return fmt.Errorf("%s: %w", u, ErrNotInstantiated)
	}

	u.mu.Lock()
	setupDone := u.setupDone
	epoch := u.setupEpoch
	opacity := u.opacity
	state := u.state
	frameCount := u.frameCount
	u.mu.Unlock()

	c.Identity()
	c.ResetClip()
	c.ClearPath()
	clipTo(c.Context, clip)

	layered := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if layered {
			c.PopLayer()
		}
		err = fmt.Errorf("%s panicked: %v", u, r)
		u.mu.Lock()
		u.lastDraw = now
		u.drawn = true
		u.mu.Unlock()
	}()

	c.pointer = pointer
	if !setupDone {
		defaults.Apply(c)
		c.frameCount = 0
		gen.Setup(c)
		state = CaptureState(c)
		frameCount = 0
	}

	state.Apply(c)
	if opacity < 1 {
		c.PushLayer(gg.BlendNormal, opacity)
		layered = true
	}
	c.frameCount = frameCount
	gen.Draw(c)
	if layered {
		layered = false
		c.PopLayer()
	}
	saved := CaptureState(c)

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.drawn {
		if dt := now.Sub(u.lastDraw).Seconds(); dt > 0 {
			inst := 1 / dt
			if u.frameRate == 0 {
				u.frameRate = inst
			} else {
				u.frameRate = 0.9*u.frameRate + 0.1*inst
			}
		}
	}
	u.state = saved
	u.lastDraw = now
	u.drawn = true
	if u.setupEpoch == epoch {
		// A restart requested while drawing wins over this frame's setup.
		u.setupDone = true
		u.frameCount = frameCount + 1
	}
	return nil
}
