package ggmix

import (
	"math"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
)

// PointerKind classifies a PointerEvent.
type PointerKind int

// Pointer event kinds.
const (
	PointerMoved PointerKind = iota
	PointerDragged
	PointerPressed
	PointerReleased
	PointerClicked
)

func (k PointerKind) String() string {
	switch k {
	case PointerMoved:
		return "moved"
	case PointerDragged:
		return "dragged"
	case PointerPressed:
		return "pressed"
	case PointerReleased:
		return "released"
	case PointerClicked:
		return "clicked"
	default:
		return "unknown"
	}
}

// PointerEvent is delivered to units that receive pointer events.
type PointerEvent struct {
	Kind         PointerKind
	X, Y         float64
	PrevX, PrevY float64
	Button       gpucontext.MouseButton
	// Clicks is the click count for PointerClicked: 1 for a single click,
	// 2 for a double-click and so on.
	Clicks int
}

// KeyKind classifies a KeyEvent.
type KeyKind int

// Key event kinds.
const (
	KeyPressed KeyKind = iota
	KeyReleased
	KeyTyped
)

func (k KeyKind) String() string {
	switch k {
	case KeyPressed:
		return "pressed"
	case KeyReleased:
		return "released"
	case KeyTyped:
		return "typed"
	default:
		return "unknown"
	}
}

// KeyEvent is delivered to units that receive keyboard events. Typed events
// carry Rune; pressed and released events carry Key, and Rune when the key
// maps to a printable character.
type KeyEvent struct {
	Kind KeyKind
	Key  gpucontext.Key
	Rune rune
	Mods gpucontext.Modifiers
}

// Click synthesis limits.
const (
	// ClickSlop is how far the pointer may travel between press and release
	// for the release to count as a click.
	ClickSlop = 4.0
	// DoubleClickInterval is the longest gap between clicks of a multi-click.
	DoubleClickInterval = 400 * time.Millisecond
)

// pointerTracker turns raw pointer input into unit pointer events with
// previous positions, drag detection and click counts.
type pointerTracker struct {
	mu           sync.Mutex
	x, y         float64
	px, py       float64
	pressed      uint32
	pressX       float64
	pressY       float64
	lastClick    time.Time
	lastClickX   float64
	lastClickY   float64
	clicks       int
	haveLastDown bool
}

func (t *pointerTracker) state() PointerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return PointerState{X: t.x, Y: t.y, PrevX: t.px, PrevY: t.py, Pressed: t.pressed != 0}
}

func (t *pointerTracker) move(x, y float64) PointerEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.px, t.py = t.x, t.y
	t.x, t.y = x, y
	kind := PointerMoved
	if t.pressed != 0 {
		kind = PointerDragged
	}
	return PointerEvent{Kind: kind, X: x, Y: y, PrevX: t.px, PrevY: t.py}
}

func (t *pointerTracker) press(b gpucontext.MouseButton, x, y float64) PointerEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.px, t.py = t.x, t.y
	t.x, t.y = x, y
	t.pressed |= 1 << uint(b)
	t.pressX, t.pressY = x, y
	t.haveLastDown = true
	return PointerEvent{Kind: PointerPressed, X: x, Y: y, PrevX: t.px, PrevY: t.py, Button: b}
}

// release returns the released event and, when the press and release form
// a click, the clicked event with its click count.
func (t *pointerTracker) release(b gpucontext.MouseButton, x, y float64, now time.Time) (PointerEvent, *PointerEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.px, t.py = t.x, t.y
	t.x, t.y = x, y
	t.pressed &^= 1 << uint(b)
	rel := PointerEvent{Kind: PointerReleased, X: x, Y: y, PrevX: t.px, PrevY: t.py, Button: b}

	if !t.haveLastDown || math.Hypot(x-t.pressX, y-t.pressY) > ClickSlop {
		t.clicks = 0
		return rel, nil
	}
	t.haveLastDown = false

	if t.clicks > 0 && now.Sub(t.lastClick) <= DoubleClickInterval &&
		math.Hypot(x-t.lastClickX, y-t.lastClickY) <= ClickSlop {
		t.clicks++
	} else {
		t.clicks = 1
	}
	t.lastClick = now
	t.lastClickX, t.lastClickY = x, y

	click := rel
	click.Kind = PointerClicked
	click.Clicks = t.clicks
	return rel, &click
}
