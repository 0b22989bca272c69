package ggmix

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// UnitRegistry owns the units, ordered by name. It dispatches input and
// resize events to them and runs the composite pass.
//
// The registry lock covers the unit list only; it is released before any
// generator code runs.
type UnitRegistry struct {
	mu       sync.RWMutex
	units    []*Unit
	notify   Notifier
	defaults DrawState
	logger   *slog.Logger
}

// NewUnitRegistry creates an empty registry reporting changes to sink.
func NewUnitRegistry(sink Notifier) *UnitRegistry {
	if sink == nil {
		sink = nopNotifier{}
	}
	return &UnitRegistry{
		notify:   sink,
		defaults: DefaultState(),
		logger:   Logger(),
	}
}

// Add registers a unit for template t. The unit starts uninstantiated,
// unbound, fully opaque and deaf to input.
func (r *UnitRegistry) Add(t Template) (*Unit, error) {
	if t == nil {
		return nil, fmt.Errorf("add nil template: %w", ErrInvalidArgument)
	}
	u := newUnit(t, r.logger)
	if u.name == "" {
		return nil, fmt.Errorf("unit name: %w", ErrInvalidArgument)
	}

	r.mu.Lock()
	if r.findLocked(u.name) != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("unit %q: %w", u.name, ErrDuplicateName)
	}
	i := sort.Search(len(r.units), func(i int) bool { return r.units[i].name >= u.name })
	r.units = append(r.units, nil)
	copy(r.units[i+1:], r.units[i:])
	r.units[i] = u
	r.mu.Unlock()

	r.notify.NotifyUnitsChanged()
	return u, nil
}

// Find returns the unit called name, or nil.
func (r *UnitRegistry) Find(name string) *Unit {
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(name)
}

func (r *UnitRegistry) findLocked(name string) *Unit {
	for _, u := range r.units {
		if u.name == name {
			return u
		}
	}
	return nil
}

// List returns a snapshot of the units sorted by name.
func (r *UnitRegistry) List() []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Unit(nil), r.units...)
}

// Remove destroys the unit called name and drops it from the registry.
func (r *UnitRegistry) Remove(name string) error {
	name = normalizeName(name)
	r.mu.Lock()
	idx := -1
	for i, u := range r.units {
		if u.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("unit %q: %w", name, ErrNotFound)
	}
	u := r.units[idx]
	r.units = append(r.units[:idx:idx], r.units[idx+1:]...)
	r.mu.Unlock()

	u.setChannel(nil)
	u.Destroy()
	r.logger.Info("ggmix: unit removed", "unit", name)
	r.notify.NotifyUnitsChanged()
	return nil
}

// Bind routes u's output into ch. With restart the unit's setup runs again
// on the next pass.
func (r *UnitRegistry) Bind(u *Unit, ch *Channel, restart bool) {
	u.setChannel(ch)
	if restart {
		u.ResetSetup()
	}
	r.notify.NotifyUnitsChanged()
}

// Unbind clears u's channel. The unit keeps running but paints nowhere.
func (r *UnitRegistry) Unbind(u *Unit) {
	u.setChannel(nil)
	r.notify.NotifyUnitsChanged()
}

// UnbindChannel clears every binding to ch and returns how many there were.
func (r *UnitRegistry) UnbindChannel(ch *Channel) int {
	n := 0
	for _, u := range r.List() {
		u.mu.Lock()
		if u.channel == ch {
			u.channel = nil
			n++
		}
		u.mu.Unlock()
	}
	if n > 0 {
		r.notify.NotifyUnitsChanged()
	}
	return n
}

// InstantiateAll instantiates every unit that has no generator yet. Failing
// units are logged and left inert; the first error is returned.
func (r *UnitRegistry) InstantiateAll(host Host) error {
	var first error
	for _, u := range r.List() {
		if _, err := u.Instantiate(host); err != nil {
			r.logger.Warn("ggmix: instantiate failed", "unit", u.name, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// DispatchResize tells every instantiated unit about a new surface size and
// schedules its setup to run again.
func (r *UnitRegistry) DispatchResize(width, height int) {
	for _, u := range r.List() {
		if u.Instantiated() {
			u.resize(width, height)
		}
	}
}

// DispatchPointer delivers ev to every instantiated unit that receives
// pointer events.
func (r *UnitRegistry) DispatchPointer(ev PointerEvent) int {
	n := 0
	for _, u := range r.List() {
		if u.PointerEvents() && u.Instantiated() {
			u.deliverPointer(ev)
			n++
		}
	}
	return n
}

// DispatchKey delivers ev to every instantiated unit that receives keyboard
// events.
func (r *UnitRegistry) DispatchKey(ev KeyEvent) int {
	n := 0
	for _, u := range r.List() {
		if u.KeyEvents() && u.Instantiated() {
			u.deliverKey(ev)
			n++
		}
	}
	return n
}

// PassStats summarizes one composite pass.
type PassStats struct {
	Drawn     int // units that ran Draw
	Throttled int // units skipped because their period had not elapsed
	Inert     int // uninstantiated units
	Failed    int // units whose Setup or Draw panicked
	Filled    int // channels painted by one-shot black fills
}

// CompositePass runs every due unit into c, each clipped to its routing and
// isolated in its own drawing state, then restores c's state and paints the
// pending one-shot black fills.
func (r *UnitRegistry) CompositePass(c *Canvas, channels *ChannelRegistry, now time.Time) PassStats {
	var stats PassStats
	global := CaptureState(c)

	for _, u := range r.List() {
		if !u.Instantiated() {
			stats.Inert++
			continue
		}
		if !u.NeedsRedraw(now) {
			stats.Throttled++
			continue
		}
		clip := channels.Routing(u)
		if err := u.runOneFrame(c, clip, r.defaults, c.pointer, now); err != nil {
			stats.Failed++
			r.logger.Warn("ggmix: unit frame failed", "unit", u.name, "err", err)
			continue
		}
		stats.Drawn++
	}

	c.Identity()
	c.ResetClip()
	global.Apply(c)
	stats.Filled = channels.PaintOneShotBlackFills(c)
	return stats
}
