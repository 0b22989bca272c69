package ggmix

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// ChannelUnbinder drops every unit binding that points at a channel.
// UnitRegistry implements it.
type ChannelUnbinder interface {
	UnbindChannel(ch *Channel) int
}

// ChannelRegistry owns the set of channels.
//
// Names are unique after NFC normalization; Find returns the first (and
// only) match. The registry lock is held only while the list is changed or
// copied.
type ChannelRegistry struct {
	mu       sync.RWMutex
	channels []*Channel
	counter  int

	editMode atomic.Bool
	notify   Notifier
	units    ChannelUnbinder
	logger   *slog.Logger
}

// NewChannelRegistry creates an empty registry. Topology changes are
// reported to sink; removals cascade into units. Both may be nil.
func NewChannelRegistry(sink Notifier, units ChannelUnbinder) *ChannelRegistry {
	if sink == nil {
		sink = nopNotifier{}
	}
	return &ChannelRegistry{
		notify: sink,
		units:  units,
		logger: Logger(),
	}
}

// Create appends a channel with an auto-generated name ("Channel 1",
// "Channel 2", ...). shape may be nil.
func (r *ChannelRegistry) Create(shape Shape) *Channel {
	r.mu.Lock()
	var name string
	for {
		r.counter++
		name = fmt.Sprintf("Channel %d", r.counter)
		if r.findLocked(name) == nil {
			break
		}
	}
	ch := r.appendLocked(name, shape, false)
	r.mu.Unlock()

	r.logger.Info("ggmix: channel created", "channel", name)
	r.notify.NotifyChannelsChanged()
	return ch
}

// CreateNamed appends a channel called name.
func (r *ChannelRegistry) CreateNamed(name string, shape Shape) (*Channel, error) {
	return r.create(name, shape, false)
}

// CreateGroup creates a channel whose shape is the union of the shapes of
// the named sources. Unknown and shapeless sources are skipped; if none is
// left ErrEmptySourceSet is returned and nothing is created.
func (r *ChannelRegistry) CreateGroup(name string, sources ...string) (*Channel, error) {
	var parts []Shape
	for _, src := range sources {
		ch := r.Find(src)
		if ch == nil {
			r.logger.Debug("ggmix: group source not found", "group", name, "source", src)
			continue
		}
		if s := ch.Shape(); s != nil {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("group %q: %w", name, ErrEmptySourceSet)
	}

	var shape Shape = Union{Parts: parts}
	if len(parts) == 1 {
		shape = parts[0]
	}
	return r.create(name, shape, true)
}

func (r *ChannelRegistry) create(name string, shape Shape, group bool) (*Channel, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("channel name: %w", ErrInvalidArgument)
	}

	r.mu.Lock()
	if r.findLocked(name) != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("channel %q: %w", name, ErrDuplicateName)
	}
	ch := r.appendLocked(name, shape, group)
	r.mu.Unlock()

	r.logger.Info("ggmix: channel created", "channel", name, "group", group)
	r.notify.NotifyChannelsChanged()
	return ch, nil
}

func (r *ChannelRegistry) appendLocked(name string, shape Shape, group bool) *Channel {
	ch := &Channel{name: name, shape: shape, group: group, enabled: true}
	r.channels = append(r.channels, ch)
	return ch
}

// Find returns the channel called name, or nil.
func (r *ChannelRegistry) Find(name string) *Channel {
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(name)
}

func (r *ChannelRegistry) findLocked(name string) *Channel {
	for _, ch := range r.channels {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}

// Remove deletes ch. Units bound to it become unbound.
func (r *ChannelRegistry) Remove(ch *Channel) error {
	if ch == nil {
		return fmt.Errorf("remove nil channel: %w", ErrNotFound)
	}

	r.mu.Lock()
	idx := -1
	for i, cur := range r.channels {
		if cur == ch {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%s: %w", ch, ErrNotFound)
	}
	r.channels = append(r.channels[:idx:idx], r.channels[idx+1:]...)
	r.mu.Unlock()

	ch.mu.Lock()
	ch.removed = true
	ch.mu.Unlock()

	unbound := 0
	if r.units != nil {
		unbound = r.units.UnbindChannel(ch)
	}
	r.logger.Info("ggmix: channel removed", "channel", ch.Name(), "unbound_units", unbound)
	r.notify.NotifyChannelsChanged()
	return nil
}

// SetEnabled switches the channel called name on or off.
func (r *ChannelRegistry) SetEnabled(name string, enabled bool) error {
	ch := r.Find(name)
	if ch == nil {
		return fmt.Errorf("channel %q: %w", name, ErrNotFound)
	}
	ch.mu.Lock()
	ch.enabled = enabled
	ch.mu.Unlock()
	r.notify.NotifyChannelsChanged()
	return nil
}

// Rename changes a channel's name.
func (r *ChannelRegistry) Rename(oldName, newName string) error {
	newName = normalizeName(newName)
	if newName == "" {
		return fmt.Errorf("channel name: %w", ErrInvalidArgument)
	}
	oldName = normalizeName(oldName)

	r.mu.Lock()
	ch := r.findLocked(oldName)
	if ch == nil {
		r.mu.Unlock()
		return fmt.Errorf("channel %q: %w", oldName, ErrNotFound)
	}
	if other := r.findLocked(newName); other != nil && other != ch {
		r.mu.Unlock()
		return fmt.Errorf("channel %q: %w", newName, ErrDuplicateName)
	}
	ch.mu.Lock()
	ch.name = newName
	ch.mu.Unlock()
	r.mu.Unlock()

	r.notify.NotifyChannelsChanged()
	return nil
}

// RequestBlackFill asks for the channel to be painted black once, after the
// units of the next composite pass have drawn.
func (r *ChannelRegistry) RequestBlackFill(name string) error {
	ch := r.Find(name)
	if ch == nil {
		return fmt.Errorf("channel %q: %w", name, ErrNotFound)
	}
	ch.mu.Lock()
	ch.blackFill = true
	ch.mu.Unlock()
	return nil
}

// SetEditMode turns outline rendering and the channel editor on or off.
func (r *ChannelRegistry) SetEditMode(on bool) {
	if r.editMode.Swap(on) != on {
		r.logger.Info("ggmix: edit mode", "on", on)
	}
}

// EditMode reports whether edit mode is on.
func (r *ChannelRegistry) EditMode() bool {
	return r.editMode.Load()
}

// List returns a snapshot of the channels in creation order.
func (r *ChannelRegistry) List() []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Channel(nil), r.channels...)
}

// Len returns the number of channels.
func (r *ChannelRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Routing returns the clip region for u: its channel's shape when the
// channel exists, is enabled and has a shape, EmptyShape otherwise.
func (r *ChannelRegistry) Routing(u *Unit) Shape {
	if u == nil {
		return EmptyShape
	}
	ch := u.Channel()
	if ch == nil {
		return EmptyShape
	}
	return ch.clip()
}

// PaintOneShotBlackFills fills every channel with a pending black-fill
// request and clears the request. It returns the number of channels filled.
// The pen state of c is preserved.
func (r *ChannelRegistry) PaintOneShotBlackFills(c *Canvas) int {
	var saved *DrawState
	filled := 0
	for _, ch := range r.List() {
		shape, ok := ch.takeBlackFill()
		if !ok || IsEmptyShape(shape) {
			continue
		}
		if saved == nil {
			st := CaptureState(c)
			saved = &st
			c.Identity()
			c.SetFillRule(gg.FillRuleNonZero)
			c.SetFillBrush(gg.Solid(gg.Black))
		}
		c.DrawPath(shape.Path())
		if err := c.Fill(); err != nil {
			r.logger.Warn("ggmix: black fill failed", "channel", ch.Name(), "err", err)
			continue
		}
		filled++
	}
	if saved != nil {
		saved.Apply(c)
	}
	return filled
}

// Outline colors used in edit mode.
var (
	outlineColor  = gg.Red
	disabledColor = gg.RGB(0.5, 0.5, 0.5)
	handleColor   = gg.Magenta
)

const handleSize = 8

// PaintOutlines draws every channel's outline, its name and its bounds with
// corner handles. Groups are labelled at their center, simple channels below
// their bounds. face may be nil, in which case labels are skipped.
func (r *ChannelRegistry) PaintOutlines(c *Canvas, face text.Face) {
	st := CaptureState(c)
	defer st.Apply(c)

	c.Identity()
	c.SetFillRule(gg.FillRuleNonZero)
	c.SetStroke(gg.DefaultStroke())
	if face != nil {
		c.SetFont(face)
	}

	for _, ch := range r.List() {
		shape := ch.Shape()
		if shape == nil {
			continue
		}
		col := outlineColor
		if !ch.Enabled() {
			col = disabledColor
		}

		c.SetFillBrush(gg.Solid(col))
		c.DrawPath(shape.Path())
		_ = c.Stroke()

		b := shape.Bounds()
		if face != nil {
			cx := (b.Min.X + b.Max.X) / 2
			if ch.IsGroup() {
				c.DrawStringAnchored(ch.Name(), cx, (b.Min.Y+b.Max.Y)/2, 0.5, 0.5)
			} else {
				c.DrawStringAnchored(ch.Name(), cx, b.Max.Y+4, 0.5, 0)
			}
		}

		c.SetFillBrush(gg.Solid(handleColor))
		c.DrawRectangle(b.Min.X, b.Min.Y, b.Width(), b.Height())
		_ = c.Stroke()
		for _, p := range []gg.Point{b.Min, {X: b.Max.X, Y: b.Min.Y}, b.Max, {X: b.Min.X, Y: b.Max.Y}} {
			c.DrawRectangle(p.X-handleSize/2, p.Y-handleSize/2, handleSize, handleSize)
			_ = c.Fill()
		}
	}
}
