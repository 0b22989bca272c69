package ggmix

import (
	"context"
	"log/slog"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/ggmix/automation"
)

// Control is the control plane used by scripting consoles and remote
// callers. Every operation reports failure as false (or a zero value) and a
// Warn log line; no error or panic crosses this boundary.
type Control struct {
	comp       *Compositor
	logger     *slog.Logger
	automation *automation.Runner
}

// NewControl returns the control plane for comp. Close stops the variable
// automations it started.
func NewControl(comp *Compositor) *Control {
	return &Control{
		comp:       comp,
		logger:     comp.logger,
		automation: automation.NewRunner(context.Background(), automation.WithLogger(comp.logger)),
	}
}

// Close cancels running automations and waits for them.
func (k *Control) Close() {
	k.automation.Stop()
}

// Compositor returns the controlled compositor.
func (k *Control) Compositor() *Compositor { return k.comp }

// Automation returns the runner that Automate starts transitions on.
func (k *Control) Automation() *automation.Runner { return k.automation }

func (k *Control) fail(op string, err error, args ...any) bool {
	k.logger.Warn("ggmix: control "+op+" failed", append(args, "err", err)...)
	return false
}

func (k *Control) unit(op, name string) *Unit {
	u := k.comp.units.Find(name)
	if u == nil {
		k.logger.Warn("ggmix: control "+op+" failed", "unit", name, "err", ErrNotFound)
	}
	return u
}

func (k *Control) channel(op, name string) *Channel {
	ch := k.comp.channels.Find(name)
	if ch == nil {
		k.logger.Warn("ggmix: control "+op+" failed", "channel", name, "err", ErrNotFound)
	}
	return ch
}

// ChannelCreate creates a channel with an auto-generated name and returns
// the name.
func (k *Control) ChannelCreate(shape Shape) string {
	return k.comp.channels.Create(shape).Name()
}

// ChannelCreateGroup creates a group channel from the named sources.
func (k *Control) ChannelCreateGroup(name string, sources ...string) bool {
	if _, err := k.comp.channels.CreateGroup(name, sources...); err != nil {
		return k.fail("createGroup", err, "group", name)
	}
	return true
}

// ChannelOn enables a channel.
func (k *Control) ChannelOn(name string) bool {
	if err := k.comp.channels.SetEnabled(name, true); err != nil {
		return k.fail("on", err, "channel", name)
	}
	return true
}

// ChannelOff disables a channel. Units bound to it keep running invisibly.
func (k *Control) ChannelOff(name string) bool {
	if err := k.comp.channels.SetEnabled(name, false); err != nil {
		return k.fail("off", err, "channel", name)
	}
	return true
}

// ChannelRename renames a channel.
func (k *Control) ChannelRename(oldName, newName string) bool {
	if err := k.comp.channels.Rename(oldName, newName); err != nil {
		return k.fail("rename", err, "channel", oldName, "new_name", newName)
	}
	return true
}

// ChannelBlackFill requests a one-shot black fill.
func (k *Control) ChannelBlackFill(name string) bool {
	if err := k.comp.channels.RequestBlackFill(name); err != nil {
		return k.fail("requestBlackFill", err, "channel", name)
	}
	return true
}

// ChannelRemove removes a channel, unbinding its units.
func (k *Control) ChannelRemove(name string) bool {
	ch := k.channel("remove", name)
	if ch == nil {
		return false
	}
	if err := k.comp.channels.Remove(ch); err != nil {
		return k.fail("remove", err, "channel", name)
	}
	return true
}

// SetEditMode turns edit mode on or off.
func (k *Control) SetEditMode(on bool) {
	k.comp.channels.SetEditMode(on)
}

// IsEditMode reports whether edit mode is on.
func (k *Control) IsEditMode() bool {
	return k.comp.channels.EditMode()
}

// Channels lists the channels.
func (k *Control) Channels() []*Channel {
	return k.comp.channels.List()
}

// UnitBind routes a unit into a channel. With restart the unit runs its
// setup again on the next pass.
func (k *Control) UnitBind(unitName, channelName string, restart bool) bool {
	u := k.unit("bind", unitName)
	ch := k.channel("bind", channelName)
	if u == nil || ch == nil {
		return false
	}
	k.comp.units.Bind(u, ch, restart)
	return true
}

// UnitUnbind clears a unit's channel.
func (k *Control) UnitUnbind(name string) bool {
	u := k.unit("unbind", name)
	if u == nil {
		return false
	}
	k.comp.units.Unbind(u)
	return true
}

// UnitRestart makes a unit run its setup again.
func (k *Control) UnitRestart(name string) bool {
	u := k.unit("restart", name)
	if u == nil {
		return false
	}
	u.ResetSetup()
	return true
}

// UnitRemove destroys a unit and drops it.
func (k *Control) UnitRemove(name string) bool {
	if err := k.comp.units.Remove(name); err != nil {
		return k.fail("remove", err, "unit", name)
	}
	return true
}

// UnitSetOpacity sets a unit's opacity, clamped to [0, 1].
func (k *Control) UnitSetOpacity(name string, v float64) bool {
	u := k.unit("setOpacity", name)
	if u == nil {
		return false
	}
	u.SetOpacity(v)
	return true
}

// UnitOpacity returns a unit's opacity, or 0 if it does not exist.
func (k *Control) UnitOpacity(name string) float64 {
	u := k.unit("getOpacity", name)
	if u == nil {
		return 0
	}
	return u.Opacity()
}

// UnitSetKeyEvents subscribes or unsubscribes a unit from key events.
func (k *Control) UnitSetKeyEvents(name string, on bool) bool {
	u := k.unit("setKeyEventsEnabled", name)
	if u == nil {
		return false
	}
	u.SetKeyEvents(on)
	return true
}

// UnitKeyEvents reports whether a unit receives key events.
func (k *Control) UnitKeyEvents(name string) bool {
	u := k.unit("getKeyEventsEnabled", name)
	return u != nil && u.KeyEvents()
}

// UnitSetPointerEvents subscribes or unsubscribes a unit from pointer events.
func (k *Control) UnitSetPointerEvents(name string, on bool) bool {
	u := k.unit("setPointerEventsEnabled", name)
	if u == nil {
		return false
	}
	u.SetPointerEvents(on)
	return true
}

// UnitPointerEvents reports whether a unit receives pointer events.
func (k *Control) UnitPointerEvents(name string) bool {
	u := k.unit("getPointerEventsEnabled", name)
	return u != nil && u.PointerEvents()
}

// Units lists the units sorted by name.
func (k *Control) Units() []*Unit {
	return k.comp.units.List()
}

// UnitFrameRate returns a unit's measured frame rate, or -1 if the unit does
// not exist or is not instantiated.
func (k *Control) UnitFrameRate(name string) float64 {
	u := k.unit("frameRate", name)
	if u == nil || !u.Instantiated() {
		return -1
	}
	return u.FrameRate()
}

// UnitFrameCount returns a unit's frame count, or -1 if the unit does not
// exist or is not instantiated.
func (k *Control) UnitFrameCount(name string) int {
	u := k.unit("frameCount", name)
	if u == nil || !u.Instantiated() {
		return -1
	}
	return u.FrameCount()
}

// UnitVariables lists a unit's variables, or nil.
func (k *Control) UnitVariables(name string) []string {
	u := k.unit("variables", name)
	if u == nil {
		return nil
	}
	vars, err := u.Variables()
	if err != nil {
		k.fail("variables", err, "unit", name)
		return nil
	}
	return vars
}

// UnitVariable reads a unit variable. It returns cty.NilVal on failure.
func (k *Control) UnitVariable(name, variable string) cty.Value {
	u := k.unit("getVariable", name)
	if u == nil {
		return cty.NilVal
	}
	v, err := u.Variable(variable)
	if err != nil {
		k.fail("getVariable", err, "unit", name, "variable", variable)
		return cty.NilVal
	}
	return v
}

// UnitSetVariable writes a unit variable.
func (k *Control) UnitSetVariable(name, variable string, v cty.Value) bool {
	u := k.unit("setVariable", name)
	if u == nil {
		return false
	}
	if err := u.SetVariable(variable, v); err != nil {
		return k.fail("setVariable", err, "unit", name, "variable", variable)
	}
	return true
}

// Automate moves a unit variable from its current value to final over
// duration, starting after delay. Period drives the Steps and Alternating
// timings and repeats the easing timings.
func (k *Control) Automate(unitName, variable string, final cty.Value, delay, duration, period time.Duration, timing automation.Timing) bool {
	u := k.unit("automate", unitName)
	if u == nil {
		return false
	}
	err := k.automation.Start(u, automation.Transition{
		Variable: variable,
		Final:    final,
		Delay:    delay,
		Duration: duration,
		Period:   period,
		Timing:   timing,
	})
	if err != nil {
		return k.fail("automate", err, "unit", unitName, "variable", variable)
	}
	return true
}

// Automations returns the number of automations still running.
func (k *Control) Automations() int {
	return k.automation.Active()
}

// ForceRefresh clears the buffer on the next paint and waits for it.
func (k *Control) ForceRefresh() bool {
	if err := k.comp.ForceRefresh(context.Background()); err != nil {
		return k.fail("forceRefresh", err)
	}
	return true
}

// MaxFrameRate returns the effective repaint rate.
func (k *Control) MaxFrameRate() float64 {
	return k.comp.MaxFrameRate()
}

// SetMaxFrameRate changes the repaint rate.
func (k *Control) SetMaxFrameRate(fps float64) bool {
	if err := k.comp.SetMaxFrameRate(fps); err != nil {
		return k.fail("setMaxFrameRate", err, "fps", fps)
	}
	return true
}

// KeyPressed sends a virtual key press of r to subscribed units.
func (k *Control) KeyPressed(r rune) bool {
	k.comp.units.DispatchKey(KeyEvent{Kind: KeyPressed, Rune: r})
	return true
}

// KeyReleased sends a virtual key release of r to subscribed units.
func (k *Control) KeyReleased(r rune) bool {
	k.comp.units.DispatchKey(KeyEvent{Kind: KeyReleased, Rune: r})
	return true
}

// KeyTyped sends a virtual typed character to subscribed units.
func (k *Control) KeyTyped(r rune) bool {
	k.comp.KeyTyped(r)
	return true
}

// SetPointer moves the virtual pointer.
func (k *Control) SetPointer(x, y float64) bool {
	k.comp.PointerMove(x, y)
	return true
}

// PointerClick sends a single click at the current pointer position to
// subscribed units. The channel editor does not see virtual clicks.
func (k *Control) PointerClick() bool {
	p := k.comp.pointer.state()
	k.comp.units.DispatchPointer(PointerEvent{
		Kind: PointerClicked, X: p.X, Y: p.Y, PrevX: p.PrevX, PrevY: p.PrevY, Clicks: 1,
	})
	return true
}
