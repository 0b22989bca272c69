package stage

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmix"
	"github.com/gogpu/ggmix/automation"
)

// Catalog maps generator names to template factories. The factory receives
// the unit name.
type Catalog map[string]func(name string) ggmix.Template

// ErrUnknownGenerator is returned when a unit names a generator the catalog
// does not have.
var ErrUnknownGenerator = errors.New("stage: unknown generator")

// Options returns the compositor options the renderer block sets.
func (st *Stage) Options() []ggmix.Option {
	r := st.Renderer
	if r == nil {
		return nil
	}
	var opts []ggmix.Option
	if r.Width != nil && r.Height != nil {
		opts = append(opts, ggmix.WithSize(*r.Width, *r.Height))
	}
	if r.MaxFrameRate != nil {
		opts = append(opts, ggmix.WithMaxFrameRate(*r.MaxFrameRate))
	}
	if r.DataPath != nil {
		opts = append(opts, ggmix.WithDataPath(*r.DataPath))
	}
	if r.Background != nil {
		opts = append(opts, ggmix.WithBackground(gg.Hex(*r.Background)))
	}
	return opts
}

// Apply builds the stage on comp: renderer settings, channels, groups, units
// with their variables and bindings, then automations on runner. runner may
// be nil when the stage has no automations. Apply stops at the first error;
// what was built before it stays.
func (st *Stage) Apply(comp *ggmix.Compositor, cat Catalog, runner *automation.Runner) error {
	logger := ggmix.Logger()

	if r := st.Renderer; r != nil {
		if r.Width != nil && r.Height != nil {
			if err := comp.Resize(*r.Width, *r.Height); err != nil {
				return fmt.Errorf("%s: renderer: %w", r.DefRange, err)
			}
		}
		if r.MaxFrameRate != nil {
			if err := comp.SetMaxFrameRate(*r.MaxFrameRate); err != nil {
				return fmt.Errorf("%s: renderer: %w", r.DefRange, err)
			}
		}
		if r.EditMode != nil {
			comp.Channels().SetEditMode(*r.EditMode)
		}
	}

	for _, c := range st.Channels {
		shape, err := c.Shape()
		if err != nil {
			return fmt.Errorf("%s: channel %q: %w", c.DefRange, c.Name, err)
		}
		if _, err := comp.Channels().CreateNamed(c.Name, shape); err != nil {
			return fmt.Errorf("%s: channel %q: %w", c.DefRange, c.Name, err)
		}
		if c.Enabled != nil && !*c.Enabled {
			if err := comp.Channels().SetEnabled(c.Name, false); err != nil {
				return fmt.Errorf("%s: channel %q: %w", c.DefRange, c.Name, err)
			}
		}
	}

	for _, g := range st.Groups {
		if _, err := comp.Channels().CreateGroup(g.Name, g.Sources...); err != nil {
			return fmt.Errorf("%s: group %q: %w", g.DefRange, g.Name, err)
		}
	}

	for _, u := range st.Units {
		if err := st.applyUnit(comp, cat, u); err != nil {
			return fmt.Errorf("%s: unit %q: %w", u.DefRange, u.Name, err)
		}
	}

	if len(st.Automations) > 0 && runner == nil {
		return fmt.Errorf("%s: %d automations but no runner", st.Filename, len(st.Automations))
	}
	for _, a := range st.Automations {
		if err := applyAutomation(comp, runner, a); err != nil {
			return fmt.Errorf("%s: automation %q: %w", a.DefRange, a.Name, err)
		}
	}

	logger.Info("stage: applied", "file", st.Filename,
		"channels", comp.Channels().Len(), "units", len(comp.Units().List()),
		"automations", len(st.Automations))
	return nil
}

func (st *Stage) applyUnit(comp *ggmix.Compositor, cat Catalog, def *Unit) error {
	factory, ok := cat[def.Generator]
	if !ok {
		return fmt.Errorf("%q: %w", def.Generator, ErrUnknownGenerator)
	}

	var ch *ggmix.Channel
	if def.Channel != nil {
		if ch = comp.Channels().Find(*def.Channel); ch == nil {
			return fmt.Errorf("channel %q: %w", *def.Channel, ggmix.ErrNotFound)
		}
	}

	u, err := comp.Units().Add(factory(def.Name))
	if err != nil {
		return err
	}
	if _, err := u.Instantiate(comp.Host()); err != nil {
		return err
	}

	if !def.Vars.IsNull() {
		vars := def.Vars.AsValueMap()
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			if err := u.SetVariable(name, vars[name]); err != nil {
				return err
			}
		}
	}

	if def.Opacity != nil {
		u.SetOpacity(*def.Opacity)
	}
	u.SetPointerEvents(def.PointerEvents)
	u.SetKeyEvents(def.KeyEvents)
	if ch != nil {
		comp.Units().Bind(u, ch, false)
	}
	return nil
}

func applyAutomation(comp *ggmix.Compositor, runner *automation.Runner, a *Automation) error {
	u := comp.Units().Find(a.Unit)
	if u == nil {
		return fmt.Errorf("unit %q: %w", a.Unit, ggmix.ErrNotFound)
	}
	timing, err := automation.ParseTiming(a.Timing)
	if err != nil {
		return err
	}
	return runner.Start(u, automation.Transition{
		Variable: a.Variable,
		Final:    a.To,
		Delay:    time.Duration(a.DelayMS) * time.Millisecond,
		Duration: time.Duration(a.DurationMS) * time.Millisecond,
		Period:   time.Duration(a.PeriodMS) * time.Millisecond,
		Timing:   timing,
	})
}
