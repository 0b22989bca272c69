package units

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/gg"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/gogpu/ggmix"
)

// variable is one tunable value of a generator. A nil set makes it
// read-only.
type variable struct {
	get func() cty.Value
	set func(v cty.Value) error
}

// varSet implements ggmix.VariableAccessor over pointers into a generator.
// The unit serializes access with the generator's draw calls, so no locking
// happens here.
type varSet struct {
	vars map[string]variable
}

func (s *varSet) add(name string, v variable) {
	if s.vars == nil {
		s.vars = make(map[string]variable)
	}
	s.vars[name] = v
}

// number binds a float variable, clamped to [lo, hi].
func (s *varSet) number(name string, p *float64, lo, hi float64) {
	s.add(name, variable{
		get: func() cty.Value { return cty.NumberFloatVal(*p) },
		set: func(v cty.Value) error {
			var f float64
			if err := decode(name, v, cty.Number, &f); err != nil {
				return err
			}
			if math.IsNaN(f) {
				return fmt.Errorf("%s: NaN: %w", name, ggmix.ErrUnsupported)
			}
			*p = min(max(f, lo), hi)
			return nil
		},
	})
}

// integer binds a whole-number variable, clamped to [lo, hi].
func (s *varSet) integer(name string, p *int, lo, hi int) {
	s.add(name, variable{
		get: func() cty.Value { return cty.NumberIntVal(int64(*p)) },
		set: func(v cty.Value) error {
			var n int
			if err := decode(name, v, cty.Number, &n); err != nil {
				return err
			}
			*p = min(max(n, lo), hi)
			return nil
		},
	})
}

// color binds a color variable exchanged as a hex string.
func (s *varSet) color(name string, p *gg.RGBA) {
	s.add(name, variable{
		get: func() cty.Value { return cty.StringVal(hexColor(*p)) },
		set: func(v cty.Value) error {
			var str string
			if err := decode(name, v, cty.String, &str); err != nil {
				return err
			}
			c, err := gg.ParseHex(str)
			if err != nil {
				return fmt.Errorf("%s: %w: %w", name, ggmix.ErrUnsupported, err)
			}
			*p = c
			return nil
		},
	})
}

func (s *varSet) readOnly(name string, get func() cty.Value) {
	s.add(name, variable{get: get})
}

// Variables implements ggmix.VariableAccessor.
func (s *varSet) Variables() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Variable implements ggmix.VariableAccessor.
func (s *varSet) Variable(name string) (cty.Value, bool) {
	v, ok := s.vars[name]
	if !ok {
		return cty.NilVal, false
	}
	return v.get(), true
}

// SetVariable implements ggmix.VariableAccessor.
func (s *varSet) SetVariable(name string, val cty.Value) error {
	v, ok := s.vars[name]
	if !ok {
		return fmt.Errorf("variable %q: %w", name, ggmix.ErrNotFound)
	}
	if v.set == nil {
		return fmt.Errorf("variable %q is read-only: %w", name, ggmix.ErrUnsupported)
	}
	return v.set(val)
}

// decode converts v to ty and then into the Go value at target.
func decode(name string, v cty.Value, ty cty.Type, target any) error {
	if v.IsNull() || !v.IsKnown() {
		return fmt.Errorf("%s: null or unknown value: %w", name, ggmix.ErrUnsupported)
	}
	cv, err := convert.Convert(v, ty)
	if err != nil {
		return fmt.Errorf("%s wants %s: %w", name, ty.FriendlyName(), ggmix.ErrUnsupported)
	}
	if err := gocty.FromCtyValue(cv, target); err != nil {
		return fmt.Errorf("%s: %w: %w", name, ggmix.ErrUnsupported, err)
	}
	return nil
}

func hexColor(c gg.RGBA) string {
	b := func(f float64) uint8 { return uint8(math.Round(min(max(f, 0), 1) * 255)) }
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", b(c.R), b(c.G), b(c.B))
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", b(c.R), b(c.G), b(c.B), b(c.A))
}
