package automation

import (
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
)

// Interpolate returns the value p of the way from initial to final, with p
// clamped to [0, 1].
//
// Both values must be known, non-null numbers. When both are integral the
// result is truncated toward zero so integer variables stay integers.
func Interpolate(initial, final cty.Value, p float64) (cty.Value, error) {
	a, aInt, err := number(initial)
	if err != nil {
		return cty.NilVal, fmt.Errorf("initial value: %w", err)
	}
	b, bInt, err := number(final)
	if err != nil {
		return cty.NilVal, fmt.Errorf("final value: %w", err)
	}
	v := a + (b-a)*clamp01(p)
	if aInt && bInt {
		return cty.NumberIntVal(int64(math.Trunc(v))), nil
	}
	return cty.NumberFloatVal(v), nil
}

// At returns the value a transition reaches for progress p under timing t.
// Alternating passes the end values through untouched, so it also works for
// strings and bools.
func At(t Timing, initial, final cty.Value, p float64) (cty.Value, error) {
	if t == Alternating {
		if p >= 1 {
			return final, nil
		}
		return initial, nil
	}
	return Interpolate(initial, final, p)
}

func number(v cty.Value) (f float64, integral bool, err error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, false, ErrNotNumeric
	}
	if !v.Type().Equals(cty.Number) {
		return 0, false, fmt.Errorf("%s: %w", v.Type().FriendlyName(), ErrNotNumeric)
	}
	bf := v.AsBigFloat()
	f, _ = bf.Float64()
	if math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("infinite: %w", ErrNotNumeric)
	}
	return f, bf.IsInt(), nil
}

// checkTypes reports whether a transition of timing t can run between
// initial and final.
func checkTypes(t Timing, initial, final cty.Value) error {
	if t == Alternating {
		if initial.IsNull() || final.IsNull() {
			return ErrNotNumeric
		}
		return nil
	}
	if _, _, err := number(initial); err != nil {
		return fmt.Errorf("initial value: %w", err)
	}
	if _, _, err := number(final); err != nil {
		return fmt.Errorf("final value: %w", err)
	}
	return nil
}
