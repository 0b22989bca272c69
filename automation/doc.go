// Package automation moves unit variables over time.
//
// A Transition reads a variable's current value and writes interpolated
// values roughly every DefaultTick until its duration has passed, then writes
// the final value. Timings shape the curve: Linear, Ease, EaseIn, EaseOut,
// Steps and Alternating.
//
//	r := automation.NewRunner(ctx)
//	defer r.Stop()
//	err := r.Start(unit, automation.Transition{
//		Variable: "level",
//		Final:    cty.NumberFloatVal(1),
//		Duration: 2 * time.Second,
//		Timing:   automation.Ease,
//	})
package automation
