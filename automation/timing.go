package automation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Timing shapes how a variable moves from its initial to its final value.
type Timing int

const (
	// Linear interpolates at constant speed.
	Linear Timing = iota
	// Ease starts slowly, rushes through the middle and settles.
	Ease
	// EaseIn accelerates (quadratic).
	EaseIn
	// EaseOut decelerates (square root).
	EaseOut
	// Steps jumps once per period.
	Steps
	// Alternating flips between the initial and final value every period.
	Alternating
)

var timingNames = [...]string{
	Linear:      "linear",
	Ease:        "ease",
	EaseIn:      "ease_in",
	EaseOut:     "ease_out",
	Steps:       "steps",
	Alternating: "alternating",
}

// String returns the lower-case name of the timing.
func (t Timing) String() string {
	if t >= 0 && int(t) < len(timingNames) {
		return timingNames[t]
	}
	return fmt.Sprintf("Timing(%d)", int(t))
}

// ParseTiming resolves a timing name. Matching ignores case, surrounding
// space and the difference between '-' and '_'. An empty name is Linear.
func ParseTiming(name string) (Timing, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	if n == "" {
		return Linear, nil
	}
	for i, s := range timingNames {
		if s == n {
			return Timing(i), nil
		}
	}
	return Linear, fmt.Errorf("timing %q: %w", name, ErrUnknownTiming)
}

// Progress returns how far along the transition is after elapsed, in [0, 1].
// For Alternating it returns 0 on even periods and 1 on odd ones.
//
// With a positive period the cycle restarts every period; otherwise the
// whole duration is one cycle.
func Progress(t Timing, elapsed, duration, period time.Duration) float64 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed < 0 {
		elapsed = 0
	}

	var duty float64
	periods := 0
	if period > 0 {
		duty = float64(elapsed%period) / float64(period)
		periods = int(elapsed / period)
	} else {
		duty = float64(elapsed) / float64(duration)
	}

	var p float64
	switch t {
	case Ease:
		p = 0.5 + math.Atan(50*duty-15)/math.Pi
	case EaseIn:
		p = duty * duty
	case EaseOut:
		p = math.Sqrt(duty)
	case Steps:
		total := 1.0
		if period > 0 {
			total = float64(duration / period)
		}
		if total <= 0 {
			total = 1
		}
		p = float64(periods) / total
	case Alternating:
		p = float64(periods % 2)
	default:
		p = duty
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
