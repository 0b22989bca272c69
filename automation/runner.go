package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrUnknownTiming is returned by ParseTiming for names it does not know.
	ErrUnknownTiming = errors.New("automation: unknown timing")

	// ErrNotNumeric is returned when an interpolating transition meets a
	// value that is not a known number.
	ErrNotNumeric = errors.New("automation: value is not a number")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("automation: runner stopped")
)

// DefaultTick is how often a running transition writes its variable.
const DefaultTick = 10 * time.Millisecond

// Target is a variable store a transition writes into.
type Target interface {
	Variable(name string) (cty.Value, error)
	SetVariable(name string, v cty.Value) error
}

// Transition moves one variable to Final over Duration, after Delay.
type Transition struct {
	Variable string
	Final    cty.Value
	Delay    time.Duration
	Duration time.Duration
	// Period makes Steps and Alternating advance per period and makes the
	// easing timings repeat every period. Zero means one cycle.
	Period time.Duration
	Timing Timing
}

func (tr Transition) validate() error {
	if tr.Variable == "" {
		return errors.New("automation: empty variable name")
	}
	if tr.Delay < 0 || tr.Duration < 0 || tr.Period < 0 {
		return fmt.Errorf("automation: negative delay, duration or period for %q", tr.Variable)
	}
	return nil
}

// Runner runs transitions on their own goroutines. Stop cancels every
// transition still running and waits for them.
type Runner struct {
	tick   time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  int
	stopped bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTick sets the write interval.
func WithTick(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithLogger sets the logger for transition failures.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner returns a runner whose transitions end when parent does.
func NewRunner(parent context.Context, opts ...RunnerOption) *Runner {
	r := &Runner{tick: DefaultTick, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.ctx, r.cancel = context.WithCancel(parent)
	return r
}

// Start reads the variable's current value as the initial value and runs tr
// against target in the background. Errors found up front are returned;
// errors while running are logged and end the transition.
func (r *Runner) Start(target Target, tr Transition) error {
	if err := tr.validate(); err != nil {
		return err
	}
	initial, err := target.Variable(tr.Variable)
	if err != nil {
		return fmt.Errorf("automation: read %q: %w", tr.Variable, err)
	}
	if err := checkTypes(tr.Timing, initial, tr.Final); err != nil {
		return fmt.Errorf("automation: %q: %w", tr.Variable, err)
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrStopped
	}
	r.active++
	r.wg.Add(1)
	ctx := r.ctx
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.active--
			r.mu.Unlock()
			r.wg.Done()
		}()
		if err := r.run(ctx, target, tr, initial); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Warn("automation: transition ended early", "variable", tr.Variable, "err", err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context, target Target, tr Transition, initial cty.Value) error {
	if tr.Delay > 0 {
		t := time.NewTimer(tr.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	start := time.Now()
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		elapsed := time.Since(start)
		if elapsed >= tr.Duration {
			break
		}
		v, err := At(tr.Timing, initial, tr.Final, Progress(tr.Timing, elapsed, tr.Duration, tr.Period))
		if err != nil {
			return err
		}
		if err := target.SetVariable(tr.Variable, v); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return target.SetVariable(tr.Variable, tr.Final)
}

// Active returns the number of transitions still running.
func (r *Runner) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Wait blocks until every started transition has finished.
func (r *Runner) Wait() { r.wg.Wait() }

// Stop cancels running transitions, waits for them and refuses new ones.
// Cancelled transitions leave their variable at its last written value.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.cancel()
	r.wg.Wait()
}
