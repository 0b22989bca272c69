// Command ggmix runs a compositor headless and writes its frames as PNG
// files. The scene comes from an HCL stage file or the built-in welcome
// screen.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmix"
	"github.com/gogpu/ggmix/stage"
	"github.com/gogpu/ggmix/units"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the testable body of main.
func run(ctx context.Context, outW io.Writer, args []string) error {
	cfg, exit, err := parse(args, outW)
	if err != nil {
		return err
	}
	if exit {
		return nil
	}

	logger := newLogger(cfg.logLevel, cfg.logFormat, outW)
	ggmix.SetLogger(logger)
	defer ggmix.SetLogger(nil)

	var st *stage.Stage
	if cfg.stage != "" {
		if st, err = stage.Load(cfg.stage); err != nil {
			return err
		}
	}

	if cfg.out != "" {
		if err := os.MkdirAll(cfg.out, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := &frameWriter{dir: cfg.out, every: cfg.every, limit: cfg.frames, done: cancel}

	opts := []ggmix.Option{ggmix.WithLogger(logger), ggmix.WithPresenter(w)}
	var clock *ggmix.ManualClock
	if !cfg.realtime {
		clock = ggmix.NewManualClock(time.Now())
		opts = append(opts, ggmix.WithClock(clock))
	}
	if st != nil {
		opts = append(st.Options(), opts...)
	}
	comp := ggmix.NewCompositor(opts...)
	ctl := ggmix.NewControl(comp)
	defer ctl.Close()

	if st != nil {
		if err := st.Apply(comp, units.Catalog(), ctl.Automation()); err != nil {
			return err
		}
	}
	if cfg.welcome {
		if _, err := units.InstallWelcome(comp); err != nil {
			return fmt.Errorf("failed to install welcome screen: %w", err)
		}
	}

	start := time.Now()
	if cfg.realtime {
		if err := comp.Run(ctx); err != nil {
			return err
		}
	} else {
		interval := time.Duration(float64(time.Second) / comp.MaxFrameRate())
		for ctx.Err() == nil {
			comp.Paint(clock.Advance(interval))
		}
	}

	painted, written := w.counts()
	if err := w.err(); err != nil {
		return err
	}
	fmt.Fprintf(outW, "painted %d frames, wrote %d in %v\n", painted, written, time.Since(start).Round(time.Millisecond))
	return nil
}

// frameWriter is the compositor's presenter. It saves every Nth frame and
// cancels the run once limit frames have been presented.
type frameWriter struct {
	dir   string
	every int
	limit int
	done  context.CancelFunc

	mu       sync.Mutex
	painted  int
	written  int
	firstErr error
}

func (w *frameWriter) Present(frame *gg.Pixmap) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.painted >= w.limit {
		return nil
	}
	n := w.painted
	w.painted++
	if w.painted == w.limit {
		w.done()
	}

	if w.dir == "" || n%w.every != 0 {
		return nil
	}
	path := filepath.Join(w.dir, fmt.Sprintf("frame_%05d.png", n))
	if err := frame.SavePNG(path); err != nil {
		err = fmt.Errorf("failed to save frame %d: %w", n, err)
		if w.firstErr == nil {
			w.firstErr = err
			w.done()
		}
		return err
	}
	w.written++
	return nil
}

func (w *frameWriter) counts() (painted, written int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.painted, w.written
}

func (w *frameWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}
