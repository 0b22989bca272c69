package ggmix

import (
	"log/slog"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Defaults used when no option overrides them.
const (
	DefaultWidth          = 800
	DefaultHeight         = 600
	DefaultMaxFrameRate   = 35
	DefaultRefreshTimeout = 2 * time.Second

	// MinFrameSleep bounds the render loop's CPU usage regardless of the
	// requested frame rate.
	MinFrameSleep = 10 * time.Millisecond
)

// Option configures a Compositor during creation.
//
// Example:
//
//	comp := ggmix.NewCompositor(
//	    ggmix.WithSize(1280, 720),
//	    ggmix.WithMaxFrameRate(60),
//	    ggmix.WithLogger(slog.Default()),
//	)
type Option func(*options)

type options struct {
	width, height  int
	maxFrameRate   float64
	logger         *slog.Logger
	clock          Clock
	dataPath       string
	refreshTimeout time.Duration
	background     gg.RGBA
	labelFace      text.Face
	presenter      Presenter
	listeners      []Listener
}

func defaultOptions() options {
	return options{
		width:          DefaultWidth,
		height:         DefaultHeight,
		maxFrameRate:   DefaultMaxFrameRate,
		clock:          SystemClock(),
		refreshTimeout: DefaultRefreshTimeout,
		background:     gg.Black,
	}
}

// WithSize sets the initial back buffer size in pixels.
// Non-positive values are ignored.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.width, o.height = width, height
		}
	}
}

// WithMaxFrameRate sets the initial repaint rate in frames per second.
func WithMaxFrameRate(fps float64) Option {
	return func(o *options) {
		if fps > 0 {
			o.maxFrameRate = fps
		}
	}
}

// WithLogger sets a logger for this compositor and its registries.
// Without it the package logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock injects the time source used for unit throttling, click
// synthesis and frame-rate measurement. Tests use a manual clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDataPath sets the data directory handed to units on instantiation.
func WithDataPath(path string) Option {
	return func(o *options) {
		o.dataPath = path
	}
}

// WithRefreshTimeout bounds how long ForceRefresh waits for the render loop.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.refreshTimeout = d
		}
	}
}

// WithBackground sets the color the back buffer is cleared to on a forced
// refresh. The default is opaque black.
func WithBackground(c gg.RGBA) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithLabelFace sets the font face used for edit-mode labels.
// By default a Go Regular face is loaded lazily.
func WithLabelFace(face text.Face) Option {
	return func(o *options) {
		o.labelFace = face
	}
}

// WithPresenter sets where finished frames are shown.
func WithPresenter(p Presenter) Option {
	return func(o *options) {
		o.presenter = p
	}
}

// WithListener subscribes l to topology change notifications.
func WithListener(l Listener) Option {
	return func(o *options) {
		if l != nil {
			o.listeners = append(o.listeners, l)
		}
	}
}
