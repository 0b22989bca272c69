// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mixcanvas

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggmix"
)

// Errors returned by Presenter operations.
var (
	// ErrClosed is returned when a closed presenter is used.
	ErrClosed = errors.New("mixcanvas: presenter is closed")

	// ErrUnsupportedFormat is returned when the window surface does not use
	// an 8-bit RGBA or BGRA format.
	ErrUnsupportedFormat = errors.New("mixcanvas: unsupported surface format")

	// ErrNoTextureCreator is returned when the draw context cannot create
	// textures.
	ErrNoTextureCreator = errors.New("mixcanvas: draw context has no texture creator")
)

// textureDestroyer matches the Destroy method of gogpu textures.
type textureDestroyer interface {
	Destroy()
}

// Presenter shows compositor frames in a gpucontext window. The render
// loop calls Present with every finished frame; the window's draw callback
// calls RenderTo, which uploads the latest frame to a GPU texture and draws
// it.
//
// Present and RenderTo may run on different goroutines.
type Presenter struct {
	window gpucontext.WindowProvider
	format gputypes.TextureFormat

	mu          sync.Mutex
	pixels      []byte
	width       int
	height      int
	dirty       bool
	sizeChanged bool
	texture     gpucontext.Texture
	oldTexture  gpucontext.Texture
	presented   uint64
	uploads     uint64
	closed      bool
}

var _ ggmix.Presenter = (*Presenter)(nil)

// New creates a presenter for a window. window may be nil, in which case no
// redraws are requested. provider may be nil in headless use; when given,
// its surface format must be an 8-bit RGBA or BGRA format and it is shared
// with gg's GPU accelerator if one is registered.
func New(window gpucontext.WindowProvider, provider gpucontext.DeviceProvider) (*Presenter, error) {
	p := &Presenter{window: window, format: gputypes.TextureFormatUndefined}
	if provider != nil {
		p.format = provider.SurfaceFormat()
		if !supportedFormat(p.format) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p.format)
		}
		// Non-fatal: the accelerator may not share devices.
		if err := gg.SetAcceleratorDeviceProvider(provider); err != nil {
			ggmix.Logger().Debug("mixcanvas: accelerator keeps its own device", "err", err)
		}
	}
	return p, nil
}

func supportedFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatUndefined,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// Format returns the window surface format, or TextureFormatUndefined when
// headless.
func (p *Presenter) Format() gputypes.TextureFormat { return p.format }

// Present copies frame for the next RenderTo and asks the window to redraw.
// It implements ggmix.Presenter.
func (p *Presenter) Present(frame *gg.Pixmap) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	w, h := frame.Width(), frame.Height()
	if w != p.width || h != p.height {
		p.width, p.height = w, h
		p.sizeChanged = true
	}
	data := frame.Data()
	if cap(p.pixels) < len(data) {
		p.pixels = make([]byte, len(data))
	}
	p.pixels = p.pixels[:len(data)]
	copy(p.pixels, data)
	p.dirty = true
	p.presented++
	p.mu.Unlock()

	if p.window != nil {
		p.window.RequestRedraw()
	}
	return nil
}

// Size returns the size of the latest frame.
func (p *Presenter) Size() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// Presented returns the number of frames handed to Present.
func (p *Presenter) Presented() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presented
}

// Uploads returns the number of texture creations and updates.
func (p *Presenter) Uploads() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uploads
}

// Close destroys the textures. Close is idempotent.
func (p *Presenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	destroy(p.oldTexture)
	destroy(p.texture)
	p.oldTexture, p.texture = nil, nil
	p.pixels = nil
	return nil
}

func destroy(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
