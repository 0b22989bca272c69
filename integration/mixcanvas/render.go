// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mixcanvas

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// RenderTo uploads the latest frame if it changed and draws it at (0, 0).
// Call it from the window's draw callback. Before the first Present it
// draws nothing.
func (p *Presenter) RenderTo(dc gpucontext.TextureDrawer) error {
	return p.RenderToPosition(dc, 0, 0)
}

// RenderToPosition is RenderTo with the frame's top-left corner at (x, y).
func (p *Presenter) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.pixels == nil {
		return nil
	}

	// The old texture may still be in use by in-flight command buffers; it
	// is destroyed after the replacement has been written.
	if p.sizeChanged {
		if p.texture != nil {
			destroy(p.oldTexture)
			p.oldTexture, p.texture = p.texture, nil
		}
		p.sizeChanged = false
	}

	switch {
	case p.texture == nil:
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(p.width, p.height, p.pixels)
		if err != nil {
			return fmt.Errorf("mixcanvas: NewTextureFromRGBA failed: %w", err)
		}
		// gg pixmaps hold premultiplied alpha.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		p.texture = tex
		p.uploads++
		destroy(p.oldTexture)
		p.oldTexture = nil
	case p.dirty:
		if u, ok := p.texture.(gpucontext.TextureUpdater); ok {
			if err := u.UpdateData(p.pixels); err != nil {
				return fmt.Errorf("mixcanvas: texture update failed: %w", err)
			}
			p.uploads++
		}
	}
	p.dirty = false

	return dc.DrawTexture(p.texture, x, y)
}
