// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package mixcanvas

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggmix"
)

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return nil }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }

// mockTexture implements gpucontext.Texture and TextureUpdater.
type mockTexture struct {
	width, height int
	data          []byte
	updates       int
	premultiplied bool
	destroyed     bool
	failUpdate    bool
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }

func (m *mockTexture) UpdateData(data []byte) error {
	if m.failUpdate {
		return errors.New("device lost")
	}
	m.data = append(m.data[:0], data...)
	m.updates++
	return nil
}

func (m *mockTexture) SetPremultiplied(on bool) { m.premultiplied = on }
func (m *mockTexture) Destroy()                 { m.destroyed = true }

// mockCreator implements gpucontext.TextureCreator.
type mockCreator struct {
	textures []*mockTexture
	failNext bool
}

func (m *mockCreator) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("out of memory")
	}
	tex := &mockTexture{width: width, height: height, data: append([]byte(nil), data...)}
	m.textures = append(m.textures, tex)
	return tex, nil
}

// mockDrawer implements gpucontext.TextureDrawer.
type mockDrawer struct {
	creator   *mockCreator
	noCreator bool
	drawn     gpucontext.Texture
	x, y      float32
	draws     int
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, x, y float32) error {
	m.drawn, m.x, m.y = tex, x, y
	m.draws++
	return nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator {
	if m.noCreator {
		return nil
	}
	return m.creator
}

// redrawCounter counts redraw requests.
type redrawCounter struct {
	gpucontext.NullWindowProvider
	requests int
}

func (r *redrawCounter) RequestRedraw() { r.requests++ }

func solidPixmap(w, h int, c gg.RGBA) *gg.Pixmap {
	dc := gg.NewContext(w, h)
	dc.ClearWithColor(c)
	return dc.ResizeTarget()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
		want     gputypes.TextureFormat
		err      error
	}{
		{"headless", nil, gputypes.TextureFormatUndefined, nil},
		{"bgra", &mockProvider{format: gputypes.TextureFormatBGRA8Unorm}, gputypes.TextureFormatBGRA8Unorm, nil},
		{"rgba srgb", &mockProvider{format: gputypes.TextureFormatRGBA8UnormSrgb}, gputypes.TextureFormatRGBA8UnormSrgb, nil},
		{"no surface", &mockProvider{format: gputypes.TextureFormatUndefined}, gputypes.TextureFormatUndefined, nil},
		{"float", &mockProvider{format: gputypes.TextureFormatRGBA16Float}, 0, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(nil, tt.provider)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if err == nil && p.Format() != tt.want {
				t.Errorf("Format() = %v, want %v", p.Format(), tt.want)
			}
		})
	}
}

func TestRenderBeforePresent(t *testing.T) {
	p, _ := New(nil, nil)
	dc := &mockDrawer{creator: &mockCreator{}}
	if err := p.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if dc.draws != 0 || len(dc.creator.textures) != 0 {
		t.Error("drew before any frame was presented")
	}
}

func TestPresentAndRender(t *testing.T) {
	win := &redrawCounter{}
	p, err := New(win, nil)
	if err != nil {
		t.Fatal(err)
	}
	dc := &mockDrawer{creator: &mockCreator{}}

	frame := solidPixmap(4, 2, gg.Red)
	if err := p.Present(frame); err != nil {
		t.Fatal(err)
	}
	// The presenter keeps its own copy.
	frame.Data()[0] = 7

	if win.requests != 1 {
		t.Errorf("redraw requests = %d", win.requests)
	}
	if err := p.RenderToPosition(dc, 3, 4); err != nil {
		t.Fatal(err)
	}
	if len(dc.creator.textures) != 1 {
		t.Fatalf("created %d textures", len(dc.creator.textures))
	}
	tex := dc.creator.textures[0]
	if tex.width != 4 || tex.height != 2 || !tex.premultiplied {
		t.Errorf("texture = %dx%d premultiplied=%v", tex.width, tex.height, tex.premultiplied)
	}
	if tex.data[0] != 255 {
		t.Errorf("texture red byte = %d, want 255", tex.data[0])
	}
	if dc.drawn != tex || dc.x != 3 || dc.y != 4 {
		t.Errorf("drew %v at (%v, %v)", dc.drawn, dc.x, dc.y)
	}

	// Unchanged frame: draw without uploading.
	if err := p.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if tex.updates != 0 || p.Uploads() != 1 || dc.draws != 2 {
		t.Errorf("updates=%d uploads=%d draws=%d", tex.updates, p.Uploads(), dc.draws)
	}

	// New frame of the same size: update in place.
	p.Present(solidPixmap(4, 2, gg.Blue))
	if err := p.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if tex.updates != 1 || tex.data[2] != 255 || len(dc.creator.textures) != 1 {
		t.Errorf("in-place update failed: updates=%d", tex.updates)
	}
	if p.Presented() != 2 {
		t.Errorf("Presented() = %d", p.Presented())
	}
}

func TestResizeRecreatesTexture(t *testing.T) {
	p, _ := New(nil, nil)
	dc := &mockDrawer{creator: &mockCreator{}}

	p.Present(solidPixmap(4, 4, gg.White))
	p.RenderTo(dc)
	first := dc.creator.textures[0]

	p.Present(solidPixmap(8, 2, gg.White))
	if w, h := p.Size(); w != 8 || h != 2 {
		t.Errorf("Size() = %dx%d", w, h)
	}
	if err := p.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if len(dc.creator.textures) != 2 {
		t.Fatalf("created %d textures", len(dc.creator.textures))
	}
	if !first.destroyed {
		t.Error("old texture not destroyed after replacement")
	}
	if second := dc.creator.textures[1]; second.width != 8 || dc.drawn != second {
		t.Error("new texture not drawn")
	}
}

func TestRenderErrors(t *testing.T) {
	p, _ := New(nil, nil)
	p.Present(solidPixmap(2, 2, gg.White))

	if err := p.RenderTo(&mockDrawer{noCreator: true}); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("no creator err = %v", err)
	}

	dc := &mockDrawer{creator: &mockCreator{failNext: true}}
	if err := p.RenderTo(dc); err == nil {
		t.Error("creation failure not reported")
	}
	if err := p.RenderTo(dc); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}

	dc.creator.textures[0].failUpdate = true
	p.Present(solidPixmap(2, 2, gg.Black))
	if err := p.RenderTo(dc); err == nil {
		t.Error("update failure not reported")
	}
}

func TestClose(t *testing.T) {
	p, _ := New(nil, nil)
	dc := &mockDrawer{creator: &mockCreator{}}
	p.Present(solidPixmap(2, 2, gg.White))
	p.RenderTo(dc)

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !dc.creator.textures[0].destroyed {
		t.Error("texture not destroyed")
	}
	if err := p.Present(solidPixmap(2, 2, gg.White)); !errors.Is(err, ErrClosed) {
		t.Errorf("Present after Close err = %v", err)
	}
	if err := p.RenderTo(dc); !errors.Is(err, ErrClosed) {
		t.Errorf("RenderTo after Close err = %v", err)
	}
}

func TestCompositorPresents(t *testing.T) {
	p, _ := New(nil, nil)
	clock := ggmix.NewManualClock(time.Unix(0, 0))
	comp := ggmix.NewCompositor(ggmix.WithSize(16, 8), ggmix.WithClock(clock), ggmix.WithPresenter(p))
	comp.Paint(clock.Advance(time.Millisecond))

	if w, h := p.Size(); w != 16 || h != 8 || p.Presented() != 1 {
		t.Errorf("presenter got %dx%d, %d frames", w, h, p.Presented())
	}
	dc := &mockDrawer{creator: &mockCreator{}}
	if err := p.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	// Opaque black background.
	if tex := dc.creator.textures[0]; tex.data[3] != 255 || tex.data[0] != 0 {
		t.Errorf("first pixel = %v", tex.data[:4])
	}
}
