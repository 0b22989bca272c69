package ggmix

import (
	"testing"

	"github.com/gogpu/gg"
)

func newEditMode() (*ChannelRegistry, *ChannelEditor) {
	r := NewChannelRegistry(nil, nil)
	r.SetEditMode(true)
	return r, NewChannelEditor(r)
}

// click feeds the releases of a single click or a double-click.
func click(e *ChannelEditor, x, y float64, double bool) *Channel {
	ch := e.HandleRelease(x, y, 1)
	if double {
		ch = e.HandleRelease(x, y, 2)
	}
	return ch
}

func TestEditorDrawsTriangle(t *testing.T) {
	r, e := newEditMode()

	if got := click(e, 10, 10, true); got != nil {
		t.Fatal("starting a path created a channel")
	}
	if e.State() != EditorLineTo {
		t.Fatalf("state = %v, want LINE_TO", e.State())
	}
	click(e, 90, 10, false)
	ch := click(e, 50, 80, true)
	if ch == nil {
		t.Fatal("closing the path created no channel")
	}
	if e.State() != EditorWaiting || len(e.Points()) != 0 {
		t.Errorf("after finish: state %v, %d points", e.State(), len(e.Points()))
	}
	if r.Len() != 1 || ch.Name() != "Channel 1" {
		t.Errorf("registry has %d channels, name %q", r.Len(), ch.Name())
	}
	if !ShapeContains(ch.Shape(), gg.Pt(50, 30)) {
		t.Error("triangle does not contain its interior")
	}
	if ShapeContains(ch.Shape(), gg.Pt(10, 80)) {
		t.Error("triangle contains a point outside it")
	}
	b := ch.Shape().Bounds()
	if b.Min != gg.Pt(10, 10) || b.Max != gg.Pt(90, 80) {
		t.Errorf("bounds = %+v", b)
	}
}

func TestEditorTransitions(t *testing.T) {
	tests := []struct {
		name   string
		steps  func(e *ChannelEditor)
		state  EditorState
		points int
	}{
		{"single click while waiting", func(e *ChannelEditor) { click(e, 1, 1, false) }, EditorWaiting, 0},
		{"drag end ignored", func(e *ChannelEditor) { e.HandleRelease(1, 1, 0) }, EditorWaiting, 0},
		{"double click starts", func(e *ChannelEditor) { click(e, 1, 1, true) }, EditorLineTo, 1},
		{"clicks accumulate", func(e *ChannelEditor) {
			click(e, 1, 1, true)
			click(e, 20, 1, false)
			click(e, 20, 20, false)
		}, EditorLineTo, 3},
		{"repeat point skipped", func(e *ChannelEditor) {
			click(e, 1, 1, true)
			click(e, 20, 1, false)
			click(e, 20, 1, false)
		}, EditorLineTo, 2},
		{"too short discarded", func(e *ChannelEditor) {
			click(e, 1, 1, true)
			click(e, 20, 1, true)
		}, EditorWaiting, 0},
		{"cancel", func(e *ChannelEditor) {
			click(e, 1, 1, true)
			e.Cancel()
		}, EditorWaiting, 0},
		{"begin restarts", func(e *ChannelEditor) {
			click(e, 1, 1, true)
			click(e, 20, 1, false)
			e.Begin(9, 9)
		}, EditorLineTo, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, e := newEditMode()
			tt.steps(e)
			if e.State() != tt.state || len(e.Points()) != tt.points {
				t.Errorf("state %v with %d points, want %v with %d", e.State(), len(e.Points()), tt.state, tt.points)
			}
			if tt.name == "too short discarded" && r.Len() != 0 {
				t.Error("a two-point path created a channel")
			}
		})
	}
}

func TestEditorDoubleClickWithinSlop(t *testing.T) {
	_, e := newEditMode()
	click(e, 10, 10, true)
	click(e, 60, 10, false)
	e.HandleRelease(50, 60, 1)
	ch := e.HandleRelease(52, 61, 2)
	if ch == nil {
		t.Fatal("double-click did not close the path")
	}
	if b := ch.Shape().Bounds(); b.Max != gg.Pt(60, 60) {
		t.Errorf("bounds = %+v, the jittered second release added a vertex", b)
	}
}

func TestEditorInactiveOutsideEditMode(t *testing.T) {
	r, e := newEditMode()
	click(e, 1, 1, true)
	click(e, 5, 1, false)

	r.SetEditMode(false)
	if got := click(e, 5, 5, true); got != nil {
		t.Error("editor created a channel outside edit mode")
	}
	if e.State() != EditorWaiting || len(e.Points()) != 0 {
		t.Error("leaving edit mode did not abandon the path")
	}
	if r.Len() != 0 {
		t.Errorf("registry has %d channels", r.Len())
	}
}

func TestEditorCancelReportsPath(t *testing.T) {
	_, e := newEditMode()
	if e.Cancel() {
		t.Error("Cancel() = true with nothing in progress")
	}
	click(e, 1, 1, true)
	if !e.Cancel() {
		t.Error("Cancel() = false with a path in progress")
	}
}

func TestEditorPaintInProgress(t *testing.T) {
	_, e := newEditMode()
	c := newCanvas(gg.NewContext(40, 40))
	c.Context.ClearWithColor(gg.Black)

	e.PaintInProgress(c)
	if px := c.ResizeTarget().GetPixel(20, 20); !isColor(px, gg.Black) {
		t.Error("WAITING editor painted something")
	}

	click(e, 5, 20, true)
	click(e, 30, 20, false)
	c.SetLineWidth(9)
	e.PaintInProgress(c)

	// Handle centered on the last point.
	if px := c.ResizeTarget().GetPixel(30, 20); !isColor(px, handleColor) {
		t.Errorf("handle pixel = %+v, want %+v", px, handleColor)
	}
	if c.GetStroke().Width != 9 {
		t.Error("PaintInProgress changed the pen state")
	}
}

func TestEditorStateString(t *testing.T) {
	for s, want := range map[EditorState]string{
		EditorWaiting:   "WAITING",
		EditorLineTo:    "LINE_TO",
		EditorEnd:       "END",
		EditorState(42): "EditorState(?)",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
