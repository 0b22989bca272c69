package ggmix

import (
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/gg"
)

// EditorState is the state of a ChannelEditor.
type EditorState int

// Editor states.
const (
	// EditorWaiting: no path in progress; a double-click starts one.
	EditorWaiting EditorState = iota
	// EditorLineTo: a path is being accumulated; clicks add points.
	EditorLineTo
	// EditorEnd: the path was closed and is being handed to the registry.
	EditorEnd
)

// String returns the state name.
func (s EditorState) String() string {
	switch s {
	case EditorWaiting:
		return "WAITING"
	case EditorLineTo:
		return "LINE_TO"
	case EditorEnd:
		return "END"
	default:
		return "EditorState(?)"
	}
}

// minEditorPoints is the smallest polygon that encloses area.
const minEditorPoints = 3

// ChannelEditor lets an operator draw a new channel with the pointer while
// rendering continues. It only reacts while its registry is in edit mode.
//
//	WAITING  --double-click-->  LINE_TO  (path starts at the click)
//	LINE_TO  --click--------->  LINE_TO  (line to the click)
//	LINE_TO  --double-click-->  END      (close, create channel) --> WAITING
type ChannelEditor struct {
	mu       sync.Mutex
	state    EditorState
	points   []gg.Point
	channels *ChannelRegistry
	logger   *slog.Logger
}

// NewChannelEditor returns an editor that adds finished shapes to channels.
func NewChannelEditor(channels *ChannelRegistry) *ChannelEditor {
	return &ChannelEditor{channels: channels, logger: channels.logger}
}

// State returns the current state.
func (e *ChannelEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Points returns a copy of the points accumulated so far.
func (e *ChannelEditor) Points() []gg.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]gg.Point(nil), e.points...)
}

// Begin starts a new path at (x, y), discarding any path in progress.
func (e *ChannelEditor) Begin(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.points) > 0 {
		e.logger.Debug("ggmix: editor path discarded", "points", len(e.points))
	}
	e.points = []gg.Point{gg.Pt(x, y)}
	e.state = EditorLineTo
}

// Cancel discards the path in progress. It reports whether there was one.
func (e *ChannelEditor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	had := e.state != EditorWaiting
	e.reset()
	return had
}

func (e *ChannelEditor) reset() {
	e.state = EditorWaiting
	e.points = nil
}

// HandleRelease feeds a pointer release with its click count (1 for a single
// click, 2 for a double-click, 0 for the end of a drag). It returns the
// channel created by this release, if any.
func (e *ChannelEditor) HandleRelease(x, y float64, clicks int) *Channel {
	if !e.channels.EditMode() {
		// Leaving edit mode abandons the path.
		if e.State() != EditorWaiting {
			e.Cancel()
		}
		return nil
	}
	if clicks <= 0 {
		return nil
	}

	e.mu.Lock()
	switch e.state {
	case EditorWaiting:
		if clicks >= 2 {
			e.points = []gg.Point{gg.Pt(x, y)}
			e.state = EditorLineTo
		}
		e.mu.Unlock()
		return nil

	case EditorLineTo:
		e.appendPoint(gg.Pt(x, y))
		if clicks < 2 {
			e.mu.Unlock()
			return nil
		}
		e.state = EditorEnd
		pts := e.points
		e.reset()
		e.mu.Unlock()
		return e.finish(pts)

	default:
		e.reset()
		e.mu.Unlock()
		return nil
	}
}

// appendPoint adds pt unless it lies within ClickSlop of the last point; the
// first release of a double-click already delivered it.
func (e *ChannelEditor) appendPoint(pt gg.Point) {
	if n := len(e.points); n > 0 {
		last := e.points[n-1]
		if math.Hypot(pt.X-last.X, pt.Y-last.Y) <= ClickSlop {
			return
		}
	}
	e.points = append(e.points, pt)
}

func (e *ChannelEditor) finish(pts []gg.Point) *Channel {
	if len(pts) < minEditorPoints {
		e.logger.Warn("ggmix: editor path too short, discarded", "points", len(pts))
		return nil
	}
	p := gg.NewPath()
	p.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
	return e.channels.Create(NewPathShape(p))
}

// PaintInProgress draws the accumulated path and a handle at its current end
// point. It draws nothing while WAITING. The pen state of c is preserved.
func (e *ChannelEditor) PaintInProgress(c *Canvas) {
	pts := e.Points()
	if len(pts) == 0 {
		return
	}

	st := CaptureState(c)
	defer st.Apply(c)

	c.Identity()
	c.SetStroke(gg.DefaultStroke())
	c.SetFillBrush(gg.Solid(handleColor))
	c.ClearPath()
	c.MoveTo(pts[0].X, pts[0].Y)
	for _, pt := range pts[1:] {
		c.LineTo(pt.X, pt.Y)
	}
	_ = c.Stroke()

	last := pts[len(pts)-1]
	c.DrawRectangle(last.X-handleSize/2, last.Y-handleSize/2, handleSize, handleSize)
	_ = c.Fill()
}
