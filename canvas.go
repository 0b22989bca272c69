package ggmix

import "github.com/gogpu/gg"

// Canvas is what a generator draws on. It embeds the shared gg.Context, so
// every gg drawing method is available, and adds the per-unit view of the
// frame: the unit's frame counter, the pointer and the surface size.
//
// Clear and ClearWithColor are shadowed so a unit can only ever paint its own
// channel. The line style setters are shadowed to write the stroke that
// gg renders with, since checkpoint restores install one with SetStroke.
type Canvas struct {
	*gg.Context

	fillRule   gg.FillRule
	frameCount int
	pointer    PointerState
}

// PointerState is the pointer as seen by a unit during Draw.
type PointerState struct {
	X, Y         float64
	PrevX, PrevY float64
	Pressed      bool
}

func newCanvas(dc *gg.Context) *Canvas {
	return &Canvas{Context: dc, fillRule: gg.FillRuleNonZero}
}

// SetFillRule sets the fill rule and remembers it so it can be checkpointed.
func (c *Canvas) SetFillRule(rule gg.FillRule) {
	c.fillRule = rule
	c.Context.SetFillRule(rule)
}

// FillRule returns the current fill rule.
func (c *Canvas) FillRule() gg.FillRule {
	return c.fillRule
}

// SetLineWidth sets the stroke width.
func (c *Canvas) SetLineWidth(width float64) {
	s := c.GetStroke()
	s.Width = width
	c.SetStroke(s)
}

// SetLineCap sets the stroke cap style.
func (c *Canvas) SetLineCap(lineCap gg.LineCap) {
	s := c.GetStroke()
	s.Cap = lineCap
	c.SetStroke(s)
}

// SetLineJoin sets the stroke join style.
func (c *Canvas) SetLineJoin(join gg.LineJoin) {
	s := c.GetStroke()
	s.Join = join
	c.SetStroke(s)
}

// SetMiterLimit sets the miter limit.
func (c *Canvas) SetMiterLimit(limit float64) {
	s := c.GetStroke()
	s.MiterLimit = limit
	c.SetStroke(s)
}

// FrameCount returns the number of frames the current unit has drawn since
// its last setup. It is 0 during Setup and the first Draw.
func (c *Canvas) FrameCount() int {
	return c.frameCount
}

// Pointer returns the most recent pointer position.
func (c *Canvas) Pointer() PointerState {
	return c.pointer
}

// Clear paints the unit's channel opaque black.
func (c *Canvas) Clear() {
	c.ClearWithColor(gg.Black)
}

// ClearWithColor fills the unit's channel with col. Unlike
// gg.Context.ClearWithColor it honours the clip and leaves the pen state alone.
func (c *Canvas) ClearWithColor(col gg.RGBA) {
	dc := c.Context
	brush := dc.FillBrush()
	dc.Push()
	dc.Identity()
	dc.ClearPath()
	dc.SetFillBrush(gg.Solid(col))
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	_ = dc.Fill()
	dc.Pop()
	dc.SetFillBrush(brush)
}
