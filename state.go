package ggmix

import (
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// DrawState is a checkpoint of the mutable pen state of a drawing context:
// everything a unit can set that would otherwise bleed into the next unit.
// Clip is not part of it; the compositor owns the clip.
type DrawState struct {
	Transform      gg.Matrix
	Brush          gg.Brush
	Stroke         gg.Stroke
	FillRule       gg.FillRule
	Face           text.Face
	Mask           *gg.Mask
	TextMode       gg.TextMode
	RasterizerMode gg.RasterizerMode
}

// CaptureState records the current state of c.
func CaptureState(c *Canvas) DrawState {
	dc := c.Context
	return DrawState{
		Transform:      dc.GetTransform(),
		Brush:          dc.FillBrush(),
		Stroke:         dc.GetStroke(),
		FillRule:       c.fillRule,
		Face:           dc.Font(),
		Mask:           dc.GetMask(),
		TextMode:       dc.TextMode(),
		RasterizerMode: dc.RasterizerMode(),
	}
}

// Apply loads s into c and clears any pending path.
func (s DrawState) Apply(c *Canvas) {
	dc := c.Context
	dc.ClearPath()
	dc.SetTransform(s.Transform)
	if s.Brush != nil {
		dc.SetFillBrush(s.Brush)
	}
	dc.SetStroke(s.Stroke)
	c.SetFillRule(s.FillRule)
	dc.SetFont(s.Face)
	dc.SetMask(s.Mask)
	dc.SetTextMode(s.TextMode)
	dc.SetRasterizerMode(s.RasterizerMode)
}

// DefaultState returns the state of a freshly created gg context.
// Units start their one-time setup from it.
func DefaultState() DrawState {
	return CaptureState(newCanvas(gg.NewContext(1, 1)))
}
