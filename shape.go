// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggmix

import (
	"math"

	"github.com/gogpu/gg"
)

// Shape is the immutable geometry of a channel. Path returns a fresh path in
// device coordinates that the caller may modify.
type Shape interface {
	Path() *gg.Path
	Bounds() gg.Rect
}

// Ellipse is an ellipse given by its bounding box.
type Ellipse struct {
	X, Y, W, H float64
}

// Path implements Shape.
func (e Ellipse) Path() *gg.Path {
	p := gg.NewPath()
	p.Ellipse(e.X+e.W/2, e.Y+e.H/2, math.Abs(e.W)/2, math.Abs(e.H)/2)
	return p
}

// Bounds implements Shape.
func (e Ellipse) Bounds() gg.Rect {
	return gg.NewRect(gg.Pt(e.X, e.Y), gg.Pt(e.X+e.W, e.Y+e.H))
}

// Rect is an axis-aligned rectangle, rounded when Radius > 0.
type Rect struct {
	X, Y, W, H float64
	Radius     float64
}

// Path implements Shape.
func (r Rect) Path() *gg.Path {
	p := gg.NewPath()
	if r.Radius > 0 {
		p.RoundedRectangle(r.X, r.Y, r.W, r.H, r.Radius)
	} else {
		p.Rectangle(r.X, r.Y, r.W, r.H)
	}
	return p
}

// Bounds implements Shape.
func (r Rect) Bounds() gg.Rect {
	return gg.NewRect(gg.Pt(r.X, r.Y), gg.Pt(r.X+r.W, r.Y+r.H))
}

// Polygon is a closed polygon through Points.
type Polygon struct {
	Points []gg.Point
}

// Path implements Shape.
func (pg Polygon) Path() *gg.Path {
	p := gg.NewPath()
	for i, pt := range pg.Points {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	if len(pg.Points) > 0 {
		p.Close()
	}
	return p
}

// Bounds implements Shape.
func (pg Polygon) Bounds() gg.Rect {
	return pointsBounds(pg.Points)
}

// PathShape wraps an arbitrary closed path, such as one drawn in the
// ChannelEditor. The wrapped path is cloned on construction and on every
// Path call.
type PathShape struct {
	p *gg.Path
}

// NewPathShape returns a Shape for a copy of p.
func NewPathShape(p *gg.Path) PathShape {
	if p == nil {
		return PathShape{p: gg.NewPath()}
	}
	return PathShape{p: p.Clone()}
}

// Path implements Shape.
func (s PathShape) Path() *gg.Path {
	if s.p == nil {
		return gg.NewPath()
	}
	return s.p.Clone()
}

// Bounds implements Shape.
func (s PathShape) Bounds() gg.Rect {
	if s.p == nil {
		return gg.Rect{}
	}
	return s.p.BoundingBox()
}

// Union is the area covered by any of its parts. Group channels use it.
type Union struct {
	Parts []Shape
}

// Path implements Shape. Every part is emitted with clockwise orientation
// so that the non-zero fill rule yields the union of the parts.
func (u Union) Path() *gg.Path {
	out := gg.NewPath()
	for _, part := range u.Parts {
		if part == nil {
			continue
		}
		p := part.Path()
		if p.Area() < 0 {
			p = p.Reversed()
		}
		out.Append(p)
	}
	return out
}

// Bounds implements Shape.
func (u Union) Bounds() gg.Rect {
	var (
		b     gg.Rect
		found bool
	)
	for _, part := range u.Parts {
		if part == nil {
			continue
		}
		pb := part.Bounds()
		if !found {
			b, found = pb, true
			continue
		}
		b = b.Union(pb)
	}
	return b
}

type emptyShape struct{}

func (emptyShape) Path() *gg.Path  { return gg.NewPath() }
func (emptyShape) Bounds() gg.Rect { return gg.Rect{} }

// EmptyShape is the canonical zero-area region. Units routed to it still
// draw, but none of their pixels land.
var EmptyShape Shape = emptyShape{}

// IsEmptyShape reports whether s covers no area.
func IsEmptyShape(s Shape) bool {
	if s == nil {
		return true
	}
	if _, ok := s.(emptyShape); ok {
		return true
	}
	b := s.Bounds()
	return b.Width() <= 0 || b.Height() <= 0
}

// ShapeContains reports whether pt lies inside s under the non-zero rule.
func ShapeContains(s Shape, pt gg.Point) bool {
	if IsEmptyShape(s) {
		return false
	}
	if !s.Bounds().Contains(pt) {
		return false
	}
	return s.Path().Contains(pt)
}

func pointsBounds(pts []gg.Point) gg.Rect {
	if len(pts) == 0 {
		return gg.Rect{}
	}
	b := gg.Rect{Min: pts[0], Max: pts[0]}
	for _, pt := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, pt.X)
		b.Min.Y = math.Min(b.Min.Y, pt.Y)
		b.Max.X = math.Max(b.Max.X, pt.X)
		b.Max.Y = math.Max(b.Max.Y, pt.Y)
	}
	return b
}

// clipTo intersects dc's clip with s. dc must have an identity transform.
func clipTo(dc *gg.Context, s Shape) {
	if IsEmptyShape(s) {
		// A rectangle entirely off-surface; zero-size rects at the origin
		// still touch pixel (0,0) under an inclusive containment test.
		dc.ClipRect(-2, -2, 1, 1)
		return
	}
	if r, ok := s.(Rect); ok {
		if r.Radius > 0 {
			dc.ClipRoundRect(r.X, r.Y, r.W, r.H, r.Radius)
		} else {
			dc.ClipRect(r.X, r.Y, r.W, r.H)
		}
		return
	}
	dc.DrawPath(s.Path())
	dc.Clip()
}
