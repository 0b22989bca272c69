package units

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/ggmix"
)

// Solid fills its channel with one color.
//
// Variables: color (hex string such as "#ff8800"), level (0-1, fades the
// color towards black).
type Solid struct {
	varSet

	fill  gg.RGBA
	level float64
}

// NewSolid returns a solid generator painting col at full level.
func NewSolid(col gg.RGBA) *Solid {
	g := &Solid{fill: col, level: 1}
	g.color("color", &g.fill)
	g.number("level", &g.level, 0, 1)
	return g
}

// SolidTemplate returns a template creating white solid generators.
func SolidTemplate(name string) ggmix.Template {
	return ggmix.NewTemplate(name, func(ggmix.Host) (ggmix.Generator, error) {
		return NewSolid(gg.White), nil
	})
}

// Setup implements ggmix.Generator.
func (g *Solid) Setup(*ggmix.Canvas) {}

// Draw implements ggmix.Generator.
func (g *Solid) Draw(c *ggmix.Canvas) {
	c.ClearWithColor(gg.RGBA2(g.fill.R*g.level, g.fill.G*g.level, g.fill.B*g.level, g.fill.A))
}
