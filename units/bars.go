package units

import (
	"math"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggmix"
)

// Bars draws vertical bars scrolling to the right over a black background.
//
// Variables: count (bars across the surface, 1-64), speed (pixels per frame),
// color (hex string).
type Bars struct {
	varSet

	count  int
	speed  float64
	fill   gg.RGBA
	offset float64
	width  float64
	height float64
}

// BarsPeriod is the bar generator's frame period.
const BarsPeriod = 20 * time.Millisecond

// NewBars returns a bar generator with count bars.
func NewBars(count int) *Bars {
	g := &Bars{count: max(count, 1), speed: 2, fill: gg.White}
	g.integer("count", &g.count, 1, 64)
	g.number("speed", &g.speed, -1000, 1000)
	g.color("color", &g.fill)
	return g
}

// BarsTemplate returns a template creating eight-bar generators.
func BarsTemplate(name string) ggmix.Template {
	return ggmix.NewTemplate(name, func(ggmix.Host) (ggmix.Generator, error) {
		return NewBars(8), nil
	})
}

// Setup implements ggmix.Generator.
func (g *Bars) Setup(c *ggmix.Canvas) {
	g.width, g.height = float64(c.Width()), float64(c.Height())
	g.offset = 0
}

// Draw implements ggmix.Generator.
func (g *Bars) Draw(c *ggmix.Canvas) {
	c.Clear()

	pitch := g.width / float64(g.count)
	shift := math.Mod(g.offset, pitch)
	if shift < 0 {
		shift += pitch
	}
	c.SetFillBrush(gg.Solid(g.fill))
	for x := shift - pitch; x < g.width; x += pitch {
		c.DrawRectangle(x, 0, pitch/2, g.height)
	}
	_ = c.Fill()

	g.offset += g.speed
}

// FramePeriod implements ggmix.FramePeriodHinter.
func (g *Bars) FramePeriod() time.Duration { return BarsPeriod }
