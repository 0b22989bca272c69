package units

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/ggmix"
)

// Welcome generator parameters.
const (
	WelcomeAgents = 200
	WelcomePeriod = 40 * time.Millisecond // 25 fps
	WelcomeTitle  = "ggmix"

	linkNear = 20.0 // agents closer than this get a solid link
	linkFar  = 40.0 // agents closer than this get a faded link
)

// Welcome is the animated boot screen: drifting agents linked to their
// neighbours over a slowly cycling background, with a title and a faint ring.
// Agents drift towards the pointer once it has moved.
//
// Variables: hue (0-255, advances every frame), attract (pull towards the
// pointer per frame, 0-1), agents (read-only).
type Welcome struct {
	varSet

	rng     *rand.Rand
	face    text.Face
	agents  []gg.Point
	moves   []gg.Point
	w, h    float64
	hue     int
	attract float64

	target    gg.Point
	hasTarget bool
}

// NewWelcome returns a welcome generator whose agent placement and drift are
// drawn from seed.
func NewWelcome(seed uint64) *Welcome {
	g := &Welcome{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		attract: 0.01,
	}
	g.integer("hue", &g.hue, 0, 255)
	g.number("attract", &g.attract, 0, 1)
	g.readOnly("agents", func() cty.Value { return cty.NumberIntVal(int64(len(g.agents))) })
	return g
}

// WelcomeTemplate returns a template creating welcome generators.
func WelcomeTemplate(name string) ggmix.Template {
	return ggmix.NewTemplate(name, func(ggmix.Host) (ggmix.Generator, error) {
		return NewWelcome(uint64(time.Now().UnixNano())), nil
	})
}

func (g *Welcome) jitter(span float64) float64 {
	return g.rng.Float64()*span - span/2
}

// Setup scatters the agents over the surface.
func (g *Welcome) Setup(c *ggmix.Canvas) {
	g.w, g.h = float64(c.Width()), float64(c.Height())
	if g.face == nil {
		g.face = ggmix.DefaultLabelFace(50)
	}
	g.agents = make([]gg.Point, WelcomeAgents)
	g.moves = make([]gg.Point, WelcomeAgents)
	for i := range g.agents {
		g.agents[i] = gg.Pt(g.rng.Float64()*g.w, g.rng.Float64()*g.h)
		g.moves[i] = gg.Pt(g.jitter(0.6), g.jitter(0.6))
	}
}

// Draw renders one frame and advances the simulation.
func (g *Welcome) Draw(c *ggmix.Canvas) {
	c.ClearWithColor(hsb(float64(g.hue)/256, 0xAA/255.0, 0xB0/255.0))
	g.drawAgents(c)

	if g.face != nil {
		c.SetFont(g.face)
		c.SetColor(gg.White)
		tw, _ := c.MeasureString(WelcomeTitle)
		c.DrawString(WelcomeTitle, g.w/2-tw/2, g.h/2+20)
	}

	c.SetColor(gg.RGBA2(1, 1, 1, 20.0/255))
	c.SetLineWidth(80)
	c.DrawCircle(g.w/2, g.h/2, g.h*0.35)
	_ = c.Stroke()

	g.step()
	g.hue = (g.hue + 1) % 256
}

func (g *Welcome) drawAgents(c *ggmix.Canvas) {
	c.SetColor(gg.White)
	for _, a := range g.agents {
		c.DrawCircle(a.X, a.Y, 2.5)
	}
	_ = c.Fill()

	for i, a := range g.agents {
		for _, b := range g.agents[i+1:] {
			d := math.Hypot(b.X-a.X, b.Y-a.Y)
			switch {
			case d < linkNear:
				c.SetLineWidth(2)
				c.SetColor(gg.White)
			case d < linkFar:
				c.SetLineWidth(1)
				c.SetColor(gg.RGBA2(1, 1, 1, (100*(d-linkNear)/(linkFar-linkNear))/255))
			default:
				continue
			}
			c.DrawLine(a.X, a.Y, b.X, b.Y)
			_ = c.Stroke()
		}
	}
}

// step moves every agent along its drift, bounces it back from 10 px
// outside the surface and pulls it towards the pointer.
func (g *Welcome) step() {
	for i := range g.agents {
		a, m := &g.agents[i], &g.moves[i]
		a.X += m.X
		a.Y += m.Y
		m.X += g.jitter(0.6)
		m.Y += g.jitter(0.6)

		switch {
		case a.X < -10:
			a.X, m.X = -10, g.rng.Float64()*0.3
		case a.X > g.w+10:
			a.X, m.X = g.w+10, -g.rng.Float64()*0.3
		}
		switch {
		case a.Y < -10:
			a.Y, m.Y = -10, g.rng.Float64()*0.3
		case a.Y > g.h+10:
			a.Y, m.Y = g.h+10, -g.rng.Float64()*0.3
		}

		if g.hasTarget {
			a.X += (g.target.X - a.X) * g.attract
			a.Y += (g.target.Y - a.Y) * g.attract
		}
	}
}

// FramePeriod implements ggmix.FramePeriodHinter.
func (g *Welcome) FramePeriod() time.Duration { return WelcomePeriod }

// PointerEvent implements ggmix.PointerHandler.
func (g *Welcome) PointerEvent(ev ggmix.PointerEvent) {
	if ev.Kind == ggmix.PointerMoved || ev.Kind == ggmix.PointerDragged {
		g.target = gg.Pt(ev.X, ev.Y)
		g.hasTarget = true
	}
}

// hsb converts hue, saturation and brightness in [0, 1] to a color.
func hsb(h, s, v float64) gg.RGBA {
	l := v * (1 - s/2)
	var sl float64
	if l > 0 && l < 1 {
		sl = (v - l) / min(l, 1-l)
	}
	return gg.HSL(h*360, sl, l)
}
