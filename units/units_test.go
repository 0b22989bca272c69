package units

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gogpu/gg"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/ggmix"
)

func near(a, b float64) bool { return math.Abs(a-b) < 0.02 }

func sameColor(px, want gg.RGBA) bool {
	return near(px.R, want.R) && near(px.G, want.G) && near(px.B, want.B) && near(px.A, want.A)
}

func newComp(t *testing.T, w, h int) (*ggmix.Compositor, *ggmix.ManualClock) {
	t.Helper()
	clock := ggmix.NewManualClock(time.Unix(0, 0))
	return ggmix.NewCompositor(ggmix.WithSize(w, h), ggmix.WithClock(clock)), clock
}

// addBound adds a unit from tmpl, instantiates it and routes it into a
// channel covering rect.
func addBound(t *testing.T, comp *ggmix.Compositor, tmpl ggmix.Template, rect ggmix.Rect) *ggmix.Unit {
	t.Helper()
	u, err := comp.Units().Add(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Instantiate(comp.Host()); err != nil {
		t.Fatal(err)
	}
	comp.Units().Bind(u, comp.Channels().Create(rect), false)
	return u
}

func TestVarSet(t *testing.T) {
	var (
		f   = 0.5
		n   = 3
		col = gg.Red
		s   varSet
	)
	s.number("f", &f, 0, 1)
	s.integer("n", &n, 1, 10)
	s.color("c", &col)
	s.readOnly("ro", func() cty.Value { return cty.True })

	if got := s.Variables(); len(got) != 4 || got[0] != "c" || got[3] != "ro" {
		t.Errorf("Variables() = %v", got)
	}

	tests := []struct {
		name  string
		value cty.Value
		err   error
		check func() bool
	}{
		{"f", cty.NumberFloatVal(0.25), nil, func() bool { return f == 0.25 }},
		{"f", cty.NumberFloatVal(7), nil, func() bool { return f == 1 }},
		{"f", cty.StringVal("0.75"), nil, func() bool { return f == 0.75 }},
		{"f", cty.StringVal("lots"), ggmix.ErrUnsupported, nil},
		{"f", cty.NullVal(cty.Number), ggmix.ErrUnsupported, nil},
		{"f", cty.UnknownVal(cty.Number), ggmix.ErrUnsupported, nil},
		{"n", cty.NumberIntVal(5), nil, func() bool { return n == 5 }},
		{"n", cty.NumberIntVal(99), nil, func() bool { return n == 10 }},
		{"n", cty.NumberFloatVal(2.5), ggmix.ErrUnsupported, nil},
		{"c", cty.StringVal("#00ff00"), nil, func() bool { return col == gg.Green }},
		{"c", cty.StringVal("not a color"), ggmix.ErrUnsupported, nil},
		{"c", cty.ListValEmpty(cty.String), ggmix.ErrUnsupported, nil},
		{"ro", cty.False, ggmix.ErrUnsupported, nil},
		{"missing", cty.True, ggmix.ErrNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name+"="+tt.value.GoString(), func(t *testing.T) {
			err := s.SetVariable(tt.name, tt.value)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if tt.check != nil && !tt.check() {
				t.Error("value not applied")
			}
		})
	}

	if v, ok := s.Variable("c"); !ok || v.AsString() != "#00ff00" {
		t.Errorf("c = %#v", v)
	}
	if _, ok := s.Variable("missing"); ok {
		t.Error("missing variable reported")
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   gg.RGBA
		want string
	}{
		{gg.Red, "#ff0000"},
		{gg.RGBA2(0, 0, 1, 0.5), "#0000ff80"},
		{gg.RGB(2, -1, 0.5), "#ff0080"},
	}
	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSolid(t *testing.T) {
	comp, clock := newComp(t, 40, 20)
	u := addBound(t, comp, SolidTemplate("wash"), ggmix.Rect{W: 20, H: 20})

	comp.Paint(clock.Advance(time.Millisecond))
	if px := comp.Frame().GetPixel(10, 10); !sameColor(px, gg.White) {
		t.Errorf("default = %+v, want white", px)
	}
	if px := comp.Frame().GetPixel(30, 10); !sameColor(px, gg.Black) {
		t.Errorf("outside = %+v, want black", px)
	}

	if err := u.SetVariable("color", cty.StringVal("#ff0000")); err != nil {
		t.Fatal(err)
	}
	if err := u.SetVariable("level", cty.NumberFloatVal(0.5)); err != nil {
		t.Fatal(err)
	}
	comp.Paint(clock.Advance(time.Millisecond))
	if px := comp.Frame().GetPixel(10, 10); !sameColor(px, gg.RGB(0.5, 0, 0)) {
		t.Errorf("half red = %+v", px)
	}
}

func TestBars(t *testing.T) {
	comp, clock := newComp(t, 80, 10)
	u := addBound(t, comp, BarsTemplate("bars"), ggmix.Rect{W: 80, H: 10})
	if err := u.SetVariable("count", cty.NumberIntVal(4)); err != nil {
		t.Fatal(err)
	}
	if err := u.SetVariable("speed", cty.NumberIntVal(5)); err != nil {
		t.Fatal(err)
	}

	// Pitch 20: bars cover [0,10), [20,30), ...
	comp.Paint(clock.Advance(BarsPeriod))
	frame := comp.Frame()
	if px := frame.GetPixel(5, 5); !sameColor(px, gg.White) {
		t.Errorf("bar pixel = %+v", px)
	}
	if px := frame.GetPixel(15, 5); !sameColor(px, gg.Black) {
		t.Errorf("gap pixel = %+v", px)
	}

	// Second frame shifted by 5.
	comp.Paint(clock.Advance(BarsPeriod))
	frame = comp.Frame()
	if px := frame.GetPixel(2, 5); !sameColor(px, gg.Black) {
		t.Errorf("pixel before shifted bar = %+v", px)
	}
	if px := frame.GetPixel(12, 5); !sameColor(px, gg.White) {
		t.Errorf("shifted bar pixel = %+v", px)
	}
}

func TestWelcomeSetupAndStep(t *testing.T) {
	comp, _ := newComp(t, 200, 100)
	g := NewWelcome(1)
	u, err := comp.Units().Add(ggmix.NewTemplate("w", func(ggmix.Host) (ggmix.Generator, error) { return g, nil }))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Instantiate(comp.Host()); err != nil {
		t.Fatal(err)
	}
	comp.Units().Bind(u, comp.Channels().Create(ggmix.Rect{W: 200, H: 100}), false)

	if u.FramePeriod() != WelcomePeriod {
		t.Errorf("FramePeriod() = %v", u.FramePeriod())
	}
	comp.Paint(time.Unix(0, 0).Add(time.Second))
	if len(g.agents) != WelcomeAgents {
		t.Fatalf("%d agents", len(g.agents))
	}
	for _, a := range g.agents {
		if a.X < -11 || a.X > 211 || a.Y < -11 || a.Y > 111 {
			t.Fatalf("agent %v escaped the surface", a)
		}
	}
	if v, _ := u.Variable("hue"); !v.RawEquals(cty.NumberIntVal(1)) {
		t.Errorf("hue after one frame = %#v", v)
	}
	if v, _ := u.Variable("agents"); !v.RawEquals(cty.NumberIntVal(WelcomeAgents)) {
		t.Errorf("agents = %#v", v)
	}
	if px := comp.Frame().GetPixel(1, 1); sameColor(px, gg.Black) {
		t.Error("background not painted")
	}

	// Full attraction snaps every agent onto the pointer.
	if err := u.SetVariable("attract", cty.NumberIntVal(1)); err != nil {
		t.Fatal(err)
	}
	g.PointerEvent(ggmix.PointerEvent{Kind: ggmix.PointerMoved, X: 50, Y: 40})
	g.step()
	for _, a := range g.agents {
		if !near(a.X, 50) || !near(a.Y, 40) {
			t.Fatalf("agent at %v, want the pointer", a)
		}
	}
}

func TestWelcomeRingWidth(t *testing.T) {
	comp, clock := newComp(t, 300, 300)
	g := NewWelcome(1)
	u, err := comp.Units().Add(ggmix.NewTemplate("w", func(ggmix.Host) (ggmix.Generator, error) { return g, nil }))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Instantiate(comp.Host()); err != nil {
		t.Fatal(err)
	}
	comp.Units().Bind(u, comp.Channels().Create(ggmix.Rect{W: 300, H: 300}), false)

	comp.Paint(clock.Advance(WelcomePeriod))
	// Second frame with only the background and the ring.
	g.agents, g.moves, g.face = nil, nil, nil
	comp.Paint(clock.Advance(WelcomePeriod))

	// Ring radius 105 around (150,150), 80 wide: it spans 65..145.
	frame := comp.Frame()
	bg := frame.GetPixel(170, 150)
	for _, x := range []int{150 + 70, 150 + 105, 150 + 140} {
		if px := frame.GetPixel(x, 150); px.B < bg.B+0.03 {
			t.Errorf("pixel (%d,150) = %+v, not lighter than background %+v", x, px, bg)
		}
	}
}

func TestWelcomeHueWraps(t *testing.T) {
	comp, clock := newComp(t, 50, 50)
	u := addBound(t, comp, WelcomeTemplate("w"), ggmix.Rect{W: 50, H: 50})
	if err := u.SetVariable("hue", cty.NumberIntVal(255)); err != nil {
		t.Fatal(err)
	}
	comp.Paint(clock.Advance(WelcomePeriod))
	if v, _ := u.Variable("hue"); !v.RawEquals(cty.NumberIntVal(0)) {
		t.Errorf("hue = %#v, want 0", v)
	}
}

func TestHSB(t *testing.T) {
	tests := []struct {
		h, s, v float64
		want    gg.RGBA
	}{
		{0, 1, 1, gg.Red},
		{1.0 / 3, 1, 1, gg.Green},
		{0, 0, 1, gg.White},
		{0.5, 1, 0, gg.Black},
	}
	for _, tt := range tests {
		if got := hsb(tt.h, tt.s, tt.v); !sameColor(got, tt.want) {
			t.Errorf("hsb(%v, %v, %v) = %+v, want %+v", tt.h, tt.s, tt.v, got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	names := Names()
	if len(names) != 3 || names[0] != "bars" || names[2] != "welcome" {
		t.Errorf("Names() = %v", names)
	}
	for name, f := range Catalog() {
		if tmpl := f("x"); tmpl.Name() != "x" {
			t.Errorf("%s template named %q", name, tmpl.Name())
		}
	}
}

func TestInstallWelcome(t *testing.T) {
	comp, clock := newComp(t, 130, 100)
	u, err := InstallWelcome(comp)
	if err != nil {
		t.Fatal(err)
	}
	if u.Channel() == nil || u.Channel().Name() != ggmix.WelcomeChannel || !u.PointerEvents() {
		t.Fatalf("welcome unit not routed: %v", u.Channel())
	}
	comp.Paint(clock.Advance(WelcomePeriod))
	if px := comp.Frame().GetPixel(0, 0); !sameColor(px, gg.Black) {
		t.Errorf("corner outside the circle = %+v", px)
	}
	if _, err := InstallWelcome(comp); !errors.Is(err, ggmix.ErrDuplicateName) {
		t.Errorf("second install err = %v", err)
	}
}
