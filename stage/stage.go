package stage

import (
	"fmt"

	"github.com/gogpu/gg"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/ggmix"
)

// Stage is a decoded stage file.
type Stage struct {
	Filename    string
	Renderer    *Renderer     `hcl:"renderer,block"`
	Channels    []*Channel    `hcl:"channel,block"`
	Groups      []*Group      `hcl:"group,block"`
	Units       []*Unit       `hcl:"unit,block"`
	Automations []*Automation `hcl:"automation,block"`
}

// Renderer holds compositor settings. Unset attributes keep the
// compositor's defaults.
type Renderer struct {
	Width        *int     `hcl:"width,optional"`
	Height       *int     `hcl:"height,optional"`
	MaxFrameRate *float64 `hcl:"max_frame_rate,optional"`
	DataPath     *string  `hcl:"data_path,optional"`
	EditMode     *bool    `hcl:"edit_mode,optional"`
	Background   *string  `hcl:"background,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Channel declares a channel. At most one of Ellipse, Rect and Polygon may
// be set; with none the channel is shapeless.
type Channel struct {
	Name    string      `hcl:"name,label"`
	Ellipse []float64   `hcl:"ellipse,optional"`
	Rect    []float64   `hcl:"rect,optional"`
	Radius  float64     `hcl:"radius,optional"`
	Polygon [][]float64 `hcl:"polygon,optional"`
	Enabled *bool       `hcl:"enabled,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Group declares a group channel over named sources.
type Group struct {
	Name    string   `hcl:"name,label"`
	Sources []string `hcl:"sources"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Unit declares a unit built from a catalog generator.
type Unit struct {
	Name          string    `hcl:"name,label"`
	Generator     string    `hcl:"generator"`
	Channel       *string   `hcl:"channel,optional"`
	Opacity       *float64  `hcl:"opacity,optional"`
	PointerEvents bool      `hcl:"pointer_events,optional"`
	KeyEvents     bool      `hcl:"key_events,optional"`
	Vars          cty.Value `hcl:"vars,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Automation declares a variable transition started when the stage is
// applied.
type Automation struct {
	Name       string    `hcl:"name,label"`
	Unit       string    `hcl:"unit"`
	Variable   string    `hcl:"variable"`
	To         cty.Value `hcl:"to"`
	DelayMS    int       `hcl:"delay_ms,optional"`
	DurationMS int       `hcl:"duration_ms,optional"`
	PeriodMS   int       `hcl:"period_ms,optional"`
	Timing     string    `hcl:"timing,optional"`

	DefRange hcl.Range `hcl:",def_range"`
}

// Load reads and decodes the stage file at path.
func Load(path string) (*Stage, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse stage file %s: %w", path, diags)
	}
	return decode(file, path)
}

// Parse decodes stage source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Stage, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse stage file %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (*Stage, error) {
	st := &Stage{Filename: filename}
	if diags := gohcl.DecodeBody(file.Body, nil, st); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode stage file %s: %w", filename, diags)
	}
	if diags := st.validate(); diags.HasErrors() {
		return nil, fmt.Errorf("invalid stage file %s: %w", filename, diags)
	}
	ggmix.Logger().Debug("stage: decoded", "file", filename,
		"channels", len(st.Channels), "groups", len(st.Groups),
		"units", len(st.Units), "automations", len(st.Automations))
	return st, nil
}

func invalid(r hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  r.Ptr(),
	}
}

func (st *Stage) validate() hcl.Diagnostics {
	var diags hcl.Diagnostics
	if r := st.Renderer; r != nil {
		if (r.Width == nil) != (r.Height == nil) {
			diags = append(diags, invalid(r.DefRange, "Incomplete size", "width and height must be set together."))
		} else if r.Width != nil && (*r.Width <= 0 || *r.Height <= 0) {
			diags = append(diags, invalid(r.DefRange, "Invalid size", "width and height must be positive."))
		}
		if r.MaxFrameRate != nil && *r.MaxFrameRate <= 0 {
			diags = append(diags, invalid(r.DefRange, "Invalid frame rate", "max_frame_rate must be positive."))
		}
		if r.Background != nil {
			if _, err := gg.ParseHex(*r.Background); err != nil {
				diags = append(diags, invalid(r.DefRange, "Invalid background", err.Error()))
			}
		}
	}
	for _, ch := range st.Channels {
		if _, err := ch.Shape(); err != nil {
			diags = append(diags, invalid(ch.DefRange, "Invalid channel shape",
				fmt.Sprintf("channel %q: %s.", ch.Name, err)))
		}
	}
	for _, u := range st.Units {
		if !u.Vars.IsNull() && !u.Vars.Type().IsObjectType() && !u.Vars.Type().IsMapType() {
			diags = append(diags, invalid(u.DefRange, "Invalid vars",
				fmt.Sprintf("unit %q: vars must be an object.", u.Name)))
		}
	}
	for _, a := range st.Automations {
		if a.DelayMS < 0 || a.DurationMS < 0 || a.PeriodMS < 0 {
			diags = append(diags, invalid(a.DefRange, "Invalid automation timing",
				fmt.Sprintf("automation %q: delay_ms, duration_ms and period_ms must not be negative.", a.Name)))
		}
	}
	return diags
}

// Shape returns the channel's shape, or nil for a shapeless channel.
func (ch *Channel) Shape() (ggmix.Shape, error) {
	set := 0
	for _, given := range []bool{ch.Ellipse != nil, ch.Rect != nil, ch.Polygon != nil} {
		if given {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("only one of ellipse, rect and polygon may be set")
	}

	switch {
	case ch.Ellipse != nil:
		if len(ch.Ellipse) != 4 {
			return nil, fmt.Errorf("ellipse wants [x, y, w, h], got %d numbers", len(ch.Ellipse))
		}
		e := ch.Ellipse
		return ggmix.Ellipse{X: e[0], Y: e[1], W: e[2], H: e[3]}, nil
	case ch.Rect != nil:
		if len(ch.Rect) != 4 {
			return nil, fmt.Errorf("rect wants [x, y, w, h], got %d numbers", len(ch.Rect))
		}
		r := ch.Rect
		return ggmix.Rect{X: r[0], Y: r[1], W: r[2], H: r[3], Radius: ch.Radius}, nil
	case ch.Polygon != nil:
		if len(ch.Polygon) < 3 {
			return nil, fmt.Errorf("polygon wants at least 3 points, got %d", len(ch.Polygon))
		}
		pts := make([]gg.Point, len(ch.Polygon))
		for i, p := range ch.Polygon {
			if len(p) != 2 {
				return nil, fmt.Errorf("polygon point %d wants [x, y]", i)
			}
			pts[i] = gg.Pt(p[0], p[1])
		}
		return ggmix.Polygon{Points: pts}, nil
	}
	return nil, nil
}
