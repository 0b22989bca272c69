// Package units provides the built-in generators: the animated welcome
// screen, a solid color fill and scrolling bars.
//
// Each generator exposes its tunable values as cty variables, so they can be
// set from stage files, the control plane and automations:
//
//	comp := ggmix.NewCompositor()
//	u, _ := comp.Units().Add(units.SolidTemplate("wash"))
//	u.Instantiate(comp.Host())
//	u.SetVariable("color", cty.StringVal("#3366ff"))
package units
