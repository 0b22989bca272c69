// Package ggmix is a real-time compositing engine for live visual
// performance built on the gg 2D graphics library.
//
// # Overview
//
// ggmix time-shares one drawing surface among any number of independently
// running generator units. Each unit is a self-contained draw loop with its
// own frame cadence and private drawing state. Its output is routed into a
// user-defined screen region, a channel. Channels and routings can be edited
// while rendering continues.
//
// # Quick Start
//
//	comp := ggmix.NewCompositor(ggmix.WithSize(800, 600))
//
//	left, _ := comp.Channels().CreateNamed("left", ggmix.Ellipse{X: 0, Y: 0, W: 100, H: 100})
//	unit, _ := comp.Units().Add(ggmix.NewTemplate("pulse", newPulse))
//	comp.Units().Bind(unit, left, false)
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go comp.Run(ctx)
//
// # Components
//
//   - Channel and ChannelRegistry: named shapes, groups, enable/disable,
//     one-shot black fills, edit-mode outlines
//   - ChannelEditor: point-and-click state machine drawing new channels
//   - Unit and UnitRegistry: generator lifecycle, event dispatch and the
//     composite pass
//   - Compositor: double buffer, timed repaint loop, input forwarding and
//     the edit-mode overlay
//   - Control: boolean control plane for scripting and remote callers
//
// # State isolation
//
// All units draw through one gg.Context. Before a unit draws, the context is
// reset to identity, clipped to the unit's channel and loaded with the
// DrawState the unit saved at the end of its previous frame. After drawing the
// state is captured back into the unit. Nothing one unit sets is visible to the
// next.
//
// # Concurrency
//
// Paint runs on a single render goroutine. Registries may be mutated from any
// goroutine; their locks are held only while a list is changed or copied, never
// across a unit's Draw call. Change notifications are queued and delivered by
// the render goroutine after each paint.
//
// A unit whose Draw never returns stalls the render loop. There is no
// preemption of generator code.
package ggmix
