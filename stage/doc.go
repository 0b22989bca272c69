// Package stage loads HCL stage files describing a compositing setup:
// renderer settings, channels, group channels, units with their variables
// and bindings, and variable automations.
//
//	renderer {
//	  width          = 800
//	  height         = 600
//	  max_frame_rate = 35
//	}
//	channel "left"  { ellipse = [0, 0, 400, 400] }
//	channel "right" { rect = [400, 0, 400, 600]  radius = 12 }
//	group "both" { sources = ["left", "right"] }
//	unit "wash" {
//	  generator = "solid"
//	  channel   = "both"
//	  vars      = { color = "#3366ff" }
//	}
//	automation "fade" {
//	  unit        = "wash"
//	  variable    = "level"
//	  to          = 0
//	  duration_ms = 2000
//	  timing      = "ease_out"
//	}
//
// A stage is loaded with Load or Parse and built onto a compositor with
// Stage.Apply.
package stage
