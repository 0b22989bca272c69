package ggmix

// WelcomeChannel is the name of the channel created by DefaultChannels.
const WelcomeChannel = "circle1"

// DefaultChannels creates the startup channel: a circle centered on a
// width x height surface with a diameter of 10/13 of the shorter side.
func DefaultChannels(channels *ChannelRegistry, width, height int) (*Channel, error) {
	dia := 10 * min(width, height) / 13
	x := (width - dia) / 2
	y := (height - dia) / 2
	return channels.CreateNamed(WelcomeChannel, Ellipse{
		X: float64(x), Y: float64(y), W: float64(dia), H: float64(dia),
	})
}
