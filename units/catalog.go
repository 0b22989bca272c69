package units

import (
	"maps"
	"slices"

	"github.com/gogpu/ggmix"
)

// Factory builds a template whose units carry the given name.
type Factory = func(name string) ggmix.Template

// Catalog returns the built-in generators by name.
func Catalog() map[string]Factory {
	return map[string]Factory{
		"welcome": WelcomeTemplate,
		"solid":   SolidTemplate,
		"bars":    BarsTemplate,
	}
}

// Names returns the built-in generator names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(Catalog()))
}

// InstallWelcome creates the default welcome channel on comp, adds a welcome
// unit and routes it there.
func InstallWelcome(comp *ggmix.Compositor) (*ggmix.Unit, error) {
	w, h := comp.Size()
	ch, err := ggmix.DefaultChannels(comp.Channels(), w, h)
	if err != nil {
		return nil, err
	}
	u, err := comp.Units().Add(WelcomeTemplate("welcome"))
	if err != nil {
		return nil, err
	}
	if _, err := u.Instantiate(comp.Host()); err != nil {
		return nil, err
	}
	u.SetPointerEvents(true)
	comp.Units().Bind(u, ch, false)
	return u, nil
}
