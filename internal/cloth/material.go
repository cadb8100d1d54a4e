package cloth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownPreset is returned when a material name has no preset.
var ErrUnknownPreset = errors.New("unknown material preset")

// Material sets the stiffness of the three spring families. Shear and bend
// constants are multiples of the structural constant K.
type Material struct {
	Name            string  `yaml:"name"`
	K               float32 `yaml:"k"`
	ShearMultiplier float32 `yaml:"shear_multiplier"`
	BendMultiplier  float32 `yaml:"bend_multiplier"`
	// TextureHint names a texture the renderer may use. The simulation
	// ignores it.
	TextureHint string `yaml:"texture_hint"`
}

// ShearK returns the shear spring constant.
func (m Material) ShearK() float32 { return m.K * m.ShearMultiplier }

// BendK returns the bend spring constant.
func (m Material) BendK() float32 { return m.K * m.BendMultiplier }

var presets = map[string]Material{
	"cotton":  {Name: "cotton", K: 50, ShearMultiplier: 0.21, BendMultiplier: 0.1, TextureHint: "cotton"},
	"silk":    {Name: "silk", K: 30, ShearMultiplier: 0.15, BendMultiplier: 0.02, TextureHint: "silk"},
	"denim":   {Name: "denim", K: 90, ShearMultiplier: 0.3, BendMultiplier: 0.25, TextureHint: "denim"},
	"leather": {Name: "leather", K: 120, ShearMultiplier: 0.4, BendMultiplier: 0.5, TextureHint: "leather"},
	"rubber":  {Name: "rubber", K: 40, ShearMultiplier: 0.8, BendMultiplier: 0.3, TextureHint: "rubber"},
}

// DefaultPreset is the material used when none is configured.
const DefaultPreset = "cotton"

// LookupPreset returns the named preset. Names are case-insensitive.
func LookupPreset(name string) (Material, error) {
	m, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return m, nil
}

// Presets lists every preset sorted by name.
func Presets() []Material {
	out := make([]Material, 0, len(presets))
	for _, m := range presets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
