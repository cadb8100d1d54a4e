package cloth

import (
	"fmt"
	gomath "math"
	"math/rand"
	"strings"

	"github.com/aquilax/go-perlin"

	"github.com/Faultbox/drape/pkg/math"
)

// WindNoise selects how per-particle wind strength varies.
type WindNoise uint8

const (
	// NoiseUniform draws an independent strength for every particle and step.
	NoiseUniform WindNoise = iota
	// NoisePerlin samples coherent noise at the particle position and time.
	NoisePerlin
)

func (n WindNoise) String() string {
	if n == NoisePerlin {
		return "perlin"
	}
	return "uniform"
}

// ParseWindNoise accepts "uniform" or "perlin".
func ParseWindNoise(s string) (WindNoise, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform", "":
		return NoiseUniform, nil
	case "perlin":
		return NoisePerlin, nil
	default:
		return 0, fmt.Errorf("unknown wind noise %q", s)
	}
}

// WindOptions configures the wind field.
type WindOptions struct {
	Enabled bool
	// Scale is the mean strength.
	Scale float32
	// OffsetSpeed bounds the per-particle deviation from Scale.
	OffsetSpeed float32
	// ChangeInterval is the number of seconds between direction changes.
	ChangeInterval float32
	Noise          WindNoise
	// Frequency is the spatial frequency of perlin noise.
	Frequency float32
}

// DefaultWind returns the stock gusty breeze, disabled.
func DefaultWind() WindOptions {
	return WindOptions{
		Scale:          0.02,
		OffsetSpeed:    0.1,
		ChangeInterval: 0.5,
		Noise:          NoiseUniform,
		Frequency:      4,
	}
}

// Perlin parameters: smoothness, frequency step and octaves.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// Wind is a uniform direction that jumps to a random point on the unit
// sphere every ChangeInterval, scaled per particle by noise.
type Wind struct {
	opts      WindOptions
	rng       *rand.Rand
	noise     *perlin.Perlin
	direction math.Vec3
	timer     float32
	clock     float32
}

// NewWind creates a wind field drawing from a source seeded with seed.
func NewWind(opts WindOptions, seed int64) *Wind {
	w := &Wind{
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
	w.direction = w.randomDirection()
	return w
}

// Options returns the current options.
func (w *Wind) Options() WindOptions {
	return w.opts
}

// SetEnabled toggles the wind.
func (w *Wind) SetEnabled(on bool) {
	w.opts.Enabled = on
}

// Direction returns the current unit direction.
func (w *Wind) Direction() math.Vec3 {
	return w.direction
}

// Advance moves the wind clock by dt and picks a new direction whenever the
// change interval elapses.
func (w *Wind) Advance(dt float32) {
	w.clock += dt
	w.timer += dt
	if w.opts.ChangeInterval > 0 && w.timer >= w.opts.ChangeInterval {
		w.direction = w.randomDirection()
		w.timer = 0
	}
}

// Force returns the wind force on a particle at p. Zero when disabled.
func (w *Wind) Force(p math.Vec3) math.Vec3 {
	if !w.opts.Enabled {
		return math.Vec3{}
	}
	var n float32
	if w.opts.Noise == NoisePerlin {
		f := float64(w.opts.Frequency)
		n = float32(w.noise.Noise3D(float64(p.X)*f+float64(w.clock), float64(p.Y)*f, float64(p.Z)*f))
		n = max(-1, min(1, n))
	} else {
		n = w.rng.Float32()*2 - 1
	}
	return w.direction.Scale(w.opts.Scale + n*w.opts.OffsetSpeed)
}

// randomDirection samples the unit sphere uniformly: a uniform height z and
// a uniform azimuth.
func (w *Wind) randomDirection() math.Vec3 {
	phi := w.rng.Float64() * 2 * gomath.Pi
	z := w.rng.Float64()*2 - 1
	r := gomath.Sqrt(1 - z*z)
	return math.Vec3{
		X: float32(r * gomath.Cos(phi)),
		Y: float32(r * gomath.Sin(phi)),
		Z: float32(z),
	}
}
