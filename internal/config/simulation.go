package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/drape/internal/cloth"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/collision"
	"github.com/Faultbox/drape/pkg/math"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Simulation(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ColliderShape(); err != nil {
		errs = append(errs, err)
	}
	if c.Solver.Substeps < 1 {
		errs = append(errs, fmt.Errorf("solver.substeps must be at least 1, got %d", c.Solver.Substeps))
	}
	if c.Solver.MaxFrameTime < 0 {
		errs = append(errs, fmt.Errorf("solver.max_frame_time must not be negative"))
	}
	if r := c.Collision.Restitution; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("collision.restitution must be in [0,1], got %v", r))
	}
	if f := c.Collision.Friction; f.Static < 0 || f.Kinetic < 0 {
		errs = append(errs, fmt.Errorf("collision.friction coefficients must not be negative"))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}

// Simulation converts the file settings into a cloth configuration.
func (c *Config) Simulation() (cloth.Config, error) {
	out := cloth.DefaultConfig()

	orientation, err := cloth.ParseOrientation(c.Grid.Orientation)
	if err != nil {
		return out, fmt.Errorf("grid.orientation: %w", err)
	}
	out.Grid = cloth.Grid{
		Columns:     c.Grid.Columns,
		Rows:        c.Grid.Rows,
		Spacing:     c.Grid.Spacing,
		Offset:      c.Grid.Offset.Vec3(),
		Orientation: orientation,
		Mass:        c.Grid.Mass,
		Radius:      c.Grid.Radius,
	}
	if err := out.Grid.Validate(); err != nil {
		return out, err
	}

	m, err := c.Material.Resolve()
	if err != nil {
		return out, err
	}
	out.Material = m

	noise, err := cloth.ParseWindNoise(c.Forces.Wind.Noise)
	if err != nil {
		return out, fmt.Errorf("forces.wind.noise: %w", err)
	}
	out.Gravity = c.Forces.Gravity
	out.Wind = cloth.WindOptions{
		Enabled:        c.Forces.Wind.Enabled,
		Scale:          c.Forces.Wind.Scale,
		OffsetSpeed:    c.Forces.Wind.OffsetSpeed,
		ChangeInterval: c.Forces.Wind.ChangeInterval,
		Noise:          noise,
		Frequency:      c.Forces.Wind.Frequency,
	}

	opts, err := c.Collision.Options()
	if err != nil {
		return out, err
	}
	out.Collision = opts
	out.ParticleContacts = c.Collision.ParticleContacts
	out.SelfCollision = c.Collision.SelfCollision

	out.Substeps = c.Solver.Substeps
	out.AutoSubstep = c.Solver.AutoSubstep
	out.MaxFrameTime = c.Solver.MaxFrameTime
	out.NormalWorkers = c.Solver.NormalWorkers
	out.Seed = c.Solver.Seed
	return out, nil
}

// Resolve looks up the preset and applies the non-zero overrides.
func (m MaterialConfig) Resolve() (cloth.Material, error) {
	preset := m.Preset
	if preset == "" {
		preset = cloth.DefaultPreset
	}
	mat, err := cloth.LookupPreset(preset)
	if err != nil {
		return mat, fmt.Errorf("material.preset: %w", err)
	}
	if m.K > 0 {
		mat.K = m.K
	}
	if m.ShearMultiplier > 0 {
		mat.ShearMultiplier = m.ShearMultiplier
	}
	if m.BendMultiplier > 0 {
		mat.BendMultiplier = m.BendMultiplier
	}
	return mat, nil
}

// Options converts the collision section into resolver options.
func (c CollisionConfig) Options() (collision.Options, error) {
	opts := collision.DefaultOptions()
	var err error
	if opts.Strategy, err = collision.ParseStrategy(c.Strategy); err != nil {
		return opts, fmt.Errorf("collision.strategy: %w", err)
	}
	if opts.Response, err = collision.ParseResponseMode(c.Response); err != nil {
		return opts, fmt.Errorf("collision.response: %w", err)
	}
	if opts.Self, err = collision.ParseSelfMode(c.SelfMode); err != nil {
		return opts, fmt.Errorf("collision.self_mode: %w", err)
	}
	opts.Restitution = c.Restitution
	opts.Repulsion = c.Repulsion
	opts.ContactOffset = c.ContactOffset
	opts.Friction = collision.Friction{
		Enabled:   c.Friction.Enabled,
		Static:    c.Friction.Static,
		Kinetic:   c.Friction.Kinetic,
		Threshold: c.Friction.Threshold,
	}
	return opts, nil
}

// ColliderShape builds the configured collider. It returns nil for "none".
func (c *Config) ColliderShape() (physics.Collider, error) {
	return c.Collider.Build()
}

// Build returns the collider, or nil for shape "none".
func (c ColliderConfig) Build() (physics.Collider, error) {
	shape := strings.ToLower(strings.TrimSpace(c.Shape))
	if shape != "none" && shape != "" && c.Size <= 0 {
		return nil, fmt.Errorf("collider.size must be positive, got %v", c.Size)
	}
	switch shape {
	case "none", "":
		return nil, nil
	case "cube":
		return physics.NewCube(c.Size, c.Center.Vec3()), nil
	case "sphere":
		return physics.NewSphere(c.Size, c.Center.Vec3()), nil
	default:
		return nil, fmt.Errorf("collider.shape: unknown shape %q", c.Shape)
	}
}

// Vec3 converts v.
func (v Vector) Vec3() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// defaultColliderSize is used for the shapes the viewer cycles through when
// the configured collider is "none".
const defaultColliderSize = 0.1

// Cycle returns the colliders a viewer steps through: the configured shape
// first, then the other shape at the same size and center, then no collider.
func (c ColliderConfig) Cycle() []physics.Collider {
	size := c.Size
	if size <= 0 {
		size = defaultColliderSize
	}
	center := c.Center.Vec3()
	sphere := physics.NewSphere(size, center)
	cube := physics.NewCube(size, center)

	switch strings.ToLower(strings.TrimSpace(c.Shape)) {
	case "cube":
		return []physics.Collider{cube, sphere, nil}
	case "none", "":
		return []physics.Collider{nil, sphere, cube}
	default:
		return []physics.Collider{sphere, cube, nil}
	}
}
