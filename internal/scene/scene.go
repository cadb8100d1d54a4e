// Package scene holds the interactive state around one cloth simulation:
// pause and single step, feature toggles, the collider cycle and the debug
// geometry a viewer draws on top of the mesh.
package scene

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/cloth"
	"github.com/Faultbox/drape/internal/engine/debug"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/bvh"
	"github.com/Faultbox/drape/internal/physics/collision"
	"github.com/Faultbox/drape/pkg/math"
)

// ErrEmptyCycle is returned when no collider slots are given.
var ErrEmptyCycle = errors.New("scene: collider cycle is empty")

// floor sits this far below the lowest point of the initial scene.
const floorMargin = 0.05

// Scene wraps a simulation with viewer state.
type Scene struct {
	sim *cloth.Simulation

	// cycle slots may be nil for "no collider"
	cycle []physics.Collider
	slot  int

	paused   bool
	stepOnce bool

	// grabbed is the particle held by the pointer, or -1
	grabbed    int
	grabPinned bool
	grabTarget math.Vec3

	ShowBVH     bool
	BVHDepth    int
	ShowSprings bool

	positions []math.Vec3
	// lines backs every *Lines result and is overwritten by the next call.
	lines     []float32
	floorY    float32
}

// New builds the simulation and activates the first collider of cycle.
func New(cfg cloth.Config, cycle []physics.Collider) (*Scene, error) {
	if len(cycle) == 0 {
		return nil, ErrEmptyCycle
	}
	sim, err := cloth.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &Scene{
		sim:      sim,
		cycle:    cycle,
		grabbed:  -1,
		BVHDepth: -1,
	}
	s.applyCollider()

	lo, _ := s.Bounds()
	for _, c := range cycle {
		if c != nil {
			clo, _ := c.Bounds()
			lo = lo.Min(clo)
		}
	}
	s.floorY = lo.Y - floorMargin
	return s, nil
}

// Sim returns the underlying simulation.
func (s *Scene) Sim() *cloth.Simulation {
	return s.sim
}

// Update steps the simulation unless paused. A pending single step runs
// even while paused. It reports whether the cloth moved.
func (s *Scene) Update(dt float32) bool {
	if s.paused && !s.stepOnce {
		return false
	}
	s.stepOnce = false
	if s.grabbed >= 0 {
		s.sim.Particles()[s.grabbed].SetPosition(s.grabTarget)
	}
	s.sim.Step(dt)
	return true
}

// Grab holds particle i in place until Release. Held particles act as pins.
func (s *Scene) Grab(i int) bool {
	particles := s.sim.Particles()
	if i < 0 || i >= len(particles) {
		return false
	}
	s.Release()
	p := &particles[i]
	s.grabbed = i
	s.grabPinned = p.Pinned
	s.grabTarget = p.Position
	p.Pinned = true
	return true
}

// DragTo moves the held particle's target. The particle follows on the next
// Update.
func (s *Scene) DragTo(target math.Vec3) {
	if s.grabbed >= 0 {
		s.grabTarget = target
	}
}

// Release lets go of the held particle and restores its pin state.
func (s *Scene) Release() {
	if s.grabbed < 0 {
		return
	}
	if particles := s.sim.Particles(); s.grabbed < len(particles) {
		particles[s.grabbed].Pinned = s.grabPinned
	}
	s.grabbed = -1
}

// Grabbed returns the held particle.
func (s *Scene) Grabbed() (int, bool) {
	return s.grabbed, s.grabbed >= 0
}

// Paused reports whether Update is suspended.
func (s *Scene) Paused() bool {
	return s.paused
}

// TogglePause flips the paused state and returns it.
func (s *Scene) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// StepOnce lets the next Update run while paused.
func (s *Scene) StepOnce() {
	s.stepOnce = true
}

// Reset rebuilds the cloth in its current orientation.
func (s *Scene) Reset() {
	s.grabbed = -1
	s.sim.Reset(s.sim.Config().Grid.Orientation)
}

// ToggleOrientation rebuilds the cloth in the other orientation.
func (s *Scene) ToggleOrientation() cloth.Orientation {
	o := cloth.Horizontal
	if s.sim.Config().Grid.Orientation == cloth.Horizontal {
		o = cloth.Vertical
	}
	s.grabbed = -1
	s.sim.Reset(o)
	logger.Info("scene: orientation", zap.Stringer("orientation", o))
	return o
}

// ToggleWind flips the wind and returns the new state.
func (s *Scene) ToggleWind() bool {
	on := !s.sim.Config().Wind.Enabled
	s.sim.SetWindEnabled(on)
	logger.Info("scene: wind", zap.Bool("enabled", on))
	return on
}

// CycleCollider activates the next collider slot and returns it.
func (s *Scene) CycleCollider() physics.Collider {
	s.slot = (s.slot + 1) % len(s.cycle)
	s.applyCollider()
	c := s.Collider()
	logger.Info("scene: collider", zap.String("shape", ShapeName(c)))
	return c
}

func (s *Scene) applyCollider() {
	s.sim.SetColliders(s.cycle[s.slot])
}

// Collider returns the active collider, or nil.
func (s *Scene) Collider() physics.Collider {
	return s.cycle[s.slot]
}

// ToggleStrategy switches the triangle pass between BVH and linear scan.
func (s *Scene) ToggleStrategy() collision.Strategy {
	opts := s.sim.Config().Collision
	if opts.Strategy == collision.StrategyBVH {
		opts.Strategy = collision.StrategyLinear
	} else {
		opts.Strategy = collision.StrategyBVH
	}
	s.sim.SetCollisionOptions(opts)
	logger.Info("scene: strategy", zap.Stringer("strategy", opts.Strategy))
	return opts.Strategy
}

// ToggleFriction flips contact friction and returns the new state.
func (s *Scene) ToggleFriction() bool {
	opts := s.sim.Config().Collision
	opts.Friction.Enabled = !opts.Friction.Enabled
	s.sim.SetCollisionOptions(opts)
	logger.Info("scene: friction", zap.Bool("enabled", opts.Friction.Enabled))
	return opts.Friction.Enabled
}

// ToggleSelfCollision flips the particle-particle pass.
func (s *Scene) ToggleSelfCollision() bool {
	on := !s.sim.Config().SelfCollision
	s.sim.SetSelfCollision(on)
	logger.Info("scene: self collision", zap.Bool("enabled", on))
	return on
}

// ToggleBVH shows or hides the BVH boxes.
func (s *Scene) ToggleBVH() bool {
	s.ShowBVH = !s.ShowBVH
	return s.ShowBVH
}

// CycleBVHDepth steps the drawn depth limit through 0..depth, then all.
func (s *Scene) CycleBVHDepth() int {
	limit := s.sim.BVH().Stats().Depth
	s.BVHDepth++
	if s.BVHDepth >= limit {
		s.BVHDepth = -1
	}
	return s.BVHDepth
}

// Positions returns the current positions in a buffer reused across calls.
func (s *Scene) Positions() []math.Vec3 {
	s.positions = s.sim.Positions(s.positions[:0])
	return s.positions
}

// Bounds returns the box enclosing the cloth.
func (s *Scene) Bounds() (lo, hi math.Vec3) {
	box := bvh.EmptyAABB()
	for _, p := range s.sim.Particles() {
		box = box.Extend(p.Position)
	}
	return box.Min, box.Max
}

// ViewBounds returns the cloth bounds grown to include every collider in
// the cycle.
func (s *Scene) ViewBounds() (lo, hi math.Vec3) {
	lo, hi = s.Bounds()
	for _, c := range s.cycle {
		if c != nil {
			clo, chi := c.Bounds()
			lo, hi = lo.Min(clo), hi.Max(chi)
		}
	}
	return lo, hi
}

// BVHLines returns the BVH box wireframe, or nil when hidden.
func (s *Scene) BVHLines() []float32 {
	if !s.ShowBVH {
		return nil
	}
	s.lines = debug.AppendBVH(s.lines[:0], s.sim.BVH(), s.BVHDepth)
	return s.lines
}

// ColliderLines returns the active collider's outline.
func (s *Scene) ColliderLines() []float32 {
	c := s.Collider()
	if c == nil {
		return nil
	}
	s.lines = debug.AppendCollider(s.lines[:0], c)
	return s.lines
}

// SpringLines returns the springs of one kind, or nil when hidden.
func (s *Scene) SpringLines(kind physics.SpringKind) []float32 {
	if !s.ShowSprings {
		return nil
	}
	s.lines = debug.AppendSprings(s.lines[:0], s.sim.Particles(), s.sim.Springs(), kind)
	return s.lines
}

// FloorLines returns a reference grid under the scene.
func (s *Scene) FloorLines() []float32 {
	s.lines = debug.AppendFloorGrid(s.lines[:0], 1, 0.1, s.floorY)
	return s.lines
}

// Status summarizes the scene in one line, for a window title or log.
func (s *Scene) Status() string {
	cfg := s.sim.Config()
	st := s.sim.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d | %d substeps | %s %s | %d/%d tris",
		st.Frame, st.Substeps, ShapeName(s.Collider()), cfg.Collision.Strategy, st.Colliding, st.Candidates)
	if cfg.Wind.Enabled {
		b.WriteString(" | wind")
	}
	if cfg.Collision.Friction.Enabled {
		b.WriteString(" | friction")
	}
	if cfg.SelfCollision {
		b.WriteString(" | self")
	}
	if s.paused {
		b.WriteString(" | paused")
	}
	return b.String()
}

// ShapeName names a collider for display.
func ShapeName(c physics.Collider) string {
	switch c.(type) {
	case physics.Cube:
		return "cube"
	case physics.Sphere:
		return "sphere"
	default:
		return "none"
	}
}
