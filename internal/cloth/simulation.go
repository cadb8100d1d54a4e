package cloth

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/physics/bvh"
	"github.com/Faultbox/drape/internal/physics/collision"
	"github.com/Faultbox/drape/pkg/math"
)

// Sub-stepping limits. Auto sub-stepping keeps sqrt(k/m)·h at or below
// stableOmegaH for the stiffest particle.
const (
	stableOmegaH = 0.5
	maxSubsteps  = 64
)

// Config holds everything needed to assemble and step a cloth.
type Config struct {
	Grid     Grid
	Material Material
	// Gravity is the Y component of the constant force on every particle.
	Gravity float32
	Wind    WindOptions

	Collision collision.Options
	// ParticleContacts enables the per-particle collider pass after the
	// triangle pass.
	ParticleContacts bool
	SelfCollision    bool

	// Substeps splits each frame into this many integration steps.
	Substeps int
	// AutoSubstep raises Substeps as needed to keep the integrator stable.
	AutoSubstep bool
	// MaxFrameTime clamps a frame's dt. Zero disables the clamp.
	MaxFrameTime float32

	// NormalWorkers bounds the goroutines used for normals. Zero means NumCPU.
	NormalWorkers int
	// Seed feeds the wind's random source.
	Seed int64
}

// DefaultConfig returns a hanging cotton cloth under weak gravity.
func DefaultConfig() Config {
	m, _ := LookupPreset(DefaultPreset)
	return Config{
		Grid:             DefaultGrid(),
		Material:         m,
		Gravity:          -0.05,
		Wind:             DefaultWind(),
		Collision:        collision.DefaultOptions(),
		ParticleContacts: true,
		SelfCollision:    true,
		Substeps:         1,
		AutoSubstep:      true,
		MaxFrameTime:     0.05,
		Seed:             1,
	}
}

// FrameStats summarizes the last Step.
type FrameStats struct {
	Frame    uint64
	Substeps int
	collision.Stats
}

// Simulation owns the particles, springs, triangle buffer and BVH of one
// cloth together with all per-frame state. It is not safe for concurrent
// use; hosts read its buffers between calls to Step.
type Simulation struct {
	cfg Config

	particles []physics.Particle
	springs   []physics.Spring
	indices   []uint32
	tree      *bvh.BVH

	resolver  *collision.Resolver
	wind      *Wind
	colliders []physics.Collider

	colliding []uint32
	normals   []math.Vec3
	normalsB  *normalBuilder

	substeps  int
	stiffness float32
	frame     uint64
	stats     FrameStats
}

// New validates cfg and assembles the cloth in cfg.Grid.Orientation.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Grid.Validate(); err != nil {
		return nil, err
	}
	if cfg.Material.K <= 0 {
		return nil, fmt.Errorf("material %q: spring constant must be positive", cfg.Material.Name)
	}
	if cfg.Substeps < 1 {
		cfg.Substeps = 1
	}

	s := &Simulation{
		cfg:      cfg,
		resolver: collision.NewResolver(cfg.Collision),
		wind:     NewWind(cfg.Wind, cfg.Seed),
		normalsB: newNormalBuilder(cfg.NormalWorkers),
	}
	s.Reset(cfg.Grid.Orientation)
	return s, nil
}

// Reset discards every particle, spring and derived buffer and rebuilds the
// cloth from scratch in orientation o.
func (s *Simulation) Reset(o Orientation) {
	s.cfg.Grid.Orientation = o
	g := s.cfg.Grid

	s.particles = g.Particles()
	s.springs = g.Springs(s.particles, s.cfg.Material)
	s.indices = g.Indices()
	s.tree = bvh.New(s.particles, s.indices)
	s.colliding = s.colliding[:0]
	s.normals = make([]math.Vec3, len(s.particles))
	s.normalsB.compute(s.particles, s.indices, s.normals)
	s.stiffness = s.maxStiffnessPerMass()
	s.substeps = s.requiredSubsteps(0)
	s.frame = 0
	s.stats = FrameStats{}

	bs := s.tree.Stats()
	logger.Debug("cloth: reset",
		zap.Stringer("orientation", o),
		zap.Int("particles", len(s.particles)),
		zap.Int("springs", len(s.springs)),
		zap.Int("triangles", len(s.indices)/3),
		zap.Int("bvh_nodes", bs.Nodes),
		zap.Int("bvh_depth", bs.Depth),
	)
}

// Step advances the cloth by dt seconds: external forces, springs and
// integration per sub-step, then collisions against every collider, the
// particle contact pass, self collision and finally normals.
func (s *Simulation) Step(dt float32) {
	if dt <= 0 || gomath.IsNaN(float64(dt)) || gomath.IsInf(float64(dt), 0) {
		return
	}
	if s.cfg.MaxFrameTime > 0 && dt > s.cfg.MaxFrameTime {
		dt = s.cfg.MaxFrameTime
	}

	s.wind.Advance(dt)

	n := s.requiredSubsteps(dt)
	if n != s.substeps {
		logger.Debug("cloth: substeps changed", zap.Int("from", s.substeps), zap.Int("to", n), zap.Float32("dt", dt))
		s.substeps = n
	}
	h := dt / float32(n)

	gravity := math.Vec3{Y: s.cfg.Gravity}
	for step := 0; step < n; step++ {
		for i := range s.particles {
			p := &s.particles[i]
			p.ApplyForce(gravity)
			p.ApplyForce(s.wind.Force(p.Position))
		}
		for _, sp := range s.springs {
			sp.Update(s.particles)
		}
		for i := range s.particles {
			s.particles[i].Update(h)
		}
	}

	s.tree.Refit()

	s.resolver.ResetStats()
	s.colliding = s.colliding[:0]
	for _, c := range s.colliders {
		s.colliding = s.resolver.ResolveTriangles(s.particles, s.tree, s.indices, c, h, s.colliding)
		if s.cfg.ParticleContacts {
			s.resolver.ResolveParticles(s.particles, c)
		}
	}
	if s.cfg.SelfCollision {
		s.resolver.SelfCollide(s.particles)
	}

	s.normalsB.compute(s.particles, s.indices, s.normals)

	s.frame++
	s.stats = FrameStats{Frame: s.frame, Substeps: n, Stats: s.resolver.Stats()}
}

// requiredSubsteps returns the configured count, raised when auto
// sub-stepping finds the stiffest particle unstable at dt/n.
func (s *Simulation) requiredSubsteps(dt float32) int {
	n := max(s.cfg.Substeps, 1)
	if !s.cfg.AutoSubstep || dt <= 0 {
		return n
	}
	omega := gomath.Sqrt(float64(s.stiffness))
	need := int(gomath.Ceil(omega * float64(dt) / stableOmegaH))
	return min(max(n, need), maxSubsteps)
}

// maxStiffnessPerMass returns the largest summed spring constant acting on a
// free particle divided by its mass.
func (s *Simulation) maxStiffnessPerMass() float32 {
	sum := make([]float32, len(s.particles))
	for _, sp := range s.springs {
		sum[sp.A] += sp.K
		sum[sp.B] += sp.K
	}
	var best float32
	for i, k := range sum {
		p := &s.particles[i]
		if p.Pinned || p.Mass <= 0 {
			continue
		}
		best = max(best, k/p.Mass)
	}
	return best
}

// Particles returns the particle store. Callers must not resize it.
func (s *Simulation) Particles() []physics.Particle {
	return s.particles
}

// Positions appends every particle position to dst in grid order.
func (s *Simulation) Positions(dst []math.Vec3) []math.Vec3 {
	for i := range s.particles {
		dst = append(dst, s.particles[i].Position)
	}
	return dst
}

// Springs returns the spring list.
func (s *Simulation) Springs() []physics.Spring {
	return s.springs
}

// Indices returns the triangle index buffer. It changes only on Reset.
func (s *Simulation) Indices() []uint32 {
	return s.indices
}

// CollidingIndices returns the particle indices of the triangles found in
// contact during the last Step, three per triangle.
func (s *Simulation) CollidingIndices() []uint32 {
	return s.colliding
}

// Normals returns one unit normal per particle as of the last Step.
func (s *Simulation) Normals() []math.Vec3 {
	return s.normals
}

// BVH returns the triangle hierarchy. Step refits it after integration,
// before the collider and self-collision passes move particles.
func (s *Simulation) BVH() *bvh.BVH {
	return s.tree
}

// Wind returns the wind field.
func (s *Simulation) Wind() *Wind {
	return s.wind
}

// Stats returns statistics of the last Step.
func (s *Simulation) Stats() FrameStats {
	return s.stats
}

// Config returns the current configuration.
func (s *Simulation) Config() Config {
	return s.cfg
}

// Colliders returns the active colliders.
func (s *Simulation) Colliders() []physics.Collider {
	return s.colliders
}

// SetColliders replaces the active colliders. Nil entries are dropped.
func (s *Simulation) SetColliders(colliders ...physics.Collider) {
	s.colliders = s.colliders[:0]
	for _, c := range colliders {
		if c != nil {
			s.colliders = append(s.colliders, c)
		}
	}
}

// SetCollisionOptions replaces the resolver options.
func (s *Simulation) SetCollisionOptions(opts collision.Options) {
	s.cfg.Collision = opts
	s.resolver.SetOptions(opts)
}

// SetWindEnabled toggles the wind.
func (s *Simulation) SetWindEnabled(on bool) {
	s.cfg.Wind.Enabled = on
	s.wind.SetEnabled(on)
}

// SetGravity changes the constant vertical force.
func (s *Simulation) SetGravity(g float32) {
	s.cfg.Gravity = g
}

// SetMaterial rescales every spring to m without touching rest lengths.
func (s *Simulation) SetMaterial(m Material) {
	s.cfg.Material = m
	for i := range s.springs {
		switch s.springs[i].Kind {
		case physics.Shear:
			s.springs[i].K = m.ShearK()
		case physics.Bend:
			s.springs[i].K = m.BendK()
		default:
			s.springs[i].K = m.K
		}
	}
	s.stiffness = s.maxStiffnessPerMass()
}

// SetSelfCollision toggles the particle-particle pass.
func (s *Simulation) SetSelfCollision(on bool) {
	s.cfg.SelfCollision = on
}

// SetParticleContacts toggles the per-particle collider pass.
func (s *Simulation) SetParticleContacts(on bool) {
	s.cfg.ParticleContacts = on
}
