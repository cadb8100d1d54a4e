// Package collision resolves cloth contacts against rigid colliders and
// against itself.
package collision

import (
	"fmt"
	"strings"
)

// Strategy selects how candidate triangles are found.
type Strategy uint8

const (
	// StrategyBVH prunes triangles through the cloth's bounding volume hierarchy.
	StrategyBVH Strategy = iota
	// StrategyLinear tests every triangle.
	StrategyLinear
)

func (s Strategy) String() string {
	switch s {
	case StrategyBVH:
		return "bvh"
	case StrategyLinear:
		return "linear"
	default:
		return fmt.Sprintf("strategy(%d)", s)
	}
}

// ParseStrategy accepts "bvh" or "linear".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bvh", "":
		return StrategyBVH, nil
	case "linear":
		return StrategyLinear, nil
	default:
		return 0, fmt.Errorf("unknown collision strategy %q", s)
	}
}

// ResponseMode controls when the repulsion force of a triangle contact is
// integrated.
type ResponseMode uint8

const (
	// ResponseSubstep advances the contacted particle by one dt immediately
	// after the repulsion force is applied.
	ResponseSubstep ResponseMode = iota
	// ResponseDeferred leaves the force accumulated for the next integration.
	ResponseDeferred
)

func (m ResponseMode) String() string {
	switch m {
	case ResponseSubstep:
		return "substep"
	case ResponseDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("response(%d)", m)
	}
}

// ParseResponseMode accepts "substep" or "deferred".
func ParseResponseMode(s string) (ResponseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "substep", "":
		return ResponseSubstep, nil
	case "deferred":
		return ResponseDeferred, nil
	default:
		return 0, fmt.Errorf("unknown response mode %q", s)
	}
}

// SelfMode selects the broad phase of the self-collision pass.
type SelfMode uint8

const (
	// SelfBruteForce compares every particle with every other.
	SelfBruteForce SelfMode = iota
	// SelfGrid bins particles into a uniform hash grid first.
	SelfGrid
)

func (m SelfMode) String() string {
	switch m {
	case SelfBruteForce:
		return "brute"
	case SelfGrid:
		return "grid"
	default:
		return fmt.Sprintf("self(%d)", m)
	}
}

// ParseSelfMode accepts "brute" or "grid".
func ParseSelfMode(s string) (SelfMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brute", "":
		return SelfBruteForce, nil
	case "grid":
		return SelfGrid, nil
	default:
		return 0, fmt.Errorf("unknown self collision mode %q", s)
	}
}

// Friction holds Coulomb coefficients. Below Threshold tangential speed the
// static coefficient applies, otherwise the kinetic one.
type Friction struct {
	Enabled   bool
	Static    float32
	Kinetic   float32
	Threshold float32
}

// Options parameterizes a Resolver.
type Options struct {
	Strategy Strategy
	Response ResponseMode
	Self     SelfMode

	// Restitution is the fraction of normal velocity kept after a contact.
	Restitution float32
	// Repulsion scales the penalty force: Repulsion·|depth| along the normal.
	Repulsion float32
	// ContactOffset inflates colliders so near misses count as contacts.
	ContactOffset float32

	Friction Friction
}

// DefaultOptions returns the stock contact parameters.
func DefaultOptions() Options {
	return Options{
		Strategy:      StrategyBVH,
		Response:      ResponseSubstep,
		Self:          SelfBruteForce,
		Restitution:   0.5,
		Repulsion:     500,
		ContactOffset: 0.01,
		Friction: Friction{
			Enabled:   true,
			Static:    0.5,
			Kinetic:   0.3,
			Threshold: 0.01,
		},
	}
}

// Stats counts work done by a resolver since the last ResetStats.
type Stats struct {
	// Candidates is the number of triangles reaching the narrow phase.
	Candidates int
	// Colliding is the number of triangles found in contact.
	Colliding int
	// Skipped counts malformed or degenerate triangles.
	Skipped int
	// ParticleContacts is the number of particles pushed out of colliders.
	ParticleContacts int
	// SelfContacts is the number of particles moved by self collision.
	SelfContacts int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Candidates += o.Candidates
	s.Colliding += o.Colliding
	s.Skipped += o.Skipped
	s.ParticleContacts += o.ParticleContacts
	s.SelfContacts += o.SelfContacts
}
