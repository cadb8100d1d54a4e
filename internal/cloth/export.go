package cloth

import (
	"github.com/Faultbox/drape/pkg/formats"
)

// Snapshot copies the current mesh into an OBJ with per-vertex normals.
func (s *Simulation) Snapshot(name string) *formats.OBJ {
	o := &formats.OBJ{
		Name:      name,
		Positions: make([][3]float32, len(s.particles)),
		Normals:   make([][3]float32, len(s.normals)),
		Triangles: append([]uint32(nil), s.indices...),
	}
	for i := range s.particles {
		p := s.particles[i].Position
		o.Positions[i] = [3]float32{p.X, p.Y, p.Z}
	}
	for i, n := range s.normals {
		o.Normals[i] = [3]float32{n.X, n.Y, n.Z}
	}
	return o
}
