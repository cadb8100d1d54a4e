package cloth

import (
	"runtime"
	"sync"

	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/pkg/math"
)

// parallelNormalsThreshold is the triangle count above which normals are
// accumulated by several goroutines.
const parallelNormalsThreshold = 4096

// normalBuilder computes area-weighted vertex normals. Workers accumulate
// into private buffers that are summed afterwards, so no two goroutines
// write the same vertex.
type normalBuilder struct {
	workers  int
	partials [][]math.Vec3
}

func newNormalBuilder(workers int) *normalBuilder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &normalBuilder{workers: workers}
}

// compute writes one unit normal per particle into out, which must have
// len(particles) elements. Vertices without a valid triangle get +Z.
func (b *normalBuilder) compute(particles []physics.Particle, indices []uint32, out []math.Vec3) {
	tris := len(indices) / 3
	workers := b.workers
	if tris < parallelNormalsThreshold || workers < 2 {
		workers = 1
	}

	if workers == 1 {
		clear(out)
		accumulate(particles, indices, 0, tris, out)
	} else {
		b.ensure(workers, len(particles))
		chunk := (tris + workers - 1) / workers
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			start := w * chunk
			end := min(start+chunk, tris)
			buf := b.partials[w]
			clear(buf)
			if start >= end {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				accumulate(particles, indices, start, end, buf)
			}()
		}
		wg.Wait()

		clear(out)
		for _, buf := range b.partials[:workers] {
			for i, n := range buf {
				out[i] = out[i].Add(n)
			}
		}
	}

	for i := range out {
		n, ok := out[i].TryNormalize()
		if !ok {
			n = math.Vec3{Z: 1}
		}
		out[i] = n
	}
}

func (b *normalBuilder) ensure(workers, vertices int) {
	for len(b.partials) < workers {
		b.partials = append(b.partials, nil)
	}
	for w := range b.partials {
		if len(b.partials[w]) != vertices {
			b.partials[w] = make([]math.Vec3, vertices)
		}
	}
}

// accumulate adds the unnormalized face normal of triangles [start, end) to
// each of their vertices. Out-of-range triangles are skipped.
func accumulate(particles []physics.Particle, indices []uint32, start, end int, out []math.Vec3) {
	n := uint32(len(particles))
	for t := start; t < end; t++ {
		i0, i1, i2 := indices[3*t], indices[3*t+1], indices[3*t+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		v0 := particles[i0].Position
		face := particles[i1].Position.Sub(v0).Cross(particles[i2].Position.Sub(v0))
		out[i0] = out[i0].Add(face)
		out[i1] = out[i1].Add(face)
		out[i2] = out[i2].Add(face)
	}
}
