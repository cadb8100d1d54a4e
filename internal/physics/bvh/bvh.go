package bvh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/pkg/math"
)

// LeafTriangles is the largest number of triangles kept in one leaf.
const LeafTriangles = 2

// Node is one box of the hierarchy. Inner nodes own exactly two children,
// leaves own up to LeafTriangles triangles and no children.
type Node struct {
	Box         AABB
	Left, Right int32
	// Triangles holds ordinals into the index buffer: triangle t uses
	// indices[3t], indices[3t+1], indices[3t+2].
	Triangles []int32
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Stats describes the shape of a built tree.
type Stats struct {
	Triangles        int
	SkippedTriangles int
	Nodes            int
	Leaves           int
	Depth            int
	FallbackSplits   int
}

// BVH is a binary tree of boxes stored in a flat arena. Parents always
// precede their children, so a reverse sweep visits children first.
//
// The particle slice is borrowed: the tree reads positions from it on every
// Refit and must not outlive it or be refit while another pass mutates it.
type BVH struct {
	particles []physics.Particle
	indices   []uint32
	nodes     []Node
	stats     Stats
}

// New builds a tree over every well-formed triangle in indices. A trailing
// partial triangle and triangles referencing missing particles are skipped.
func New(particles []physics.Particle, indices []uint32) *BVH {
	b := &BVH{
		particles: particles,
		indices:   indices,
	}

	count := len(indices) / 3
	tris := make([]int32, 0, count)
	for t := 0; t < count; t++ {
		if b.valid(int32(t)) {
			tris = append(tris, int32(t))
		}
	}
	b.stats.Triangles = len(tris)
	b.stats.SkippedTriangles = count - len(tris)
	if len(indices)%3 != 0 {
		b.stats.SkippedTriangles++
	}
	if b.stats.SkippedTriangles > 0 {
		logger.Warn("bvh: skipped malformed triangles",
			zap.Int("skipped", b.stats.SkippedTriangles),
			zap.Int("indices", len(indices)),
			zap.Int("particles", len(particles)),
		)
	}

	if len(tris) > 0 {
		b.nodes = make([]Node, 0, 2*len(tris))
		b.build(tris, 1)
		b.Refit()
	}

	b.stats.Nodes = len(b.nodes)
	if b.stats.FallbackSplits > 0 {
		logger.Debug("bvh: degenerate centroid splits fell back to bisection",
			zap.Int("fallbacks", b.stats.FallbackSplits),
			zap.Int("nodes", b.stats.Nodes),
		)
	}
	return b
}

func (b *BVH) valid(t int32) bool {
	n := uint32(len(b.particles))
	i := 3 * int(t)
	return i+2 < len(b.indices) && b.indices[i] < n && b.indices[i+1] < n && b.indices[i+2] < n
}

// build appends the subtree for tris and returns its node index.
func (b *BVH) build(tris []int32, depth int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1})
	if depth > b.stats.Depth {
		b.stats.Depth = depth
	}

	if len(tris) <= LeafTriangles {
		b.nodes[idx].Triangles = append([]int32(nil), tris...)
		b.stats.Leaves++
		return idx
	}

	left, right := b.split(tris)
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx].Left = l
	b.nodes[idx].Right = r
	return idx
}

// split partitions at the midpoint of the centroid bounds along its longest
// axis. If every centroid lands on one side, the list is bisected by position.
func (b *BVH) split(tris []int32) ([]int32, []int32) {
	bounds := EmptyAABB()
	for _, t := range tris {
		bounds = bounds.Extend(b.centroid(t))
	}
	axis := bounds.LongestAxis()
	mid := (bounds.Min.Axis(axis) + bounds.Max.Axis(axis)) * 0.5

	var left, right []int32
	for _, t := range tris {
		if b.centroid(t).Axis(axis) < mid {
			left = append(left, t)
		} else {
			right = append(right, t)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		b.stats.FallbackSplits++
		half := len(tris) / 2
		left = append([]int32(nil), tris[:half]...)
		right = append([]int32(nil), tris[half:]...)
	}
	return left, right
}

func (b *BVH) centroid(t int32) math.Vec3 {
	v0, v1, v2 := b.Vertices(t)
	return math.Centroid(v0, v1, v2)
}

// Refit recomputes every box from current particle positions without
// changing the topology. Call once per frame before querying.
func (b *BVH) Refit() {
	for i := len(b.nodes) - 1; i >= 0; i-- {
		n := &b.nodes[i]
		if n.IsLeaf() {
			box := EmptyAABB()
			for _, t := range n.Triangles {
				v0, v1, v2 := b.Vertices(t)
				box = box.Extend(v0).Extend(v1).Extend(v2)
			}
			n.Box = box
			continue
		}
		n.Box = b.nodes[n.Left].Box.Union(b.nodes[n.Right].Box)
	}
}

// Query appends to out every triangle in a leaf whose box satisfies overlap.
// Subtrees whose box fails are pruned. Leaves are visited left to right.
func (b *BVH) Query(overlap func(AABB) bool, out []int32) []int32 {
	if len(b.nodes) == 0 {
		return out
	}
	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &b.nodes[stack[sp]]
		if !overlap(n.Box) {
			continue
		}
		if n.IsLeaf() {
			out = append(out, n.Triangles...)
			continue
		}
		if sp+2 > len(stack) {
			// Deeper than any tree New produces for realistic meshes.
			out = b.queryRecursive(n.Right, overlap, out)
			stack[sp] = n.Left
			sp++
			continue
		}
		stack[sp] = n.Right
		stack[sp+1] = n.Left
		sp += 2
	}
	return out
}

func (b *BVH) queryRecursive(idx int32, overlap func(AABB) bool, out []int32) []int32 {
	n := &b.nodes[idx]
	if !overlap(n.Box) {
		return out
	}
	if n.IsLeaf() {
		return append(out, n.Triangles...)
	}
	out = b.queryRecursive(n.Left, overlap, out)
	return b.queryRecursive(n.Right, overlap, out)
}

// Vertices returns the current positions of triangle t.
func (b *BVH) Vertices(t int32) (math.Vec3, math.Vec3, math.Vec3) {
	i := 3 * int(t)
	return b.particles[b.indices[i]].Position,
		b.particles[b.indices[i+1]].Position,
		b.particles[b.indices[i+2]].Position
}

// Root returns the root node, or nil for an empty tree.
func (b *BVH) Root() *Node {
	if len(b.nodes) == 0 {
		return nil
	}
	return &b.nodes[0]
}

// Node returns the node at idx.
func (b *BVH) Node(idx int32) *Node {
	return &b.nodes[idx]
}

// Walk visits every node depth first with its depth (root = 0).
func (b *BVH) Walk(fn func(n *Node, depth int)) {
	if len(b.nodes) == 0 {
		return
	}
	b.walk(0, 0, fn)
}

func (b *BVH) walk(idx int32, depth int, fn func(*Node, int)) {
	n := &b.nodes[idx]
	fn(n, depth)
	if !n.IsLeaf() {
		b.walk(n.Left, depth+1, fn)
		b.walk(n.Right, depth+1, fn)
	}
}

// Stats returns build statistics.
func (b *BVH) Stats() Stats {
	return b.stats
}
