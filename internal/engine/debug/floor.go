package debug

// AppendFloorGrid appends a square grid of lines on the plane y, centered on
// the origin, extending halfExtent in X and Z with the given spacing.
func AppendFloorGrid(dst []float32, halfExtent, spacing, y float32) []float32 {
	if spacing <= 0 || halfExtent <= 0 {
		return dst
	}
	n := int(halfExtent / spacing)
	for i := -n; i <= n; i++ {
		v := float32(i) * spacing
		dst = append(dst,
			v, y, -halfExtent, v, y, halfExtent,
			-halfExtent, y, v, halfExtent, y, v,
		)
	}
	return dst
}
