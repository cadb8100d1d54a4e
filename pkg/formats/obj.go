package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrOBJFaceArity    = errors.New("obj: only triangle faces are supported")
	ErrOBJIndexRange   = errors.New("obj: face index out of range")
	ErrOBJMalformedRow = errors.New("obj: malformed row")
)

// OBJ is a triangle mesh in Wavefront OBJ form. Indices are zero-based here
// and one-based on disk.
type OBJ struct {
	Name      string
	Positions [][3]float32
	Normals   [][3]float32
	// Triangles holds three vertex indices per face. When Normals is not
	// empty, vertex i uses normal i.
	Triangles []uint32
}

// FaceCount returns the number of triangles.
func (o *OBJ) FaceCount() int {
	return len(o.Triangles) / 3
}

// Bounds returns the min and max corners of the positions.
func (o *OBJ) Bounds() (lo, hi [3]float32) {
	if len(o.Positions) == 0 {
		return lo, hi
	}
	lo, hi = o.Positions[0], o.Positions[0]
	for _, p := range o.Positions[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Validate checks face arity and index ranges.
func (o *OBJ) Validate() error {
	if len(o.Triangles)%3 != 0 {
		return ErrOBJFaceArity
	}
	for _, idx := range o.Triangles {
		if int(idx) >= len(o.Positions) {
			return fmt.Errorf("%w: %d of %d", ErrOBJIndexRange, idx+1, len(o.Positions))
		}
	}
	if len(o.Normals) > 0 && len(o.Normals) != len(o.Positions) {
		return fmt.Errorf("obj: %d normals for %d positions", len(o.Normals), len(o.Positions))
	}
	return nil
}

// WriteOBJ writes o as text. Faces reference vertex normals with the v//vn
// form when normals are present.
func WriteOBJ(w io.Writer, o *OBJ) error {
	if err := o.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if o.Name != "" {
		fmt.Fprintf(bw, "o %s\n", o.Name)
	}
	for _, p := range o.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p[0]), ftoa(p[1]), ftoa(p[2]))
	}
	for _, n := range o.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n[0]), ftoa(n[1]), ftoa(n[2]))
	}
	withNormals := len(o.Normals) > 0
	for i := 0; i+2 < len(o.Triangles); i += 3 {
		a, b, c := o.Triangles[i]+1, o.Triangles[i+1]+1, o.Triangles[i+2]+1
		if withNormals {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}
	return bw.Flush()
}

// SaveOBJ writes o to path.
func SaveOBJ(path string, o *OBJ) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteOBJ(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// ParseOBJ reads the subset WriteOBJ produces: o, v, vn and triangular f
// rows. Comments, blank lines and other statements are ignored. Face
// normal references are read but normals stay indexed by vertex.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	o := &OBJ{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "o":
			o.Name = strings.Join(fields[1:], " ")
		case "v", "vn":
			vec, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if fields[0] == "v" {
				o.Positions = append(o.Positions, vec)
			} else {
				o.Normals = append(o.Normals, vec)
			}
		case "f":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: %w", line, ErrOBJFaceArity)
			}
			for _, ref := range fields[1:] {
				idx, err := parseFaceRef(ref, len(o.Positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				o.Triangles = append(o.Triangles, idx)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// LoadOBJ reads an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOBJ(f)
}

func parseVec3(fields []string) ([3]float32, error) {
	var v [3]float32
	if len(fields) < 3 {
		return v, ErrOBJMalformedRow
	}
	for k := 0; k < 3; k++ {
		f, err := strconv.ParseFloat(fields[k], 32)
		if err != nil {
			return v, fmt.Errorf("%w: %v", ErrOBJMalformedRow, err)
		}
		v[k] = float32(f)
	}
	return v, nil
}

// parseFaceRef resolves "v", "v/vt", "v//vn" or "v/vt/vn" to a zero-based
// vertex index. Negative references count back from the last vertex.
func parseFaceRef(ref string, count int) (uint32, error) {
	head, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOBJMalformedRow, ref)
	}
	switch {
	case n > 0 && n <= count:
		return uint32(n - 1), nil
	case n < 0 && -n <= count:
		return uint32(count + n), nil
	}
	return 0, fmt.Errorf("%w: %d of %d", ErrOBJIndexRange, n, count)
}
