package formats

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testQuad() *OBJ {
	return &OBJ{
		Name: "cloth",
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0.5},
		},
		Normals: [][3]float32{
			{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
		},
		Triangles: []uint32{0, 1, 2, 3, 2, 1},
	}
}

func TestWriteOBJ_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, testQuad()); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"o cloth\n", "v 1 1 0.5\n", "vn 0 0 1\n", "f 1//1 2//2 3//3\n", "f 4//4 3//3 2//2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseOBJ_ReadsWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := SaveOBJ(path, testQuad()); err != nil {
		t.Fatalf("SaveOBJ failed: %v", err)
	}

	o, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ failed: %v", err)
	}
	if o.Name != "cloth" {
		t.Errorf("expected name cloth, got %q", o.Name)
	}
	if len(o.Positions) != 4 || len(o.Normals) != 4 {
		t.Errorf("expected 4 positions and normals, got %d and %d", len(o.Positions), len(o.Normals))
	}
	if o.FaceCount() != 2 {
		t.Errorf("expected 2 faces, got %d", o.FaceCount())
	}
	if o.Triangles[3] != 3 {
		t.Errorf("expected zero-based index 3, got %d", o.Triangles[3])
	}

	lo, hi := o.Bounds()
	if lo != [3]float32{0, 0, 0} || hi != [3]float32{1, 1, 0.5} {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}
}

func TestParseOBJ_FaceForms(t *testing.T) {
	src := `# comment
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
f 1/1 2/1/1 -1
s off
`
	o, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	want := []uint32{0, 1, 2}
	for i, idx := range want {
		if o.Triangles[i] != idx {
			t.Errorf("Triangles[%d] = %d, want %d", i, o.Triangles[i], idx)
		}
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"quad face", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3 4\n", ErrOBJFaceArity},
		{"index past end", "v 0 0 0\nf 1 2 3\n", ErrOBJIndexRange},
		{"short vertex", "v 0 0\n", ErrOBJMalformedRow},
		{"bad number", "v 0 x 0\n", ErrOBJMalformedRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriteOBJ_RejectsBadIndices(t *testing.T) {
	o := testQuad()
	o.Triangles = append(o.Triangles, 0, 1, 9)
	if err := WriteOBJ(&bytes.Buffer{}, o); !errors.Is(err, ErrOBJIndexRange) {
		t.Errorf("expected ErrOBJIndexRange, got %v", err)
	}
}
