// Package renderer draws the cloth mesh and debug line overlays with OpenGL.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/engine/lighting"
	"github.com/Faultbox/drape/internal/engine/shader"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// floats per cloth vertex: position then normal
const vertexStride = 6

// Renderer owns the GL state for one cloth mesh and a scratch line buffer.
type Renderer struct {
	config Config

	mesh  *shader.Program
	lines *shader.Program

	clothVAO  uint32
	clothVBO  uint32
	clothEBO  uint32
	hitEBO    uint32
	lineVAO   uint32
	lineVBO   uint32
	indexLen  int32
	hitLen    int32
	vertexBuf []float32
	wireframe bool
	lightDir  math.Vec3
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		lightDir: lighting.SunDirection(lighting.DefaultLongitude, lighting.DefaultLatitude),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	if r.mesh, err = shader.NewProgram(meshVertexShader, meshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	if r.lines, err = shader.NewProgram(lineVertexShader, lineFragmentShader); err != nil {
		r.mesh.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}

	r.createBuffers()
	return r, nil
}

func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.clothVAO)
	gl.GenBuffers(1, &r.clothVBO)
	gl.GenBuffers(1, &r.clothEBO)
	gl.GenBuffers(1, &r.hitEBO)

	gl.BindVertexArray(r.clothVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.clothVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride*4, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, vao := range []*uint32{&r.clothVAO, &r.lineVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
		}
	}
	for _, buf := range []*uint32{&r.clothVBO, &r.clothEBO, &r.hitEBO, &r.lineVBO} {
		if *buf != 0 {
			gl.DeleteBuffers(1, buf)
		}
	}
	r.mesh.Delete()
	r.lines.Delete()
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// AspectRatio returns width / height of the viewport.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Size returns the viewport size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetWireframe toggles polygon line mode for the cloth.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
}

// Wireframe reports whether the cloth is drawn as lines.
func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetIndices uploads the triangle index buffer. Call when the topology
// changes, not every frame.
func (r *Renderer) SetIndices(indices []uint32) {
	r.indexLen = uploadElements(r.clothVAO, r.clothEBO, indices)
}

// SetHighlight uploads the indices of triangles drawn in the highlight
// color on top of the cloth.
func (r *Renderer) SetHighlight(indices []uint32) {
	r.hitLen = uploadElements(r.clothVAO, r.hitEBO, indices)
}

func uploadElements(vao, ebo uint32, indices []uint32) int32 {
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)
	return int32(len(indices))
}

// UpdateVertices streams this frame's positions and normals.
func (r *Renderer) UpdateVertices(positions, normals []math.Vec3) {
	r.vertexBuf = interleave(r.vertexBuf, positions, normals)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.clothVBO)
	if len(r.vertexBuf) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(r.vertexBuf)*4, gl.Ptr(r.vertexBuf), gl.STREAM_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// interleave packs positions and normals into [px py pz nx ny nz] records.
// Missing normals default to +Z.
func interleave(dst []float32, positions, normals []math.Vec3) []float32 {
	dst = dst[:0]
	for i, p := range positions {
		n := math.Vec3{Z: 1}
		if i < len(normals) {
			n = normals[i]
		}
		dst = append(dst, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
	}
	return dst
}

// DrawCloth draws the mesh, then the highlighted triangles pulled slightly
// toward the camera.
func (r *Renderer) DrawCloth(viewProj math.Mat4, eye, color, highlight math.Vec3) {
	if r.indexLen == 0 {
		return
	}
	r.mesh.Use()
	r.mesh.SetMat4("uViewProj", viewProj)
	r.mesh.SetVec3("uEye", eye)
	r.mesh.SetVec3("uLightDir", r.lightDir)

	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	gl.BindVertexArray(r.clothVAO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.clothEBO)
	r.mesh.SetVec3("uColor", color)
	gl.DrawElementsWithOffset(gl.TRIANGLES, r.indexLen, gl.UNSIGNED_INT, 0)

	if r.hitLen > 0 {
		gl.Enable(gl.POLYGON_OFFSET_FILL)
		gl.PolygonOffset(-1, -1)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.hitEBO)
		r.mesh.SetVec3("uColor", highlight)
		gl.DrawElementsWithOffset(gl.TRIANGLES, r.hitLen, gl.UNSIGNED_INT, 0)
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.clothEBO)
	}
	gl.BindVertexArray(0)
	if r.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// DrawLines draws line segments given as [x, y, z] pairs in one color.
func (r *Renderer) DrawLines(viewProj math.Mat4, vertices []float32, color math.Vec3) {
	if len(vertices) < 6 {
		return
	}
	r.lines.Use()
	r.lines.SetMat4("uViewProj", viewProj)
	r.lines.SetVec3("uColor", color)

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(vertices)/3))
	gl.BindVertexArray(0)
}

// ReadPixels reads back the current framebuffer as RGBA.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
