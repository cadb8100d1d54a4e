// Package viewer runs the interactive cloth window: input, simulation step,
// render and present, once per frame.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/engine/camera"
	"github.com/Faultbox/drape/internal/engine/debug"
	"github.com/Faultbox/drape/internal/engine/input"
	"github.com/Faultbox/drape/internal/engine/picking"
	"github.com/Faultbox/drape/internal/engine/renderer"
	"github.com/Faultbox/drape/internal/engine/window"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/physics"
	"github.com/Faultbox/drape/internal/scene"
	"github.com/Faultbox/drape/pkg/math"
)

// Colors of the scene elements.
var (
	clothColor     = math.Vec3{X: 0.85, Y: 0.78, Z: 0.62}
	collidingColor = math.Vec3{X: 0.9, Y: 0.2, Z: 0.15}
	colliderColor  = math.Vec3{X: 0.3, Y: 0.8, Z: 0.9}
	bvhColor       = math.Vec3{X: 0.9, Y: 0.9, Z: 0.2}
	springColor    = math.Vec3{X: 0.5, Y: 0.9, Z: 0.4}
	floorColor     = math.Vec3{X: 0.3, Y: 0.3, Z: 0.35}
)

const windowTitle = "drape"

// pickRadius is the grab tolerance as a fraction of the camera distance.
const pickRadius = 0.02

// Viewer is the main application instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	scene    *scene.Scene
	shots    *debug.ScreenshotCapture

	// topology tracks the index buffer uploaded to the GPU
	topology *uint32
}

// New creates the window, GL renderer and simulation from cfg.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	simCfg, err := cfg.Simulation()
	if err != nil {
		return nil, err
	}
	sc, err := scene.New(simCfg, cfg.Collider.Cycle())
	if err != nil {
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	v := &Viewer{
		config: cfg,
		scene:  sc,
		camera: camera.NewOrbitCamera(),
		input:  input.New(),
		shots:  debug.NewScreenshotCapture("screenshots", "drape"),
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer comes after the window, since the GL context must exist
	w, h := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(w, h)

	v.camera.FitToBounds(sc.ViewBounds())

	logger.Info("viewer initialized")
	return v, nil
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()
	v.window.Tick()

	logger.Info("starting main loop")

	for v.running {
		dt := v.window.Tick()

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleInput()

		v.scene.Update(dt)

		if err := v.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			st := v.scene.Sim().Stats()
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Float32("dt_ms", dt*1000),
				zap.Uint64("frame", st.Frame),
				zap.Int("substeps", st.Substeps),
				zap.Int("candidates", st.Candidates),
				zap.Int("colliding", st.Colliding),
				zap.Int("particle_contacts", st.ParticleContacts),
				zap.Int("self_contacts", st.SelfContacts),
			)
			v.window.SetTitle(fmt.Sprintf("%s | %d fps | %s", windowTitle, frameCount, v.scene.Status()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleInput() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			v.handleKey(event.Key)
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_RIGHT {
				v.grab(event.MouseX, event.MouseY)
			}
		case input.EventMouseMove:
			if _, held := v.scene.Grabbed(); held {
				v.drag(event.MouseX, event.MouseY)
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_RIGHT {
				v.scene.Release()
			}
		}
	}

	if dx, dy := v.input.Drag(); dx != 0 || dy != 0 {
		v.camera.HandleDrag(dx, dy)
	}
	if wheel := v.input.Wheel(); wheel != 0 {
		v.camera.HandleZoom(wheel)
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_SPACE:
		v.scene.TogglePause()
	case sdl.SCANCODE_PERIOD:
		v.scene.StepOnce()
	case sdl.SCANCODE_R:
		v.scene.Reset()
	case sdl.SCANCODE_W:
		v.scene.ToggleWind()
	case sdl.SCANCODE_O:
		v.scene.ToggleOrientation()
	case sdl.SCANCODE_C:
		v.scene.CycleCollider()
	case sdl.SCANCODE_V:
		v.scene.ToggleStrategy()
	case sdl.SCANCODE_B:
		v.scene.ToggleBVH()
	case sdl.SCANCODE_N:
		v.scene.CycleBVHDepth()
	case sdl.SCANCODE_F:
		v.scene.ToggleFriction()
	case sdl.SCANCODE_S:
		v.scene.ToggleSelfCollision()
	case sdl.SCANCODE_L:
		v.renderer.SetWireframe(!v.renderer.Wireframe())
	case sdl.SCANCODE_K:
		v.scene.ShowSprings = !v.scene.ShowSprings
	case sdl.SCANCODE_HOME:
		v.camera.FitToBounds(v.scene.ViewBounds())
	case sdl.SCANCODE_P:
		v.captureScreenshot()
	}
}

func (v *Viewer) pointerRay(x, y int) picking.Ray {
	w, h := v.renderer.Size()
	vp := v.camera.ViewProjection(v.renderer.AspectRatio())
	return picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), vp.Inverse())
}

// grab holds the particle under the pointer, if any.
func (v *Viewer) grab(x, y int) {
	ray := v.pointerRay(x, y)
	i, ok := ray.NearestPoint(v.scene.Positions(), pickRadius*v.camera.Distance)
	if !ok {
		return
	}
	v.scene.Grab(i)
	logger.Debug("grabbed particle", zap.Int("index", i))
}

// drag moves the held particle within the plane facing the camera through
// its current target.
func (v *Viewer) drag(x, y int) {
	i, _ := v.scene.Grabbed()
	anchor := v.scene.Sim().Particles()[i].Position
	normal := v.camera.Center.Sub(v.camera.Position()).Normalize()

	ray := v.pointerRay(x, y)
	if t, ok := ray.IntersectPlane(anchor, normal); ok {
		v.scene.DragTo(ray.At(t))
	}
}

func (v *Viewer) captureScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) render() error {
	sim := v.scene.Sim()

	// Orientation changes rebuild the index buffer.
	if idx := sim.Indices(); len(idx) > 0 && &idx[0] != v.topology {
		v.renderer.SetIndices(idx)
		v.topology = &idx[0]
	}
	v.renderer.UpdateVertices(v.scene.Positions(), sim.Normals())
	v.renderer.SetHighlight(sim.CollidingIndices())

	vp := v.camera.ViewProjection(v.renderer.AspectRatio())

	v.renderer.Begin()
	v.renderer.DrawLines(vp, v.scene.FloorLines(), floorColor)
	v.renderer.DrawCloth(vp, v.camera.Position(), clothColor, collidingColor)
	v.renderer.DrawLines(vp, v.scene.ColliderLines(), colliderColor)
	v.renderer.DrawLines(vp, v.scene.BVHLines(), bvhColor)
	v.renderer.DrawLines(vp, v.scene.SpringLines(physics.Structural), springColor)
	return nil
}
