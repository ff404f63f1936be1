// Package testbed is a small title used to exercise the engine: a fly camera
// over a few generated meshes lit by a material from the asset directory.
package testbed

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/kiln/engine"
	"github.com/spaghettifunk/kiln/engine/assets"
	"github.com/spaghettifunk/kiln/engine/core"
	"github.com/spaghettifunk/kiln/engine/math"
	"github.com/spaghettifunk/kiln/engine/platform"
	"github.com/spaghettifunk/kiln/engine/renderer"
	"github.com/spaghettifunk/kiln/engine/renderer/components"
)

// MaterialAsset is loaded from the asset directory when one is configured and
// reloaded whenever the file changes.
const MaterialAsset = "materials/default.kmt"

var (
	moveSpeed   float32 = 5.0
	turnSpeed   float32 = 1.0
	mouseLook   float32 = 0.005
	spinSpeed   float32 = 0.8
	gamepadDead float32 = 0.15
)

// pollKeys are sampled every tick and routed through OnInput.
var pollKeys = []core.KeyCode{
	core.KEY_W, core.KEY_S, core.KEY_A, core.KEY_D, core.KEY_Q, core.KEY_E,
	core.KEY_LEFT, core.KEY_RIGHT, core.KEY_UP, core.KEY_DOWN,
	core.KEY_P, core.KEY_R, core.KEY_ESCAPE,
	core.MOUSE_RIGHT, core.MOUSE_X, core.MOUSE_Y,
}

var padKeys = []core.KeyCode{
	core.GAMEPAD_LEFT_STICK_X, core.GAMEPAD_LEFT_STICK_Y,
	core.GAMEPAD_RIGHT_STICK_X, core.GAMEPAD_RIGHT_STICK_Y,
	core.GAMEPAD_START,
}

// drawable is a mesh uploaded to the renderer.
type drawable struct {
	vertices   renderer.BufferID
	indices    renderer.BufferID
	indexCount uint32
	world      math.Mat4
}

type gameState struct {
	cameras     *components.CameraSet
	worldCamera *components.Camera
	material    renderer.MaterialData

	scene   *drawable
	spinner *drawable
	// models are loaded in the background from the asset directory
	models []*drawable
	spin   float32

	width  uint32
	height uint32
}

// TestGame is the engine Module of the testbed.
type TestGame struct {
	engine *engine.Engine
	state  *gameState

	handles  []func() bool
	delta    float32
	quitting bool
}

var _ engine.Module = (*TestGame)(nil)

func NewTestGame() *TestGame {
	return &TestGame{state: &gameState{material: renderer.DefaultMaterialData()}}
}

func (g *TestGame) Initialize(e *engine.Engine) (err error) {
	g.engine = e
	state := g.state

	if state.cameras, err = components.NewCameraSet(4); err != nil {
		return err
	}
	state.worldCamera, err = state.cameras.Acquire("world")
	if err != nil {
		return err
	}
	state.worldCamera.SetPosition(math.NewVec3(0, 3, -10))
	state.worldCamera.Pitch(math.DegToRad(-10))
	state.width, state.height = e.FramebufferSize()
	state.worldCamera.UpdateProjectionMatrix(state.width, state.height)

	g.loadMaterial()

	if state.scene, err = g.upload(buildScene(), math.NewMat4Identity()); err != nil {
		return fmt.Errorf("upload scene: %w", err)
	}
	cube := assets.GenerateCube(1, 1, 1, 1, 1)
	if state.spinner, err = g.upload(cube, math.NewMat4Translation(math.NewVec3(0, 2.5, 0))); err != nil {
		return errors.Join(fmt.Errorf("upload cube: %w", err), g.release())
	}

	g.subscribe(e)
	g.loadModels()
	core.LogInfo("testbed initialized")
	return nil
}

// buildScene lays a ground plane under a sphere, a cylinder and a cone and
// merges them into one mesh.
func buildScene() *assets.Mesh {
	plane := assets.GeneratePlane(20, 20, 4, 4, 4, 4)
	sphere := offset(assets.GenerateSphere(1, 16, 32), math.NewVec3(-3, 1, 0))
	cylinder := offset(assets.GenerateCylinder(0.75, 2, 24), math.NewVec3(3, 1, 0))
	cone := offset(assets.GenerateCone(1, 2, 24), math.NewVec3(0, 1, 4))
	scene := assets.CombineMeshes(plane, sphere, cylinder, cone)
	scene.Name = "scene"
	return scene
}

func offset(m *assets.Mesh, by math.Vec3) *assets.Mesh {
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Add(by)
	}
	return m
}

func (g *TestGame) upload(m *assets.Mesh, world math.Mat4) (*drawable, error) {
	r := g.engine.Renderer()
	vb, err := r.CreateVertexBuffer(m.Vertices)
	if err != nil {
		return nil, err
	}
	ib, err := r.CreateIndexBuffer(m.Indices)
	if err != nil {
		return nil, errors.Join(err, r.DestroyBuffer(vb))
	}
	core.LogDebug("uploaded mesh %q: %d vertices, %d indices", m.Name, m.VertexCount(), m.IndexCount())
	return &drawable{vertices: vb, indices: ib, indexCount: uint32(len(m.Indices)), world: world}, nil
}

func (g *TestGame) loadMaterial() {
	am := g.engine.Assets()
	if am == nil {
		return
	}
	m, err := am.LoadMaterial(MaterialAsset)
	if err != nil {
		core.LogWarn("using the default material: %s", err)
		return
	}
	g.state.material = renderer.MaterialData{
		LightColor:     m.LightColour,
		LightDirection: m.LightDirection.AsNormalizedSafe(),
		LightPosition:  m.LightPosition,
	}
	core.LogInfo("material %q loaded", m.Name)
}

// maxModels caps how many models from the asset directory are shown.
const maxModels = 4

// loadModels queues the first models of the asset directory for loading and
// lines them up behind the scene as they arrive.
func (g *TestGame) loadModels() {
	am := g.engine.Assets()
	if am == nil {
		return
	}
	for i, info := range am.List(assets.AssetTypeModel) {
		if i == maxModels {
			break
		}
		name := info.Name
		at := math.NewVec3(float32(i*3)-4.5, 0, 8)
		err := am.LoadModelAsync(name, func(m *assets.Mesh, err error) {
			if err != nil {
				core.LogWarn("skipping model %s: %s", name, err)
				return
			}
			if g.state.scene == nil {
				// arrived after cleanup
				return
			}
			d, err := g.upload(m, math.NewMat4Translation(at))
			if err != nil {
				core.LogError("upload model %s: %s", name, err)
				return
			}
			g.state.models = append(g.state.models, d)
		})
		if err != nil {
			core.LogWarn("cannot load model %s: %s", name, err)
		}
	}
}

// subscribe registers every callback the title uses. Cleanup undoes all of
// them.
func (g *TestGame) subscribe(e *engine.Engine) {
	input := e.Input()
	track := func(deregister func(core.Handle) bool, h core.Handle) {
		g.handles = append(g.handles, func() bool { return deregister(h) })
	}

	track(e.Tick.Deregister, e.Tick.Register(g.onTick))
	track(e.FixedTick.Deregister, e.FixedTick.Register(g.onFixedTick))
	track(e.Render.Deregister, e.Render.Register(g.onRender))
	track(e.WindowResized.Deregister, e.WindowResized.Register(g.onResized))
	track(e.Cleanup.Deregister, e.Cleanup.Register(g.onCleanup))
	track(input.OnInput.Deregister, input.OnInput.Register(g.onInput))
	track(input.OnGamepadInput.Deregister, input.OnGamepadInput.Register(g.onGamepad))
	if am := e.Assets(); am != nil {
		track(am.Changed.Deregister, am.Changed.Register(g.onAssetChanged))
	}
}

func (g *TestGame) onTick(delta float64) {
	g.delta = float32(delta)
	g.engine.Input().Poll(pollKeys...)
	g.engine.PollGamepads(padKeys...)
	if g.quitting {
		g.engine.Exit()
	}
}

func (g *TestGame) onFixedTick(step float64) {
	g.state.spin += spinSpeed * float32(step)
}

func (g *TestGame) onInput(in core.KeyInput) {
	cam := g.state.worldCamera
	move := moveSpeed * g.delta
	turn := turnSpeed * g.delta
	released := in.Value == 0 && !in.IsRepeat

	switch in.Key {
	case core.KEY_W:
		cam.MoveForward(move)
	case core.KEY_S:
		cam.MoveBackward(move)
	case core.KEY_A:
		cam.MoveLeft(move)
	case core.KEY_D:
		cam.MoveRight(move)
	case core.KEY_Q:
		cam.MoveDown(move)
	case core.KEY_E:
		cam.MoveUp(move)
	case core.KEY_LEFT:
		cam.Yaw(-turn)
	case core.KEY_RIGHT:
		cam.Yaw(turn)
	case core.KEY_UP:
		cam.Pitch(turn)
	case core.KEY_DOWN:
		cam.Pitch(-turn)
	case core.MOUSE_X:
		if g.engine.Input().IsKeyDown(core.MOUSE_RIGHT) {
			cam.Yaw(in.Value * mouseLook)
		}
	case core.MOUSE_Y:
		if g.engine.Input().IsKeyDown(core.MOUSE_RIGHT) {
			cam.Pitch(-in.Value * mouseLook)
		}
	case core.MOUSE_RIGHT:
		p := g.engine.Platform()
		if in.Value != 0 && !p.CursorCaptured() {
			p.CaptureCursor(g.engine.Window())
		} else if released {
			p.ReleaseCursor()
		}
	case core.KEY_P:
		if released {
			core.LogDebug("camera at [%.2f, %.2f, %.2f]", cam.Position.X, cam.Position.Y, cam.Position.Z)
		}
	case core.KEY_R:
		if released {
			g.resetCamera()
		}
	case core.KEY_ESCAPE:
		if released {
			g.quitting = true
		}
	}
}

func (g *TestGame) onGamepad(in core.GamepadInput) {
	cam := g.state.worldCamera
	v := in.Value
	if v > -gamepadDead && v < gamepadDead {
		v = 0
	}
	switch in.Key {
	case core.GAMEPAD_LEFT_STICK_X:
		cam.MoveRight(v * moveSpeed * g.delta)
	case core.GAMEPAD_LEFT_STICK_Y:
		cam.MoveBackward(v * moveSpeed * g.delta)
	case core.GAMEPAD_RIGHT_STICK_X:
		cam.Yaw(v * turnSpeed * g.delta)
	case core.GAMEPAD_RIGHT_STICK_Y:
		cam.Pitch(-v * turnSpeed * g.delta)
	case core.GAMEPAD_START:
		if in.Value == 0 {
			g.quitting = true
		}
	}
}

func (g *TestGame) resetCamera() {
	cam := g.state.worldCamera
	cam.SetPosition(math.NewVec3(0, 3, -10))
	cam.SetOrientation(math.Euler{})
	cam.Pitch(math.DegToRad(-10))
}

func (g *TestGame) onResized(size platform.Size) {
	g.state.width, g.state.height = size.Width, size.Height
	g.state.worldCamera.UpdateProjectionMatrix(size.Width, size.Height)
}

func (g *TestGame) onAssetChanged(c assets.Change) {
	if c.Asset.Name != MaterialAsset || c.Kind == assets.AssetRemoved {
		return
	}
	g.loadMaterial()
}

func (g *TestGame) onRender() {
	state := g.state
	cam := state.worldCamera
	cam.UpdateViewMatrix()
	if err := cam.UpdateViewProjectionMatrix(); err != nil {
		core.LogError("camera: %s", err)
		return
	}
	r := g.engine.Renderer()
	if err := r.SetMaterial(state.material); err != nil {
		core.LogError("set material: %s", err)
		return
	}

	spinning := math.NewMat4EulerY(state.spin).Mul(math.NewMat4EulerX(state.spin * 0.5)).Mul(state.spinner.world)
	type placed struct {
		mesh  *drawable
		world math.Mat4
	}
	draws := []placed{{state.scene, state.scene.world}, {state.spinner, spinning}}
	for _, m := range state.models {
		draws = append(draws, placed{m, m.world})
	}
	for _, d := range draws {
		if err := r.SetObjectData(renderer.NewObjectData(d.world, cam.View(), cam.ViewProjection())); err != nil {
			core.LogError("set object data: %s", err)
			return
		}
		if err := r.Draw(d.mesh.indexCount, d.mesh.vertices, d.mesh.indices); err != nil {
			core.LogError("draw: %s", err)
			return
		}
	}
}

func (g *TestGame) release() error {
	r := g.engine.Renderer()
	var errs []error
	all := append([]*drawable{g.state.scene, g.state.spinner}, g.state.models...)
	for _, d := range all {
		if d == nil {
			continue
		}
		errs = append(errs, r.DestroyBuffer(d.vertices), r.DestroyBuffer(d.indices))
	}
	g.state.scene, g.state.spinner, g.state.models = nil, nil, nil
	return errors.Join(errs...)
}

func (g *TestGame) onCleanup() {
	for _, deregister := range g.handles {
		deregister()
	}
	g.handles = nil
	if err := g.release(); err != nil {
		core.LogError("release testbed meshes: %s", err)
	}
	if err := g.state.cameras.Release("world"); err != nil {
		core.LogWarn("release camera: %s", err)
	}
	core.LogInfo("testbed cleaned up")
}
