package components

import (
	"errors"

	"github.com/spaghettifunk/kiln/engine/math"
)

var (
	ErrProjectionNotUpdated = errors.New("camera projection was never updated")
	ErrViewStale            = errors.New("camera pose changed since the last view update")
)

type ProjectionMode uint8

const (
	Perspective ProjectionMode = iota
	Orthographic
)

func (p ProjectionMode) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

const (
	DefaultNearZ      float32 = 0.1
	DefaultFarZ       float32 = 1000
	DefaultOrthoWidth float32 = 5e-3
)

// pitchLimit keeps the fly camera away from gimbal lock.
var pitchLimit = math.DegToRad(89)

// Camera holds a pose and projection parameters. The view, projection and
// view-projection matrices are caches: setters only store values and the
// Update methods must be called, in order, to refresh them. All three matrices
// are stored transposed, ready for upload.
type Camera struct {
	Position    math.Vec3
	Orientation math.Euler
	Mode        ProjectionMode
	NearZ       float32
	FarZ        float32
	// FovY is the vertical field of view in radians.
	FovY float32
	// OrthoWidth scales the render area size to world units in orthographic mode.
	OrthoWidth float32

	world          math.Mat4
	view           math.Mat4
	projection     math.Mat4
	viewProjection math.Mat4

	viewStale      bool
	projectionDone bool
}

func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3Zero()
	c.Orientation = math.Euler{}
	c.Mode = Perspective
	c.NearZ = DefaultNearZ
	c.FarZ = DefaultFarZ
	c.FovY = math.DegToRad(60)
	c.OrthoWidth = DefaultOrthoWidth
	c.world = math.NewMat4Identity()
	c.view = math.NewMat4Identity()
	c.projection = math.NewMat4Identity()
	c.viewProjection = math.NewMat4Identity()
	c.viewStale = false
	c.projectionDone = false
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.viewStale = true
}

func (c *Camera) SetOrientation(orientation math.Euler) {
	c.Orientation = orientation
	c.viewStale = true
}

func (c *Camera) SetProjectionMode(mode ProjectionMode) { c.Mode = mode }
func (c *Camera) SetNearZ(z float32)                    { c.NearZ = z }
func (c *Camera) SetFarZ(z float32)                     { c.FarZ = z }
func (c *Camera) SetFovY(radians float32)               { c.FovY = radians }
func (c *Camera) SetOrthoWidth(scale float32)           { c.OrthoWidth = scale }

// UpdateViewMatrix rebuilds the view matrix from the pose. The world matrix
// applies the rotation first and the translation second.
func (c *Camera) UpdateViewMatrix() {
	rotation := c.Orientation.ToMat4()
	translation := math.NewMat4Translation(c.Position)
	c.world = rotation.Mul(translation)

	// a rotation followed by a translation is always invertible
	view, _ := c.world.Inverse()
	c.view = view.Transposed()
	c.viewStale = false
}

// UpdateProjectionMatrix rebuilds the projection for a render area of
// width x height pixels.
func (c *Camera) UpdateProjectionMatrix(width, height uint32) {
	w, h := float32(width), float32(height)
	if h == 0 {
		h = 1
	}
	var projection math.Mat4
	switch c.Mode {
	case Orthographic:
		projection = math.NewMat4OrthographicLH(w*c.OrthoWidth, h*c.OrthoWidth, c.NearZ, c.FarZ)
	default:
		projection = math.NewMat4Perspective(c.FovY, w/h, c.NearZ, c.FarZ)
	}
	c.projection = projection.Transposed()
	c.projectionDone = true
}

// UpdateViewProjectionMatrix combines the cached projection and view. It
// fails when either cache is out of date.
func (c *Camera) UpdateViewProjectionMatrix() error {
	if !c.projectionDone {
		return ErrProjectionNotUpdated
	}
	if c.viewStale {
		return ErrViewStale
	}
	c.viewProjection = c.projection.Mul(c.view)
	return nil
}

func (c *Camera) View() math.Mat4           { return c.view }
func (c *Camera) Projection() math.Mat4     { return c.projection }
func (c *Camera) ViewProjection() math.Mat4 { return c.viewProjection }

// World returns the camera's world matrix as of the last UpdateViewMatrix.
func (c *Camera) World() math.Mat4 { return c.world }

func (c *Camera) orientation() math.Mat4 {
	return c.Orientation.ToMat4()
}

func (c *Camera) Forward() math.Vec3  { return c.orientation().Forward() }
func (c *Camera) Backward() math.Vec3 { return c.orientation().Backward() }
func (c *Camera) Left() math.Vec3     { return c.orientation().Left() }
func (c *Camera) Right() math.Vec3    { return c.orientation().Right() }

func (c *Camera) move(direction math.Vec3, amount float32) {
	c.SetPosition(c.Position.Add(direction.MulScalar(amount)))
}

func (c *Camera) MoveForward(amount float32)  { c.move(c.Forward(), amount) }
func (c *Camera) MoveBackward(amount float32) { c.move(c.Backward(), amount) }
func (c *Camera) MoveLeft(amount float32)     { c.move(c.Left(), amount) }
func (c *Camera) MoveRight(amount float32)    { c.move(c.Right(), amount) }
func (c *Camera) MoveUp(amount float32)       { c.move(math.NewVec3Up(), amount) }
func (c *Camera) MoveDown(amount float32)     { c.move(math.NewVec3Down(), amount) }

func (c *Camera) Yaw(amount float32) {
	c.Orientation.Yaw += amount
	c.viewStale = true
}

func (c *Camera) Pitch(amount float32) {
	c.Orientation.Pitch = math.Clamp(c.Orientation.Pitch+amount, -pitchLimit, pitchLimit)
	c.viewStale = true
}
