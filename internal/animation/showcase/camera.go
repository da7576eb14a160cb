package showcase

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Viewport and lens used by the showcase canvas.
const (
	ViewportWidth  = 600
	ViewportHeight = 400
	FieldOfView    = 75.0
	NearPlane      = 0.1
	FarPlane       = 1000.0
	CameraDistance = 8.0
)

// Camera is a perspective camera that always looks at the scene origin.
type Camera struct {
	Position mgl64.Vec3
	FovY     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// DefaultCamera returns the showcase camera at rest.
func DefaultCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{0, 0, CameraDistance},
		FovY:     FieldOfView,
		Aspect:   float64(ViewportWidth) / float64(ViewportHeight),
		Near:     NearPlane,
		Far:      FarPlane,
	}
}

func (c Camera) view() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
}

func (c Camera) projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// Ray returns the world-space origin and unit direction through a pointer position given in
// normalized device coordinates (x right, y up, both in [-1, 1]).
func (c Camera) Ray(x, y float64) (mgl64.Vec3, mgl64.Vec3) {
	inv := c.projection().Mul4(c.view()).Inv()
	near := unproject(inv, mgl64.Vec4{x, y, -1, 1})
	far := unproject(inv, mgl64.Vec4{x, y, 1, 1})
	return near, far.Sub(near).Normalize()
}

// Project maps a world point to normalized device coordinates.
func (c Camera) Project(p mgl64.Vec3) (float64, float64) {
	clip := c.projection().Mul4(c.view()).Mul4x1(p.Vec4(1))
	return clip.X() / clip.W(), clip.Y() / clip.W()
}

func unproject(inv mgl64.Mat4, ndc mgl64.Vec4) mgl64.Vec3 {
	v := inv.Mul4x1(ndc)
	return v.Vec3().Mul(1 / v.W())
}

// PointerToNDC converts pixel coordinates inside the viewport to normalized device coordinates.
func PointerToNDC(px, py, width, height float64) (float64, float64) {
	return px/width*2 - 1, -(py/height)*2 + 1
}
