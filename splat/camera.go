package splat

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraParams are the intrinsics the covariance projection needs: focal
// lengths in pixels and the tangents of the half field-of-view, per axis.
type CameraParams struct {
	FocalX      float32
	FocalY      float32
	TanHalfFovX float32
	TanHalfFovY float32
}

// CameraFromProjection derives intrinsics from a perspective projection
// matrix and the output size in pixels. The matrix diagonal encodes
// 1/tanHalfFov; focal length follows as screen/2 / tanHalfFov.
func CameraFromProjection(proj mgl32.Mat4, screenSize [2]uint32) CameraParams {
	p00 := proj.At(0, 0)
	p11 := proj.At(1, 1)
	if p00 > -DivisionEpsilon && p00 < DivisionEpsilon {
		p00 = DivisionEpsilon
	}
	if p11 > -DivisionEpsilon && p11 < DivisionEpsilon {
		p11 = DivisionEpsilon
	}
	tanX := 1 / p00
	tanY := 1 / p11
	return CameraParams{
		FocalX:      float32(screenSize[0]) / (2 * tanX),
		FocalY:      float32(screenSize[1]) / (2 * tanY),
		TanHalfFovX: tanX,
		TanHalfFovY: tanY,
	}
}

// visibilityGuardBand widens the clip test so footprints whose center sits
// just outside the screen still render their on-screen tail.
const visibilityGuardBand = 1.2

// ClipVisible reports whether a clip-space center survives frustum
// culling. Matches the guard-band test used by quad expansion, so a splat
// culled here would not have produced visible geometry.
func ClipVisible(clip mgl32.Vec4) bool {
	if clip.Z() < -clip.W() {
		return false
	}
	bounds := visibilityGuardBand * clip.W()
	return clip.X() >= -bounds && clip.X() <= bounds &&
		clip.Y() >= -bounds && clip.Y() <= bounds
}
