package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

// tangentClamp bounds the view-plane tangents fed into the projection
// Jacobian. Centers far outside the frustum would otherwise produce
// exploding footprints before culling removes them.
const tangentClamp = 1.3

// covarianceDilation is added to both diagonal entries of the projected
// covariance so a footprint never collapses below roughly a pixel.
const covarianceDilation = 0.3

// ComputeCovariance2D projects a splat's 3D covariance to a symmetric 2x2
// screen-space covariance, returned as (xx, xy, yy) in pixel^2 units.
//
// The perspective projection is linearized at the splat's view-space
// position: with J the 2x3 Jacobian of (x,y) -> focal*(x/z, y/z) and W the
// rotational part of the view matrix, the result is J*W * Cov * (J*W)^T
// with the third row/column discarded. Degenerate inputs are clamped, not
// rejected.
func ComputeCovariance2D(viewPos mgl32.Vec3, covA, covB mgl32.Vec3, viewMatrix mgl32.Mat4, cam splat.CameraParams) mgl32.Vec3 {
	z := viewPos.Z()
	if z > -splat.DivisionEpsilon && z < splat.DivisionEpsilon {
		if z < 0 {
			z = -splat.DivisionEpsilon
		} else {
			z = splat.DivisionEpsilon
		}
	}
	invZ := 1 / z
	invZ2 := invZ * invZ

	limX := tangentClamp * cam.TanHalfFovX
	limY := tangentClamp * cam.TanHalfFovY
	tx := clamp(viewPos.X()*invZ, -limX, limX) * z
	ty := clamp(viewPos.Y()*invZ, -limY, limY) * z

	// Third row stays zero; it is discarded after the transform.
	j := mgl32.Mat3FromRows(
		mgl32.Vec3{cam.FocalX * invZ, 0, -cam.FocalX * tx * invZ2},
		mgl32.Vec3{0, cam.FocalY * invZ, -cam.FocalY * ty * invZ2},
		mgl32.Vec3{0, 0, 0},
	)
	w := mgl32.Mat3FromCols(
		viewMatrix.Col(0).Vec3(),
		viewMatrix.Col(1).Vec3(),
		viewMatrix.Col(2).Vec3(),
	)
	t := j.Mul3(w)
	cov := t.Mul3(splat.CovarianceMatrix(covA, covB)).Mul3(t.Transpose())

	return mgl32.Vec3{
		cov.At(0, 0) + covarianceDilation,
		cov.At(0, 1),
		cov.At(1, 1) + covarianceDilation,
	}
}

// ComputeCovariance2DAtDepth is the depth-based camera convention: the
// view-space position is reconstructed from normalized device coordinates
// and a positive view-space depth (distance along the -Z forward axis).
// For matching inputs it agrees with ComputeCovariance2D.
func ComputeCovariance2DAtDepth(ndc mgl32.Vec2, depth float32, covA, covB mgl32.Vec3, viewMatrix mgl32.Mat4, cam splat.CameraParams) mgl32.Vec3 {
	viewPos := mgl32.Vec3{
		ndc.X() * cam.TanHalfFovX * depth,
		ndc.Y() * cam.TanHalfFovY * depth,
		-depth,
	}
	return ComputeCovariance2D(viewPos, covA, covB, viewMatrix, cam)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
