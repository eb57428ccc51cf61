package render

import (
	"github.com/go-gl/mathgl/mgl32"
)

// offDiagonalEpsilon decides when a 2x2 covariance counts as already
// diagonal and the coordinate-axis basis is returned directly.
const offDiagonalEpsilon = 1e-6

// DecomposeCovariance extracts the two orthogonal footprint axes from a 2D
// covariance (xx, xy, yy) by closed-form eigendecomposition. Each returned
// vector points along an eigenvector and has length sqrt(eigenvalue), one
// standard deviation; callers scale by the bounds radius for the final
// half-extents. Eigenvalues are clamped at zero against float round-off.
//
// For an isotropic footprint any orthogonal pair is valid; the coordinate
// axes are returned so results stay reproducible.
func DecomposeCovariance(cov2D mgl32.Vec3) (v1, v2 mgl32.Vec2) {
	a, b, d := cov2D.X(), cov2D.Y(), cov2D.Z()

	mean := 0.5 * (a + d)
	det := a*d - b*b
	disc := mean*mean - det
	if disc < 0 {
		disc = 0
	}
	dist := sqrt32(disc)

	lambda1 := mean + dist
	lambda2 := mean - dist
	if lambda1 < 0 {
		lambda1 = 0
	}
	if lambda2 < 0 {
		lambda2 = 0
	}
	s1 := sqrt32(lambda1)
	s2 := sqrt32(lambda2)

	if b > -offDiagonalEpsilon && b < offDiagonalEpsilon {
		// Already diagonal; major axis goes with the larger entry.
		if a >= d {
			return mgl32.Vec2{s1, 0}, mgl32.Vec2{0, s2}
		}
		return mgl32.Vec2{0, s1}, mgl32.Vec2{s2, 0}
	}

	// (b, lambda1-a) solves (M - lambda1*I)v = 0; with b != 0 the
	// discriminant is strictly positive so the vector cannot vanish.
	e1 := mgl32.Vec2{b, lambda1 - a}.Normalize()
	e2 := mgl32.Vec2{e1.Y(), -e1.X()}
	return e1.Mul(s1), e2.Mul(s2)
}
