package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

// QuadVertex is one corner of an expanded splat quad.
type QuadVertex struct {
	Position mgl32.Vec4 // clip space

	// LocalCoord is the corner's coordinate in splat space, the (+-1,+-1)
	// corner pattern scaled by the bounds radius. Interpolating it gives
	// fragments their distance from center without reprojection.
	LocalCoord mgl32.Vec2
}

// ExpandedSplat is the geometry emitted for one visible splat in one view.
type ExpandedSplat struct {
	Corners  [4]QuadVertex
	ViewDist float32
	LodBand  uint32
}

// quadCorners maps corner index to the (+-1,+-1) pattern: bit 0 selects x,
// bit 1 selects y.
var quadCorners = [4]mgl32.Vec2{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// QuadIndexPattern is the fixed two-triangle topology shared by every quad.
var QuadIndexPattern = [6]uint32{0, 1, 2, 2, 1, 3}

// BuildQuadIndices lays out the explicit index buffer for the first
// splatCount splats: 4 unique vertices and 6 indices each.
func BuildQuadIndices(splatCount uint32) []uint32 {
	out := make([]uint32, 0, 6*splatCount)
	for i := uint32(0); i < splatCount; i++ {
		base := 4 * i
		for _, idx := range QuadIndexPattern {
			out = append(out, base+idx)
		}
	}
	return out
}

// LodBand buckets a view-space distance against the three ascending
// thresholds: 0 near, 3 far.
func LodBand(viewDist float32, thresholds mgl32.Vec3) uint32 {
	band := uint32(0)
	if viewDist > thresholds.X() {
		band++
	}
	if viewDist > thresholds.Y() {
		band++
	}
	if viewDist > thresholds.Z() {
		band++
	}
	return band
}

// ExpandSplat runs the full direct path for one splat in one view:
// projection, covariance transform, decomposition and quad expansion.
// Returns ok=false for splats culled by the frustum guard band; no
// geometry may be emitted for those.
func ExpandSplat(s splat.Splat, u *splat.Uniforms) (ExpandedSplat, bool) {
	viewPos4 := u.ViewMatrix.Mul4x1(s.PositionVec().Vec4(1))
	clip := u.ProjectionMatrix.Mul4x1(viewPos4)
	if !splat.ClipVisible(clip) {
		return ExpandedSplat{}, false
	}

	viewPos := viewPos4.Vec3()
	cam := splat.CameraFromProjection(u.ProjectionMatrix, u.ScreenSize)
	cov2D := ComputeCovariance2D(viewPos, s.CovAVec(), s.CovBVec(), u.ViewMatrix, cam)
	v1, v2 := DecomposeCovariance(cov2D)

	return expandProjected(clip, viewPos.Len(), v1, v2, u), true
}

// ExpandPrecomputed is the cache-fed path: projection and decomposition
// come from a PrecomputedSplat record instead of being recomputed. Entries
// with Visible == 0 are skipped entirely.
func ExpandPrecomputed(p splat.PrecomputedSplat, u *splat.Uniforms) (ExpandedSplat, bool) {
	if p.Visible == 0 {
		return ExpandedSplat{}, false
	}
	return expandProjected(p.ClipPosition, p.Depth, p.Axis1, p.Axis2, u), true
}

func expandProjected(clip mgl32.Vec4, viewDist float32, v1, v2 mgl32.Vec2, u *splat.Uniforms) ExpandedSplat {
	out := ExpandedSplat{
		ViewDist: viewDist,
		LodBand:  LodBand(viewDist, u.LodThresholds),
	}

	// Axes are one standard deviation in pixels; the local corner pattern
	// carries the bounds-radius scale. The pixel offset converts to an
	// NDC delta (x2: NDC spans two units) and is applied pre-division by
	// multiplying with w.
	sw := float32(u.ScreenSize[0])
	sh := float32(u.ScreenSize[1])
	for i, c := range quadCorners {
		local := c.Mul(splat.BoundsRadius)
		px := v1.Mul(local.X()).Add(v2.Mul(local.Y()))
		out.Corners[i] = QuadVertex{
			Position: mgl32.Vec4{
				clip.X() + px.X()*2/sw*clip.W(),
				clip.Y() + px.Y()*2/sh*clip.W(),
				clip.Z(),
				clip.W(),
			},
			LocalCoord: local,
		}
	}
	return out
}

// ResolveSplatIndex maps a draw-time vertex/instance pair to a splat id
// and corner index. Instance 0 covers the explicitly indexed range
// [0, IndexedSplatCount); every further instance re-draws the same quads
// shifted by IndexedSplatCount splats. ok is false for the tail of the
// last instance beyond SplatCount.
func ResolveSplatIndex(vertexIndex, instanceIndex uint32, u *splat.Uniforms) (splatID, corner uint32, ok bool) {
	splatID = instanceIndex*u.IndexedSplatCount + vertexIndex/4
	return splatID, vertexIndex & 3, splatID < u.SplatCount
}

// InstanceCount returns how many instances the single indexed+instanced
// draw needs to cover every splat.
func InstanceCount(u *splat.Uniforms) uint32 {
	if u.IndexedSplatCount == 0 || u.SplatCount == 0 {
		return 0
	}
	return (u.SplatCount + u.IndexedSplatCount - 1) / u.IndexedSplatCount
}
