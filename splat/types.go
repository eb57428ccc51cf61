package splat

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/x448/float16"
)

// MaxViewCount is the number of independent views a frame may render
// (2 for stereo).
const MaxViewCount = 2

const (
	// BoundsRadius is the footprint cutoff in standard deviations. A
	// splat contributes nothing beyond this radius and the expanded quad
	// is sized to exactly cover it.
	BoundsRadius        float32 = 3
	BoundsRadiusSquared float32 = BoundsRadius * BoundsRadius

	// DivisionEpsilon guards depth denominators in projection.
	DivisionEpsilon float32 = 1e-6
)

// Debug overlay bits carried in Uniforms.DebugFlags.
const (
	DebugFlagOverdraw uint32 = 1 << 0
	DebugFlagLodTint  uint32 = 1 << 1
)

// Splat is one Gaussian in the scene buffer. The layout mirrors the GPU
// record exactly: position 3xf32, color 4xf16, covariance 6xf16 split
// across two triples (32 bytes, no padding).
type Splat struct {
	Position [3]float32
	Color    [4]float16.Float16
	CovA     [3]float16.Float16
	CovB     [3]float16.Float16
}

// NewSplat packs full-precision inputs into the storage layout. CovA holds
// the upper-triangle values (xx, xy, xz), CovB the remainder (yy, yz, zz).
func NewSplat(position mgl32.Vec3, color mgl32.Vec4, covA, covB mgl32.Vec3) Splat {
	return Splat{
		Position: [3]float32{position.X(), position.Y(), position.Z()},
		Color:    packHalf4(color),
		CovA:     packHalf3(covA),
		CovB:     packHalf3(covB),
	}
}

func (s Splat) PositionVec() mgl32.Vec3 {
	return mgl32.Vec3{s.Position[0], s.Position[1], s.Position[2]}
}

func (s Splat) ColorVec() mgl32.Vec4 {
	return unpackHalf4(s.Color)
}

func (s Splat) CovAVec() mgl32.Vec3 {
	return unpackHalf3(s.CovA)
}

func (s Splat) CovBVec() mgl32.Vec3 {
	return unpackHalf3(s.CovB)
}

// Covariance3D reassembles the symmetric 3x3 covariance from the two
// packed triples. Positive-semidefiniteness is an upstream contract and is
// not validated here.
func (s Splat) Covariance3D() mgl32.Mat3 {
	return CovarianceMatrix(s.CovAVec(), s.CovBVec())
}

// CovarianceMatrix builds the symmetric matrix
//
//	| a.x a.y a.z |
//	| a.y b.x b.y |
//	| a.z b.y b.z |
func CovarianceMatrix(covA, covB mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Mat3FromRows(
		mgl32.Vec3{covA.X(), covA.Y(), covA.Z()},
		mgl32.Vec3{covA.Y(), covB.X(), covB.Y()},
		mgl32.Vec3{covA.Z(), covB.Y(), covB.Z()},
	)
}

// PrecomputedSplat caches one splat's per-frame projection results for the
// accelerated batch path: clip-space position, 2D covariance (xx, xy, yy),
// the two decomposed footprint axes, view distance for sorting, and the
// frustum-cull result. 64 bytes, 16-byte aligned, matching the GPU-side
// struct in shaders/precompute.wgsl.
type PrecomputedSplat struct {
	ClipPosition mgl32.Vec4
	Cov2D        mgl32.Vec3
	_            float32
	Axis1        mgl32.Vec2
	Axis2        mgl32.Vec2
	Depth        float32
	Visible      uint32
	_            [8]byte
}

// PackedColor is the bandwidth-reduced color word: 10-bit signed R/G/B
// (divisor 511) at bit offsets 0/10/20 and 2-bit unsigned alpha (divisor 3)
// at bit 30. See packed_color.go for the codec.
type PackedColor uint32

// Uniforms is one view's frame-constant state. The frame orchestrator owns
// it; the core only reads.
type Uniforms struct {
	ProjectionMatrix mgl32.Mat4
	ViewMatrix       mgl32.Mat4
	ScreenSize       [2]uint32

	// The first IndexedSplatCount splats are drawn as explicit indexed
	// quads; the remainder reuse the same topology through instancing.
	// This bounds the index buffer while keeping the instance count low.
	SplatCount        uint32
	IndexedSplatCount uint32
	DebugFlags        uint32
	LodThresholds     mgl32.Vec3
}

// UniformsArray holds per-view uniforms for a stereo frame.
type UniformsArray struct {
	Views [MaxViewCount]Uniforms
}

// View returns the uniforms for a view index, clamping out-of-range
// indices to the last view.
func (a *UniformsArray) View(i int) *Uniforms {
	if i < 0 {
		i = 0
	}
	if i >= MaxViewCount {
		i = MaxViewCount - 1
	}
	return &a.Views[i]
}

// FragmentIn is the interpolated payload handed from vertex expansion to
// the compositor for one covered pixel.
type FragmentIn struct {
	Position mgl32.Vec4

	// RelativePosition is the local coordinate inside the footprint,
	// ranging from -BoundsRadius to +BoundsRadius on each axis.
	RelativePosition mgl32.Vec2
	Color            mgl32.Vec4
	LodBand          uint32
	SplatID          uint32
	DebugFlags       uint32
}

func packHalf3(v mgl32.Vec3) [3]float16.Float16 {
	return [3]float16.Float16{
		float16.Fromfloat32(v.X()),
		float16.Fromfloat32(v.Y()),
		float16.Fromfloat32(v.Z()),
	}
}

func packHalf4(v mgl32.Vec4) [4]float16.Float16 {
	return [4]float16.Float16{
		float16.Fromfloat32(v.X()),
		float16.Fromfloat32(v.Y()),
		float16.Fromfloat32(v.Z()),
		float16.Fromfloat32(v.W()),
	}
}

func unpackHalf3(v [3]float16.Float16) mgl32.Vec3 {
	return mgl32.Vec3{v[0].Float32(), v[1].Float32(), v[2].Float32()}
}

func unpackHalf4(v [4]float16.Float16) mgl32.Vec4 {
	return mgl32.Vec4{v[0].Float32(), v[1].Float32(), v[2].Float32(), v[3].Float32()}
}
