package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DitherStrategy produces the per-fragment discard threshold in [0,1) for
// stochastic transparency. Implementations must be pure: the same
// (screenPos, splatID) pair always yields the same threshold.
type DitherStrategy interface {
	Threshold(screenPos mgl32.Vec2, splatID uint32) float32
}

// bayerMatrix is the 8x8 ordered-dither matrix, normalized to [0,1).
var bayerMatrix = [64]float32{
	0 / 64.0, 32 / 64.0, 8 / 64.0, 40 / 64.0, 2 / 64.0, 34 / 64.0, 10 / 64.0, 42 / 64.0,
	48 / 64.0, 16 / 64.0, 56 / 64.0, 24 / 64.0, 50 / 64.0, 18 / 64.0, 58 / 64.0, 26 / 64.0,
	12 / 64.0, 44 / 64.0, 4 / 64.0, 36 / 64.0, 14 / 64.0, 46 / 64.0, 6 / 64.0, 38 / 64.0,
	60 / 64.0, 28 / 64.0, 52 / 64.0, 20 / 64.0, 62 / 64.0, 30 / 64.0, 54 / 64.0, 22 / 64.0,
	3 / 64.0, 35 / 64.0, 11 / 64.0, 43 / 64.0, 1 / 64.0, 33 / 64.0, 9 / 64.0, 41 / 64.0,
	51 / 64.0, 19 / 64.0, 59 / 64.0, 27 / 64.0, 49 / 64.0, 17 / 64.0, 57 / 64.0, 25 / 64.0,
	15 / 64.0, 47 / 64.0, 7 / 64.0, 39 / 64.0, 13 / 64.0, 45 / 64.0, 5 / 64.0, 37 / 64.0,
	63 / 64.0, 31 / 64.0, 55 / 64.0, 23 / 64.0, 61 / 64.0, 29 / 64.0, 53 / 64.0, 21 / 64.0,
}

// BayerDither indexes the 8x8 matrix by screen position mod 8 and adds a
// small temporal offset derived from the splat id, which decorrelates
// neighboring splats under temporal accumulation.
type BayerDither struct{}

func (BayerDither) Threshold(screenPos mgl32.Vec2, splatID uint32) float32 {
	// &7 instead of %8 keeps negative screen coordinates in range.
	x := int(math.Floor(float64(screenPos.X()))) & 7
	y := int(math.Floor(float64(screenPos.Y()))) & 7
	threshold := bayerMatrix[y*8+x]
	threshold += fract(float32(splatID)*0.013) * 0.1
	// Matrix max 63/64 plus noise max 0.1 can exceed 1; wrap so no cell
	// discards everything.
	return fract(threshold)
}

// HashDither derives the threshold from a direct hash of the screen
// position, with no splat-id term.
type HashDither struct{}

func (HashDither) Threshold(screenPos mgl32.Vec2, _ uint32) float32 {
	s := math.Sin(float64(screenPos.X())*12.9898 + float64(screenPos.Y())*78.233)
	return fract(float32(s * 43758.5453))
}

// fract wraps into [0,1), including for negative inputs.
func fract(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}
