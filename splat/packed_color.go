package splat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	packedChannelMask = 0x3FF
	packedAlphaMask   = 0x3
)

// PackColor quantizes a color into the snorm10a2 word: R/G/B as signed
// 10-bit two's-complement in [-1,1] (divisor 511) at bits 0/10/20, alpha as
// unsigned 2-bit in [0,1] (divisor 3) at bit 30.
func PackColor(c mgl32.Vec4) PackedColor {
	r := quantizeSnorm10(c.X())
	g := quantizeSnorm10(c.Y())
	b := quantizeSnorm10(c.Z())
	a := uint32(math.Round(float64(clamp01(c.W()) * 3)))
	return PackedColor(r | g<<10 | b<<20 | a<<30)
}

// Color decodes the packed word. This is the only valid decode: sign-extend
// each 10-bit field, divide by 511, divide the alpha field by 3.
func (p PackedColor) Color() mgl32.Vec4 {
	return mgl32.Vec4{
		snorm10ToFloat(uint32(p) & packedChannelMask),
		snorm10ToFloat(uint32(p) >> 10 & packedChannelMask),
		snorm10ToFloat(uint32(p) >> 20 & packedChannelMask),
		float32(uint32(p)>>30&packedAlphaMask) / 3,
	}
}

func quantizeSnorm10(v float32) uint32 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	q := int32(math.Round(float64(v * 511)))
	return uint32(q) & packedChannelMask
}

func snorm10ToFloat(bits uint32) float32 {
	v := int32(bits)
	if v >= 512 {
		v -= 1024
	}
	return float32(v) / 511
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
