package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

// FragmentAlpha evaluates the Gaussian falloff exp(-|local|^2/2) times the
// splat opacity. Outside the bounds radius the result is a hard zero, not
// a small tail: the emitted quad ends there and nothing may leak past it.
func FragmentAlpha(local mgl32.Vec2, opacity float32) float32 {
	m2 := local.Dot(local)
	if m2 > splat.BoundsRadiusSquared {
		return 0
	}
	return float32(math.Exp(float64(-0.5*m2))) * opacity
}

// lodPalette is the fixed tint per LOD band: near, mid, far, very far.
var lodPalette = [4]mgl32.Vec3{
	{0.4, 1.0, 0.6},
	{1.0, 0.85, 0.4},
	{1.0, 0.45, 0.35},
	{0.6, 0.7, 1.0},
}

// LodTint returns the debug palette color for an LOD band.
func LodTint(band uint32) mgl32.Vec3 {
	if band > 3 {
		band = 3
	}
	return lodPalette[band]
}

// applyOverlays rewrites the fragment rgb per the debug-flag bits. Both
// overlays may combine; overdraw wins when it does.
func applyOverlays(rgb mgl32.Vec3, alpha float32, lodBand, debugFlags uint32) mgl32.Vec3 {
	if debugFlags&splat.DebugFlagLodTint != 0 {
		rgb = LodTint(lodBand)
	}
	if debugFlags&splat.DebugFlagOverdraw != 0 {
		intensity := clamp(alpha+0.05, 0.05, 1)
		rgb = mgl32.Vec3{intensity, intensity, intensity}
	}
	return rgb
}

// ShadeComponents resolves a fragment to its display rgb (after debug
// overlays) and Gaussian alpha, shared by both compositing modes.
func ShadeComponents(frag splat.FragmentIn) (mgl32.Vec3, float32) {
	alpha := FragmentAlpha(frag.RelativePosition, frag.Color.W())
	rgb := applyOverlays(frag.Color.Vec3(), alpha, frag.LodBand, frag.DebugFlags)
	return rgb, alpha
}

// Shade is the continuous mode: premultiplied (alpha*rgb, alpha) output.
// Blending onto the framebuffer is the caller's job, and correctness
// assumes back-to-front submission order.
func Shade(frag splat.FragmentIn) mgl32.Vec4 {
	rgb, alpha := ShadeComponents(frag)
	return mgl32.Vec4{rgb.X() * alpha, rgb.Y() * alpha, rgb.Z() * alpha, alpha}
}

// ShadeDithered is the stochastic order-independent mode: the fragment is
// discarded whenever alpha falls below the dither threshold and written
// fully opaque otherwise. No ordering requirement; the noise is meant to
// be resolved by temporal accumulation upstream.
func ShadeDithered(frag splat.FragmentIn, screenPos mgl32.Vec2, dither DitherStrategy) (mgl32.Vec4, bool) {
	rgb, alpha := ShadeComponents(frag)
	if alpha < dither.Threshold(screenPos, frag.SplatID) {
		return mgl32.Vec4{}, false
	}
	return mgl32.Vec4{rgb.X(), rgb.Y(), rgb.Z(), 1}, true
}
