package render

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gekko3d/splatrt/splat"
)

// Mode selects the compositing strategy for a batch.
type Mode int

const (
	// ModeContinuous blends premultiplied alpha; splats must arrive
	// back to front.
	ModeContinuous Mode = iota
	// ModeDithered keeps or discards whole fragments against a dither
	// threshold; no ordering requirement.
	ModeDithered
)

// Rasterizer is the CPU reference renderer. It exists for tests and debug
// inspection (overdraw, LOD tint), not throughput; the WGSL pipeline in
// the gpu package is the production path and mirrors this math.
type Rasterizer struct {
	Mode     Mode
	Dither   DitherStrategy // nil selects BayerDither
	Features splat.Features

	// Precomputed, when set, feeds the cache path instead of projecting
	// per splat. Must be at least as long as the splat buffer.
	Precomputed []splat.PrecomputedSplat
}

// Render composites the given splats into a new image sized from the view
// uniforms. order is the caller-provided draw order (an index per splat,
// back to front for ModeContinuous); nil draws in buffer order.
func (r *Rasterizer) Render(splats []splat.Splat, packed []splat.PackedColor, order []uint32, u *splat.Uniforms) *image.RGBA {
	w := int(u.ScreenSize[0])
	h := int(u.ScreenSize[1])
	acc := make([]mgl32.Vec4, w*h)

	dither := r.Dither
	if dither == nil {
		dither = BayerDither{}
	}

	count := int(u.SplatCount)
	if count > len(splats) {
		count = len(splats)
	}
	for drawIdx := 0; drawIdx < count; drawIdx++ {
		id := uint32(drawIdx)
		if order != nil {
			id = order[drawIdx]
		}
		if int(id) >= len(splats) {
			continue
		}

		var e ExpandedSplat
		var ok bool
		if r.Precomputed != nil {
			e, ok = ExpandPrecomputed(r.Precomputed[id], u)
		} else {
			e, ok = ExpandSplat(splats[id], u)
		}
		if !ok {
			continue
		}

		color := splat.ResolveColor(int(id), splats, packed, r.Features)
		r.splatToBuffer(acc, w, h, e, color, id, u, dither)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, c := range acc {
		img.Pix[4*i+0] = toByte(c.X())
		img.Pix[4*i+1] = toByte(c.Y())
		img.Pix[4*i+2] = toByte(c.Z())
		img.Pix[4*i+3] = toByte(c.W())
	}
	return img
}

func (r *Rasterizer) splatToBuffer(acc []mgl32.Vec4, w, h int, e ExpandedSplat, color mgl32.Vec4, id uint32, u *splat.Uniforms, dither DitherStrategy) {
	// Recover the screen-space center and axis basis from the expanded
	// corners: corner0 is center - v1 - v2, corner3 is center + v1 + v2,
	// corner1 - corner0 spans 2*v1, corner2 - corner0 spans 2*v2 (all in
	// bounds-radius-scaled units).
	c0 := screenPos(e.Corners[0].Position, w, h)
	c1 := screenPos(e.Corners[1].Position, w, h)
	c2 := screenPos(e.Corners[2].Position, w, h)
	c3 := screenPos(e.Corners[3].Position, w, h)

	center := c0.Add(c3).Mul(0.5)
	// Pixel step per unit of local coordinate.
	a1 := c1.Sub(c0).Mul(1 / (2 * splat.BoundsRadius))
	a2 := c2.Sub(c0).Mul(1 / (2 * splat.BoundsRadius))

	det := a1.X()*a2.Y() - a1.Y()*a2.X()
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1 / det

	extent := (a1.Len() + a2.Len()) * splat.BoundsRadius
	minX := clampInt(int(center.X()-extent), 0, w)
	maxX := clampInt(int(center.X()+extent)+1, 0, w)
	minY := clampInt(int(center.Y()-extent), 0, h)
	maxY := clampInt(int(center.Y()+extent)+1, 0, h)

	for py := minY; py < maxY; py++ {
		for px := minX; px < maxX; px++ {
			p := mgl32.Vec2{float32(px) + 0.5, float32(py) + 0.5}
			d := p.Sub(center)
			local := mgl32.Vec2{
				(d.X()*a2.Y() - d.Y()*a2.X()) * invDet,
				(a1.X()*d.Y() - a1.Y()*d.X()) * invDet,
			}
			frag := splat.FragmentIn{
				RelativePosition: local,
				Color:            color,
				LodBand:          e.LodBand,
				SplatID:          id,
				DebugFlags:       u.DebugFlags,
			}

			i := py*w + px
			switch r.Mode {
			case ModeDithered:
				out, keep := ShadeDithered(frag, p, dither)
				if keep {
					acc[i] = out
				}
			default:
				src := Shade(frag)
				dst := acc[i]
				oneMinusA := 1 - src.W()
				acc[i] = mgl32.Vec4{
					src.X() + dst.X()*oneMinusA,
					src.Y() + dst.Y()*oneMinusA,
					src.Z() + dst.Z()*oneMinusA,
					src.W() + dst.W()*oneMinusA,
				}
			}
		}
	}
}

// screenPos converts a clip-space position to pixel coordinates, y down.
func screenPos(clip mgl32.Vec4, w, h int) mgl32.Vec2 {
	invW := float32(1)
	if clip.W() != 0 {
		invW = 1 / clip.W()
	}
	ndcX := clip.X() * invW
	ndcY := clip.Y() * invW
	return mgl32.Vec2{
		(ndcX + 1) * 0.5 * float32(w),
		(1 - ndcY) * 0.5 * float32(h),
	}
}

// SaveSnapshot writes a PNG of the rendered frame, optionally scaled down
// by the given integer factor for quick inspection.
func SaveSnapshot(img *image.RGBA, path string, scale int) error {
	out := image.Image(img)
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/scale, b.Dy()/scale))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		out = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
