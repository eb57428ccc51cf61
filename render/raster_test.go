package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

func rasterUniforms() *splat.Uniforms {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	return &splat.Uniforms{
		ProjectionMatrix:  proj,
		ViewMatrix:        view,
		ScreenSize:        [2]uint32{64, 64},
		SplatCount:        1,
		IndexedSplatCount: 1,
		LodThresholds:     mgl32.Vec3{10, 20, 40},
	}
}

func TestRasterizerSingleSplat(t *testing.T) {
	u := rasterUniforms()
	splats := []splat.Splat{isotropicSplat(mgl32.Vec3{0, 0, 0}, 0.01)}

	r := &Rasterizer{}
	img := r.Render(splats, nil, nil, u)

	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("image bounds %v, want 64x64", img.Bounds())
	}

	// The splat projects to the screen center; the pixel there is bright
	// and neutral (white splat).
	cr, cg, cb, ca := img.At(32, 32).RGBA()
	if cr != cg || cg != cb {
		t.Errorf("center pixel not neutral: %d %d %d", cr, cg, cb)
	}
	if ca>>8 < 150 {
		t.Errorf("center alpha %d, want bright coverage", ca>>8)
	}

	// The footprint spans only a few pixels; the image corner stays empty.
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner pixel touched, alpha %d", a)
	}
}

func TestRasterizerExplicitOrderMatchesBufferOrder(t *testing.T) {
	u := rasterUniforms()
	splats := []splat.Splat{isotropicSplat(mgl32.Vec3{0, 0, 0}, 0.01)}

	r := &Rasterizer{}
	implicit := r.Render(splats, nil, nil, u)
	explicit := r.Render(splats, nil, []uint32{0}, u)

	for i := range implicit.Pix {
		if implicit.Pix[i] != explicit.Pix[i] {
			t.Fatalf("pixel byte %d differs between implicit and explicit order", i)
		}
	}
}

func TestRasterizerOutOfRangeOrderSkipped(t *testing.T) {
	u := rasterUniforms()
	splats := []splat.Splat{isotropicSplat(mgl32.Vec3{0, 0, 0}, 0.01)}

	r := &Rasterizer{}
	img := r.Render(splats, nil, []uint32{99}, u)
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatal("out-of-range order index still drew pixels")
		}
	}
}

func TestRasterizerPrecomputedPathMatchesDirect(t *testing.T) {
	u := rasterUniforms()
	u.SplatCount = 3
	u.IndexedSplatCount = 3
	splats := []splat.Splat{
		isotropicSplat(mgl32.Vec3{0, 0, 0}, 0.01),
		isotropicSplat(mgl32.Vec3{0.3, 0.2, 0}, 0.02),
		isotropicSplat(mgl32.Vec3{-0.4, -0.1, 0.5}, 0.015),
	}

	direct := (&Rasterizer{}).Render(splats, nil, nil, u)

	pre := make([]splat.PrecomputedSplat, len(splats))
	(&Precomputer{Workers: 1}).Precompute(splats, u, pre)
	cached := (&Rasterizer{Precomputed: pre}).Render(splats, nil, nil, u)

	for i := range direct.Pix {
		if direct.Pix[i] != cached.Pix[i] {
			t.Fatalf("pixel byte %d differs between direct and precomputed paths", i)
		}
	}
}

func TestRasterizerDitheredWritesOpaque(t *testing.T) {
	u := rasterUniforms()
	half := splat.NewSplat(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec4{1, 1, 1, 0.5},
		mgl32.Vec3{0.04, 0, 0},
		mgl32.Vec3{0.04, 0, 0.04},
	)

	r := &Rasterizer{Mode: ModeDithered}
	img := r.Render([]splat.Splat{half}, nil, nil, u)

	kept := 0
	for i := 0; i < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		if a != 0 && a != 255 {
			t.Fatalf("dithered pixel %d has partial alpha %d", i/4, a)
		}
		if a == 255 {
			kept++
		}
	}
	// Half opacity against the dither thresholds keeps a portion of the
	// footprint, not none and not every covered pixel.
	if kept == 0 {
		t.Fatal("dithered render kept no pixels")
	}
}

func TestRasterizerOverdrawOverlay(t *testing.T) {
	u := rasterUniforms()
	u.DebugFlags = splat.DebugFlagOverdraw
	red := splat.NewSplat(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec4{1, 0, 0, 1},
		mgl32.Vec3{0.01, 0, 0},
		mgl32.Vec3{0.01, 0, 0.01},
	)

	img := (&Rasterizer{}).Render([]splat.Splat{red}, nil, nil, u)

	// The overlay replaces the red base color with a grayscale intensity.
	r, g, b, _ := img.At(32, 32).RGBA()
	if r != g || g != b {
		t.Fatalf("overdraw overlay not grayscale: %d %d %d", r, g, b)
	}
	if r == 0 {
		t.Fatal("overdraw overlay left center empty")
	}
}
