package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

func TestFragmentAlpha(t *testing.T) {
	tests := []struct {
		name    string
		local   mgl32.Vec2
		opacity float32
		want    float32
	}{
		{"center", mgl32.Vec2{0, 0}, 0.8, 0.8},
		{"center opaque", mgl32.Vec2{0, 0}, 1, 1},
		{"one sigma", mgl32.Vec2{1, 0}, 1, float32(math.Exp(-0.5))},
		{"bounds radius", mgl32.Vec2{3, 0}, 1, float32(math.Exp(-4.5))},
		{"outside bounds", mgl32.Vec2{3.01, 0}, 1, 0},
		{"outside diagonal", mgl32.Vec2{2.2, 2.2}, 1, 0},
		{"zero opacity", mgl32.Vec2{0, 0}, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FragmentAlpha(tc.local, tc.opacity)
			if diff := got - tc.want; diff > 1e-6 || diff < -1e-6 {
				t.Errorf("FragmentAlpha(%v, %v) = %v, want %v", tc.local, tc.opacity, got, tc.want)
			}
		})
	}
}

func TestShadeContinuous(t *testing.T) {
	frag := splat.FragmentIn{
		RelativePosition: mgl32.Vec2{0, 0},
		Color:            mgl32.Vec4{0.2, 0.4, 0.6, 1},
	}
	// At the center of an opaque splat the premultiplied output equals the
	// base color with alpha 1.
	got := Shade(frag)
	want := mgl32.Vec4{0.2, 0.4, 0.6, 1}
	if got.Sub(want).Len() > 1e-6 {
		t.Fatalf("Shade = %v, want %v", got, want)
	}

	// Half opacity premultiplies rgb as well.
	frag.Color[3] = 0.5
	got = Shade(frag)
	want = mgl32.Vec4{0.1, 0.2, 0.3, 0.5}
	if got.Sub(want).Len() > 1e-6 {
		t.Fatalf("Shade at half opacity = %v, want %v", got, want)
	}
}

func TestOverdrawOverlay(t *testing.T) {
	frag := splat.FragmentIn{
		RelativePosition: mgl32.Vec2{0, 0},
		Color:            mgl32.Vec4{0.2, 0.4, 0.6, 0.5},
		DebugFlags:       splat.DebugFlagOverdraw,
	}
	rgb, alpha := ShadeComponents(frag)
	if alpha != 0.5 {
		t.Fatalf("alpha = %v, want 0.5", alpha)
	}
	want := mgl32.Vec3{0.55, 0.55, 0.55}
	if rgb.Sub(want).Len() > 1e-6 {
		t.Fatalf("overdraw rgb = %v, want %v", rgb, want)
	}

	// Even a fully transparent fragment keeps the 0.05 floor so coverage
	// stays visible.
	frag.Color[3] = 0
	rgb, _ = ShadeComponents(frag)
	if rgb.X() != 0.05 {
		t.Fatalf("overdraw floor rgb = %v, want 0.05", rgb.X())
	}
}

func TestLodTintOverlay(t *testing.T) {
	for band := uint32(0); band < 4; band++ {
		frag := splat.FragmentIn{
			RelativePosition: mgl32.Vec2{0, 0},
			Color:            mgl32.Vec4{0.2, 0.4, 0.6, 1},
			LodBand:          band,
			DebugFlags:       splat.DebugFlagLodTint,
		}
		rgb, _ := ShadeComponents(frag)
		if rgb != LodTint(band) {
			t.Errorf("band %d rgb = %v, want %v", band, rgb, LodTint(band))
		}
	}

	// Bands beyond the palette clamp to the last entry.
	if LodTint(7) != LodTint(3) {
		t.Error("out-of-range band did not clamp")
	}
}

func TestOverdrawWinsOverLodTint(t *testing.T) {
	frag := splat.FragmentIn{
		RelativePosition: mgl32.Vec2{0, 0},
		Color:            mgl32.Vec4{0.2, 0.4, 0.6, 0.5},
		LodBand:          2,
		DebugFlags:       splat.DebugFlagOverdraw | splat.DebugFlagLodTint,
	}
	rgb, _ := ShadeComponents(frag)
	want := mgl32.Vec3{0.55, 0.55, 0.55}
	if rgb.Sub(want).Len() > 1e-6 {
		t.Fatalf("combined overlays rgb = %v, want overdraw %v", rgb, want)
	}
}

func TestShadeDithered(t *testing.T) {
	frag := splat.FragmentIn{
		RelativePosition: mgl32.Vec2{0, 0},
		Color:            mgl32.Vec4{0.2, 0.4, 0.6, 1},
	}
	pos := mgl32.Vec2{100.5, 200.5}

	// Alpha 1 beats every threshold (thresholds stay in [0,1)) and the
	// survivor is written fully opaque, unpremultiplied.
	out, keep := ShadeDithered(frag, pos, BayerDither{})
	if !keep {
		t.Fatal("opaque center fragment discarded")
	}
	want := mgl32.Vec4{0.2, 0.4, 0.6, 1}
	if out.Sub(want).Len() > 1e-6 {
		t.Fatalf("dithered output = %v, want %v", out, want)
	}

	// Zero alpha never survives.
	frag.Color[3] = 0
	if _, keep := ShadeDithered(frag, pos, BayerDither{}); keep {
		t.Fatal("zero-alpha fragment kept")
	}
}
