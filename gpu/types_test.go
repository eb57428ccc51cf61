package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/splatrt/splat"
)

func TestBufferStrides(t *testing.T) {
	if SplatStride != 32 {
		t.Fatalf("SplatStride = %d, want 32", SplatStride)
	}
	if PrecomputedStride != 64 {
		t.Fatalf("PrecomputedStride = %d, want 64", PrecomputedStride)
	}
	if UniformStructSize > UniformBlockSize {
		t.Fatalf("uniform struct (%d) exceeds its block (%d)", UniformStructSize, UniformBlockSize)
	}
}

func getF32(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestEncodeUniformsLayout(t *testing.T) {
	u := splat.Uniforms{
		ScreenSize:        [2]uint32{1920, 1080},
		SplatCount:        123456,
		IndexedSplatCount: 1024,
		DebugFlags:        splat.DebugFlagOverdraw | splat.DebugFlagLodTint,
		LodThresholds:     mgl32.Vec3{10, 20, 40},
	}
	// Distinct values per matrix element expose any offset or ordering
	// mistake.
	for i := 0; i < 16; i++ {
		u.ProjectionMatrix[i] = float32(i)
		u.ViewMatrix[i] = float32(100 + i)
	}

	buf := make([]byte, UniformBlockSize)
	encodeUniforms(&u, buf)

	for i := 0; i < 16; i++ {
		if got := getF32(buf, uniformOffsetProjection+4*i); got != float32(i) {
			t.Errorf("projection[%d] = %v, want %v", i, got, float32(i))
		}
		if got := getF32(buf, uniformOffsetView+4*i); got != float32(100+i) {
			t.Errorf("view[%d] = %v, want %v", i, got, float32(100+i))
		}
	}

	if got := binary.LittleEndian.Uint32(buf[uniformOffsetScreenSize:]); got != 1920 {
		t.Errorf("screen width = %d, want 1920", got)
	}
	if got := binary.LittleEndian.Uint32(buf[uniformOffsetScreenSize+4:]); got != 1080 {
		t.Errorf("screen height = %d, want 1080", got)
	}
	if got := binary.LittleEndian.Uint32(buf[uniformOffsetSplatCount:]); got != 123456 {
		t.Errorf("splat count = %d, want 123456", got)
	}
	if got := binary.LittleEndian.Uint32(buf[uniformOffsetIndexedCount:]); got != 1024 {
		t.Errorf("indexed count = %d, want 1024", got)
	}
	if got := binary.LittleEndian.Uint32(buf[uniformOffsetDebugFlags:]); got != 3 {
		t.Errorf("debug flags = %d, want 3", got)
	}
	for i, want := range []float32{10, 20, 40} {
		if got := getF32(buf, uniformOffsetLodThresholds+4*i); got != want {
			t.Errorf("lod threshold %d = %v, want %v", i, got, want)
		}
	}

	// Block padding beyond the struct stays zero.
	for off := UniformStructSize; off < UniformBlockSize; off++ {
		if buf[off] != 0 {
			t.Fatalf("padding byte at %d = %d, want 0", off, buf[off])
		}
	}
}

func TestEncodeUniformsViewsAreIndependent(t *testing.T) {
	var ua splat.UniformsArray
	ua.Views[0].SplatCount = 1
	ua.Views[1].SplatCount = 2

	buf := make([]byte, splat.MaxViewCount*UniformBlockSize)
	for i := 0; i < splat.MaxViewCount; i++ {
		encodeUniforms(&ua.Views[i], buf[i*UniformBlockSize:(i+1)*UniformBlockSize])
	}

	if got := binary.LittleEndian.Uint32(buf[uniformOffsetSplatCount:]); got != 1 {
		t.Errorf("view 0 splat count = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(buf[UniformBlockSize+uniformOffsetSplatCount:]); got != 2 {
		t.Errorf("view 1 splat count = %d, want 2", got)
	}
}

func TestConfigureShader(t *testing.T) {
	src := "const USE_PACKED_COLORS: bool = false;\nconst DITHER_HASH: bool = false;\n"

	got := configureShader(src, PassOptions{UsePackedColors: true})
	if got != "const USE_PACKED_COLORS: bool = true;\nconst DITHER_HASH: bool = false;\n" {
		t.Fatalf("unexpected rewrite:\n%s", got)
	}

	// Disabled switches leave the source untouched.
	if configureShader(src, PassOptions{}) != src {
		t.Fatal("rewrite happened with no options set")
	}
}
