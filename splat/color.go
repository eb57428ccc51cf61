package splat

import "github.com/go-gl/mathgl/mgl32"

// Features selects the data-compaction paths for a draw batch. Both
// packed-color switches must be on, and a buffer present, for the packed
// decode to activate; otherwise colors come from the direct splat buffer.
// The selection is made once per batch, never per splat.
type Features struct {
	UsePackedColors      bool
	HasPackedColorBuffer bool
}

// PackedActive reports whether the packed decode path applies.
func (f Features) PackedActive(packed []PackedColor) bool {
	return f.UsePackedColors && f.HasPackedColorBuffer && packed != nil
}

// ResolveColor returns the displayable color for one splat, from the
// packed buffer when the feature switches allow it.
func ResolveColor(index int, splats []Splat, packed []PackedColor, f Features) mgl32.Vec4 {
	if f.PackedActive(packed) {
		return packed[index].Color()
	}
	return splats[index].ColorVec()
}
