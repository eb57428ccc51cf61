package gpu

import (
	"unsafe"

	"github.com/gekko3d/splatrt/splat"
)

// Buffer binding indices shared with shaders/splat.wgsl.
const (
	BindingUniforms      = 0
	BindingSplats        = 1
	BindingSortedIndices = 2
	BindingPrecomputed   = 3
	BindingPackedColors  = 4
)

// Compute-pass bindings in shaders/precompute.wgsl.
const (
	PrecomputeBindingUniforms = 0
	PrecomputeBindingSplats   = 1
	PrecomputeBindingOutput   = 2
)

// Buffer strides. The Go structs are the layout contract; the WGSL side
// indexes raw words (splats) or declares a matching struct (precomputed).
var (
	SplatStride       = uint64(unsafe.Sizeof(splat.Splat{}))
	PrecomputedStride = uint64(unsafe.Sizeof(splat.PrecomputedSplat{}))
)

// UniformBlockSize is the per-view footprint of the uniform block. The
// WGSL struct occupies UniformStructSize bytes; the block is padded to 256
// so per-view offsets satisfy uniform-buffer alignment.
const (
	UniformBlockSize  = 256
	UniformStructSize = 176
)

// Byte offsets inside one uniform block, matching the WGSL struct layout.
const (
	uniformOffsetProjection    = 0
	uniformOffsetView          = 64
	uniformOffsetScreenSize    = 128
	uniformOffsetSplatCount    = 136
	uniformOffsetIndexedCount  = 140
	uniformOffsetDebugFlags    = 144
	uniformOffsetLodThresholds = 160
)

// PrecomputeWorkgroupSize matches @workgroup_size in precompute.wgsl.
const PrecomputeWorkgroupSize = 256
