package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/splatrt"
	"github.com/gekko3d/splatrt/render"
	"github.com/gekko3d/splatrt/splat"
)

// Headroom added when a per-frame buffer grows, to avoid reallocating on
// every small count change.
const (
	headroomSplats  = 1 << 20
	headroomIndices = 64 << 10
)

// BufferManager owns the GPU buffers of a splat frame: the splat records,
// the optional packed colors and precomputed cache, the caller-provided
// sorted index array, the explicit quad index buffer and the per-view
// uniform blocks.
type BufferManager struct {
	Device *wgpu.Device

	UniformsBuf    *wgpu.Buffer
	SplatsBuf      *wgpu.Buffer
	SortedIndexBuf *wgpu.Buffer
	PrecomputedBuf *wgpu.Buffer
	PackedColorBuf *wgpu.Buffer
	QuadIndexBuf   *wgpu.Buffer

	quadIndexCount uint32

	log splatrt.Logger
}

func NewBufferManager(device *wgpu.Device, logger splatrt.Logger) *BufferManager {
	if logger == nil {
		logger = splatrt.NewNopLogger()
	}
	return &BufferManager{Device: device, log: logger}
}

func (m *BufferManager) ensureBuffer(name string, buf **wgpu.Buffer, size uint64, usage wgpu.BufferUsage, headroom uint64) error {
	needed := size + headroom
	if needed%4 != 0 {
		needed += 4 - needed%4
	}
	if needed == 0 {
		needed = 4
	}

	current := *buf
	if current != nil && current.GetSize() >= needed {
		return nil
	}
	if current != nil {
		current.Release()
	}

	newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  needed,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s (%d bytes): %w", name, needed, err)
	}
	m.log.Debugf("allocated %s: %d bytes", name, needed)
	*buf = newBuf
	return nil
}

// UploadSplats copies the frame's splat records to the GPU.
func (m *BufferManager) UploadSplats(splats []splat.Splat) error {
	size := uint64(len(splats)) * SplatStride
	if err := m.ensureBuffer("SplatBuf", &m.SplatsBuf, size, wgpu.BufferUsageStorage, headroomSplats); err != nil {
		return err
	}
	if len(splats) == 0 {
		return nil
	}
	m.Device.GetQueue().WriteBuffer(m.SplatsBuf, 0,
		unsafe.Slice((*byte)(unsafe.Pointer(&splats[0])), size))
	return nil
}

// UploadSortedIndices uploads the caller-provided draw order. The core
// never computes this ordering; it only consumes it.
func (m *BufferManager) UploadSortedIndices(order []uint32) error {
	size := uint64(len(order)) * 4
	if err := m.ensureBuffer("SortedIndexBuf", &m.SortedIndexBuf, size, wgpu.BufferUsageStorage, headroomIndices); err != nil {
		return err
	}
	if len(order) == 0 {
		return nil
	}
	m.Device.GetQueue().WriteBuffer(m.SortedIndexBuf, 0,
		unsafe.Slice((*byte)(unsafe.Pointer(&order[0])), size))
	return nil
}

// UploadPackedColors uploads the optional quantized color array.
func (m *BufferManager) UploadPackedColors(packed []splat.PackedColor) error {
	size := uint64(len(packed)) * 4
	if err := m.ensureBuffer("PackedColorBuf", &m.PackedColorBuf, size, wgpu.BufferUsageStorage, headroomIndices); err != nil {
		return err
	}
	if len(packed) == 0 {
		return nil
	}
	m.Device.GetQueue().WriteBuffer(m.PackedColorBuf, 0,
		unsafe.Slice((*byte)(unsafe.Pointer(&packed[0])), size))
	return nil
}

// EnsurePrecomputed sizes the precompute output buffer for splatCount
// entries. The compute pass writes it; uploads happen only in the CPU
// fallback path.
func (m *BufferManager) EnsurePrecomputed(splatCount uint32) error {
	size := uint64(splatCount) * PrecomputedStride
	return m.ensureBuffer("PrecomputedBuf", &m.PrecomputedBuf, size, wgpu.BufferUsageStorage, headroomSplats)
}

// UploadPrecomputed pushes a CPU-filled cache (render.Precomputer output)
// instead of running the compute pass.
func (m *BufferManager) UploadPrecomputed(pre []splat.PrecomputedSplat) error {
	size := uint64(len(pre)) * PrecomputedStride
	if err := m.ensureBuffer("PrecomputedBuf", &m.PrecomputedBuf, size, wgpu.BufferUsageStorage, headroomSplats); err != nil {
		return err
	}
	if len(pre) == 0 {
		return nil
	}
	m.Device.GetQueue().WriteBuffer(m.PrecomputedBuf, 0,
		unsafe.Slice((*byte)(unsafe.Pointer(&pre[0])), size))
	return nil
}

// UploadQuadIndices builds and uploads the explicit two-triangle index
// pattern for the indexed splat range.
func (m *BufferManager) UploadQuadIndices(indexedSplatCount uint32) error {
	indices := render.BuildQuadIndices(indexedSplatCount)
	m.quadIndexCount = uint32(len(indices))
	size := uint64(len(indices)) * 4
	if err := m.ensureBuffer("QuadIndexBuf", &m.QuadIndexBuf, size, wgpu.BufferUsageIndex, headroomIndices); err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}
	m.Device.GetQueue().WriteBuffer(m.QuadIndexBuf, 0,
		unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), size))
	return nil
}

// UploadUniforms serializes every view's uniforms into the per-view
// 256-byte blocks the shaders expect.
func (m *BufferManager) UploadUniforms(ua *splat.UniformsArray) error {
	size := uint64(splat.MaxViewCount * UniformBlockSize)
	if err := m.ensureBuffer("UniformsBuf", &m.UniformsBuf, size, wgpu.BufferUsageUniform, 0); err != nil {
		return err
	}
	buf := make([]byte, size)
	for i := 0; i < splat.MaxViewCount; i++ {
		encodeUniforms(&ua.Views[i], buf[i*UniformBlockSize:(i+1)*UniformBlockSize])
	}
	m.Device.GetQueue().WriteBuffer(m.UniformsBuf, 0, buf)
	return nil
}

// encodeUniforms lays one view's uniforms out per the WGSL struct: two
// column-major mat4x4s, vec2<u32> screen size, three u32 scalars, then the
// 16-byte-aligned vec3 of LOD thresholds.
func encodeUniforms(u *splat.Uniforms, out []byte) {
	for i := 0; i < 16; i++ {
		putF32(out, uniformOffsetProjection+4*i, u.ProjectionMatrix[i])
		putF32(out, uniformOffsetView+4*i, u.ViewMatrix[i])
	}
	binary.LittleEndian.PutUint32(out[uniformOffsetScreenSize:], u.ScreenSize[0])
	binary.LittleEndian.PutUint32(out[uniformOffsetScreenSize+4:], u.ScreenSize[1])
	binary.LittleEndian.PutUint32(out[uniformOffsetSplatCount:], u.SplatCount)
	binary.LittleEndian.PutUint32(out[uniformOffsetIndexedCount:], u.IndexedSplatCount)
	binary.LittleEndian.PutUint32(out[uniformOffsetDebugFlags:], u.DebugFlags)
	putF32(out, uniformOffsetLodThresholds, u.LodThresholds.X())
	putF32(out, uniformOffsetLodThresholds+4, u.LodThresholds.Y())
	putF32(out, uniformOffsetLodThresholds+8, u.LodThresholds.Z())
}

func putF32(out []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(out[offset:], math.Float32bits(v))
}
