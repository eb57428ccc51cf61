package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/splatrt"
	"github.com/gekko3d/splatrt/shaders"
	"github.com/gekko3d/splatrt/splat"
)

// PrecomputePass projects every splat once per frame on the GPU, filling
// the precomputed buffer the render pass reads when UsePrecomputed is on.
type PrecomputePass struct {
	Pipeline *wgpu.ComputePipeline

	device *wgpu.Device
	log    splatrt.Logger
}

func NewPrecomputePass(device *wgpu.Device, logger splatrt.Logger) (*PrecomputePass, error) {
	if logger == nil {
		logger = splatrt.NewNopLogger()
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "SplatPrecomputeShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PrecomputeWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("create precompute shader: %w", err)
	}

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "SplatPrecomputePipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "cs_precompute",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create precompute pipeline: %w", err)
	}

	return &PrecomputePass{Pipeline: pipeline, device: device, log: logger}, nil
}

// CreateBindGroup binds one view's uniform block, the splat buffer and the
// writable precompute output.
func (p *PrecomputePass) CreateBindGroup(m *BufferManager, viewIndex uint32) (*wgpu.BindGroup, error) {
	if viewIndex >= splat.MaxViewCount {
		return nil, fmt.Errorf("view index %d out of range (max %d)", viewIndex, splat.MaxViewCount-1)
	}
	return p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "SplatPrecomputeBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: PrecomputeBindingUniforms,
				Buffer:  m.UniformsBuf,
				Offset:  uint64(viewIndex) * UniformBlockSize,
				Size:    UniformBlockSize,
			},
			{Binding: PrecomputeBindingSplats, Buffer: m.SplatsBuf, Size: wgpu.WholeSize},
			{Binding: PrecomputeBindingOutput, Buffer: m.PrecomputedBuf, Size: wgpu.WholeSize},
		},
	})
}

// Dispatch encodes the precompute for splatCount splats; must run before
// the render pass that consumes the cache.
func (p *PrecomputePass) Dispatch(encoder *wgpu.CommandEncoder, bindGroup *wgpu.BindGroup, splatCount uint32) error {
	if splatCount == 0 {
		return nil
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	groups := (splatCount + PrecomputeWorkgroupSize - 1) / PrecomputeWorkgroupSize
	pass.DispatchWorkgroups(groups, 1, 1)
	if err := pass.End(); err != nil {
		return fmt.Errorf("end precompute pass: %w", err)
	}
	return nil
}
