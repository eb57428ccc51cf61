package gpu

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/splatrt"
	"github.com/gekko3d/splatrt/render"
	"github.com/gekko3d/splatrt/shaders"
	"github.com/gekko3d/splatrt/splat"
)

// PassOptions selects the compositing and data-compaction strategies for a
// draw batch. Selection happens once here, at pipeline build, not per
// splat or per fragment.
type PassOptions struct {
	Format wgpu.TextureFormat

	// Mode picks continuous blending or dithered transparency.
	Mode render.Mode
	// HashDither switches the dithered pipeline from the Bayer matrix to
	// the screen-position hash.
	HashDither bool

	// Packed-color decode activates only with both switches on.
	UsePackedColors      bool
	HasPackedColorBuffer bool

	// UsePrecomputed pulls projection results from the precompute cache.
	UsePrecomputed bool
}

// SplatRenderPass draws a sorted splat batch with a single pipeline:
// one indexed draw whose instances tile the splat range in
// IndexedSplatCount-sized strides.
type SplatRenderPass struct {
	Pipeline *wgpu.RenderPipeline
	Layout   *wgpu.BindGroupLayout

	opts   PassOptions
	device *wgpu.Device
	log    splatrt.Logger
}

func NewSplatRenderPass(device *wgpu.Device, opts PassOptions, logger splatrt.Logger) (*SplatRenderPass, error) {
	if logger == nil {
		logger = splatrt.NewNopLogger()
	}

	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "SplatShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: configureShader(shaders.SplatWGSL, opts)},
	})
	if err != nil {
		return nil, fmt.Errorf("create splat shader: %w", err)
	}

	storageEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeReadOnlyStorage,
			},
		}
	}
	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "SplatBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    BindingUniforms,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: UniformBlockSize,
				},
			},
			storageEntry(BindingSplats),
			storageEntry(BindingSortedIndices),
			storageEntry(BindingPrecomputed),
			storageEntry(BindingPackedColors),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create splat bind group layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, fmt.Errorf("create splat pipeline layout: %w", err)
	}

	fragEntry := "fs_splat_continuous"
	// Continuous mode blends premultiplied alpha and relies on the caller
	// submitting back to front. Dithered mode writes opaque fragments and
	// needs no blend state at all.
	var blend *wgpu.BlendState
	if opts.Mode == render.ModeDithered {
		fragEntry = "fs_splat_dithered"
	} else {
		blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "SplatPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_splat",
			// No vertex buffers: geometry is pulled from the splat
			// storage buffer by vertex/instance index.
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: fragEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    opts.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend:     blend,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create splat pipeline: %w", err)
	}

	logger.Debugf("splat pipeline built: mode=%d packed=%v precomputed=%v",
		opts.Mode, opts.UsePackedColors && opts.HasPackedColorBuffer, opts.UsePrecomputed)

	return &SplatRenderPass{
		Pipeline: pipeline,
		Layout:   bgl,
		opts:     opts,
		device:   device,
		log:      logger,
	}, nil
}

// CreateBindGroup binds one view's slice of the uniform buffer plus the
// frame's storage buffers. Buffers the selected strategies never read
// still need a (possibly minimal) allocation to satisfy the layout.
func (p *SplatRenderPass) CreateBindGroup(m *BufferManager, viewIndex uint32) (*wgpu.BindGroup, error) {
	if viewIndex >= splat.MaxViewCount {
		return nil, fmt.Errorf("view index %d out of range (max %d)", viewIndex, splat.MaxViewCount-1)
	}
	return p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "SplatBG",
		Layout: p.Layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: BindingUniforms,
				Buffer:  m.UniformsBuf,
				Offset:  uint64(viewIndex) * UniformBlockSize,
				Size:    UniformBlockSize,
			},
			{Binding: BindingSplats, Buffer: m.SplatsBuf, Size: wgpu.WholeSize},
			{Binding: BindingSortedIndices, Buffer: m.SortedIndexBuf, Size: wgpu.WholeSize},
			{Binding: BindingPrecomputed, Buffer: m.PrecomputedBuf, Size: wgpu.WholeSize},
			{Binding: BindingPackedColors, Buffer: m.PackedColorBuf, Size: wgpu.WholeSize},
		},
	})
}

// Draw issues the batch for one view: a single indexed draw whose index
// buffer covers the explicit range and whose instance count tiles the
// rest of the splats over the same quads.
func (p *SplatRenderPass) Draw(pass *wgpu.RenderPassEncoder, m *BufferManager, bindGroup *wgpu.BindGroup, u *splat.Uniforms) {
	instances := render.InstanceCount(u)
	if instances == 0 || m.quadIndexCount == 0 {
		return
	}

	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.SetIndexBuffer(m.QuadIndexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.quadIndexCount, instances, 0, 0, 0)
}

// configureShader rewrites the feature-switch constants at the top of the
// WGSL source. The switches are compile-time: no per-fragment branching on
// configuration.
func configureShader(src string, opts PassOptions) string {
	set := func(name string, value bool) {
		if value {
			src = strings.Replace(src,
				fmt.Sprintf("const %s: bool = false;", name),
				fmt.Sprintf("const %s: bool = true;", name), 1)
		}
	}
	set("USE_PACKED_COLORS", opts.UsePackedColors)
	set("HAS_PACKED_COLOR_BUFFER", opts.HasPackedColorBuffer)
	set("USE_PRECOMPUTED", opts.UsePrecomputed)
	set("DITHER_HASH", opts.HashDither)
	return src
}
