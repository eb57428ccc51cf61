package shaders

import (
	_ "embed"
)

//go:embed splat.wgsl
var SplatWGSL string

//go:embed precompute.wgsl
var PrecomputeWGSL string
