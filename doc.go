// Package splatrt is the core of a 3D Gaussian splat renderer.
//
// A splat is an anisotropic 3D Gaussian with a position, a half-precision
// color/opacity and a 3x3 covariance packed into two half-precision triples.
// The core projects each splat's covariance into a screen-space footprint,
// expands it into a screen-aligned quad and composites overlapping
// contributions either with continuous back-to-front blending or with
// stochastic (dithered) order-independent transparency.
//
// Package layout:
//
//   - splat:   data model, packed-color and half-float codecs, camera helpers
//   - render:  projection, eigendecomposition, quad expansion, compositing,
//     the per-frame precompute pass and a CPU reference rasterizer
//   - gpu:     WebGPU pipelines and buffers
//   - shaders: embedded WGSL
//
// Depth sorting, scene loading, windowing and presentation are external:
// the core consumes an ordering through caller-provided index arrays and
// never computes one itself.
package splatrt
