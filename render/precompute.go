package render

import (
	"runtime"
	"sync"

	"github.com/gekko3d/splatrt/splat"
)

// PrecomputeSplat runs projection, covariance transform and decomposition
// for one splat and caches the results. Culled splats keep their clip
// position and depth but stay Visible=0 and skip the covariance work.
//
// For a visible splat the cached values feed ExpandPrecomputed to the same
// geometry the direct path produces.
func PrecomputeSplat(s splat.Splat, u *splat.Uniforms) splat.PrecomputedSplat {
	viewPos4 := u.ViewMatrix.Mul4x1(s.PositionVec().Vec4(1))
	clip := u.ProjectionMatrix.Mul4x1(viewPos4)

	out := splat.PrecomputedSplat{
		ClipPosition: clip,
		Depth:        viewPos4.Vec3().Len(),
	}
	if !splat.ClipVisible(clip) {
		return out
	}

	cam := splat.CameraFromProjection(u.ProjectionMatrix, u.ScreenSize)
	out.Cov2D = ComputeCovariance2D(viewPos4.Vec3(), s.CovAVec(), s.CovBVec(), u.ViewMatrix, cam)
	out.Axis1, out.Axis2 = DecomposeCovariance(out.Cov2D)
	out.Visible = 1
	return out
}

// Precomputer fills a frame's cache ahead of the main draw. Each splat is
// independent, so the work fans out over chunks; the cache is written once
// here and read-only afterwards.
type Precomputer struct {
	// Workers caps the goroutine fan-out; 0 means GOMAXPROCS.
	Workers int
}

// Precompute fills out[i] for splats[i]. out must be at least as long as
// splats.
func (p *Precomputer) Precompute(splats []splat.Splat, u *splat.Uniforms, out []splat.PrecomputedSplat) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(splats)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := range splats {
			out[i] = PrecomputeSplat(splats[i], u)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				out[i] = PrecomputeSplat(splats[i], u)
			}
		}(start, end)
	}
	wg.Wait()
}
