package regionfx

import "github.com/vttfx/regionfx/render"

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Default configuration
//	p := regionfx.NewPipeline(regions, tokens)
//
//	// Shared pool and GPU texture uploads (dependency injection)
//	p := regionfx.NewPipeline(regions, tokens,
//	    regionfx.WithPool(pool),
//	    regionfx.WithTextureFactory(host),
//	)
type Option func(*pipelineOptions)

// pipelineOptions holds optional configuration for Pipeline creation.
type pipelineOptions struct {
	pool         *render.Pool
	freeListCap  int
	maxFadeEdges int
	textures     render.TextureFactory
	device       render.DeviceHandle
}

// defaultOptions returns the default pipeline options.
func defaultOptions() pipelineOptions {
	return pipelineOptions{
		freeListCap:  render.DefaultFreeListCap,
		maxFadeEdges: DefaultMaxFadeEdges,
	}
}

// WithPool shares an externally owned render-target pool with the
// pipeline. The pipeline will not drain a shared pool on Close; the
// owner does.
func WithPool(pool *render.Pool) Option {
	return func(o *pipelineOptions) {
		o.pool = pool
	}
}

// WithFreeListCap sets the per-bucket free list capacity of the
// pipeline-owned pool. Ignored when WithPool is used.
func WithFreeListCap(capacity int) Option {
	return func(o *pipelineOptions) {
		o.freeListCap = capacity
	}
}

// WithMaxFadeEdges caps the boundary edge list handed to shaders for
// polygon fades.
func WithMaxFadeEdges(max int) Option {
	return func(o *pipelineOptions) {
		o.maxFadeEdges = max
	}
}

// WithTextureFactory enables GPU texture uploads: every built mask and
// distance field is mirrored into a host-allocated texture. Without a
// factory, targets stay CPU-only and consumers read pixels directly.
func WithTextureFactory(factory render.TextureFactory) Option {
	return func(o *pipelineOptions) {
		o.textures = factory
	}
}

// WithDevice enables GPU texture uploads through the host's shared GPU
// device. Mask textures are allocated via the device's gpucontext
// capabilities; see render.NewDeviceTextureFactory. Ignored when
// WithTextureFactory is also used.
func WithDevice(handle render.DeviceHandle) Option {
	return func(o *pipelineOptions) {
		o.device = handle
	}
}
