package regionfx

// MaskConsumer is the capability interface implemented by each concrete
// effect renderer that draws with pipeline masks. It replaces per-effect
// option/mask plumbing with one composable contract: an effect declares
// which mask kind it consumes and whether it renders beneath tokens, and
// the pipeline derives cutout textures only while some registered
// consumer actually wants them.
type MaskConsumer interface {
	// MaskKind returns the consumer family the effect draws with.
	MaskKind() MaskKind

	// BelowTokens reports whether the effect renders beneath token
	// sprites and therefore needs the cutout mask variants.
	BelowTokens() bool
}

// OcclusionAware is optionally implemented by consumers whose cutouts
// must exclude tokens hidden behind higher-elevation overhead geometry.
type OcclusionAware interface {
	// OcclusionAware reports whether occluded tokens are excluded
	// from the silhouette.
	OcclusionAware() bool
}
