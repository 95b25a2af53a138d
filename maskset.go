package regionfx

import "github.com/vttfx/regionfx/render"

// MaskKind separates the two consumer families that draw with masks.
// Particle emitters and screen-space filters can request different
// below-token behavior, so their mask sets are managed independently.
type MaskKind uint8

const (
	// KindParticles masks particle emitter output.
	KindParticles MaskKind = iota

	// KindFilters masks screen-space filter output.
	KindFilters
)

// String returns the kind name for logging.
func (k MaskKind) String() string {
	switch k {
	case KindParticles:
		return "particles"
	case KindFilters:
		return "filters"
	}
	return "unknown"
}

// MaskSet is the per-kind, per-region-or-scene triple of mask textures,
// valid for the aligned camera state it was built under.
//
// Cutout and TokensOnly are lazily derived from Base and stay nil until
// a consumer requests below-tokens rendering.
type MaskSet struct {
	// Kind is the consumer family this set serves.
	Kind MaskKind

	// Base is the region (or scene allow) mask.
	Base *render.Target

	// Cutout is Base minus all visible token silhouettes, or nil.
	Cutout *render.Target

	// TokensOnly is Base restricted to token silhouettes, or nil.
	TokensOnly *render.Target

	// alignedFor is the aligned camera matrix the set was built under;
	// rebuilds trigger when it drifts.
	alignedFor Matrix

	// generation is the region geometry generation the set was built
	// from. Zero for scene sets.
	generation uint64

	// tokenPrint fingerprints the token state the derived targets were
	// composed from.
	tokenPrint uint64
}

// release returns every live target in the set to the pool and clears
// the set. Safe to call on a partially built set.
func (s *MaskSet) release(pool *render.Pool) {
	if s.Base != nil {
		pool.Release(s.Base)
		s.Base = nil
	}
	s.releaseDerived(pool)
}

// releaseDerived returns only the token-derived targets to the pool,
// keeping Base. Used when token state changes but geometry does not.
func (s *MaskSet) releaseDerived(pool *render.Pool) {
	if s.Cutout != nil {
		pool.Release(s.Cutout)
		s.Cutout = nil
	}
	if s.TokensOnly != nil {
		pool.Release(s.TokensOnly)
		s.TokensOnly = nil
	}
}
