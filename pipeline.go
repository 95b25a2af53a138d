package regionfx

import (
	"fmt"

	"github.com/vttfx/regionfx/render"
)

// RegionSource is the pull-based host interface for region geometry.
// The pipeline queries it at rebuild time; the host never pushes.
type RegionSource interface {
	// Regions returns snapshots of all live regions.
	Regions() []*Region

	// SceneRect returns the visible scene rectangle in world units.
	SceneRect() Rect
}

// TokenSource is the pull-based host interface for token state.
type TokenSource interface {
	// Tokens returns snapshots of all tokens on the canvas.
	Tokens() []Token
}

// setKey identifies one mask set: a region (or the scene, with empty
// regionID) and a consumer kind.
type setKey struct {
	regionID string
	kind     MaskKind
}

// Pipeline owns the full mask and distance-field machinery for one
// canvas: the render-target pool, the SDF cache, the refresh scheduler
// and every live mask set. It is explicitly constructed and explicitly
// owned; nothing in this package is a singleton.
//
// All methods must be called from the single render goroutine. Drive it
// with one Tick per displayed frame; within a frame the pipeline
// computes camera alignment before any mask rebuild, and token cutouts
// recompose only after Tick observes the frame's final token state.
type Pipeline struct {
	regions RegionSource
	tokens  TokenSource

	pool     *render.Pool
	ownsPool bool
	sdf      *SDFCache
	sched    *Scheduler
	textures render.TextureFactory

	maxFadeEdges int

	camera    Camera
	cameraSet bool
	viewport  Viewport
	viewer    Viewer

	aligned      Matrix
	alignedValid bool

	sets      map[setKey]*MaskSet
	gates     map[string]*GateState
	consumers map[MaskConsumer]struct{}

	closed bool
}

// NewPipeline creates a pipeline over the host's region and token
// sources. Masks are not built until a camera and viewport are set and
// a consumer asks for them.
func NewPipeline(regions RegionSource, tokens TokenSource, opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	pool := o.pool
	ownsPool := false
	if pool == nil {
		pool = render.NewPoolWithCap(o.freeListCap)
		ownsPool = true
	}

	if o.textures == nil && o.device != nil {
		factory, err := render.NewDeviceTextureFactory(o.device)
		if err != nil {
			Logger().Warn("device texture factory unavailable, staying CPU-only",
				"error", err)
		} else {
			o.textures = factory
		}
	}

	return &Pipeline{
		regions:      regions,
		tokens:       tokens,
		pool:         pool,
		ownsPool:     ownsPool,
		sdf:          NewSDFCache(pool),
		sched:        NewScheduler(),
		textures:     o.textures,
		maxFadeEdges: o.maxFadeEdges,
		sets:         make(map[setKey]*MaskSet),
		gates:        make(map[string]*GateState),
		consumers:    make(map[MaskConsumer]struct{}),
	}
}

// SetCamera updates the continuous camera and schedules a coalesced
// rebuild if the aligned transform actually moved.
func (p *Pipeline) SetCamera(c Camera) {
	p.camera = c
	p.cameraSet = true
	if !p.viewport.IsValid() {
		return
	}
	aligned := c.Aligned(p.viewport)
	if p.alignedValid && !AlignedChanged(p.aligned, aligned) {
		return
	}
	p.aligned = aligned
	p.alignedValid = true
	p.RequestRefreshAll()
}

// SetViewport updates the output surface description. Any size or
// resolution change invalidates every mask set.
func (p *Pipeline) SetViewport(vp Viewport) {
	if p.viewport == vp {
		return
	}
	p.viewport = vp
	if p.cameraSet && vp.IsValid() {
		p.aligned = p.camera.Aligned(vp)
		p.alignedValid = true
	} else {
		p.alignedValid = false
	}
	p.RequestRefreshAll()
}

// SetViewer updates the viewing user and invalidates gate results.
func (p *Pipeline) SetViewer(v Viewer) {
	if p.viewer == v {
		return
	}
	p.viewer = v
	for _, g := range p.gates {
		g.Invalidate()
	}
}

// Aligned returns the current frame's pixel-snapped world-to-device
// matrix. The second result is false until both camera and viewport are
// known.
func (p *Pipeline) Aligned() (Matrix, bool) {
	return p.aligned, p.alignedValid
}

// RegisterConsumer adds an effect renderer to the pipeline. Mask sets
// are created lazily on the effect's first mask request.
func (p *Pipeline) RegisterConsumer(c MaskConsumer) {
	p.consumers[c] = struct{}{}
}

// UnregisterConsumer removes an effect renderer. When the last consumer
// of a kind goes away, that kind's mask sets are released; when the
// last below-tokens consumer goes away, only the derived cutout
// textures are.
func (p *Pipeline) UnregisterConsumer(c MaskConsumer) {
	delete(p.consumers, c)

	kind := c.MaskKind()
	if !p.kindInUse(kind) {
		for key, set := range p.sets {
			if key.kind == kind {
				set.release(p.pool)
				delete(p.sets, key)
			}
		}
		return
	}
	if !p.needsBelowTokens(kind) {
		for key, set := range p.sets {
			if key.kind == kind {
				set.releaseDerived(p.pool)
			}
		}
	}
}

func (p *Pipeline) kindInUse(kind MaskKind) bool {
	for c := range p.consumers {
		if c.MaskKind() == kind {
			return true
		}
	}
	return false
}

// needsBelowTokens reports whether any registered consumer of the kind
// renders beneath tokens. The cutout compositor is skipped entirely
// otherwise, to avoid paying its cost in the common case.
func (p *Pipeline) needsBelowTokens(kind MaskKind) bool {
	for c := range p.consumers {
		if c.MaskKind() == kind && c.BelowTokens() {
			return true
		}
	}
	return false
}

// occlusionAware reports whether any below-tokens consumer of the kind
// requested occlusion-aware cutouts.
func (p *Pipeline) occlusionAware(kind MaskKind) bool {
	for c := range p.consumers {
		if c.MaskKind() != kind || !c.BelowTokens() {
			continue
		}
		if oa, ok := c.(OcclusionAware); ok && oa.OcclusionAware() {
			return true
		}
	}
	return false
}

// ready reports whether masks can be built at all. Rebuild requests
// before camera and canvas state exist are deliberate no-ops, not
// errors.
func (p *Pipeline) ready() bool {
	return !p.closed && p.alignedValid && p.viewport.IsValid()
}

// Masks returns the mask set for a region and kind, valid for the
// current frame's aligned camera state, building or refreshing it
// synchronously if needed. Returns false when the pipeline is not ready
// or the region no longer exists.
func (p *Pipeline) Masks(regionID string, kind MaskKind) (*MaskSet, bool) {
	if !p.ready() {
		return nil, false
	}
	region := p.regionByID(regionID)
	if region == nil {
		p.dropRegion(regionID)
		return nil, false
	}

	key := setKey{regionID: regionID, kind: kind}
	set, ok := p.sets[key]
	if !ok {
		set = &MaskSet{Kind: kind}
		p.sets[key] = set
	}
	p.ensureRegionSet(set, region)
	return set, true
}

// SceneMasks returns the scene-wide allow mask set for a kind: the
// visible scene rectangle minus all suppression regions.
func (p *Pipeline) SceneMasks(kind MaskKind) (*MaskSet, bool) {
	if !p.ready() {
		return nil, false
	}
	key := setKey{kind: kind}
	set, ok := p.sets[key]
	if !ok {
		set = &MaskSet{Kind: kind}
		p.sets[key] = set
	}
	p.ensureSceneSet(set)
	return set, true
}

// FadeFor builds the fade descriptor for a region under the given fade
// configuration, consulting (and filling) the SDF cache for polygon
// percent fades.
func (p *Pipeline) FadeFor(regionID string, cfg FadeConfig) (FadeDescriptor, error) {
	region := p.regionByID(regionID)
	if region == nil {
		return NoFade, fmt.Errorf("regionfx: unknown region %q", regionID)
	}

	var sdf *SDFEntry
	if cfg.Mode == FadePercent {
		if _, analytic := soleShape(region); !analytic {
			sdf = p.sdfEntry(region)
		}
	}
	return NewFadeDescriptor(region, cfg, sdf, p.maxFadeEdges)
}

// sdfEntry returns the region's cached distance field, building it on a
// miss. Returns nil when the region has no drawable geometry.
func (p *Pipeline) sdfEntry(region *Region) *SDFEntry {
	hash := region.GeometryHash()
	if entry, ok := p.sdf.Lookup(region.ID, region.Generation, hash); ok {
		return entry
	}
	entry := BuildSDF(region, p.viewport, p.pool)
	if entry == nil {
		return nil
	}
	p.uploadTexture("sdf:"+region.ID, entry.Texture)
	p.sdf.Store(region.ID, region.Generation, entry)
	Logger().Debug("sdf built",
		"region", region.ID,
		"texels", entry.width*entry.height,
		"inradius", entry.Inradius)
	return entry
}

// Passes evaluates the region's visibility gate for the current viewer.
// Unknown regions never pass.
func (p *Pipeline) Passes(regionID string) bool {
	region := p.regionByID(regionID)
	if region == nil {
		return false
	}
	return p.gate(regionID).Evaluate(region, p.viewer, p.tokens.Tokens())
}

// LatchRegion feeds a host enter/exit region event into the region's
// gate latch.
func (p *Pipeline) LatchRegion(regionID string, latched bool) {
	p.gate(regionID).SetLatched(latched)
}

// InvalidateGates drops all cached gate results. Call when token
// movement or selection may have changed gate outcomes.
func (p *Pipeline) InvalidateGates() {
	for _, g := range p.gates {
		g.Invalidate()
	}
}

func (p *Pipeline) gate(regionID string) *GateState {
	g, ok := p.gates[regionID]
	if !ok {
		g = &GateState{}
		p.gates[regionID] = g
	}
	return g
}

// RequestRefresh schedules a coalesced rebuild of one logical target.
func (p *Pipeline) RequestRefresh(key RefreshKey) {
	switch key {
	case RefreshRegions:
		p.sched.Request(key, p.rebuildRegions)
	case RefreshScene:
		p.sched.Request(key, p.rebuildScene)
	default:
		p.sched.Request(key, func() { p.rebuildByKey(key) })
	}
}

// RequestRefreshRegion schedules a coalesced rebuild of one region's
// mask sets.
func (p *Pipeline) RequestRefreshRegion(regionID string) {
	p.RequestRefresh(RegionRefreshKey(regionID))
}

// RequestRefreshAll schedules coalesced rebuilds of every mask set.
func (p *Pipeline) RequestRefreshAll() {
	p.RequestRefresh(RefreshRegions)
	p.RequestRefresh(RefreshScene)
}

// RefreshSync cancels any pending coalesced rebuild for the key and
// rebuilds immediately, for call sites that need the mask before they
// return in the same frame.
func (p *Pipeline) RefreshSync(key RefreshKey) {
	switch key {
	case RefreshRegions:
		p.sched.Sync(key, p.rebuildRegions)
	case RefreshScene:
		p.sched.Sync(key, p.rebuildScene)
	default:
		p.sched.Sync(key, func() { p.rebuildByKey(key) })
	}
}

// Tick drives one displayed frame: camera alignment is refreshed first,
// then all coalesced rebuilds drain. Call after the frame's token
// positions are final so cutout recomposition observes them.
func (p *Pipeline) Tick() {
	if p.closed {
		return
	}
	if p.cameraSet && p.viewport.IsValid() {
		aligned := p.camera.Aligned(p.viewport)
		if !p.alignedValid || AlignedChanged(p.aligned, aligned) {
			p.aligned = aligned
			p.alignedValid = true
		}
	}
	p.sched.Tick()
}

// Close tears the pipeline down: every mask set and SDF entry is
// released and, if the pipeline owns its pool, the pool drains. Close
// is best-effort by construction; individual destroy failures are
// logged and skipped.
func (p *Pipeline) Close() {
	if p.closed {
		return
	}
	p.closed = true
	for key, set := range p.sets {
		set.release(p.pool)
		delete(p.sets, key)
	}
	p.sdf.Close()
	if p.ownsPool {
		p.pool.Drain()
	}
}

// regionByID pulls a fresh snapshot of one region. Returns nil when the
// region no longer exists; callers treat that as staleness, not error.
func (p *Pipeline) regionByID(id string) *Region {
	for _, r := range p.regions.Regions() {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// dropRegion releases everything cached for a deleted region.
func (p *Pipeline) dropRegion(regionID string) {
	for kind := KindParticles; kind <= KindFilters; kind++ {
		key := setKey{regionID: regionID, kind: kind}
		if set, ok := p.sets[key]; ok {
			set.release(p.pool)
			delete(p.sets, key)
		}
	}
	p.sdf.Invalidate(regionID)
	delete(p.gates, regionID)
}

// rebuildRegions refreshes every live region mask set and drops sets
// whose region was deleted mid-flight.
func (p *Pipeline) rebuildRegions() {
	if !p.ready() {
		return
	}
	for key, set := range p.sets {
		if key.regionID == "" {
			continue
		}
		region := p.regionByID(key.regionID)
		if region == nil {
			set.release(p.pool)
			delete(p.sets, key)
			p.sdf.Invalidate(key.regionID)
			delete(p.gates, key.regionID)
			continue
		}
		p.ensureRegionSet(set, region)
	}
}

// rebuildScene refreshes the scene allow-mask sets.
func (p *Pipeline) rebuildScene() {
	if !p.ready() {
		return
	}
	for key, set := range p.sets {
		if key.regionID == "" {
			p.ensureSceneSet(set)
		}
	}
}

// rebuildByKey handles per-region refresh keys.
func (p *Pipeline) rebuildByKey(key RefreshKey) {
	if !p.ready() {
		return
	}
	const prefix = "region:"
	s := string(key)
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return
	}
	regionID := s[len(prefix):]
	region := p.regionByID(regionID)
	if region == nil {
		p.dropRegion(regionID)
		return
	}
	for kind := KindParticles; kind <= KindFilters; kind++ {
		if set, ok := p.sets[setKey{regionID: regionID, kind: kind}]; ok {
			p.ensureRegionSet(set, region)
		}
	}
}

// ensureRegionSet brings a region mask set up to date with the current
// aligned camera, region generation and token state. Rebuilding with
// unchanged inputs is skipped, so repeated calls are idempotent and
// cheap.
func (p *Pipeline) ensureRegionSet(set *MaskSet, region *Region) {
	baseStale := set.Base == nil ||
		AlignedChanged(set.alignedFor, p.aligned) ||
		set.generation != region.Generation ||
		set.Base.Width() != p.maskWidth() ||
		set.Base.Height() != p.maskHeight()

	if baseStale {
		mask := BuildRegionMask(region, p.aligned, p.viewport)
		p.storeBase(set, mask, "mask:"+region.ID)
		set.alignedFor = p.aligned
		set.generation = region.Generation
	}
	p.ensureDerived(set, baseStale)
}

// ensureSceneSet brings a scene allow-mask set up to date.
func (p *Pipeline) ensureSceneSet(set *MaskSet) {
	baseStale := set.Base == nil ||
		AlignedChanged(set.alignedFor, p.aligned) ||
		set.Base.Width() != p.maskWidth() ||
		set.Base.Height() != p.maskHeight()

	if baseStale {
		var suppress []*Region
		for _, r := range p.regions.Regions() {
			if r.SuppressScene {
				suppress = append(suppress, r)
			}
		}
		mask := BuildSceneMask(p.regions.SceneRect(), suppress, p.aligned, p.viewport)
		p.storeBase(set, mask, "mask:scene")
		set.alignedFor = p.aligned
	}
	p.ensureDerived(set, baseStale)
}

// ensureDerived lazily recomposes the cutout and tokens-only variants
// when a consumer wants below-tokens rendering, and releases them when
// none does. Recomposition happens when the base was rebuilt or the
// token fingerprint moved; a sub-pixel camera change rebuilds the base
// and therefore the cutout too, because it changes which texels a
// silhouette touches even when tokens have not moved.
func (p *Pipeline) ensureDerived(set *MaskSet, baseStale bool) {
	if !p.needsBelowTokens(set.Kind) {
		set.releaseDerived(p.pool)
		return
	}

	occlusion := p.occlusionAware(set.Kind)
	tokens := p.tokens.Tokens()
	fingerprint := tokenStateFingerprint(tokens, occlusion)
	if !baseStale && set.Cutout != nil && set.tokenPrint == fingerprint {
		return
	}

	base := maskOver(set.Base.Width(), set.Base.Height(), set.Base.Pixels())
	cutout := ComposeCutout(base, tokens, set.alignedFor, occlusion)
	tokensOnly := ComposeTokensOnly(base, cutout)

	set.releaseDerived(p.pool)
	set.Cutout = p.targetFrom(cutout, "cutout")
	set.TokensOnly = p.targetFrom(tokensOnly, "tokensOnly")
	set.tokenPrint = fingerprint
}

// storeBase copies a freshly built mask into the set's base target,
// reusing the old target when dimensions match.
func (p *Pipeline) storeBase(set *MaskSet, mask *Mask, label string) {
	if set.Base != nil &&
		(set.Base.Width() != mask.Width() || set.Base.Height() != mask.Height()) {
		p.pool.Release(set.Base)
		set.Base = nil
	}
	if set.Base == nil {
		set.Base = p.pool.Acquire(mask.Width(), mask.Height(), p.viewport.Resolution)
	}
	set.Base.Copy(mask.Data())
	p.uploadTexture(label, set.Base)
}

// targetFrom copies a composed mask into a freshly acquired target.
func (p *Pipeline) targetFrom(mask *Mask, label string) *render.Target {
	t := p.pool.Acquire(mask.Width(), mask.Height(), p.viewport.Resolution)
	t.Copy(mask.Data())
	p.uploadTexture(label, t)
	return t
}

// uploadTexture mirrors a target into a host GPU texture when a factory
// is configured. Upload failures degrade to CPU-only targets.
func (p *Pipeline) uploadTexture(label string, t *render.Target) {
	if p.textures == nil || t == nil {
		return
	}
	if t.Texture() == nil {
		tex, err := p.textures.CreateTexture(
			render.MaskTextureDescriptor(label, t.Width(), t.Height()))
		if err != nil {
			Logger().Warn("mask texture allocation failed",
				"label", label, "error", err)
			return
		}
		t.AttachTexture(tex)
	}
	if err := t.Sync(); err != nil {
		Logger().Warn("mask texture upload failed",
			"label", label, "error", err)
	}
}

func (p *Pipeline) maskWidth() int {
	return p.viewport.ClampTextureDim(p.viewport.DeviceWidth())
}

func (p *Pipeline) maskHeight() int {
	return p.viewport.ClampTextureDim(p.viewport.DeviceHeight())
}
