package regionfx

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/vttfx/regionfx/render"
)

// fakeHost implements RegionSource and TokenSource with mutable state.
type fakeHost struct {
	regions []*Region
	scene   Rect
	tokens  []Token
}

func (f *fakeHost) Regions() []*Region { return f.regions }
func (f *fakeHost) SceneRect() Rect    { return f.scene }
func (f *fakeHost) Tokens() []Token    { return f.tokens }

// testConsumer implements MaskConsumer.
type testConsumer struct {
	kind  MaskKind
	below bool
}

func (c *testConsumer) MaskKind() MaskKind { return c.kind }
func (c *testConsumer) BelowTokens() bool  { return c.below }

// occlusionConsumer additionally implements OcclusionAware.
type occlusionConsumer struct{ testConsumer }

func (c *occlusionConsumer) OcclusionAware() bool { return true }

func newTestHost() *fakeHost {
	return &fakeHost{
		regions: []*Region{{
			ID:         "r1",
			Generation: 1,
			Shapes:     []Shape{RectShape(20, 20, 20, 20, 0)},
			Elevation:  OpenElevation(),
		}},
		scene: RectFromSize(0, 0, 100, 100),
	}
}

// centeredPipeline builds a pipeline whose aligned transform is the
// identity: 100x100 viewport at resolution 1, camera on (50,50).
func centeredPipeline(host *fakeHost) *Pipeline {
	p := NewPipeline(host, host)
	p.SetViewport(Viewport{Width: 100, Height: 100, Resolution: 1})
	p.SetCamera(Camera{Position: Pt(50, 50), Zoom: 1})
	return p
}

func TestPipelineNotReady(t *testing.T) {
	host := newTestHost()
	p := NewPipeline(host, host)
	defer p.Close()

	if _, ok := p.Masks("r1", KindParticles); ok {
		t.Error("expected no masks before camera and viewport are set")
	}
	if _, ok := p.SceneMasks(KindParticles); ok {
		t.Error("expected no scene masks before camera and viewport are set")
	}
}

func TestPipelineMasks(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	set, ok := p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if set.Base == nil {
		t.Fatal("expected a base mask")
	}
	if set.Base.Width() != 100 || set.Base.Height() != 100 {
		t.Fatalf("base dimensions: expected 100x100, got %dx%d", set.Base.Width(), set.Base.Height())
	}

	pix := set.Base.Pixels()
	if got := pix[30*100+30]; got != 255 {
		t.Errorf("region interior: expected 255, got %d", got)
	}
	if got := pix[10*100+10]; got != 0 {
		t.Errorf("outside region: expected 0, got %d", got)
	}
	// No below-tokens consumer: no derived variants.
	if set.Cutout != nil || set.TokensOnly != nil {
		t.Error("derived masks built without a below-tokens consumer")
	}
}

func TestPipelineMasksUnknownRegion(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	if _, ok := p.Masks("nope", KindParticles); ok {
		t.Error("expected no masks for an unknown region")
	}
}

func TestPipelineMasksFollowGeneration(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	set, ok := p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if got := set.Base.Pixels()[70*100+70]; got != 0 {
		t.Fatalf("precondition: (70,70) uncovered, got %d", got)
	}

	// The host edits the region's shapes and bumps the generation.
	host.regions[0].Shapes = []Shape{RectShape(60, 60, 20, 20, 0)}
	host.regions[0].Generation = 2

	set, ok = p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if got := set.Base.Pixels()[70*100+70]; got != 255 {
		t.Errorf("after the edit: expected 255 at (70,70), got %d", got)
	}
	if got := set.Base.Pixels()[30*100+30]; got != 0 {
		t.Errorf("after the edit: expected 0 at (30,30), got %d", got)
	}
}

func TestPipelineMasksFollowCamera(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	set, _ := p.Masks("r1", KindParticles)
	if got := set.Base.Pixels()[30*100+30]; got != 255 {
		t.Fatalf("precondition: (30,30) covered, got %d", got)
	}

	// Pan 10 world units right: the region shifts 10 device pixels left.
	p.SetCamera(Camera{Position: Pt(60, 50), Zoom: 1})
	p.Tick()

	set, _ = p.Masks("r1", KindParticles)
	if got := set.Base.Pixels()[30*100+15]; got != 255 {
		t.Errorf("after the pan: expected 255 at (15,30), got %d", got)
	}
	if got := set.Base.Pixels()[30*100+35]; got != 0 {
		t.Errorf("after the pan: expected 0 at (35,30), got %d", got)
	}
}

func TestPipelineCutoutLifecycle(t *testing.T) {
	host := newTestHost()
	host.tokens = []Token{{
		ID: "t1", Center: Pt(30, 30), Width: 10, Height: 10, Visible: true,
	}}
	p := centeredPipeline(host)
	defer p.Close()

	above := &testConsumer{kind: KindParticles}
	below := &testConsumer{kind: KindParticles, below: true}
	p.RegisterConsumer(above)
	p.RegisterConsumer(below)

	set, ok := p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if set.Cutout == nil || set.TokensOnly == nil {
		t.Fatal("expected derived masks for a below-tokens consumer")
	}
	if got := set.Cutout.Pixels()[30*100+30]; got != 0 {
		t.Errorf("cutout under the token: expected 0, got %d", got)
	}
	if got := set.TokensOnly.Pixels()[30*100+30]; got != 255 {
		t.Errorf("tokens-only under the token: expected 255, got %d", got)
	}
	if got := set.Cutout.Pixels()[22*100+22]; got != 255 {
		t.Errorf("cutout away from the token: expected 255, got %d", got)
	}

	// Dropping the below-tokens consumer releases only the derived
	// variants; the other consumer keeps the base alive.
	p.UnregisterConsumer(below)
	if set.Cutout != nil || set.TokensOnly != nil {
		t.Error("derived masks survived their last below-tokens consumer")
	}

	set, ok = p.Masks("r1", KindParticles)
	if !ok || set.Base == nil {
		t.Fatal("expected the base mask to survive")
	}
}

func TestPipelineCutoutTracksTokens(t *testing.T) {
	host := newTestHost()
	host.tokens = []Token{{
		ID: "t1", Center: Pt(30, 30), Width: 10, Height: 10, Visible: true,
	}}
	p := centeredPipeline(host)
	defer p.Close()

	p.RegisterConsumer(&testConsumer{kind: KindParticles, below: true})

	set, _ := p.Masks("r1", KindParticles)
	if got := set.Cutout.Pixels()[30*100+30]; got != 0 {
		t.Fatalf("precondition: token cut at (30,30), got %d", got)
	}

	// The token moves; the next mask request recomposes the cutout.
	host.tokens[0].Center = Pt(25, 25)
	set, _ = p.Masks("r1", KindParticles)
	if got := set.Cutout.Pixels()[25*100+25]; got != 0 {
		t.Errorf("moved token: expected 0 at (25,25), got %d", got)
	}
	if got := set.Cutout.Pixels()[33*100+33]; got != 255 {
		t.Errorf("vacated spot: expected 255 at (33,33), got %d", got)
	}
}

func TestPipelineOcclusionAwareCutout(t *testing.T) {
	host := newTestHost()
	host.tokens = []Token{{
		ID: "t1", Center: Pt(30, 30), Width: 10, Height: 10,
		Visible: true, Occluded: true,
	}}
	p := centeredPipeline(host)
	defer p.Close()

	c := &occlusionConsumer{testConsumer{kind: KindParticles, below: true}}
	p.RegisterConsumer(c)

	set, _ := p.Masks("r1", KindParticles)
	if got := set.Cutout.Pixels()[30*100+30]; got != 255 {
		t.Errorf("occluded token cut into an occlusion-aware cutout: got %d", got)
	}
}

func TestPipelineUnregisterLastConsumer(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	c := &testConsumer{kind: KindFilters}
	p.RegisterConsumer(c)
	if _, ok := p.Masks("r1", KindFilters); !ok {
		t.Fatal("expected a mask set")
	}

	p.UnregisterConsumer(c)
	// The set is gone; a fresh request rebuilds from scratch.
	set, ok := p.Masks("r1", KindFilters)
	if !ok || set.Base == nil {
		t.Error("expected a rebuilt mask set after re-request")
	}
}

func TestPipelineSceneMasks(t *testing.T) {
	host := newTestHost()
	host.regions = append(host.regions, &Region{
		ID:            "sup",
		Generation:    1,
		Shapes:        []Shape{RectShape(60, 60, 20, 20, 0)},
		SuppressScene: true,
	})
	p := centeredPipeline(host)
	defer p.Close()

	set, ok := p.SceneMasks(KindParticles)
	if !ok {
		t.Fatal("expected a scene mask set")
	}
	pix := set.Base.Pixels()
	if got := pix[10*100+10]; got != 255 {
		t.Errorf("scene interior: expected 255, got %d", got)
	}
	if got := pix[70*100+70]; got != 0 {
		t.Errorf("suppressed area: expected 0, got %d", got)
	}
}

func TestPipelineFadeForCachesSDF(t *testing.T) {
	host := newTestHost()
	host.regions[0].Shapes = []Shape{PolygonShape([]Point{
		{20, 20}, {40, 20}, {40, 40}, {20, 40},
	}, 0)}
	p := centeredPipeline(host)
	defer p.Close()

	cfg := FadeConfig{Mode: FadePercent, Fraction: 0.1}
	a, err := p.FadeFor("r1", cfg)
	if err != nil {
		t.Fatalf("FadeFor: %v", err)
	}
	if a.Shape != FadeShapePolygonSDF || a.SDF == nil {
		t.Fatalf("expected an SDF-backed descriptor, got shape %d", a.Shape)
	}

	b, err := p.FadeFor("r1", cfg)
	if err != nil {
		t.Fatalf("FadeFor: %v", err)
	}
	if b.SDF != a.SDF {
		t.Error("expected the cached distance field to be reused")
	}

	// A structural edit invalidates the cached field.
	host.regions[0].Shapes = []Shape{PolygonShape([]Point{
		{20, 20}, {50, 20}, {50, 50}, {20, 50},
	}, 0)}
	host.regions[0].Generation = 2
	c, err := p.FadeFor("r1", cfg)
	if err != nil {
		t.Fatalf("FadeFor: %v", err)
	}
	if c.SDF == a.SDF {
		t.Error("expected a fresh distance field after a structural edit")
	}
}

func TestPipelineFadeForAnalytic(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	fd, err := p.FadeFor("r1", FadeConfig{Mode: FadePercent, Fraction: 0.2})
	if err != nil {
		t.Fatalf("FadeFor: %v", err)
	}
	// A single rectangle never allocates a field.
	if fd.Shape != FadeShapeRect {
		t.Errorf("expected an analytic descriptor, got shape %d", fd.Shape)
	}
}

func TestPipelineFadeForUnknownRegion(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	if _, err := p.FadeFor("nope", FadeConfig{Mode: FadeAbsolute, Width: 5}); err == nil {
		t.Error("expected an error for an unknown region")
	}
}

func TestPipelineGateLatch(t *testing.T) {
	host := newTestHost()
	host.regions[0].Gate = GateConfig{EventMode: EventEnterExit}
	p := centeredPipeline(host)
	defer p.Close()

	if p.Passes("r1") {
		t.Error("expected an unlatched enter/exit gate to block")
	}
	p.LatchRegion("r1", true)
	if !p.Passes("r1") {
		t.Error("expected a latched enter/exit gate to pass")
	}
	p.LatchRegion("r1", false)
	if p.Passes("r1") {
		t.Error("expected a cleared enter/exit gate to block")
	}

	if p.Passes("nope") {
		t.Error("expected an unknown region to never pass")
	}
}

func TestPipelineViewerChangeInvalidatesGates(t *testing.T) {
	host := newTestHost()
	host.regions[0].Gate = GateConfig{Mode: GatePOV, GMAlwaysVisible: true}
	p := centeredPipeline(host)
	defer p.Close()

	if p.Passes("r1") {
		t.Fatal("expected a POV gate with no tokens to block")
	}
	p.SetViewer(Viewer{IsGM: true})
	if !p.Passes("r1") {
		t.Error("expected the gate to pass for a privileged viewer")
	}
}

func TestPipelineRefreshCoalescing(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	if _, ok := p.Masks("r1", KindParticles); !ok {
		t.Fatal("expected a mask set")
	}

	// Many same-frame requests collapse into one drain.
	for i := 0; i < 20; i++ {
		p.RequestRefreshRegion("r1")
		p.RequestRefreshAll()
	}
	p.Tick()

	set, ok := p.Masks("r1", KindParticles)
	if !ok || set.Base == nil {
		t.Error("expected the mask set to survive coalesced refreshes")
	}
}

func TestPipelineRefreshDropsDeletedRegion(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	if _, ok := p.Masks("r1", KindParticles); !ok {
		t.Fatal("expected a mask set")
	}

	host.regions = nil
	p.RequestRefresh(RefreshRegions)
	p.Tick()

	if _, ok := p.Masks("r1", KindParticles); ok {
		t.Error("expected no masks for a deleted region")
	}
}

func TestPipelineRefreshSync(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)
	defer p.Close()

	if _, ok := p.Masks("r1", KindParticles); !ok {
		t.Fatal("expected a mask set")
	}
	// Immediate rebuild outside the frame tick.
	p.RefreshSync(RegionRefreshKey("r1"))
	p.RefreshSync(RefreshScene)
}

func TestPipelineClose(t *testing.T) {
	host := newTestHost()
	p := centeredPipeline(host)

	if _, ok := p.Masks("r1", KindParticles); !ok {
		t.Fatal("expected a mask set")
	}

	p.Close()
	if _, ok := p.Masks("r1", KindParticles); ok {
		t.Error("expected no masks after close")
	}
	p.Close() // idempotent
}

func TestPipelineSharedPoolNotDrained(t *testing.T) {
	host := newTestHost()
	pool := render.NewPool()
	defer pool.Drain()

	p := NewPipeline(host, host, WithPool(pool))
	p.SetViewport(Viewport{Width: 100, Height: 100, Resolution: 1})
	p.SetCamera(Camera{Position: Pt(50, 50), Zoom: 1})

	if _, ok := p.Masks("r1", KindParticles); !ok {
		t.Fatal("expected a mask set")
	}
	p.Close()

	// The shared pool still works after the pipeline shut down.
	tg := pool.Acquire(8, 8, 1)
	if tg == nil {
		t.Fatal("shared pool unusable after pipeline close")
	}
	pool.Release(tg)
}

// cpuOnlyDevice implements render.DeviceHandle with no texture
// capabilities.
type cpuOnlyDevice struct{}

func (cpuOnlyDevice) Device() gpucontext.Device   { return nil }
func (cpuOnlyDevice) Queue() gpucontext.Queue     { return nil }
func (cpuOnlyDevice) Adapter() gpucontext.Adapter { return nil }
func (cpuOnlyDevice) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (cpuOnlyDevice) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

// gpuDevice additionally creates textures, like a gogpu host.
type gpuDevice struct {
	cpuOnlyDevice
	created int
	uploads int
}

func (g *gpuDevice) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	g.created++
	return &gpuDeviceTexture{host: g, width: width, height: height}, nil
}

type gpuDeviceTexture struct {
	host   *gpuDevice
	width  int
	height int
}

func (t *gpuDeviceTexture) Width() int  { return t.width }
func (t *gpuDeviceTexture) Height() int { return t.height }

func (t *gpuDeviceTexture) UpdateData(data []byte) error {
	t.host.uploads++
	return nil
}

func TestPipelineWithDevice(t *testing.T) {
	host := newTestHost()
	gpu := &gpuDevice{}
	p := NewPipeline(host, host, WithDevice(gpu))
	p.SetViewport(Viewport{Width: 100, Height: 100, Resolution: 1})
	p.SetCamera(Camera{Position: Pt(50, 50), Zoom: 1})
	defer p.Close()

	set, ok := p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if set.Base.Texture() == nil {
		t.Fatal("expected a device texture on the base mask")
	}
	if gpu.created == 0 {
		t.Error("expected texture creation through the device")
	}
	if gpu.uploads == 0 {
		t.Error("expected mask pixels uploaded through the device")
	}
}

func TestPipelineWithDeviceNoCreator(t *testing.T) {
	host := newTestHost()
	p := NewPipeline(host, host, WithDevice(cpuOnlyDevice{}))
	p.SetViewport(Viewport{Width: 100, Height: 100, Resolution: 1})
	p.SetCamera(Camera{Position: Pt(50, 50), Zoom: 1})
	defer p.Close()

	// A device without texture support degrades to CPU-only masks.
	set, ok := p.Masks("r1", KindParticles)
	if !ok {
		t.Fatal("expected a mask set")
	}
	if set.Base.Texture() != nil {
		t.Error("expected a CPU-only base mask")
	}
}
