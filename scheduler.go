package regionfx

// RefreshKey identifies a logical rebuild target so independent targets
// coalesce separately and never block each other.
type RefreshKey string

// Well-known refresh keys.
const (
	// RefreshRegions rebuilds all region mask sets.
	RefreshRegions RefreshKey = "regions"

	// RefreshScene rebuilds the scene suppression mask.
	RefreshScene RefreshKey = "scene"
)

// RegionRefreshKey returns the refresh key for a single region.
func RegionRefreshKey(regionID string) RefreshKey {
	return RefreshKey("region:" + regionID)
}

// Scheduler coalesces many same-frame rebuild requests (camera pan,
// zoom, token moves, content flags) into at most one rebuild per key per
// animation frame. Each key is a single pending slot holding the latest
// requested task; Tick drains all slots once, in request order.
//
// Scheduler is single-threaded by contract, like the rest of the
// pipeline: cooperative deferral, not locking.
type Scheduler struct {
	pending map[RefreshKey]func()
	order   []RefreshKey
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		pending: make(map[RefreshKey]func()),
	}
}

// Request schedules task to run on the next Tick, replacing any task
// already pending for the same key (keep-latest-args coalescing).
func (s *Scheduler) Request(key RefreshKey, task func()) {
	if _, exists := s.pending[key]; !exists {
		s.order = append(s.order, key)
	}
	s.pending[key] = task
}

// Pending reports whether a task is waiting for the key.
func (s *Scheduler) Pending(key RefreshKey) bool {
	_, ok := s.pending[key]
	return ok
}

// Cancel drops any pending task for the key.
func (s *Scheduler) Cancel(key RefreshKey) {
	if _, ok := s.pending[key]; !ok {
		return
	}
	delete(s.pending, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Sync cancels any pending coalesced task for the key and executes task
// immediately. Call sites that need the result before returning in the
// same frame (first draw of a new effect) use this instead of Request.
func (s *Scheduler) Sync(key RefreshKey, task func()) {
	s.Cancel(key)
	task()
}

// Tick runs every pending task once, in the order the keys were first
// requested, and clears the schedule. Returns the number of tasks run.
// Tasks scheduled during the drain run on the next Tick, not this one.
func (s *Scheduler) Tick() int {
	if len(s.order) == 0 {
		return 0
	}
	order := s.order
	pending := s.pending
	s.order = nil
	s.pending = make(map[RefreshKey]func())

	ran := 0
	for _, key := range order {
		if task, ok := pending[key]; ok {
			task()
			ran++
		}
	}
	return ran
}
