package regionfx

// Viewer describes the current viewing user for gate evaluation.
type Viewer struct {
	// IsGM marks privileged roles: combined with a region's
	// GMAlwaysVisible flag, the gate passes unconditionally.
	IsGM bool
}

// GateState is the per-region latch mutated only by the host's
// enter/exit region events. The gate evaluation reads it but never
// writes it; this is the only persisted mutable state in the gate.
type GateState struct {
	latched bool
	pass    bool
	valid   bool
}

// SetLatched updates the latch from a host enter/exit event and
// invalidates the cached pass result.
func (g *GateState) SetLatched(latched bool) {
	if g.latched != latched {
		g.latched = latched
		g.valid = false
	}
}

// Latched returns the current latch value.
func (g *GateState) Latched() bool { return g.latched }

// Invalidate drops the cached pass result, forcing the next Evaluate to
// recompute. Called when tokens move, selection changes, or the region's
// gate configuration is edited.
func (g *GateState) Invalidate() { g.valid = false }

// Evaluate decides whether the current viewer should see the region's
// effects at all, independent of mask geometry. Results are cached until
// Invalidate or SetLatched.
//
// Precedence:
//  1. privileged viewer + GMAlwaysVisible passes unconditionally
//  2. enterExit event gating passes iff latched
//  3. enter event gating passes once latched on, never auto-hidden
//  4. exitOnly event gating passes until the latch is cleared
//  5. POV/targets gating passes iff any relevant token's elevation lies
//     within the region's window (an absent window means no restriction)
//  6. otherwise the gate passes
func (g *GateState) Evaluate(region *Region, viewer Viewer, tokens []Token) bool {
	if g.valid {
		return g.pass
	}
	g.pass = evaluateGate(region, viewer, tokens, g.latched)
	g.valid = true
	return g.pass
}

func evaluateGate(region *Region, viewer Viewer, tokens []Token, latched bool) bool {
	gate := region.Gate

	if viewer.IsGM && gate.GMAlwaysVisible {
		return true
	}

	switch gate.EventMode {
	case EventEnterExit, EventEnter, EventExitOnly:
		// EventEnter latches on and is never cleared by geometry;
		// EventExitOnly starts latched and is cleared by exit events.
		// In all three modes the latch alone decides.
		return latched
	}

	switch gate.Mode {
	case GatePOV:
		for i := range tokens {
			if tokens[i].Controlled && region.Elevation.Contains(tokens[i].Elevation) {
				return true
			}
		}
		return false
	case GateTargets:
		for i := range tokens {
			if !inTargets(gate.Targets, tokens[i].ID) {
				continue
			}
			if region.Elevation.Contains(tokens[i].Elevation) {
				return true
			}
		}
		return false
	}

	return true
}

func inTargets(targets []string, id string) bool {
	for _, t := range targets {
		if t == id {
			return true
		}
	}
	return false
}
