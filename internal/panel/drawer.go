package panel

import (
	"sync"
	"time"

	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// State is the drawer's resting position.
type State string

const (
	StateExpanded  State = "expanded"
	StateCollapsed State = "collapsed"
)

// dragPhase tracks where the drawer is inside a gesture.
type dragPhase int

const (
	phaseIdle dragPhase = iota
	phaseDragging
	phaseSettling
)

// Release thresholds in pixels of vertical travel. A downward drag must
// exceed collapseThreshold to collapse; an upward drag must exceed
// expandThreshold (in magnitude) to expand. Anything short of the threshold
// snaps back.
const (
	collapseThreshold = 120.0
	expandThreshold   = -80.0
)

// Config holds the drawer's tunables. CollapsedHeight must be strictly lower
// than ExpandedHeight.
type Config struct {
	ExpandedHeight  int
	CollapsedHeight int
	SettleDuration  time.Duration
	ConfirmLatency  time.Duration
}

// HeightFunc is notified whenever the drawer's visible height changes, so
// the map can keep its content clear of the overlay.
type HeightFunc func(visiblePx int)

// Drawer is the bottom sheet that presents ride options. It is driven by
// vertical drag gestures: offsets in the direction the drawer cannot move
// are clamped to zero, and a release either snaps back or settles into the
// other state after SettleDuration.
type Drawer struct {
	cfg      Config
	onHeight HeightFunc

	mu          sync.Mutex
	visible     bool
	state       State
	phase       dragPhase
	offset      float64
	settleTimer *time.Timer

	options    []RideOption
	selectedID string
	confirming bool
}

func NewDrawer(cfg Config, onHeight HeightFunc) (*Drawer, error) {
	if cfg.CollapsedHeight >= cfg.ExpandedHeight {
		return nil, domain.NewValidationError("collapsed height must be lower than expanded height")
	}
	if onHeight == nil {
		onHeight = func(int) {}
	}
	return &Drawer{cfg: cfg, onHeight: onHeight, state: StateExpanded}, nil
}

// Open shows the drawer expanded and reports its height.
func (d *Drawer) Open() {
	d.mu.Lock()
	d.visible = true
	d.state = StateExpanded
	d.phase = phaseIdle
	d.offset = 0
	d.confirming = false
	d.mu.Unlock()

	d.onHeight(d.VisibleHeight())
}

// Close hides the drawer and frees the space it covered.
func (d *Drawer) Close() {
	d.mu.Lock()
	d.visible = false
	d.phase = phaseIdle
	d.offset = 0
	if d.settleTimer != nil {
		d.settleTimer.Stop()
		d.settleTimer = nil
	}
	d.mu.Unlock()

	d.onHeight(0)
}

// Resize replaces the resting heights, typically after a viewport resize.
// When the drawer is at rest the new visible height is reported right away;
// mid-gesture the height lands with the settle.
func (d *Drawer) Resize(expandedHeight, collapsedHeight int) error {
	if collapsedHeight >= expandedHeight {
		return domain.NewValidationError("collapsed height must be lower than expanded height")
	}

	d.mu.Lock()
	d.cfg.ExpandedHeight = expandedHeight
	d.cfg.CollapsedHeight = collapsedHeight
	report := d.visible && d.phase == phaseIdle
	d.mu.Unlock()

	if report {
		d.onHeight(d.VisibleHeight())
	}
	return nil
}

// State returns the current resting position.
func (d *Drawer) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Visible reports whether the drawer is shown at all.
func (d *Drawer) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

// VisibleHeight returns the pixels of screen the drawer currently covers.
func (d *Drawer) VisibleHeight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible {
		return 0
	}
	if d.state == StateCollapsed {
		return d.cfg.CollapsedHeight
	}
	return d.cfg.ExpandedHeight
}

// DragStart begins a gesture. It reports false when the drawer is hidden or
// still settling from the previous gesture, in which case the caller must
// drop the gesture entirely.
func (d *Drawer) DragStart() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible || d.phase != phaseIdle {
		return false
	}
	d.phase = phaseDragging
	d.offset = 0
	return true
}

// DragMove applies a cumulative vertical delta (positive is downward) and
// returns the clamped visual offset. Movement past the drawer's current
// resting position is suppressed.
func (d *Drawer) DragMove(deltaY float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != phaseDragging {
		return 0
	}
	d.offset = d.clamp(deltaY)
	return d.offset
}

// DragEnd releases the gesture. Travel beyond the threshold flips the state;
// anything less snaps back. Either way the drawer settles and ignores input
// for SettleDuration.
func (d *Drawer) DragEnd(deltaY float64) State {
	d.mu.Lock()
	if d.phase != phaseDragging {
		state := d.state
		d.mu.Unlock()
		return state
	}

	delta := d.clamp(deltaY)
	switch {
	case d.state == StateExpanded && delta > collapseThreshold:
		d.state = StateCollapsed
	case d.state == StateCollapsed && delta < expandThreshold:
		d.state = StateExpanded
	}

	d.phase = phaseSettling
	d.offset = 0
	newState := d.state
	d.settleTimer = time.AfterFunc(d.cfg.SettleDuration, d.settled)
	d.mu.Unlock()

	return newState
}

// settled ends the settle animation and publishes the final height.
func (d *Drawer) settled() {
	d.mu.Lock()
	if d.phase != phaseSettling {
		d.mu.Unlock()
		return
	}
	d.phase = phaseIdle
	d.settleTimer = nil
	d.mu.Unlock()

	d.onHeight(d.VisibleHeight())
}

// clamp suppresses travel in the direction the drawer cannot move: upward
// while expanded, downward while collapsed.
func (d *Drawer) clamp(deltaY float64) float64 {
	if d.state == StateExpanded && deltaY < 0 {
		return 0
	}
	if d.state == StateCollapsed && deltaY > 0 {
		return 0
	}
	return deltaY
}
