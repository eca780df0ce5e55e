package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/pricing"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/flow"
	"github.com/intu-mobility/service-ride/internal/geocoding"
	"github.com/intu-mobility/service-ride/internal/panel"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
	"github.com/intu-mobility/service-ride/internal/routing"
	"github.com/intu-mobility/service-ride/internal/viewport"
)

// Drawer geometry for headless sessions. Clients render their own sheet; the
// server mirrors the two resting heights so map padding stays consistent.
const (
	drawerExpandedHeight  = 320
	drawerCollapsedHeight = 140
	drawerSettleDuration  = 200 * time.Millisecond
)

// SessionConfig bundles the per-session component configuration.
type SessionConfig struct {
	Map            viewport.Config
	SearchDebounce time.Duration
	ConfirmLatency time.Duration
	PhraseInterval time.Duration
}

// SessionManager owns one flow session per rider. Sessions are created
// lazily on first use and survive until Reset or service restart; they hold
// no durable state, the trip record is the only thing persisted.
type SessionManager struct {
	cfg      SessionConfig
	searcher geocoding.Searcher
	planner  routing.Planner
	engine   *pricing.Engine
	trips    *TripService
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*rideSession
}

type rideSession struct {
	flow   *flow.Flow
	view   *viewport.Viewport
	drawer *panel.Drawer

	mu       sync.Mutex
	tripID   *uuid.UUID
	lastTrip *TripDTO
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(
	cfg SessionConfig,
	searcher geocoding.Searcher,
	planner routing.Planner,
	engine *pricing.Engine,
	trips *TripService,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		searcher: searcher,
		planner:  planner,
		engine:   engine,
		trips:    trips,
		logger:   logger,
		sessions: make(map[uuid.UUID]*rideSession),
	}
}

// session returns the rider's session, creating it on first use.
func (m *SessionManager) session(riderID uuid.UUID) (*rideSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[riderID]; ok {
		return s, nil
	}

	view := viewport.New(m.cfg.Map, viewport.NopRenderer{}, m.logger)
	drawer, err := panel.NewDrawer(panel.Config{
		ExpandedHeight:  drawerExpandedHeight,
		CollapsedHeight: drawerCollapsedHeight,
		SettleDuration:  drawerSettleDuration,
		ConfirmLatency:  m.cfg.ConfirmLatency,
	}, view.SetBottomObstruction)
	if err != nil {
		return nil, err
	}

	f := flow.New(flow.Config{
		SearchDebounce: m.cfg.SearchDebounce,
		PhraseInterval: m.cfg.PhraseInterval,
	}, flow.Deps{
		Searcher: m.searcher,
		Planner:  m.planner,
		Engine:   m.engine,
		Viewport: view,
		Drawer:   drawer,
		Logger:   m.logger.With(zap.String("rider_id", riderID.String())),
	})

	s := &rideSession{flow: f, view: view, drawer: drawer}
	m.sessions[riderID] = s
	return s, nil
}

// Search feeds a destination keystroke into the rider's session.
func (m *SessionManager) Search(riderID uuid.UUID, query string) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.Search(query)
}

// ChooseDestination locks in a suggestion. Omitting coordinates means the
// rider picked a placeholder and is diverted to the map pin.
func (m *SessionManager) ChooseDestination(ctx context.Context, riderID uuid.UUID, label string, coord *geo.Coordinate) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.ChooseDestination(ctx, geocoding.Candidate{Label: label, Coord: coord})
}

// EnterPicking switches the rider to choosing a point on the map.
func (m *SessionManager) EnterPicking(riderID uuid.UUID) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.EnterPicking()
}

// ReportPickCenter records the camera center while the pin is moving.
func (m *SessionManager) ReportPickCenter(riderID uuid.UUID, c geo.Coordinate) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.ReportPickCenter(c)
}

// ConfirmPickedLocation freezes the pin as the destination.
func (m *SessionManager) ConfirmPickedLocation(ctx context.Context, riderID uuid.UUID) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.ConfirmPickedLocation(ctx)
}

// RequestQuotes prices the planned route and opens the fares drawer.
func (m *SessionManager) RequestQuotes(riderID uuid.UUID) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.flow.RequestQuotes()
}

// ConfirmRide selects the class and starts the confirmation. The trip record
// is created when the confirmation delay elapses; until then the session
// stays in quoting.
func (m *SessionManager) ConfirmRide(riderID uuid.UUID, vehicleClassID string) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	if err := s.flow.SelectVehicle(vehicleClassID); err != nil {
		return err
	}

	return s.flow.ConfirmRide(func(option panel.RideOption) {
		m.persistTrip(riderID, s, option)
	})
}

// persistTrip records the confirmed ride. It runs after the confirmation
// delay, detached from the originating request.
func (m *SessionManager) persistTrip(riderID uuid.UUID, s *rideSession, option panel.RideOption) {
	r, ok := s.flow.CurrentRoute()
	if !ok {
		m.logger.Error("dispatched ride has no route", zap.String("rider_id", riderID.String()))
		return
	}
	_, label, _ := s.flow.Destination()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dto, err := m.trips.RequestTrip(ctx, riderID, RequestTripInput{
		DestinationLabel: label,
		Route:            r,
		VehicleClassID:   option.ClassID,
		VehicleClassName: option.Name,
		QuotedAmount:     option.Price,
	})
	if err != nil {
		m.logger.Error("failed to persist confirmed ride",
			zap.String("rider_id", riderID.String()),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	id := dto.ID
	s.tripID = &id
	s.lastTrip = dto
	s.mu.Unlock()
}

// Cancel abandons the current stage. A dispatching session cancels its trip
// and returns to the fares drawer; any other stage resets to idle.
func (m *SessionManager) Cancel(ctx context.Context, riderID uuid.UUID, reason string) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}

	if s.flow.State() != flow.StateDispatching {
		s.flow.Reset()
		return nil
	}

	s.mu.Lock()
	tripID := s.tripID
	s.tripID = nil
	s.mu.Unlock()

	if tripID != nil {
		if _, err := m.trips.CancelTrip(ctx, *tripID, riderID, reason); err != nil {
			// Dispatch may already have advanced the trip; the session still
			// returns to quoting so the rider is not stuck.
			m.logger.Warn("failed to cancel dispatching trip",
				zap.String("trip_id", tripID.String()),
				zap.Error(err),
			)
		}
	}
	return s.flow.CancelDispatch()
}

// deviceReading adapts a single client-reported position to the viewport's
// locator. A nil coordinate stands for a denied or failed device reading.
type deviceReading struct {
	coord *geo.Coordinate
}

func (r deviceReading) Current(context.Context, viewport.LocateOptions) (geo.Coordinate, error) {
	if r.coord == nil {
		return geo.Coordinate{}, domain.NewValidationError("device position unavailable")
	}
	return *r.coord, nil
}

// ReportLocation feeds a device position reading into the rider's viewport.
// Omitting coordinates reports a failed reading; the map keeps its center and
// the snapshot carries a dismissible advisory.
func (m *SessionManager) ReportLocation(ctx context.Context, riderID uuid.UUID, coord *geo.Coordinate) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	s.view.Locate(ctx, deviceReading{coord: coord})
	return nil
}

// DismissAdvisory clears the rider's location advisory banner.
func (m *SessionManager) DismissAdvisory(riderID uuid.UUID) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	s.view.DismissAdvisory()
	return nil
}

// DrawerDrag applies a drag gesture to the rider's fares drawer. Phase is
// "start", "move" or "end"; deltaY is the cumulative travel in pixels.
func (m *SessionManager) DrawerDrag(riderID uuid.UUID, phase string, deltaY float64) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}

	switch phase {
	case "start":
		if !s.drawer.DragStart() {
			return domain.NewValidationError("drawer cannot accept a gesture now")
		}
	case "move":
		s.drawer.DragMove(deltaY)
	case "end":
		s.drawer.DragEnd(deltaY)
	default:
		return domain.NewValidationError("drag phase must be start, move or end")
	}
	return nil
}

// DrawerResize applies new resting heights after a client viewport resize.
func (m *SessionManager) DrawerResize(riderID uuid.UUID, expanded, collapsed int) error {
	s, err := m.session(riderID)
	if err != nil {
		return err
	}
	return s.drawer.Resize(expanded, collapsed)
}

// RouteDTO is the wire form of a planned route.
type RouteDTO struct {
	Points   []geo.Coordinate `json:"points"`
	Metrics  *route.Metrics   `json:"metrics,omitempty"`
	Polyline string           `json:"polyline"`
}

// QuoteDTO is one priced vehicle class in the fares drawer.
type QuoteDTO struct {
	ClassID     string  `json:"class_id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	ETAText     string  `json:"eta_text"`
	Capacity    int     `json:"capacity"`
	Amount      float64 `json:"amount"`
}

// DrawerDTO is the drawer's visible state.
type DrawerDTO struct {
	Visible       bool   `json:"visible"`
	State         string `json:"state"`
	VisibleHeight int    `json:"visible_height"`
	SelectedClass string `json:"selected_class,omitempty"`
}

// SessionSnapshot is the full state of a rider's flow session.
type SessionSnapshot struct {
	State            string                `json:"state"`
	Suggestions      []geocoding.Candidate `json:"suggestions"`
	Destination      *geo.Coordinate       `json:"destination,omitempty"`
	DestinationLabel string                `json:"destination_label,omitempty"`
	Route            *RouteDTO             `json:"route,omitempty"`
	Quotes           []QuoteDTO            `json:"quotes"`
	Drawer           DrawerDTO             `json:"drawer"`
	Picking          bool                  `json:"picking"`
	Center           geo.Coordinate        `json:"center"`
	Advisory         string                `json:"advisory,omitempty"`
	DispatchPhrase   string                `json:"dispatch_phrase,omitempty"`
	Trip             *TripDTO              `json:"trip,omitempty"`
}

// Snapshot returns everything a client needs to render the rider's session.
func (m *SessionManager) Snapshot(riderID uuid.UUID) (*SessionSnapshot, error) {
	s, err := m.session(riderID)
	if err != nil {
		return nil, err
	}

	snap := &SessionSnapshot{
		State:          s.flow.State().String(),
		Suggestions:    s.flow.Suggestions(),
		Picking:        s.view.Picking(),
		Center:         s.view.Center(),
		Advisory:       s.view.Advisory(),
		DispatchPhrase: s.flow.CurrentPhrase(),
	}

	if dest, label, ok := s.flow.Destination(); ok {
		snap.Destination = &dest
		snap.DestinationLabel = label
	}

	if r, ok := s.flow.CurrentRoute(); ok {
		snap.Route = &RouteDTO{
			Points:   r.Points,
			Metrics:  r.Metrics,
			Polyline: r.Polyline(),
		}
	}

	quotes := s.flow.Quotes()
	snap.Quotes = make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		snap.Quotes[i] = QuoteDTO{
			ClassID:     q.Class.ID,
			Name:        q.Class.Name,
			Icon:        q.Class.Icon,
			Description: q.Class.Description,
			ETAText:     q.Class.ETAText,
			Capacity:    q.Class.Capacity,
			Amount:      q.Amount,
		}
	}

	snap.Drawer = DrawerDTO{
		Visible:       s.drawer.Visible(),
		State:         string(s.drawer.State()),
		VisibleHeight: s.drawer.VisibleHeight(),
	}
	if selected, ok := s.drawer.Selected(); ok {
		snap.Drawer.SelectedClass = selected.ClassID
	}

	s.mu.Lock()
	snap.Trip = s.lastTrip
	s.mu.Unlock()

	return snap, nil
}
