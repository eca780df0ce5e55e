package flow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/pricing"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/geocoding"
	"github.com/intu-mobility/service-ride/internal/panel"
	"github.com/intu-mobility/service-ride/internal/platform/domain"
	"github.com/intu-mobility/service-ride/internal/routing"
	"github.com/intu-mobility/service-ride/internal/viewport"
)

// dispatchPhrases rotate on the driver-search overlay while a ride is being
// dispatched.
var dispatchPhrases = []string{
	"Buscando conductores cercanos…",
	"Conectando con la red Intu…",
	"Esperando confirmación del conductor…",
	"Buscando alternativas de ruta…",
}

// pickedLocationLabel names destinations chosen by dropping the pin.
const pickedLocationLabel = "Ubicación seleccionada en el mapa"

// Config holds the flow's tunables; see config.FlowConfig.
type Config struct {
	SearchDebounce time.Duration
	PhraseInterval time.Duration
}

// Deps are the collaborating components one flow session drives.
type Deps struct {
	Searcher geocoding.Searcher
	Planner  routing.Planner
	Engine   *pricing.Engine
	Viewport *viewport.Viewport
	Drawer   *panel.Drawer
	Logger   *zap.Logger
}

// Flow orchestrates one rider's destination-selection session from first
// keystroke to dispatched ride. It owns the session state machine; the
// searcher, planner, pricing engine, viewport and drawer do the actual work.
type Flow struct {
	cfg       Config
	deps      Deps
	debouncer *geocoding.Debouncer

	mu               sync.Mutex
	state            State
	suggestions      []geocoding.Candidate
	destination      *geo.Coordinate
	destinationLabel string
	currentRoute     *route.Route
	quotes           []pricing.Quote
	dispatched       *panel.RideOption
	phraseIdx        int
	phraseStop       chan struct{}
}

func New(cfg Config, deps Deps) *Flow {
	f := &Flow{cfg: cfg, deps: deps, state: StateIdle}
	f.debouncer = geocoding.NewDebouncer(deps.Searcher, cfg.SearchDebounce, f.applySuggestions)
	return f
}

// Close releases timers and the pending lookup, if any.
func (f *Flow) Close() {
	f.debouncer.Close()
	f.mu.Lock()
	f.stopPhrasesLocked()
	f.mu.Unlock()
}

// State returns the current stage.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// transitionLocked moves to the target stage or fails; f.mu must be held.
func (f *Flow) transitionLocked(target State) error {
	if !f.state.CanTransitionTo(target) {
		return domain.NewInvalidStateError(f.state.String(), target.String())
	}
	f.deps.Logger.Debug("flow transition",
		zap.String("from", f.state.String()),
		zap.String("to", target.String()),
	)
	f.state = target
	return nil
}

// Search feeds a keystroke into the debounced lookup. The bias is the
// current camera center so results favor what the rider is looking at.
func (f *Flow) Search(query string) error {
	f.mu.Lock()
	if err := f.transitionLocked(StateSearching); err != nil {
		f.mu.Unlock()
		return err
	}
	f.mu.Unlock()

	f.debouncer.Query(query, f.deps.Viewport.Center())
	return nil
}

// applySuggestions receives debounced lookup results. Results landing after
// the rider already left the searching stage are dropped.
func (f *Flow) applySuggestions(query string, results []geocoding.Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSearching {
		return
	}
	f.suggestions = results
}

// Suggestions returns the current suggestion list.
func (f *Flow) Suggestions() []geocoding.Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]geocoding.Candidate(nil), f.suggestions...)
}

// ChooseDestination locks in a search suggestion and plans the route to it.
// Suggestions without coordinates (placeholders) divert to picking mode
// instead, since there is nothing to route to yet.
func (f *Flow) ChooseDestination(ctx context.Context, candidate geocoding.Candidate) error {
	if candidate.Coord == nil {
		return f.EnterPicking()
	}
	if !candidate.Coord.Valid() {
		return domain.NewValidationError("destination coordinates are not usable")
	}

	f.mu.Lock()
	if err := f.transitionLocked(StateDestinationChosen); err != nil {
		f.mu.Unlock()
		return err
	}
	f.destination = candidate.Coord
	f.destinationLabel = candidate.Label
	f.suggestions = nil
	f.mu.Unlock()

	f.deps.Viewport.SetDestination(*candidate.Coord)
	return f.planRoute(ctx, *candidate.Coord)
}

// EnterPicking switches to choosing a point on the map. Any previously
// chosen destination and its route are discarded so the pin is the single
// source of truth.
func (f *Flow) EnterPicking() error {
	f.mu.Lock()
	if err := f.transitionLocked(StatePicking); err != nil {
		f.mu.Unlock()
		return err
	}
	f.destination = nil
	f.destinationLabel = ""
	f.currentRoute = nil
	f.quotes = nil
	f.suggestions = nil
	f.mu.Unlock()

	f.deps.Viewport.ClearRoute()
	f.deps.Viewport.ClearDestination()
	f.deps.Viewport.SetPicking(true)
	f.deps.Drawer.Close()
	return nil
}

// ReportPickCenter records the camera center while the pin is being moved.
func (f *Flow) ReportPickCenter(c geo.Coordinate) error {
	f.mu.Lock()
	if f.state != StatePicking {
		f.mu.Unlock()
		return domain.NewInvalidStateError(f.state.String(), StatePicking.String())
	}
	f.mu.Unlock()

	f.deps.Viewport.ReportCenter(c)
	return nil
}

// ConfirmPickedLocation locks in the camera center as the destination and
// plans the route to it.
func (f *Flow) ConfirmPickedLocation(ctx context.Context) error {
	f.mu.Lock()
	if err := f.transitionLocked(StateLocationConfirmed); err != nil {
		f.mu.Unlock()
		return err
	}
	picked := f.deps.Viewport.Center()
	f.destination = &picked
	f.destinationLabel = pickedLocationLabel
	f.mu.Unlock()

	f.deps.Viewport.SetPicking(false)
	f.deps.Viewport.SetDestination(picked)
	return f.planRoute(ctx, picked)
}

// planRoute computes and renders the route from the camera's idea of the
// rider position to the destination. Planning never fails hard: the planner
// degrades to a straight line internally.
func (f *Flow) planRoute(ctx context.Context, destination geo.Coordinate) error {
	origin := f.deps.Viewport.Center()
	r, err := f.deps.Planner.Plan(ctx, origin, destination)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.currentRoute = &r
	f.mu.Unlock()

	f.deps.Viewport.SetRoute(r)
	return nil
}

// RequestQuotes prices the planned route for every vehicle class and opens
// the fares drawer.
func (f *Flow) RequestQuotes() error {
	f.mu.Lock()
	if err := f.transitionLocked(StateQuoting); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.currentRoute == nil {
		f.mu.Unlock()
		return domain.NewValidationError("no route planned to quote")
	}
	quotes := f.deps.Engine.QuoteAll(*f.currentRoute)
	f.quotes = quotes
	f.mu.Unlock()

	options := make([]panel.RideOption, len(quotes))
	for i, q := range quotes {
		options[i] = panel.RideOption{
			ClassID:     q.Class.ID,
			Name:        q.Class.Name,
			Icon:        q.Class.Icon,
			Description: q.Class.Description,
			ETAText:     q.Class.ETAText,
			Price:       q.Amount,
		}
	}
	f.deps.Drawer.SetOptions(options)
	f.deps.Drawer.Open()
	return nil
}

// Quotes returns the prices currently shown in the drawer.
func (f *Flow) Quotes() []pricing.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pricing.Quote(nil), f.quotes...)
}

// SelectVehicle marks a vehicle class in the drawer.
func (f *Flow) SelectVehicle(classID string) error {
	f.mu.Lock()
	if f.state != StateQuoting {
		f.mu.Unlock()
		return domain.NewInvalidStateError(f.state.String(), StateQuoting.String())
	}
	f.mu.Unlock()

	return f.deps.Drawer.Select(classID)
}

// DispatchedFunc receives the confirmed option once the drawer's
// confirmation delay has run.
type DispatchedFunc func(option panel.RideOption)

// ConfirmRide hands the selected option to the drawer's confirmation. When
// it completes, the flow moves to dispatching, the phrase rotation starts
// and onDispatched fires.
func (f *Flow) ConfirmRide(onDispatched DispatchedFunc) error {
	f.mu.Lock()
	if f.state != StateQuoting {
		f.mu.Unlock()
		return domain.NewInvalidStateError(f.state.String(), StateQuoting.String())
	}
	f.mu.Unlock()

	return f.deps.Drawer.Confirm(func(option panel.RideOption) {
		f.mu.Lock()
		if err := f.transitionLocked(StateDispatching); err != nil {
			f.mu.Unlock()
			return
		}
		f.dispatched = &option
		f.startPhrasesLocked()
		f.mu.Unlock()

		f.deps.Viewport.SetBottomObstruction(0)
		if onDispatched != nil {
			onDispatched(option)
		}
	})
}

// CancelDispatch abandons the driver search and reopens the fares drawer so
// the rider can pick again.
func (f *Flow) CancelDispatch() error {
	f.mu.Lock()
	if err := f.transitionLocked(StateQuoting); err != nil {
		f.mu.Unlock()
		return err
	}
	f.dispatched = nil
	f.stopPhrasesLocked()
	f.mu.Unlock()

	f.deps.Drawer.Open()
	return nil
}

// Reset returns to idle from any stage and clears everything on screen.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.state = StateIdle
	f.destination = nil
	f.destinationLabel = ""
	f.currentRoute = nil
	f.quotes = nil
	f.suggestions = nil
	f.dispatched = nil
	f.stopPhrasesLocked()
	f.mu.Unlock()

	f.deps.Drawer.Close()
	f.deps.Viewport.SetPicking(false)
	f.deps.Viewport.ClearRoute()
	f.deps.Viewport.ClearDestination()
}

// Destination returns the locked-in destination, if any.
func (f *Flow) Destination() (geo.Coordinate, string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destination == nil {
		return geo.Coordinate{}, "", false
	}
	return *f.destination, f.destinationLabel, true
}

// CurrentRoute returns the planned route, if any.
func (f *Flow) CurrentRoute() (route.Route, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.currentRoute == nil {
		return route.Route{}, false
	}
	return *f.currentRoute, true
}

// Dispatched returns the option a driver is being searched for.
func (f *Flow) Dispatched() (panel.RideOption, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dispatched == nil {
		return panel.RideOption{}, false
	}
	return *f.dispatched, true
}

// CurrentPhrase returns the dispatch overlay's current status line, empty
// outside the dispatching stage.
func (f *Flow) CurrentPhrase() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateDispatching {
		return ""
	}
	return dispatchPhrases[f.phraseIdx]
}

// startPhrasesLocked begins rotating the overlay phrases; f.mu must be held.
func (f *Flow) startPhrasesLocked() {
	f.phraseIdx = 0
	stop := make(chan struct{})
	f.phraseStop = stop
	go func() {
		ticker := time.NewTicker(f.cfg.PhraseInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				f.mu.Lock()
				f.phraseIdx = (f.phraseIdx + 1) % len(dispatchPhrases)
				f.mu.Unlock()
			}
		}
	}()
}

func (f *Flow) stopPhrasesLocked() {
	if f.phraseStop != nil {
		close(f.phraseStop)
		f.phraseStop = nil
	}
}
