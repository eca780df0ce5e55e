package pricing

import (
	"math"

	"github.com/intu-mobility/service-ride/internal/domain/route"
)

// Free-flow speed used as the traffic baseline.
const (
	freeFlowKmh = 35.0
	freeFlowMps = freeFlowKmh * 1000.0 / 3600.0

	// The surcharge grows at a quarter of the raw slowdown ratio and is
	// capped at +50%.
	trafficSlope = 0.25
	trafficCap   = 0.5

	minimumFare = 5.0
)

// Quote is a price computed for one vehicle class against one route. It is
// derived on demand and never cached across route changes.
type Quote struct {
	Class  VehicleClass `json:"class"`
	Amount float64      `json:"amount"`
}

// Engine computes fare quotes. It is a pure function of its inputs: identical
// class and route always produce the identical amount.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// QuoteClass prices the route for the class with the given id. An unknown id
// is priced with the default class's rate table.
func (e *Engine) QuoteClass(classID string, r route.Route) Quote {
	class := e.catalog.Resolve(classID)
	return Quote{Class: class, Amount: price(class, r)}
}

// QuoteAll prices the route for every class in catalog order.
func (e *Engine) QuoteAll(r route.Route) []Quote {
	classes := e.catalog.List()
	quotes := make([]Quote, len(classes))
	for i, class := range classes {
		quotes[i] = Quote{Class: class, Amount: price(class, r)}
	}
	return quotes
}

// price implements the fare formula:
//
//	amount = base + max(0, km - includedKm)*perKm + minutes*perMin
//
// scaled by a traffic multiplier derived from how much slower the route is
// than free flow, clamped to a minimum fare, and rounded half-up to cents.
// Routes without usable metrics (absent, zero, or negative) are charged the
// class's flat base fare unmodified.
func price(class VehicleClass, r route.Route) float64 {
	distanceMeters, durationSeconds, ok := r.PricingMetrics()
	if !ok {
		return roundCents(class.BaseFare)
	}

	distanceKm := distanceMeters / 1000.0
	durationMinutes := durationSeconds / 60.0

	extraKm := math.Max(0, distanceKm-class.IncludedKm)
	amount := class.BaseFare + extraKm*class.PerKm + durationMinutes*class.PerMin

	amount *= trafficMultiplier(distanceMeters, durationSeconds)

	if min := math.Max(minimumFare, class.BaseFare); amount < min {
		amount = min
	}
	return roundCents(amount)
}

// trafficMultiplier compares the reported duration against free-flow travel
// time over the same distance.
func trafficMultiplier(distanceMeters, durationSeconds float64) float64 {
	expectedSeconds := distanceMeters / freeFlowMps
	if expectedSeconds <= 0 {
		return 1
	}
	factor := math.Max(1, durationSeconds/expectedSeconds)
	return 1 + math.Min(trafficCap, (factor-1)*trafficSlope)
}

// roundCents rounds half-up to two decimals. Amounts are always non-negative
// here, so math.Round's half-away-from-zero is half-up.
func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
