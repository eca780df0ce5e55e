package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/route"
)

// Planner computes a drivable route between two coordinates. Implementations
// must always return a usable route: on provider failure they degrade to a
// straight line with no metrics.
type Planner interface {
	Plan(ctx context.Context, origin, destination geo.Coordinate) (route.Route, error)
}

// Config holds the client's tunables; see config.RoutingConfig.
type Config struct {
	BaseURL string
}

// Client queries an OSRM-compatible routing endpoint for the driving profile.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// osrmResponse is the subset of the route response we consume. Geometry is
// requested as GeoJSON so the polyline arrives as a LineString.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry geojson.Geometry `json:"geometry"`
		Distance float64          `json:"distance"`
		Duration float64          `json:"duration"`
	} `json:"routes"`
}

// Plan fetches the driving route. Any provider failure degrades to the
// straight origin-destination segment so downstream rendering and quoting
// always have a geometry to work with; metered pricing is skipped in that
// case because no metrics are available.
func (c *Client) Plan(ctx context.Context, origin, destination geo.Coordinate) (route.Route, error) {
	r, err := c.fetch(ctx, origin, destination)
	if err != nil {
		c.logger.Warn("route planning failed, using straight line",
			zap.Float64("origin_lat", origin.Lat),
			zap.Float64("origin_lng", origin.Lng),
			zap.Float64("destination_lat", destination.Lat),
			zap.Float64("destination_lng", destination.Lng),
			zap.Error(err),
		)
		return route.StraightLine(origin, destination), nil
	}
	return r, nil
}

func (c *Client) fetch(ctx context.Context, origin, destination geo.Coordinate) (route.Route, error) {
	// OSRM takes lon,lat pairs in the path.
	u := fmt.Sprintf("%s/route/v1/driving/%g,%g;%g,%g?overview=full&geometries=geojson",
		c.cfg.BaseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return route.Route{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return route.Route{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return route.Route{}, fmt.Errorf("routing provider returned status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return route.Route{}, fmt.Errorf("decoding route response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return route.Route{}, fmt.Errorf("routing provider returned code %q with %d routes", body.Code, len(body.Routes))
	}

	best := body.Routes[0]
	line, ok := best.Geometry.Geometry().(orb.LineString)
	if !ok || len(line) < 2 {
		return route.Route{}, fmt.Errorf("route geometry is not a usable line string")
	}

	points := make([]geo.Coordinate, 0, len(line))
	for _, p := range line {
		points = append(points, geo.Coordinate{Lat: p.Lat(), Lng: p.Lon()})
	}

	var metrics *route.Metrics
	if best.Distance > 0 && best.Duration > 0 {
		metrics = &route.Metrics{
			DistanceMeters:  best.Distance,
			DurationSeconds: best.Duration,
		}
	}
	return route.New(points, metrics)
}
