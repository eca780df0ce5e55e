package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

// Candidate is a single search-result suggestion before selection. Coord is
// nil for placeholder suggestions, which carry only a display label.
type Candidate struct {
	Label string          `json:"label"`
	Coord *geo.Coordinate `json:"coord,omitempty"`
}

// Searcher turns free-text queries into ranked place candidates.
type Searcher interface {
	Search(ctx context.Context, query string, bias geo.Coordinate) []Candidate
}

// Config holds the client's tunables; see config.GeocodingConfig.
type Config struct {
	BaseURL      string
	CountryCodes string
	ResultLimit  int
	ViewboxDelta float64
}

// Client queries a Nominatim-compatible search endpoint. Search never returns
// an error: failures degrade to placeholder suggestions derived from the raw
// query so the flow never dead-ends.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      *Cache
	logger     *zap.Logger
}

// NewClient creates a geocoding client. cache may be nil to disable caching.
func NewClient(cfg Config, cache *Cache, logger *zap.Logger) *Client {
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = 5
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		logger:     logger,
	}
}

// nominatimPlace is the subset of the search response we consume.
type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search issues a biased request first, then one unrestricted fallback, and
// finally degrades to placeholders. Results are cached read-through when a
// cache is configured.
func (c *Client) Search(ctx context.Context, query string, bias geo.Coordinate) []Candidate {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, query, bias); ok {
			return cached
		}
	}

	candidates, ok := c.request(ctx, query, &bias)
	if !ok {
		// One retry without geographic or country restriction.
		candidates, ok = c.request(ctx, query, nil)
	}
	if !ok {
		c.logger.Warn("geocoding unavailable, degrading to placeholders",
			zap.String("query", query),
		)
		return placeholders(query)
	}

	if c.cache != nil {
		c.cache.Put(ctx, query, bias, candidates)
	}
	return candidates
}

// request performs one search call. bias == nil drops the viewbox and
// country restrictions.
func (c *Client) request(ctx context.Context, query string, bias *geo.Coordinate) ([]Candidate, bool) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(c.cfg.ResultLimit))
	params.Set("addressdetails", "1")
	if bias != nil {
		d := c.cfg.ViewboxDelta
		params.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g", bias.Lng-d, bias.Lat+d, bias.Lng+d, bias.Lat-d))
		params.Set("bounded", "1")
		params.Set("countrycodes", c.cfg.CountryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, false
	}

	candidates := make([]Candidate, 0, len(places))
	for _, p := range places {
		cand := Candidate{Label: p.DisplayName}
		if coord, ok := parseCoord(p.Lat, p.Lon); ok {
			cand.Coord = &coord
		}
		candidates = append(candidates, cand)
	}
	return candidates, true
}

func parseCoord(latStr, lonStr string) (geo.Coordinate, bool) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	lng, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	return c, c.Valid()
}

// placeholders is the deliberate degrade policy: two synthetic suggestions
// built from the raw query. Callers may display them but must not depend on
// their shape.
func placeholders(query string) []Candidate {
	return []Candidate{
		{Label: query + " - Buscar en el mapa"},
		{Label: query + " - Dirección aproximada"},
	}
}
