package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/domain/pricing"
	"github.com/intu-mobility/service-ride/internal/domain/route"
	"github.com/intu-mobility/service-ride/internal/geocoding"
	"github.com/intu-mobility/service-ride/internal/platform/auth"
	"github.com/intu-mobility/service-ride/internal/repository"
	"github.com/intu-mobility/service-ride/internal/viewport"
)

var (
	stackOrigin      = geo.Coordinate{Lat: 42.3601, Lng: -71.0589}
	stackDestination = geo.Coordinate{Lat: 42.3656, Lng: -71.0096}
)

type fixedSearcher struct{}

func (fixedSearcher) Search(_ context.Context, query string, _ geo.Coordinate) []geocoding.Candidate {
	return []geocoding.Candidate{
		{Label: "Logan International Airport, Boston", Coord: &stackDestination},
	}
}

type fixedPlanner struct{}

func (fixedPlanner) Plan(_ context.Context, origin, destination geo.Coordinate) (route.Route, error) {
	return route.New(
		[]geo.Coordinate{origin, destination},
		&route.Metrics{DistanceMeters: 5000, DurationSeconds: 1200},
	)
}

// testStack wires the full HTTP surface over the in-memory repository.
type testStack struct {
	router *gin.Engine
	jwt    *auth.JWTManager
	trips  *application.TripService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)

	trips := application.NewTripService(repository.NewInMemoryTripRepository(), nil, logger)
	sessions := application.NewSessionManager(
		application.SessionConfig{
			Map: viewport.Config{
				DefaultCenter: stackOrigin,
				DefaultZoom:   15,
				EdgePadding:   24,
			},
			SearchDebounce: time.Millisecond,
			ConfirmLatency: 5 * time.Millisecond,
			PhraseInterval: time.Hour,
		},
		fixedSearcher{},
		fixedPlanner{},
		pricing.NewEngine(pricing.NewCatalog()),
		trips,
		logger,
	)

	router := gin.New()
	root := router.Group("")
	NewFlowHandler(sessions).RegisterRoutes(root, jwtManager)
	NewTripHandler(trips).RegisterRoutes(root, jwtManager)
	NewAdminTripHandler(trips).RegisterRoutes(root, jwtManager)
	NewCatalogHandler(pricing.NewCatalog()).RegisterRoutes(root)

	return &testStack{router: router, jwt: jwtManager, trips: trips}
}

func (s *testStack) token(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (s *testStack) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

// snapshotBody mirrors application.SessionSnapshot for response decoding.
type snapshotBody struct {
	State            string `json:"state"`
	DestinationLabel string `json:"destination_label"`
	Destination      *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"destination"`
	Route *struct {
		Polyline string `json:"polyline"`
	} `json:"route"`
	Quotes []struct {
		ClassID string  `json:"class_id"`
		Name    string  `json:"name"`
		Amount  float64 `json:"amount"`
	} `json:"quotes"`
	Drawer struct {
		Visible       bool   `json:"visible"`
		State         string `json:"state"`
		VisibleHeight int    `json:"visible_height"`
		SelectedClass string `json:"selected_class"`
	} `json:"drawer"`
	Picking bool `json:"picking"`
	Center  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"center"`
	Advisory       string `json:"advisory"`
	DispatchPhrase string `json:"dispatch_phrase"`
	Trip           *struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	} `json:"trip"`
}

func (s *testStack) snapshot(t *testing.T, token string) snapshotBody {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/flow", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData[snapshotBody](t, rec)
}
