package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleCatalogIsPublic(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, http.MethodGet, "/api/v1/vehicles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	classes := decodeData[[]struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	}](t, rec)
	require.Len(t, classes, 5)
	assert.Equal(t, "moto_economy", classes[0].ID)
	assert.Equal(t, "IntuMoto", classes[0].Name)
}

func TestQuickAccessPlacesArePublic(t *testing.T) {
	s := newTestStack(t)

	rec := s.do(t, http.MethodGet, "/api/v1/places/quick-access", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	places := decodeData[[]struct {
		Icon    string `json:"icon"`
		Label   string `json:"label"`
		Address string `json:"address"`
	}](t, rec)
	require.Len(t, places, 4)
	assert.Equal(t, "Casa", places[0].Label)
}
