package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/platform/auth"
	"github.com/intu-mobility/service-ride/internal/platform/middleware"
	"github.com/intu-mobility/service-ride/internal/platform/response"
)

// TripHandler handles HTTP requests for the rider's trip history.
type TripHandler struct {
	service *application.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(service *application.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes registers all trip routes on the given router group.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	trips := r.Group("/api/v1/trips")
	trips.Use(authMW)
	{
		trips.GET("", h.ListTrips)
		trips.GET("/stats", h.GetStats)
		trips.GET("/:id", h.GetTrip)
		trips.POST("/:id/cancel", h.CancelTrip)
	}
}

// ListTrips handles GET /api/v1/trips. Supports an optional status filter.
func (h *TripHandler) ListTrips(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	status := c.Query("status")

	trips, total, err := h.service.ListTrips(c.Request.Context(), riderID, status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, trips, total, page, limit)
}

// GetStats handles GET /api/v1/trips/stats.
func (h *TripHandler) GetStats(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), riderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// GetTrip handles GET /api/v1/trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	trip, err := h.service.GetTrip(c.Request.Context(), tripID, riderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, trip)
}

// CancelTrip handles POST /api/v1/trips/:id/cancel.
func (h *TripHandler) CancelTrip(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	trip, err := h.service.CancelTrip(c.Request.Context(), tripID, riderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, trip)
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
