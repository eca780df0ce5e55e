package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/intu-mobility/service-ride/internal/application"
	"github.com/intu-mobility/service-ride/internal/domain/geo"
	"github.com/intu-mobility/service-ride/internal/platform/auth"
	"github.com/intu-mobility/service-ride/internal/platform/middleware"
	"github.com/intu-mobility/service-ride/internal/platform/response"
)

// FlowHandler handles HTTP requests for the destination-selection flow.
type FlowHandler struct {
	sessions *application.SessionManager
}

// NewFlowHandler creates a new FlowHandler.
func NewFlowHandler(sessions *application.SessionManager) *FlowHandler {
	return &FlowHandler{sessions: sessions}
}

// RegisterRoutes registers all flow routes on the given router group.
func (h *FlowHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	flow := r.Group("/api/v1/flow")
	flow.Use(authMW)
	{
		flow.GET("", h.GetSession)
		flow.POST("/location", h.ReportLocation)
		flow.POST("/advisory/dismiss", h.DismissAdvisory)
		flow.POST("/search", h.Search)
		flow.POST("/destination", h.ChooseDestination)
		flow.POST("/picking", h.EnterPicking)
		flow.PUT("/picking/center", h.ReportPickCenter)
		flow.POST("/picking/confirm", h.ConfirmPickedLocation)
		flow.POST("/quote", h.RequestQuotes)
		flow.POST("/confirm", h.ConfirmRide)
		flow.POST("/cancel", h.Cancel)
		flow.POST("/drawer/drag", h.DrawerDrag)
		flow.PUT("/drawer/size", h.DrawerResize)
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type destinationRequest struct {
	Label string   `json:"label" binding:"required"`
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
}

type centerRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

type confirmRequest struct {
	VehicleClassID string `json:"vehicle_class_id" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type dragRequest struct {
	Phase  string  `json:"phase" binding:"required"`
	DeltaY float64 `json:"delta_y"`
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type resizeRequest struct {
	ExpandedHeight  int `json:"expanded_height" binding:"required"`
	CollapsedHeight int `json:"collapsed_height" binding:"required"`
}

// GetSession handles GET /api/v1/flow.
func (h *FlowHandler) GetSession(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	snapshot, err := h.sessions.Snapshot(riderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}

// ReportLocation handles POST /api/v1/flow/location. Clients report the
// device position reading here; omitting the coordinates reports a failed or
// denied reading and raises the location advisory.
func (h *FlowHandler) ReportLocation(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	var coord *geo.Coordinate
	if req.Lat != nil && req.Lng != nil {
		coord = &geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	if err := h.sessions.ReportLocation(c.Request.Context(), riderID, coord); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// DismissAdvisory handles POST /api/v1/flow/advisory/dismiss.
func (h *FlowHandler) DismissAdvisory(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.sessions.DismissAdvisory(riderID); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// Search handles POST /api/v1/flow/search.
func (h *FlowHandler) Search(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.Search(riderID, req.Query); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// ChooseDestination handles POST /api/v1/flow/destination.
func (h *FlowHandler) ChooseDestination(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req destinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var coord *geo.Coordinate
	if req.Lat != nil && req.Lng != nil {
		coord = &geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	if err := h.sessions.ChooseDestination(c.Request.Context(), riderID, req.Label, coord); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// EnterPicking handles POST /api/v1/flow/picking.
func (h *FlowHandler) EnterPicking(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.sessions.EnterPicking(riderID); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// ReportPickCenter handles PUT /api/v1/flow/picking/center.
func (h *FlowHandler) ReportPickCenter(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req centerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.ReportPickCenter(riderID, geo.Coordinate{Lat: req.Lat, Lng: req.Lng}); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// ConfirmPickedLocation handles POST /api/v1/flow/picking/confirm.
func (h *FlowHandler) ConfirmPickedLocation(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.sessions.ConfirmPickedLocation(c.Request.Context(), riderID); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// RequestQuotes handles POST /api/v1/flow/quote.
func (h *FlowHandler) RequestQuotes(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.sessions.RequestQuotes(riderID); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// ConfirmRide handles POST /api/v1/flow/confirm. The response is accepted,
// not created: the trip record appears once the confirmation delay elapses.
func (h *FlowHandler) ConfirmRide(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.ConfirmRide(riderID, req.VehicleClassID); err != nil {
		response.Error(c, err)
		return
	}

	snapshot, err := h.sessions.Snapshot(riderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": snapshot})
}

// Cancel handles POST /api/v1/flow/cancel.
func (h *FlowHandler) Cancel(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.Cancel(c.Request.Context(), riderID, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// DrawerDrag handles POST /api/v1/flow/drawer/drag.
func (h *FlowHandler) DrawerDrag(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.DrawerDrag(riderID, req.Phase, req.DeltaY); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

// DrawerResize handles PUT /api/v1/flow/drawer/size, reported by clients
// when the viewport resizes.
func (h *FlowHandler) DrawerResize(c *gin.Context) {
	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.sessions.DrawerResize(riderID, req.ExpandedHeight, req.CollapsedHeight); err != nil {
		response.Error(c, err)
		return
	}
	h.respondSnapshot(c, riderID)
}

func (h *FlowHandler) respondSnapshot(c *gin.Context, riderID uuid.UUID) {
	snapshot, err := h.sessions.Snapshot(riderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}
