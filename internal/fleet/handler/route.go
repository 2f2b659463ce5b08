package handler

import (
	"encoding/json"
	"net/http"

	"buslane/internal/fleet/service"
	httputil "buslane/pkg/http"
	"buslane/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type RouteHandler struct {
	service service.RouteService
	log     *logger.Logger
}

func NewRouteHandler(service service.RouteService, log *logger.Logger) *RouteHandler {
	return &RouteHandler{
		service: service,
		log:     log,
	}
}

type routeRequest struct {
	OriginID      string `json:"origin_id"`
	DestinationID string `json:"destination_id"`
}

// GetOrCreate is deliberately not a plain POST-create: repeating the same
// pair returns the existing route with 200.
func (h *RouteHandler) GetOrCreate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "GetOrCreate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	route, err := h.service.GetOrCreate(r.Context(), req.OriginID, req.DestinationID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetOrCreate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, route); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOrCreate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RouteHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	route, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, route); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RouteHandler) ListCities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	cities, total, err := h.service.ListCities(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCities", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, cities, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListCities", "operation", "WritePaginated", "error", err)
	}
}

func (h *RouteHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/routes", h.GetOrCreate)
	router.GET("/api/v1/routes/id/:id", h.GetByID)
	router.GET("/api/v1/cities", h.ListCities)
}
