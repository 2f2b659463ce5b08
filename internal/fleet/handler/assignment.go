package handler

import (
	"encoding/json"
	"net/http"

	"buslane/internal/fleet/service"
	httputil "buslane/pkg/http"
	"buslane/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AssignmentHandler struct {
	service service.AssignmentService
	log     *logger.Logger
}

func NewAssignmentHandler(service service.AssignmentService, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		log:     log,
	}
}

type assignRequest struct {
	VehicleID     string  `json:"vehicle_id"`
	OriginID      string  `json:"origin_id"`
	DestinationID string  `json:"destination_id"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Assign", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	assignment, err := h.service.Assign(r.Context(), bearerToken(r), req.VehicleID, req.OriginID, req.DestinationID, req.MinPrice, req.MaxPrice)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Assign", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, assignment); err != nil {
		h.log.Error("failed to write created response", "handler", "Assign", "operation", "WriteCreated", "error", err)
	}
}

func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicleID := ps.ByName("vehicleId")
	routeID := ps.ByName("routeId")

	if err := h.service.Unassign(r.Context(), bearerToken(r), vehicleID, routeID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Unassign", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AssignmentHandler) ListByVehicle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicleID := ps.ByName("vehicleId")

	assignments, err := h.service.ListByVehicle(r.Context(), vehicleID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, assignments, len(assignments)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListByVehicle", "operation", "WriteList", "error", err)
	}
}

func (h *AssignmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/assignments", h.Assign)
	router.GET("/api/v1/assignments/vehicle/:vehicleId", h.ListByVehicle)
	router.DELETE("/api/v1/assignments/vehicle/:vehicleId/route/:routeId", h.Unassign)
}
