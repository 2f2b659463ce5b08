package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"buslane/internal/fleet/service"
	apperrors "buslane/pkg/errors"
	httputil "buslane/pkg/http"
	"buslane/pkg/logger"
	"buslane/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log,
	}
}

func (h *ScheduleHandler) AddInterval(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var interval model.CommitmentInterval
	if err := json.NewDecoder(r.Body).Decode(&interval); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddInterval", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.AddInterval(r.Context(), bearerToken(r), &interval); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddInterval", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, interval); err != nil {
		h.log.Error("failed to write created response", "handler", "AddInterval", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) RemoveInterval(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.RemoveInterval(r.Context(), bearerToken(r), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RemoveInterval", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) ListByVehicle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicleID := ps.ByName("vehicleId")

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	from, err := parseOptionalTime(r.URL.Query().Get("from"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid from format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	to, err := parseOptionalTime(r.URL.Query().Get("to"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid to format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	intervals, err := h.service.ListByVehicle(r.Context(), vehicleID, from, to, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByVehicle", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, intervals, len(intervals)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListByVehicle", "operation", "WriteList", "error", err)
	}
}

type overlapResponse struct {
	Overlaps bool `json:"overlaps"`
}

func (h *ScheduleHandler) Overlaps(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	vehicleID := query.Get("vehicle_id")

	start, err := time.Parse(time.RFC3339, query.Get("start_time"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid start_time format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Overlaps", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end_time"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid end_time format, must be RFC3339")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Overlaps", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	overlaps, err := h.service.Overlaps(r.Context(), vehicleID, start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Overlaps", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, overlapResponse{Overlaps: overlaps}); err != nil {
		h.log.Error("failed to write success response", "handler", "Overlaps", "operation", "WriteSuccess", "error", err)
	}
}

type reservationRequest struct {
	VehicleID string    `json:"vehicle_id"`
	RouteID   string    `json:"route_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// CommitReservation is called by the booking collaborator, not carriers,
// so there is no bearer-token ownership check here.
func (h *ScheduleHandler) CommitReservation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CommitReservation", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	interval, err := h.service.CommitReservation(r.Context(), req.VehicleID, req.RouteID, req.StartTime, req.EndTime)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CommitReservation", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, interval); err != nil {
		h.log.Error("failed to write created response", "handler", "CommitReservation", "operation", "WriteCreated", "error", err)
	}
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/intervals", h.AddInterval)
	router.DELETE("/api/v1/intervals/id/:id", h.RemoveInterval)
	router.GET("/api/v1/intervals/vehicle/:vehicleId", h.ListByVehicle)
	router.GET("/api/v1/intervals/overlaps", h.Overlaps)
	router.POST("/api/v1/reservations", h.CommitReservation)
}
