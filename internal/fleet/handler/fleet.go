package handler

import "github.com/julienschmidt/httprouter"

// FleetHandler aggregates the fleet service's HTTP surface behind one
// route registrar.
type FleetHandler struct {
	vehicles    *VehicleHandler
	assignments *AssignmentHandler
	routes      *RouteHandler
	schedule    *ScheduleHandler
}

func NewFleetHandler(
	vehicles *VehicleHandler,
	assignments *AssignmentHandler,
	routes *RouteHandler,
	schedule *ScheduleHandler,
) *FleetHandler {
	return &FleetHandler{
		vehicles:    vehicles,
		assignments: assignments,
		routes:      routes,
		schedule:    schedule,
	}
}

func (h *FleetHandler) RegisterRoutes(router *httprouter.Router) {
	h.vehicles.RegisterRoutes(router)
	h.assignments.RegisterRoutes(router)
	h.routes.RegisterRoutes(router)
	h.schedule.RegisterRoutes(router)
}
