package errors

import "errors"

var (
	ErrRouteNotFound      = errors.New("route not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	ErrInvalidID = errors.New("invalid ID format")
)
