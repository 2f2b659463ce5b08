package errors

import "errors"

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrCityNotFound       = errors.New("city not found")
	ErrRouteNotFound      = errors.New("route not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrIntervalNotFound   = errors.New("commitment interval not found")

	ErrInvalidID = errors.New("invalid ID format")
)
