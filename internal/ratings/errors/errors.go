package errors

import "errors"

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidID       = errors.New("invalid ID format")
)
