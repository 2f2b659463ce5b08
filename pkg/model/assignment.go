package model

import "time"

// Assignment is a vehicle's price band on one route. The (vehicle, route)
// pair is unique at the storage layer. MinPrice <= MaxPrice is deliberately
// not enforced on write; only the search path interprets the band.
type Assignment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	RouteID   string    `json:"route_id" bson:"route_id" validate:"required,mongodb"`
	MinPrice  float64   `json:"min_price" bson:"min_price" validate:"min=0"`
	MaxPrice  float64   `json:"max_price" bson:"max_price" validate:"min=0"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
