package model

import "time"

const (
	SortByRating = "rating"
	SortByPrice  = "price"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SearchFilter is the availability request. It is never persisted.
// Amenity pointers distinguish "don't care" (nil) from an exact-match
// constraint. The price bound is a containment check: a vehicle's band
// must fit entirely inside [MinPrice, MaxPrice].
type SearchFilter struct {
	OriginID      string    `json:"origin_id" validate:"required,mongodb"`
	DestinationID string    `json:"destination_id" validate:"required,mongodb"`
	StartTime     time.Time `json:"start_time" validate:"required,future"`
	EndTime       time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	MinSeats      int       `json:"min_seats" validate:"required,min=1"`
	MinPrice      float64   `json:"min_price" validate:"min=0"`
	MaxPrice      float64   `json:"max_price" validate:"min=0,gtefield=MinPrice"`

	Luggage         *bool `json:"luggage,omitempty"`
	Wifi            *bool `json:"wifi,omitempty"`
	TV              *bool `json:"tv,omitempty"`
	AirConditioning *bool `json:"air_conditioning,omitempty"`
	Toilet          *bool `json:"toilet,omitempty"`

	SortBy    string `json:"sort_by,omitempty" validate:"omitempty,oneof=rating price"`
	SortOrder string `json:"sort_order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// RankedResult is one search hit. It always names the assignment that
// matched, so the band is unambiguous when a vehicle serves several routes.
type RankedResult struct {
	VehicleID    string    `json:"vehicle_id"`
	CarrierID    string    `json:"carrier_id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Seats        int       `json:"seats"`
	Amenities    Amenities `json:"amenities"`
	Photo        string    `json:"photo,omitempty"`
	Rating       float64   `json:"rating"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	RouteID      string    `json:"route_id"`
	AssignmentID string    `json:"assignment_id"`
}
