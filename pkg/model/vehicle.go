package model

import "time"

// Amenities are the vehicle comfort flags clients can filter on.
type Amenities struct {
	Luggage         bool `json:"luggage" bson:"luggage"`
	Wifi            bool `json:"wifi" bson:"wifi"`
	TV              bool `json:"tv" bson:"tv"`
	AirConditioning bool `json:"air_conditioning" bson:"air_conditioning"`
	Toilet          bool `json:"toilet" bson:"toilet"`
}

type Vehicle struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CarrierID string    `json:"carrier_id" bson:"carrier_id" validate:"required"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Brand     string    `json:"brand" bson:"brand" validate:"required,min=1,max=50"`
	Model     string    `json:"model" bson:"model" validate:"required,min=1,max=50"`
	Year      int       `json:"year" bson:"year" validate:"required,min=1950,max=2100"`
	Seats     int       `json:"seats" bson:"seats" validate:"required,min=1,max=200"`
	Photo     string    `json:"photo,omitempty" bson:"photo" validate:"omitempty,max=500"`
	Amenities Amenities `json:"amenities" bson:"amenities"`
	// Rating is a running average maintained by the ratings worker.
	// It is never recomputed on the search path.
	Rating      float64   `json:"rating" bson:"rating" validate:"omitempty,min=0,max=5"`
	RatingCount int64     `json:"-" bson:"rating_count" validate:"omitempty,min=0"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type VehicleUpdate struct {
	Name      string     `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Brand     string     `json:"brand,omitempty" validate:"omitempty,min=1,max=50"`
	Model     string     `json:"model,omitempty" validate:"omitempty,min=1,max=50"`
	Year      *int       `json:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Seats     *int       `json:"seats,omitempty" validate:"omitempty,min=1,max=200"`
	Photo     string     `json:"photo,omitempty" validate:"omitempty,max=500"`
	Amenities *Amenities `json:"amenities,omitempty"`
}
