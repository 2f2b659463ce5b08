package model

import "time"

// Route is a directional city pair. (A->B) and (B->A) are distinct routes;
// the (origin, destination) pair is unique at the storage layer.
type Route struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OriginID      string    `json:"origin_id" bson:"origin_id" validate:"required,mongodb"`
	DestinationID string    `json:"destination_id" bson:"destination_id" validate:"required,mongodb,nefield=OriginID"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
