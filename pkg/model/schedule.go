package model

import "time"

// Commitment reasons. A reservation interval is written by the booking
// commit path; technical intervals are carrier blackouts.
const (
	ReasonTechnical   = "technical"
	ReasonReservation = "reservation"
)

// CommitmentInterval is a half-open window [StartTime, EndTime) during
// which a vehicle cannot be offered. Intervals are never modified in
// place; a change is a delete plus recreate.
type CommitmentInterval struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	RouteID   string    `json:"route_id,omitempty" bson:"route_id,omitempty" validate:"omitempty,mongodb"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Reason    string    `json:"reason" bson:"reason" validate:"required,oneof=technical reservation"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// SlotLock is a short-lived advisory lock taken while a reservation commit
// re-validates the ledger. The _id encodes the slot coordinates; a TTL
// index on expires_at garbage-collects stale locks.
type SlotLock struct {
	ID        string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
