package events

import "time"

// Kafka topics shared between the fleet service and the background workers.
const (
	TopicLedgerEvents    = "fleet.ledger.events"
	TopicLedgerEventsDLQ = "fleet.ledger.events.dlq"

	TopicRatingEvents    = "transport.rating.events"
	TopicRatingEventsDLQ = "transport.rating.events.dlq"
)

// Ledger event types.
const (
	EventIntervalAdded        = "ledger.interval.added"
	EventIntervalRemoved      = "ledger.interval.removed"
	EventReservationCommitted = "ledger.reservation.committed"
)

// LedgerEvent is the audit record published after a commitment-ledger
// mutation. Consumers must tolerate unknown fields.
type LedgerEvent struct {
	IntervalID string    `json:"interval_id"`
	VehicleID  string    `json:"vehicle_id"`
	RouteID    string    `json:"route_id,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Reason     string    `json:"reason"`
}

// RatingEvent is one passenger rating for a vehicle, consumed by the
// ratings worker.
type RatingEvent struct {
	VehicleID string  `json:"vehicle_id"`
	Rating    float64 `json:"rating"`
}
