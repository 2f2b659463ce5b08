package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/repository"
	"buslane/internal/fleet/validator"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/events"
	"buslane/pkg/kafka"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// EventPublisher is the slice of the Kafka producer the ledger needs.
// A nil publisher disables event emission.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ScheduleService interface {
	// AddInterval records a carrier blackout. A literal duplicate window is
	// a Conflict; an overlapping-but-distinct window is accepted.
	AddInterval(ctx context.Context, token string, iv *model.CommitmentInterval) error
	RemoveInterval(ctx context.Context, token, id string) error
	ListByVehicle(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error)
	// Overlaps reports whether any interval conflicts with the half-open
	// window [start, end).
	Overlaps(ctx context.Context, vehicleID string, start, end time.Time) (bool, error)
	// CommitReservation is the booking-accept write path: it takes a
	// per-slot advisory lock, re-checks overlap inside one transaction and
	// inserts a reservation interval. This is the only place double
	// booking is prevented; the search path gives no such guarantee.
	CommitReservation(ctx context.Context, vehicleID, routeID string, start, end time.Time) (*model.CommitmentInterval, error)
}

type scheduleService struct {
	repo           repository.IntervalRepository
	lockRepo       repository.SlotLockRepository
	vehicleRepo    repository.VehicleRepository
	assignmentRepo repository.AssignmentRepository
	validator      *validator.IntervalValidator
	publisher      EventPublisher
	cfg            *config.Config
}

func NewScheduleService(
	repo repository.IntervalRepository,
	lockRepo repository.SlotLockRepository,
	vehicleRepo repository.VehicleRepository,
	assignmentRepo repository.AssignmentRepository,
	validator *validator.IntervalValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:           repo,
		lockRepo:       lockRepo,
		vehicleRepo:    vehicleRepo,
		assignmentRepo: assignmentRepo,
		validator:      validator,
		publisher:      publisher,
		cfg:            cfg,
	}
}

func (s *scheduleService) AddInterval(ctx context.Context, token string, iv *model.CommitmentInterval) error {
	if iv.Reason == "" {
		iv.Reason = model.ReasonTechnical
	}

	if err := s.verifyOwnedVehicle(ctx, token, iv.VehicleID); err != nil {
		return err
	}

	if err := s.validator.Validate(iv); err != nil {
		s.cfg.Log.Warn("Interval validation failed",
			"vehicle_id", iv.VehicleID,
			"start_time", iv.StartTime,
			"end_time", iv.EndTime,
			"error", err,
		)
		return apperrors.Validation("Interval validation failed", validationDetails(err))
	}

	if err := s.repo.Create(ctx, iv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("An identical interval already exists for this vehicle")
		}
		s.cfg.Log.Error("Failed to create interval",
			"vehicle_id", iv.VehicleID,
			"error", err,
		)
		return apperrors.Internal("Failed to create interval", err)
	}

	s.cfg.Log.Info("Interval created successfully",
		"id", iv.ID,
		"vehicle_id", iv.VehicleID,
		"start_time", iv.StartTime,
		"end_time", iv.EndTime,
		"reason", iv.Reason,
	)
	s.publishLedgerEvent(ctx, events.EventIntervalAdded, iv)
	return nil
}

func (s *scheduleService) RemoveInterval(ctx context.Context, token, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Interval ID cannot be empty")
	}

	iv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrIntervalNotFound) {
			return apperrors.NotFoundWithID("Interval", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid interval ID format")
		}
		return apperrors.Internal("Failed to retrieve interval", err)
	}

	if err := s.verifyOwnedVehicle(ctx, token, iv.VehicleID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, fleeterrors.ErrIntervalNotFound) {
			return apperrors.NotFoundWithID("Interval", id)
		}
		s.cfg.Log.Error("Failed to delete interval", "id", id, "error", err)
		return apperrors.Internal("Failed to delete interval", err)
	}

	s.cfg.Log.Info("Interval deleted successfully", "id", id, "vehicle_id", iv.VehicleID)
	s.publishLedgerEvent(ctx, events.EventIntervalRemoved, iv)
	return nil
}

func (s *scheduleService) ListByVehicle(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	intervals, err := s.repo.FindByVehicle(ctx, vehicleID, from, to, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list intervals", "vehicle_id", vehicleID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve intervals", err)
	}

	return intervals, nil
}

func (s *scheduleService) Overlaps(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	if vehicleID == "" {
		return false, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	if !end.After(start) {
		return false, apperrors.Validation("Invalid window", map[string]any{
			"end_time": "end_time must be after start_time",
		})
	}

	count, err := s.repo.CountOverlapping(ctx, vehicleID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to check overlap", "vehicle_id", vehicleID, "error", err)
		return false, apperrors.Internal("Failed to check overlap", err)
	}

	return count > 0, nil
}

func (s *scheduleService) CommitReservation(ctx context.Context, vehicleID, routeID string, start, end time.Time) (*model.CommitmentInterval, error) {
	iv := &model.CommitmentInterval{
		VehicleID: vehicleID,
		RouteID:   routeID,
		StartTime: start,
		EndTime:   end,
		Reason:    model.ReasonReservation,
	}

	if err := s.validator.Validate(iv); err != nil {
		s.cfg.Log.Warn("Reservation validation failed",
			"vehicle_id", vehicleID,
			"route_id", routeID,
			"error", err,
		)
		return nil, apperrors.Validation("Reservation validation failed", validationDetails(err))
	}

	if _, err := s.vehicleRepo.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, fleeterrors.ErrVehicleNotFound) || errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidReference("vehicle", vehicleID)
		}
		return nil, apperrors.Internal("Failed to verify vehicle", err)
	}

	// The vehicle must actually serve the route being booked.
	if _, err := s.assignmentRepo.FindByVehicleAndRoute(ctx, vehicleID, routeID); err != nil {
		if errors.Is(err, fleeterrors.ErrAssignmentNotFound) {
			return nil, apperrors.InvalidReference("assignment", fmt.Sprintf("%s/%s", vehicleID, routeID))
		}
		return nil, apperrors.Internal("Failed to verify assignment", err)
	}

	lockID, err := s.acquireSlotLock(ctx, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		count, err := s.repo.CountOverlapping(sessCtx, vehicleID, start, end)
		if err != nil {
			return apperrors.Internal("Failed to re-check overlap", err)
		}
		if count > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Vehicle is already committed within %s - %s",
				start.Format(time.RFC3339),
				end.Format(time.RFC3339),
			))
		}

		if err := s.repo.Create(sessCtx, iv); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("An identical interval already exists for this vehicle")
			}
			return apperrors.Internal("Failed to create reservation interval", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to commit reservation",
			"vehicle_id", vehicleID,
			"route_id", routeID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation committed successfully",
		"id", iv.ID,
		"vehicle_id", vehicleID,
		"route_id", routeID,
		"start_time", start,
		"end_time", end,
	)
	s.publishLedgerEvent(ctx, events.EventReservationCommitted, iv)
	return iv, nil
}

// acquireSlotLock creates an advisory lock keyed by the slot coordinates.
// Returns Conflict if another request is committing the same slot.
func (s *scheduleService) acquireSlotLock(ctx context.Context, vehicleID string, start, end time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%d_%d", vehicleID, start.Unix(), end.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being committed by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *scheduleService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *scheduleService) verifyOwnedVehicle(ctx context.Context, token, vehicleID string) error {
	if vehicleID == "" {
		return apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	carrierID, err := s.cfg.Client.Accounts.ResolveCarrier(ctx, token)
	if err != nil {
		return err
	}

	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrVehicleNotFound) || errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidReference("vehicle", vehicleID)
		}
		return apperrors.Internal("Failed to verify vehicle", err)
	}

	if v.CarrierID != carrierID {
		s.cfg.Log.Warn("Vehicle ownership check failed",
			"vehicle_id", vehicleID,
			"owner", v.CarrierID,
			"caller", carrierID,
		)
		return apperrors.Forbidden("Access denied")
	}

	return nil
}

// publishLedgerEvent emits an audit event fire-and-forget. The ledger write
// already succeeded; a publish failure is logged and swallowed.
func (s *scheduleService) publishLedgerEvent(ctx context.Context, eventType string, iv *model.CommitmentInterval) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(iv.VehicleID).
		WithEventType(eventType).
		WithSource("fleet").
		WithValue(events.LedgerEvent{
			IntervalID: iv.ID,
			VehicleID:  iv.VehicleID,
			RouteID:    iv.RouteID,
			StartTime:  iv.StartTime,
			EndTime:    iv.EndTime,
			Reason:     iv.Reason,
		}).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish ledger event",
			"event_type", eventType,
			"interval_id", iv.ID,
			"error", err,
		)
	}
}
