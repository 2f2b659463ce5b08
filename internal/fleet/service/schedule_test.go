package service

import (
	"context"
	"strings"
	"testing"
	"time"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/validator"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/events"
	"buslane/pkg/model"
)

func newScheduleService(t *testing.T, intervals *mockIntervalRepository, locks *mockSlotLockRepository, vehicles *mockVehicleRepository, assignments *mockAssignmentRepository, publisher EventPublisher) ScheduleService {
	t.Helper()
	cfg := newTestConfig(t)
	return NewScheduleService(intervals, locks, vehicles, assignments, validator.NewIntervalValidator(cfg.Log), publisher, cfg)
}

func futureWindow() (time.Time, time.Time) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	return start, start.Add(2 * time.Hour)
}

func ownedVehicleRepo() *mockVehicleRepository {
	return &mockVehicleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			v := validVehicle()
			v.ID = id
			return v, nil
		},
	}
}

func TestAddInterval_DefaultsReasonToTechnical(t *testing.T) {
	var created *model.CommitmentInterval
	intervals := &mockIntervalRepository{
		createFunc: func(ctx context.Context, iv *model.CommitmentInterval) error {
			created = iv
			return nil
		},
	}
	publisher := &mockEventPublisher{}
	svc := newScheduleService(t, intervals, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, publisher)

	start, end := futureWindow()
	err := svc.AddInterval(context.Background(), "token", &model.CommitmentInterval{
		VehicleID: testVehicleID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Reason != model.ReasonTechnical {
		t.Errorf("expected default reason %s, got %s", model.ReasonTechnical, created.Reason)
	}
	if len(publisher.published) != 1 || publisher.published[0] != events.EventIntervalAdded {
		t.Errorf("expected one %s event, got %v", events.EventIntervalAdded, publisher.published)
	}
}

func TestAddInterval_LiteralDuplicateIsConflict(t *testing.T) {
	intervals := &mockIntervalRepository{
		createFunc: func(ctx context.Context, iv *model.CommitmentInterval) error {
			return duplicateKeyErr()
		},
	}
	svc := newScheduleService(t, intervals, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, nil)

	start, end := futureWindow()
	err := svc.AddInterval(context.Background(), "token", &model.CommitmentInterval{
		VehicleID: testVehicleID,
		StartTime: start,
		EndTime:   end,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestAddInterval_PastStartIsRejected(t *testing.T) {
	svc := newScheduleService(t, &mockIntervalRepository{}, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, nil)

	err := svc.AddInterval(context.Background(), "token", &model.CommitmentInterval{
		VehicleID: testVehicleID,
		StartTime: time.Now().Add(-time.Hour),
		EndTime:   time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestAddInterval_UnknownVehicleIsInvalidReference(t *testing.T) {
	vehicles := &mockVehicleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return nil, fleeterrors.ErrVehicleNotFound
		},
	}
	svc := newScheduleService(t, &mockIntervalRepository{}, &mockSlotLockRepository{}, vehicles, &mockAssignmentRepository{}, nil)

	start, end := futureWindow()
	err := svc.AddInterval(context.Background(), "token", &model.CommitmentInterval{
		VehicleID: testVehicleID,
		StartTime: start,
		EndTime:   end,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidReference {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidReference, appErr.Code)
	}
}

func TestOverlaps_InvalidWindow(t *testing.T) {
	svc := newScheduleService(t, &mockIntervalRepository{}, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, nil)

	start := time.Now().Add(time.Hour)
	_, err := svc.Overlaps(context.Background(), testVehicleID, start, start)
	if err == nil {
		t.Fatal("expected error for zero-length window")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestOverlaps_Passthrough(t *testing.T) {
	intervals := &mockIntervalRepository{
		countOverlappingFunc: func(ctx context.Context, vehicleID string, start, end time.Time) (int64, error) {
			return 2, nil
		},
	}
	svc := newScheduleService(t, intervals, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, nil)

	start, end := futureWindow()
	overlaps, err := svc.Overlaps(context.Background(), testVehicleID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !overlaps {
		t.Error("expected overlap reported")
	}
}

func TestCommitReservation_Success(t *testing.T) {
	var created *model.CommitmentInterval
	var lockCreated, lockReleased string

	intervals := &mockIntervalRepository{
		createFunc: func(ctx context.Context, iv *model.CommitmentInterval) error {
			created = iv
			return nil
		},
	}
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			lockCreated = lock.ID
			return lock, nil
		},
		deleteFunc: func(ctx context.Context, lockID string) error {
			lockReleased = lockID
			return nil
		},
	}
	publisher := &mockEventPublisher{}
	svc := newScheduleService(t, intervals, locks, ownedVehicleRepo(), &mockAssignmentRepository{}, publisher)

	start, end := futureWindow()
	iv, err := svc.CommitReservation(context.Background(), testVehicleID, testRouteID, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Reason != model.ReasonReservation {
		t.Errorf("expected reason %s, got %s", model.ReasonReservation, iv.Reason)
	}
	if created == nil {
		t.Fatal("expected interval persisted")
	}
	if lockCreated == "" {
		t.Error("expected slot lock acquired")
	}
	if !strings.HasPrefix(lockCreated, "slot_lock_"+testVehicleID) {
		t.Errorf("expected lock keyed by slot coordinates, got %s", lockCreated)
	}
	if lockReleased != lockCreated {
		t.Errorf("expected lock released after commit, acquired %s released %s", lockCreated, lockReleased)
	}
	if len(publisher.published) != 1 || publisher.published[0] != events.EventReservationCommitted {
		t.Errorf("expected one %s event, got %v", events.EventReservationCommitted, publisher.published)
	}
}

func TestCommitReservation_OverlapIsConflictAndReleasesLock(t *testing.T) {
	var lockReleased bool
	intervals := &mockIntervalRepository{
		countOverlappingFunc: func(ctx context.Context, vehicleID string, start, end time.Time) (int64, error) {
			return 1, nil
		},
	}
	locks := &mockSlotLockRepository{
		deleteFunc: func(ctx context.Context, lockID string) error {
			lockReleased = true
			return nil
		},
	}
	publisher := &mockEventPublisher{}
	svc := newScheduleService(t, intervals, locks, ownedVehicleRepo(), &mockAssignmentRepository{}, publisher)

	start, end := futureWindow()
	_, err := svc.CommitReservation(context.Background(), testVehicleID, testRouteID, start, end)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
	if !lockReleased {
		t.Error("expected slot lock released on conflict")
	}
	if len(publisher.published) != 0 {
		t.Errorf("expected no event on conflict, got %v", publisher.published)
	}
}

func TestCommitReservation_ContestedSlotIsConflict(t *testing.T) {
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, duplicateKeyErr()
		},
	}
	svc := newScheduleService(t, &mockIntervalRepository{}, locks, ownedVehicleRepo(), &mockAssignmentRepository{}, nil)

	start, end := futureWindow()
	_, err := svc.CommitReservation(context.Background(), testVehicleID, testRouteID, start, end)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestCommitReservation_VehicleNotOnRoute(t *testing.T) {
	assignments := &mockAssignmentRepository{
		findByVehicleAndRouteFunc: func(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error) {
			return nil, fleeterrors.ErrAssignmentNotFound
		},
	}
	svc := newScheduleService(t, &mockIntervalRepository{}, &mockSlotLockRepository{}, ownedVehicleRepo(), assignments, nil)

	start, end := futureWindow()
	_, err := svc.CommitReservation(context.Background(), testVehicleID, testRouteID, start, end)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidReference {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidReference, appErr.Code)
	}
}

func TestRemoveInterval_PublishesRemovalEvent(t *testing.T) {
	start, end := futureWindow()
	intervals := &mockIntervalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.CommitmentInterval, error) {
			return &model.CommitmentInterval{
				ID:        id,
				VehicleID: testVehicleID,
				StartTime: start,
				EndTime:   end,
				Reason:    model.ReasonTechnical,
			}, nil
		},
	}
	publisher := &mockEventPublisher{}
	svc := newScheduleService(t, intervals, &mockSlotLockRepository{}, ownedVehicleRepo(), &mockAssignmentRepository{}, publisher)

	if err := svc.RemoveInterval(context.Background(), "token", "iv-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(publisher.published) != 1 || publisher.published[0] != events.EventIntervalRemoved {
		t.Errorf("expected one %s event, got %v", events.EventIntervalRemoved, publisher.published)
	}
}
