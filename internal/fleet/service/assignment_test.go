package service

import (
	"context"
	"testing"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/validator"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"
)

func newAssignmentService(t *testing.T, repo *mockAssignmentRepository, vehicles *mockVehicleRepository, routes RouteService) AssignmentService {
	t.Helper()
	cfg := newTestConfig(t)
	return NewAssignmentService(repo, vehicles, routes, validator.NewAssignmentValidator(cfg.Log), cfg)
}

func newRouteServiceForTest(t *testing.T, routes *mockRouteRepository, cities *mockCityRepository) RouteService {
	t.Helper()
	return NewRouteService(routes, cities, newTestConfig(t))
}

func TestAssign_CreatesRouteOnFirstUse(t *testing.T) {
	var created *model.Assignment
	repo := &mockAssignmentRepository{
		createFunc: func(ctx context.Context, a *model.Assignment) error {
			created = a
			return nil
		},
	}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, repo, ownedVehicleRepo(), routes)

	a, err := svc.Assign(context.Background(), "token", testVehicleID, testOriginID, testDestID, 20, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.RouteID != testRouteID {
		t.Errorf("expected route resolved via get-or-create, got %s", a.RouteID)
	}
	if created.MinPrice != 20 || created.MaxPrice != 50 {
		t.Errorf("expected band persisted, got min=%v max=%v", created.MinPrice, created.MaxPrice)
	}
}

func TestAssign_SecondBandOnSameRouteIsConflict(t *testing.T) {
	repo := &mockAssignmentRepository{
		createFunc: func(ctx context.Context, a *model.Assignment) error {
			return duplicateKeyErr()
		},
	}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, repo, ownedVehicleRepo(), routes)

	_, err := svc.Assign(context.Background(), "token", testVehicleID, testOriginID, testDestID, 20, 50)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestAssign_InvertedBandIsAccepted(t *testing.T) {
	repo := &mockAssignmentRepository{}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, repo, ownedVehicleRepo(), routes)

	// min > max is stored as-is; only the search path interprets the band.
	if _, err := svc.Assign(context.Background(), "token", testVehicleID, testOriginID, testDestID, 50, 20); err != nil {
		t.Fatalf("expected inverted band accepted, got %v", err)
	}
}

func TestAssign_UnknownVehicleIsInvalidReference(t *testing.T) {
	vehicles := &mockVehicleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			return nil, fleeterrors.ErrVehicleNotFound
		},
	}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, &mockAssignmentRepository{}, vehicles, routes)

	_, err := svc.Assign(context.Background(), "token", testVehicleID, testOriginID, testDestID, 20, 50)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidReference {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidReference, appErr.Code)
	}
}

func TestAssign_ForeignVehicleIsForbidden(t *testing.T) {
	vehicles := &mockVehicleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Vehicle, error) {
			v := validVehicle()
			v.CarrierID = "carrier-2"
			return v, nil
		},
	}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, &mockAssignmentRepository{}, vehicles, routes)

	_, err := svc.Assign(context.Background(), "token", testVehicleID, testOriginID, testDestID, 20, 50)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected code %s, got %s", apperrors.CodeForbidden, appErr.Code)
	}
}

func TestUnassign_MissingAssignmentIsNotFound(t *testing.T) {
	repo := &mockAssignmentRepository{
		deleteByVehicleAndRouteFunc: func(ctx context.Context, vehicleID, routeID string) error {
			return fleeterrors.ErrAssignmentNotFound
		},
	}
	routes := newRouteServiceForTest(t, &mockRouteRepository{}, &mockCityRepository{})
	svc := newAssignmentService(t, repo, ownedVehicleRepo(), routes)

	err := svc.Unassign(context.Background(), "token", testVehicleID, testRouteID)
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}
