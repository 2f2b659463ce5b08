// Integration coverage for the fleet write path against a real MongoDB.
// Set TEST_MONGO_URI to run; the reservation tests use multi-document
// transactions, so the target must be a replica set.
package integration

import (
	"context"
	"testing"
	"time"

	"buslane/internal/fleet/repository"
	"buslane/internal/fleet/service"
	"buslane/internal/fleet/validator"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"
	"buslane/test/integration/testutil"
)

type fleetFixture struct {
	cfg         *config.Config
	vehicles    service.VehicleService
	routes      service.RouteService
	assignments service.AssignmentService
	schedule    service.ScheduleService
	cityRepo    repository.CityRepository
}

func newFleetFixture(t *testing.T) *fleetFixture {
	t.Helper()

	cfg := testutil.SetupConfig(t)
	testutil.WithAccountsStub(t, cfg)

	vehicleRepo := repository.NewMongoVehicleRepository(cfg)
	cityRepo := repository.NewMongoCityRepository(cfg)
	routeRepo := repository.NewMongoRouteRepository(cfg)
	assignmentRepo := repository.NewMongoAssignmentRepository(cfg)
	intervalRepo := repository.NewMongoIntervalRepository(cfg)
	lockRepo := repository.NewMongoSlotLockRepository(cfg)

	routes := service.NewRouteService(routeRepo, cityRepo, cfg)

	return &fleetFixture{
		cfg:      cfg,
		cityRepo: cityRepo,
		routes:   routes,
		vehicles: service.NewVehicleService(
			vehicleRepo, assignmentRepo, intervalRepo,
			validator.NewVehicleValidator(cfg.Log), cfg,
		),
		assignments: service.NewAssignmentService(
			assignmentRepo, vehicleRepo, routes,
			validator.NewAssignmentValidator(cfg.Log), cfg,
		),
		schedule: service.NewScheduleService(
			intervalRepo, lockRepo, vehicleRepo, assignmentRepo,
			validator.NewIntervalValidator(cfg.Log), nil, cfg,
		),
	}
}

func (f *fleetFixture) twoCities(t *testing.T, ctx context.Context) (string, string) {
	t.Helper()
	cities, err := f.cityRepo.FindAll(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to load seeded cities: %v", err)
	}
	if len(cities) < 2 {
		t.Fatalf("expected seeded cities, got %d", len(cities))
	}
	return cities[0].ID, cities[1].ID
}

func (f *fleetFixture) createVehicle(t *testing.T, ctx context.Context, name string) *model.Vehicle {
	t.Helper()
	v := &model.Vehicle{
		Name:  name,
		Brand: "Volvo",
		Model: "9700",
		Year:  2021,
		Seats: 52,
	}
	if err := f.vehicles.Create(ctx, "token", v); err != nil {
		t.Fatalf("failed to create vehicle %s: %v", name, err)
	}
	return v
}

func TestVehicleNameUniquePerCarrier(t *testing.T) {
	f := newFleetFixture(t)
	ctx := context.Background()

	f.createVehicle(t, ctx, "Night Express")

	dup := &model.Vehicle{Name: "Night Express", Brand: "MAN", Model: "Lion", Year: 2020, Seats: 40}
	err := f.vehicles.Create(ctx, "token", dup)
	if err == nil {
		t.Fatal("expected duplicate name rejected")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestRouteGetOrCreateConverges(t *testing.T) {
	f := newFleetFixture(t)
	ctx := context.Background()

	origin, destination := f.twoCities(t, ctx)

	first, err := f.routes.GetOrCreate(ctx, origin, destination)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.routes.GetOrCreate(ctx, origin, destination)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected one route per pair, got %s and %s", first.ID, second.ID)
	}

	// The reverse direction is a distinct route.
	reverse, err := f.routes.GetOrCreate(ctx, destination, origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reverse.ID == first.ID {
		t.Error("expected reverse direction to be a separate route")
	}
}

func TestReservationConflictFlow(t *testing.T) {
	f := newFleetFixture(t)
	ctx := context.Background()

	origin, destination := f.twoCities(t, ctx)
	v := f.createVehicle(t, ctx, "Reservation Express")

	assignment, err := f.assignments.Assign(ctx, "token", v.ID, origin, destination, 20, 50)
	if err != nil {
		t.Fatalf("failed to assign vehicle: %v", err)
	}

	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(3 * time.Hour)

	if _, err := f.schedule.CommitReservation(ctx, v.ID, assignment.RouteID, start, end); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// A window overlapping the committed one must be refused.
	_, err = f.schedule.CommitReservation(ctx, v.ID, assignment.RouteID, start.Add(time.Hour), end.Add(time.Hour))
	if err == nil {
		t.Fatal("expected overlapping reservation rejected")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}

	// Touching windows are legal under half-open semantics.
	if _, err := f.schedule.CommitReservation(ctx, v.ID, assignment.RouteID, end, end.Add(2*time.Hour)); err != nil {
		t.Fatalf("back-to-back reservation failed: %v", err)
	}
}

func TestAddIntervalDuplicateAndOverlap(t *testing.T) {
	f := newFleetFixture(t)
	ctx := context.Background()

	v := f.createVehicle(t, ctx, "Blackout Express")

	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(4 * time.Hour)

	iv := &model.CommitmentInterval{VehicleID: v.ID, StartTime: start, EndTime: end}
	if err := f.schedule.AddInterval(ctx, "token", iv); err != nil {
		t.Fatalf("failed to add interval: %v", err)
	}

	// A literal duplicate window hits the unique index.
	dup := &model.CommitmentInterval{VehicleID: v.ID, StartTime: start, EndTime: end}
	err := f.schedule.AddInterval(ctx, "token", dup)
	if err == nil {
		t.Fatal("expected duplicate interval rejected")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}

	// An overlapping-but-distinct blackout is accepted by the write path.
	overlapping := &model.CommitmentInterval{VehicleID: v.ID, StartTime: start.Add(time.Hour), EndTime: end.Add(time.Hour)}
	if err := f.schedule.AddInterval(ctx, "token", overlapping); err != nil {
		t.Fatalf("expected overlapping blackout accepted, got %v", err)
	}

	overlaps, err := f.schedule.Overlaps(ctx, v.ID, start, end)
	if err != nil {
		t.Fatalf("overlap check failed: %v", err)
	}
	if !overlaps {
		t.Error("expected overlap reported for committed window")
	}

	// Probe touching the end boundary reports no conflict.
	overlaps, err = f.schedule.Overlaps(ctx, v.ID, end.Add(time.Hour), end.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("overlap check failed: %v", err)
	}
	if overlaps {
		t.Error("expected no overlap past the committed windows")
	}
}

func TestVehicleDeleteCascades(t *testing.T) {
	f := newFleetFixture(t)
	ctx := context.Background()

	origin, destination := f.twoCities(t, ctx)
	v := f.createVehicle(t, ctx, "Doomed Express")

	if _, err := f.assignments.Assign(ctx, "token", v.ID, origin, destination, 10, 30); err != nil {
		t.Fatalf("failed to assign vehicle: %v", err)
	}

	if err := f.vehicles.Delete(ctx, "token", v.ID); err != nil {
		t.Fatalf("failed to delete vehicle: %v", err)
	}

	if _, err := f.vehicles.GetByID(ctx, v.ID); err == nil {
		t.Fatal("expected vehicle gone after delete")
	}
	assignments, err := f.assignments.ListByVehicle(ctx, v.ID)
	if err != nil {
		t.Fatalf("failed to list assignments: %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("expected assignments cascaded, got %d", len(assignments))
	}
}
