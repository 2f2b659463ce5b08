package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buslane/pkg/client"
	"buslane/pkg/config"
	mongotx "buslane/pkg/db/mongo"
	"buslane/pkg/kafka"
	"buslane/pkg/logger"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mock repositories shared across the service tests
// ────────────────────────────────────────────────

type mockVehicleRepository struct {
	createFunc   func(ctx context.Context, v *model.Vehicle) error
	findByIDFunc func(ctx context.Context, id string) (*model.Vehicle, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, error)
	countFunc    func(ctx context.Context) (int64, error)
	updateFunc   func(ctx context.Context, id string, v *model.Vehicle) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockVehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, v)
	}
	return nil
}

func (m *mockVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Vehicle{ID: id}, nil
}

func (m *mockVehicleRepository) FindByCarrier(ctx context.Context, carrierID string, limit int, offset int64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (m *mockVehicleRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Vehicle{}, nil
}

func (m *mockVehicleRepository) Update(ctx context.Context, id string, v *model.Vehicle) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, v)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockVehicleRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockVehicleRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockVehicleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockAssignmentRepository struct {
	createFunc                  func(ctx context.Context, a *model.Assignment) error
	findByIDFunc                func(ctx context.Context, id string) (*model.Assignment, error)
	findByVehicleFunc           func(ctx context.Context, vehicleID string) ([]*model.Assignment, error)
	findByVehicleAndRouteFunc   func(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error)
	deleteByVehicleAndRouteFunc func(ctx context.Context, vehicleID, routeID string) error
	deleteByVehicleFunc         func(ctx context.Context, vehicleID string) error
}

func (m *mockAssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	return nil
}

func (m *mockAssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAssignmentRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Assignment, error) {
	if m.findByVehicleFunc != nil {
		return m.findByVehicleFunc(ctx, vehicleID)
	}
	return []*model.Assignment{}, nil
}

func (m *mockAssignmentRepository) FindByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error) {
	if m.findByVehicleAndRouteFunc != nil {
		return m.findByVehicleAndRouteFunc(ctx, vehicleID, routeID)
	}
	return &model.Assignment{VehicleID: vehicleID, RouteID: routeID}, nil
}

func (m *mockAssignmentRepository) DeleteByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) error {
	if m.deleteByVehicleAndRouteFunc != nil {
		return m.deleteByVehicleAndRouteFunc(ctx, vehicleID, routeID)
	}
	return nil
}

func (m *mockAssignmentRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	if m.deleteByVehicleFunc != nil {
		return m.deleteByVehicleFunc(ctx, vehicleID)
	}
	return nil
}

type mockIntervalRepository struct {
	createFunc           func(ctx context.Context, iv *model.CommitmentInterval) error
	findByIDFunc         func(ctx context.Context, id string) (*model.CommitmentInterval, error)
	findByVehicleFunc    func(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error)
	countOverlappingFunc func(ctx context.Context, vehicleID string, start, end time.Time) (int64, error)
	deleteFunc           func(ctx context.Context, id string) error
	deleteByVehicleFunc  func(ctx context.Context, vehicleID string) error
}

func (m *mockIntervalRepository) Create(ctx context.Context, iv *model.CommitmentInterval) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, iv)
	}
	return nil
}

func (m *mockIntervalRepository) FindByID(ctx context.Context, id string) (*model.CommitmentInterval, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockIntervalRepository) FindByVehicle(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error) {
	if m.findByVehicleFunc != nil {
		return m.findByVehicleFunc(ctx, vehicleID, from, to, limit, offset)
	}
	return []*model.CommitmentInterval{}, nil
}

func (m *mockIntervalRepository) CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time) (int64, error) {
	if m.countOverlappingFunc != nil {
		return m.countOverlappingFunc(ctx, vehicleID, start, end)
	}
	return 0, nil
}

func (m *mockIntervalRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockIntervalRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	if m.deleteByVehicleFunc != nil {
		return m.deleteByVehicleFunc(ctx, vehicleID)
	}
	return nil
}

func (m *mockIntervalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockCityRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.City, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.City, error)
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockCityRepository) FindByID(ctx context.Context, id string) (*model.City, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.City{ID: id}, nil
}

func (m *mockCityRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.City, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.City{}, nil
}

func (m *mockCityRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockRouteRepository struct {
	getOrCreateFunc func(ctx context.Context, originID, destinationID string) (*model.Route, error)
	findByIDFunc    func(ctx context.Context, id string) (*model.Route, error)
}

func (m *mockRouteRepository) GetOrCreate(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	if m.getOrCreateFunc != nil {
		return m.getOrCreateFunc(ctx, originID, destinationID)
	}
	return &model.Route{ID: testRouteID, OriginID: originID, DestinationID: destinationID}, nil
}

func (m *mockRouteRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Route{ID: id}, nil
}

func (m *mockRouteRepository) FindByPair(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	return nil, nil
}

func (m *mockRouteRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Route, error) {
	return []*model.Route{}, nil
}

func (m *mockRouteRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockEventPublisher struct {
	published []string
}

func (m *mockEventPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg.GetEventType())
	return nil
}

// ────────────────────────────────────────────────
// Test fixtures
// ────────────────────────────────────────────────

const (
	testCarrierID = "carrier-1"
	testVehicleID = "507f1f77bcf86cd799439021"
	testRouteID   = "507f1f77bcf86cd799439031"
	testOriginID  = "507f1f77bcf86cd799439011"
	testDestID    = "507f1f77bcf86cd799439012"
)

// newTestAccounts stands in for the accounts service. Any token except
// "deny" resolves to testCarrierID.
func newTestAccounts(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") == "deny" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"carrier_id": "` + testCarrierID + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	accounts := newTestAccounts(t)
	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		SlotLockTTL:  30 * time.Second,
		Client: &client.Client{
			Accounts: client.NewAccountsClient(accounts.URL, 2*time.Second),
		},
	}
}

func duplicateKeyErr() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
}

func validVehicle() *model.Vehicle {
	return &model.Vehicle{
		ID:        testVehicleID,
		CarrierID: testCarrierID,
		Name:      "Night Express",
		Brand:     "Volvo",
		Model:     "9700",
		Year:      2021,
		Seats:     52,
	}
}
