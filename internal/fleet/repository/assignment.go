package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/pkg/config"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AssignmentCollectionName = "Assignments"

type AssignmentRepository interface {
	// Create inserts an assignment. The unique (vehicle_id, route_id) index
	// makes a duplicate pair surface as a duplicate key error; the caller
	// translates it.
	Create(ctx context.Context, a *model.Assignment) error
	FindByID(ctx context.Context, id string) (*model.Assignment, error)
	FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Assignment, error)
	FindByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error)
	DeleteByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) error
	DeleteByVehicle(ctx context.Context, vehicleID string) error
}

type mongoAssignmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAssignmentRepository(cfg *config.Config) AssignmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAssignmentRepository{
		cfg:        cfg,
		collection: db.Collection(AssignmentCollectionName),
	}
}

func (r *mongoAssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	a.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid.Hex()
	}

	return nil
}

func (r *mongoAssignmentRepository) FindByID(ctx context.Context, id string) (*model.Assignment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var a model.Assignment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", fleeterrors.ErrAssignmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &a, nil
}

func (r *mongoAssignmentRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Assignment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"vehicle_id": vehicleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for vehicle [%s]: %w", vehicleID, err)
	}
	defer cursor.Close(ctx)

	var assignments []*model.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode assignments: %w", err)
	}

	return assignments, nil
}

func (r *mongoAssignmentRepository) FindByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"vehicle_id": vehicleID,
		"route_id":   routeID,
	}

	var a model.Assignment
	err := r.collection.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vehicle %s on route %s", fleeterrors.ErrAssignmentNotFound, vehicleID, routeID)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &a, nil
}

func (r *mongoAssignmentRepository) DeleteByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"vehicle_id": vehicleID,
		"route_id":   routeID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: vehicle %s on route %s", fleeterrors.ErrAssignmentNotFound, vehicleID, routeID)
	}

	return nil
}

// DeleteByVehicle removes every assignment of a vehicle. Used by the
// vehicle-delete cascade; zero deletions is not an error.
func (r *mongoAssignmentRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return fmt.Errorf("failed to delete assignments for vehicle [%s]: %w", vehicleID, err)
	}
	return nil
}
