package repository

import (
	"context"
	"errors"
	"fmt"

	searcherrors "buslane/internal/search/errors"
	"buslane/pkg/config"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names shared with the fleet service. The search side only
// ever reads them.
const (
	routeCollectionName      = "Routes"
	assignmentCollectionName = "Assignments"
	vehicleCollectionName    = "Vehicles"
)

// CatalogRepository is the read side of the route/assignment/vehicle
// catalog.
type CatalogRepository interface {
	FindRouteByPair(ctx context.Context, originID, destinationID string) (*model.Route, error)
	FindAssignmentsByRoute(ctx context.Context, routeID string) ([]*model.Assignment, error)
	FindVehiclesByIDs(ctx context.Context, ids []string) ([]*model.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*model.Vehicle, error)
	FindAssignmentByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error)
}

type mongoCatalogRepository struct {
	cfg         *config.Config
	routes      *mongo.Collection
	assignments *mongo.Collection
	vehicles    *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:         cfg,
		routes:      db.Collection(routeCollectionName),
		assignments: db.Collection(assignmentCollectionName),
		vehicles:    db.Collection(vehicleCollectionName),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoCatalogRepository) FindRouteByPair(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"origin_id":      originID,
		"destination_id": destinationID,
	}

	var route model.Route
	err := r.routes.FindOne(ctx, filter).Decode(&route)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s -> %s", searcherrors.ErrRouteNotFound, originID, destinationID)
		}
		return nil, fmt.Errorf("failed to find route by pair: %w", err)
	}
	return &route, nil
}

func (r *mongoCatalogRepository) FindAssignmentsByRoute(ctx context.Context, routeID string) ([]*model.Assignment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.assignments.Find(ctx, bson.M{"route_id": routeID})
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for route [%s]: %w", routeID, err)
	}
	defer cursor.Close(ctx)

	var assignments []*model.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode assignments: %w", err)
	}

	return assignments, nil
}

func (r *mongoCatalogRepository) FindVehiclesByIDs(ctx context.Context, ids []string) ([]*model.Vehicle, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", searcherrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := r.vehicles.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*model.Vehicle
	if err = cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *mongoCatalogRepository) FindVehicleByID(ctx context.Context, id string) (*model.Vehicle, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", searcherrors.ErrInvalidID, id)
	}

	var v model.Vehicle
	err = r.vehicles.FindOne(ctx, bson.M{"_id": objectID}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", searcherrors.ErrVehicleNotFound, id)
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return &v, nil
}

func (r *mongoCatalogRepository) FindAssignmentByVehicleAndRoute(ctx context.Context, vehicleID, routeID string) (*model.Assignment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"vehicle_id": vehicleID,
		"route_id":   routeID,
	}

	var a model.Assignment
	err := r.assignments.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: vehicle %s on route %s", searcherrors.ErrAssignmentNotFound, vehicleID, routeID)
		}
		return nil, fmt.Errorf("failed to find assignment: %w", err)
	}
	return &a, nil
}
