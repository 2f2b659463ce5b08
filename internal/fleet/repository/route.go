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

const RouteCollectionName = "Routes"

type RouteRepository interface {
	// GetOrCreate returns the route for a directional city pair, inserting
	// it first if absent. Idempotent under concurrency: the unique
	// (origin_id, destination_id) index makes concurrent upserts converge
	// on one document.
	GetOrCreate(ctx context.Context, originID, destinationID string) (*model.Route, error)
	FindByID(ctx context.Context, id string) (*model.Route, error)
	FindByPair(ctx context.Context, originID, destinationID string) (*model.Route, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Route, error)
	Count(ctx context.Context) (int64, error)
}

type mongoRouteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRouteRepository(cfg *config.Config) RouteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRouteRepository{
		cfg:        cfg,
		collection: db.Collection(RouteCollectionName),
	}
}

func (r *mongoRouteRepository) GetOrCreate(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"origin_id":      originID,
		"destination_id": destinationID,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"origin_id":      originID,
			"destination_id": destinationID,
			"created_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var route model.Route
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&route)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create route [%s -> %s]: %w", originID, destinationID, err)
	}

	return &route, nil
}

func (r *mongoRouteRepository) FindByID(ctx context.Context, id string) (*model.Route, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var route model.Route
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&route)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", fleeterrors.ErrRouteNotFound, id)
		}
		return nil, fmt.Errorf("failed to find route: %w", err)
	}
	return &route, nil
}

// FindByPair resolves a directional pair without creating anything.
// (A -> B) never matches (B -> A).
func (r *mongoRouteRepository) FindByPair(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"origin_id":      originID,
		"destination_id": destinationID,
	}

	var route model.Route
	err := r.collection.FindOne(ctx, filter).Decode(&route)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s -> %s", fleeterrors.ErrRouteNotFound, originID, destinationID)
		}
		return nil, fmt.Errorf("failed to find route by pair: %w", err)
	}
	return &route, nil
}

func (r *mongoRouteRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Route, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer cursor.Close(ctx)

	var routes []*model.Route
	if err = cursor.All(ctx, &routes); err != nil {
		return nil, fmt.Errorf("failed to decode routes: %w", err)
	}

	return routes, nil
}

func (r *mongoRouteRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count routes: %w", err)
	}
	return count, nil
}
