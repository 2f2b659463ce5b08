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

const CityCollectionName = "Cities"

type CityRepository interface {
	FindByID(ctx context.Context, id string) (*model.City, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.City, error)
	Count(ctx context.Context) (int64, error)
}

type mongoCityRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCityRepository(cfg *config.Config) CityRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCityRepository{
		cfg:        cfg,
		collection: db.Collection(CityCollectionName),
	}
}

func (r *mongoCityRepository) FindByID(ctx context.Context, id string) (*model.City, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var city model.City
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&city)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", fleeterrors.ErrCityNotFound, id)
		}
		return nil, fmt.Errorf("failed to find city: %w", err)
	}
	return &city, nil
}

func (r *mongoCityRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.City, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer cursor.Close(ctx)

	var cities []*model.City
	if err = cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}

	return cities, nil
}

func (r *mongoCityRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count cities: %w", err)
	}
	return count, nil
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function, as wrapping a SessionContext would
// break transaction semantics.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
