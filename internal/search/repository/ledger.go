package repository

import (
	"context"
	"fmt"
	"time"

	"buslane/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const intervalCollectionName = "Commitment_intervals"

// LedgerRepository answers one question for the search pipeline: which of
// the candidate vehicles are already committed somewhere inside the
// requested window.
type LedgerRepository interface {
	FindCommittedVehicleIDs(ctx context.Context, vehicleIDs []string, start, end time.Time) (map[string]struct{}, error)
}

type mongoLedgerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLedgerRepository(cfg *config.Config) LedgerRepository {
	return &mongoLedgerRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(intervalCollectionName),
	}
}

// FindCommittedVehicleIDs uses the half-open overlap predicate: an interval
// conflicts with [start, end) iff interval.start < end && interval.end > start.
// Touching endpoints do not conflict.
func (r *mongoLedgerRepository) FindCommittedVehicleIDs(ctx context.Context, vehicleIDs []string, start, end time.Time) (map[string]struct{}, error) {
	if len(vehicleIDs) == 0 {
		return map[string]struct{}{}, nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ReadTimeout)
		defer cancel()
	}

	filter := bson.M{
		"vehicle_id": bson.M{"$in": vehicleIDs},
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	values, err := r.collection.Distinct(ctx, "vehicle_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query committed vehicles: %w", err)
	}

	committed := make(map[string]struct{}, len(values))
	for _, value := range values {
		if id, ok := value.(string); ok {
			committed[id] = struct{}{}
		}
	}
	return committed, nil
}
