package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/pkg/config"
	mongotx "buslane/pkg/db/mongo"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const IntervalCollectionName = "Commitment_intervals"

type IntervalRepository interface {
	// Create inserts a commitment interval. The unique
	// (vehicle_id, start_time, end_time) index makes a literal duplicate
	// surface as a duplicate key error; overlap is not checked here.
	Create(ctx context.Context, iv *model.CommitmentInterval) error
	FindByID(ctx context.Context, id string) (*model.CommitmentInterval, error)
	FindByVehicle(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error)
	// CountOverlapping counts intervals conflicting with the half-open
	// window [start, end). Strict $lt/$gt comparisons keep touching
	// endpoints legal.
	CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByVehicle(ctx context.Context, vehicleID string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoIntervalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoIntervalRepository(cfg *config.Config) IntervalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoIntervalRepository{
		cfg:        cfg,
		collection: db.Collection(IntervalCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoIntervalRepository) Create(ctx context.Context, iv *model.CommitmentInterval) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	iv.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, iv)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		iv.ID = oid.Hex()
	}

	return nil
}

func (r *mongoIntervalRepository) FindByID(ctx context.Context, id string) (*model.CommitmentInterval, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	var iv model.CommitmentInterval
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&iv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", fleeterrors.ErrIntervalNotFound, id)
		}
		return nil, fmt.Errorf("failed to find interval: %w", err)
	}
	return &iv, nil
}

func (r *mongoIntervalRepository) FindByVehicle(ctx context.Context, vehicleID string, from, to *time.Time, limit int, offset int64) ([]*model.CommitmentInterval, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"vehicle_id": vehicleID}
	if from != nil {
		filter["end_time"] = bson.M{"$gt": *from}
	}
	if to != nil {
		filter["start_time"] = bson.M{"$lt": *to}
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervals for vehicle [%s]: %w", vehicleID, err)
	}
	defer cursor.Close(ctx)

	var intervals []*model.CommitmentInterval
	if err = cursor.All(ctx, &intervals); err != nil {
		return nil, fmt.Errorf("failed to decode intervals: %w", err)
	}

	return intervals, nil
}

func (r *mongoIntervalRepository) CountOverlapping(ctx context.Context, vehicleID string, start, end time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"vehicle_id": vehicleID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping intervals: %w", err)
	}
	return count, nil
}

func (r *mongoIntervalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", fleeterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete interval: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", fleeterrors.ErrIntervalNotFound, id)
	}

	return nil
}

// DeleteByVehicle removes every interval of a vehicle. Used by the
// vehicle-delete cascade; zero deletions is not an error.
func (r *mongoIntervalRepository) DeleteByVehicle(ctx context.Context, vehicleID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"vehicle_id": vehicleID})
	if err != nil {
		return fmt.Errorf("failed to delete intervals for vehicle [%s]: %w", vehicleID, err)
	}
	return nil
}

func (r *mongoIntervalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
