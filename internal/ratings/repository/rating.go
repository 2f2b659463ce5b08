package repository

import (
	"context"
	"errors"
	"fmt"

	ratingerrors "buslane/internal/ratings/errors"
	"buslane/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const vehicleCollectionName = "Vehicles"

// ratingDoc is the projection the worker reads. Nothing else on the
// vehicle document matters here.
type ratingDoc struct {
	Rating      float64 `bson:"rating"`
	RatingCount int64   `bson:"rating_count"`
}

// RatingRepository reads and writes the running rating average on the
// vehicle document. The ratings worker is the only writer of these two
// fields.
type RatingRepository interface {
	FindRating(ctx context.Context, vehicleID string) (rating float64, count int64, err error)
	UpdateRating(ctx context.Context, vehicleID string, rating float64, count int64) error
}

type mongoRatingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRatingRepository(cfg *config.Config) RatingRepository {
	return &mongoRatingRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(vehicleCollectionName),
	}
}

func (r *mongoRatingRepository) FindRating(ctx context.Context, vehicleID string) (float64, int64, error) {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ratingerrors.ErrInvalidID, vehicleID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doc ratingDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, 0, fmt.Errorf("%w: %s", ratingerrors.ErrVehicleNotFound, vehicleID)
		}
		return 0, 0, fmt.Errorf("failed to read vehicle rating: %w", err)
	}

	return doc.Rating, doc.RatingCount, nil
}

func (r *mongoRatingRepository) UpdateRating(ctx context.Context, vehicleID string, rating float64, count int64) error {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return fmt.Errorf("%w: %s", ratingerrors.ErrInvalidID, vehicleID)
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"rating":       rating,
		"rating_count": count,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update vehicle rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ratingerrors.ErrVehicleNotFound, vehicleID)
	}

	return nil
}
