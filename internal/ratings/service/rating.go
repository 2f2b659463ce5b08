package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	ratingerrors "buslane/internal/ratings/errors"
	"buslane/internal/ratings/repository"
	"buslane/pkg/config"
	"buslane/pkg/events"
	"buslane/pkg/kafka"
)

type RatingService interface {
	// Apply folds one rating into the vehicle's running average.
	Apply(ctx context.Context, event events.RatingEvent) error
}

type ratingService struct {
	repo repository.RatingRepository
	cfg  *config.Config
}

func NewRatingService(repo repository.RatingRepository, cfg *config.Config) RatingService {
	return &ratingService{
		repo: repo,
		cfg:  cfg,
	}
}

// Apply recomputes the average as (rating*count + new) / (count+1), rounded
// to one decimal. Malformed events are permanent failures so they go
// straight to the DLQ instead of being retried.
func (s *ratingService) Apply(ctx context.Context, event events.RatingEvent) error {
	if event.VehicleID == "" {
		return kafka.NewPermanentError("rating event missing vehicle_id", nil)
	}
	if event.Rating < 0 || event.Rating > 5 {
		return kafka.NewPermanentError(
			fmt.Sprintf("rating %.2f outside [0, 5]", event.Rating), nil)
	}

	current, count, err := s.repo.FindRating(ctx, event.VehicleID)
	if err != nil {
		if errors.Is(err, ratingerrors.ErrVehicleNotFound) || errors.Is(err, ratingerrors.ErrInvalidID) {
			return kafka.NewPermanentError("rating event references unknown vehicle", err)
		}
		return fmt.Errorf("failed to load current rating: %w", err)
	}

	average := (current*float64(count) + event.Rating) / float64(count+1)
	rounded := math.Round(average*10) / 10

	if err := s.repo.UpdateRating(ctx, event.VehicleID, rounded, count+1); err != nil {
		if errors.Is(err, ratingerrors.ErrVehicleNotFound) {
			return kafka.NewPermanentError("vehicle disappeared during rating update", err)
		}
		return fmt.Errorf("failed to store rating: %w", err)
	}

	s.cfg.Log.Debug("Rating applied",
		"vehicle_id", event.VehicleID,
		"rating", event.Rating,
		"average", rounded,
		"count", count+1,
	)
	return nil
}
