package service

import (
	"context"
	"testing"
	"time"

	ratingerrors "buslane/internal/ratings/errors"
	"buslane/pkg/config"
	"buslane/pkg/events"
	"buslane/pkg/kafka"
	"buslane/pkg/logger"
)

type mockRatingRepository struct {
	findRatingFunc   func(ctx context.Context, vehicleID string) (float64, int64, error)
	updateRatingFunc func(ctx context.Context, vehicleID string, rating float64, count int64) error
}

func (m *mockRatingRepository) FindRating(ctx context.Context, vehicleID string) (float64, int64, error) {
	if m.findRatingFunc != nil {
		return m.findRatingFunc(ctx, vehicleID)
	}
	return 0, 0, nil
}

func (m *mockRatingRepository) UpdateRating(ctx context.Context, vehicleID string, rating float64, count int64) error {
	if m.updateRatingFunc != nil {
		return m.updateRatingFunc(ctx, vehicleID, rating, count)
	}
	return nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func TestApply_RunningAverage(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		count       int64
		incoming    float64
		wantAverage float64
		wantCount   int64
	}{
		{
			name:        "first rating becomes the average",
			current:     0,
			count:       0,
			incoming:    4,
			wantAverage: 4.0,
			wantCount:   1,
		},
		{
			name:        "second rating averages with the first",
			current:     4.0,
			count:       1,
			incoming:    5,
			wantAverage: 4.5,
			wantCount:   2,
		},
		{
			name:        "average rounds to one decimal",
			current:     4.5,
			count:       2,
			incoming:    3,
			wantAverage: 4.0,
			wantCount:   3,
		},
		{
			name:        "rounding is half up",
			current:     4.0,
			count:       1,
			incoming:    4.5,
			wantAverage: 4.3,
			wantCount:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRating float64
			var gotCount int64

			repo := &mockRatingRepository{
				findRatingFunc: func(ctx context.Context, vehicleID string) (float64, int64, error) {
					return tt.current, tt.count, nil
				},
				updateRatingFunc: func(ctx context.Context, vehicleID string, rating float64, count int64) error {
					gotRating = rating
					gotCount = count
					return nil
				},
			}
			svc := NewRatingService(repo, testConfig())

			err := svc.Apply(context.Background(), events.RatingEvent{VehicleID: "v1", Rating: tt.incoming})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotRating != tt.wantAverage {
				t.Errorf("expected average %v, got %v", tt.wantAverage, gotRating)
			}
			if gotCount != tt.wantCount {
				t.Errorf("expected count %d, got %d", tt.wantCount, gotCount)
			}
		})
	}
}

func TestApply_InvalidEventsArePermanent(t *testing.T) {
	svc := NewRatingService(&mockRatingRepository{}, testConfig())

	tests := []struct {
		name  string
		event events.RatingEvent
	}{
		{name: "missing vehicle id", event: events.RatingEvent{Rating: 3}},
		{name: "rating below range", event: events.RatingEvent{VehicleID: "v1", Rating: -1}},
		{name: "rating above range", event: events.RatingEvent{VehicleID: "v1", Rating: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Apply(context.Background(), tt.event)
			if err == nil {
				t.Fatal("expected error")
			}
			if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
				t.Errorf("expected permanent classification, got %v", kafka.ClassifyError(err))
			}
		})
	}
}

func TestApply_UnknownVehicleIsPermanent(t *testing.T) {
	repo := &mockRatingRepository{
		findRatingFunc: func(ctx context.Context, vehicleID string) (float64, int64, error) {
			return 0, 0, ratingerrors.ErrVehicleNotFound
		},
	}
	svc := NewRatingService(repo, testConfig())

	err := svc.Apply(context.Background(), events.RatingEvent{VehicleID: "v-gone", Rating: 4})
	if err == nil {
		t.Fatal("expected error")
	}
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Errorf("expected permanent classification, got %v", kafka.ClassifyError(err))
	}
}
