package service

import (
	"context"
	"errors"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/repository"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"
)

type RouteService interface {
	// GetOrCreate resolves a directional city pair to a route, creating it
	// on first use. Calling it twice with the same pair returns the same
	// route.
	GetOrCreate(ctx context.Context, originID, destinationID string) (*model.Route, error)
	GetByID(ctx context.Context, id string) (*model.Route, error)
	ListCities(ctx context.Context, limit int, offset int64) ([]*model.City, int64, error)
}

type routeService struct {
	repo     repository.RouteRepository
	cityRepo repository.CityRepository
	cfg      *config.Config
}

func NewRouteService(
	repo repository.RouteRepository,
	cityRepo repository.CityRepository,
	cfg *config.Config,
) RouteService {
	return &routeService{
		repo:     repo,
		cityRepo: cityRepo,
		cfg:      cfg,
	}
}

func (s *routeService) GetOrCreate(ctx context.Context, originID, destinationID string) (*model.Route, error) {
	if originID == "" || destinationID == "" {
		return nil, apperrors.InvalidInput("Both origin and destination city IDs are required")
	}
	if originID == destinationID {
		return nil, apperrors.Validation("Route endpoints must differ", map[string]any{
			"destination_id": "destination must differ from origin",
		})
	}

	if err := s.verifyCity(ctx, originID); err != nil {
		return nil, err
	}
	if err := s.verifyCity(ctx, destinationID); err != nil {
		return nil, err
	}

	route, err := s.repo.GetOrCreate(ctx, originID, destinationID)
	if err != nil {
		s.cfg.Log.Error("Failed to get or create route",
			"origin_id", originID,
			"destination_id", destinationID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve route", err)
	}

	s.cfg.Log.Debug("Route resolved",
		"id", route.ID,
		"origin_id", route.OriginID,
		"destination_id", route.DestinationID,
	)
	return route, nil
}

func (s *routeService) GetByID(ctx context.Context, id string) (*model.Route, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Route ID cannot be empty")
	}

	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrRouteNotFound) {
			return nil, apperrors.NotFoundWithID("Route", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid route ID format")
		}
		s.cfg.Log.Error("Failed to get route by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve route", err)
	}

	return route, nil
}

func (s *routeService) ListCities(ctx context.Context, limit int, offset int64) ([]*model.City, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	cities, err := s.cityRepo.FindAll(ctx, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list cities", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve cities", err)
	}

	count, err := s.cityRepo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count cities", "error", err)
		return nil, 0, apperrors.Internal("Failed to count cities", err)
	}

	return cities, count, nil
}

// verifyCity turns an unknown city id into InvalidReference: the mutation
// target is fine, its input is not.
func (s *routeService) verifyCity(ctx context.Context, id string) error {
	_, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrCityNotFound) || errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidReference("city", id)
		}
		s.cfg.Log.Error("Failed to verify city", "id", id, "error", err)
		return apperrors.Internal("Failed to verify city", err)
	}
	return nil
}
