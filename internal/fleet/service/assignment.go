package service

import (
	"context"
	"errors"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/repository"
	"buslane/internal/fleet/validator"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type AssignmentService interface {
	// Assign puts a vehicle on the directional route between two cities
	// with a price band, creating the route on first use. One band per
	// (vehicle, route); a second attempt is a Conflict.
	Assign(ctx context.Context, token, vehicleID, originID, destinationID string, minPrice, maxPrice float64) (*model.Assignment, error)
	Unassign(ctx context.Context, token, vehicleID, routeID string) error
	ListByVehicle(ctx context.Context, vehicleID string) ([]*model.Assignment, error)
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	vehicleRepo repository.VehicleRepository
	routes      RouteService
	validator   *validator.AssignmentValidator
	cfg         *config.Config
}

func NewAssignmentService(
	repo repository.AssignmentRepository,
	vehicleRepo repository.VehicleRepository,
	routes RouteService,
	validator *validator.AssignmentValidator,
	cfg *config.Config,
) AssignmentService {
	return &assignmentService{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		routes:      routes,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *assignmentService) Assign(ctx context.Context, token, vehicleID, originID, destinationID string, minPrice, maxPrice float64) (*model.Assignment, error) {
	if err := s.verifyOwnedVehicle(ctx, token, vehicleID); err != nil {
		return nil, err
	}

	route, err := s.routes.GetOrCreate(ctx, originID, destinationID)
	if err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		VehicleID: vehicleID,
		RouteID:   route.ID,
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
	}

	if err := s.validator.Validate(assignment); err != nil {
		s.cfg.Log.Warn("Assignment validation failed",
			"vehicle_id", vehicleID,
			"route_id", route.ID,
			"error", err,
		)
		return nil, apperrors.Validation("Assignment validation failed", validationDetails(err))
	}

	if err := s.repo.Create(ctx, assignment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Vehicle is already assigned to this route")
		}
		s.cfg.Log.Error("Failed to create assignment",
			"vehicle_id", vehicleID,
			"route_id", route.ID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create assignment", err)
	}

	s.cfg.Log.Info("Assignment created successfully",
		"id", assignment.ID,
		"vehicle_id", vehicleID,
		"route_id", route.ID,
		"min_price", minPrice,
		"max_price", maxPrice,
	)
	return assignment, nil
}

func (s *assignmentService) Unassign(ctx context.Context, token, vehicleID, routeID string) error {
	if vehicleID == "" || routeID == "" {
		return apperrors.InvalidInput("Both vehicle ID and route ID are required")
	}

	if err := s.verifyOwnedVehicle(ctx, token, vehicleID); err != nil {
		return err
	}

	if err := s.repo.DeleteByVehicleAndRoute(ctx, vehicleID, routeID); err != nil {
		if errors.Is(err, fleeterrors.ErrAssignmentNotFound) {
			return apperrors.NotFound("Assignment")
		}
		s.cfg.Log.Error("Failed to delete assignment",
			"vehicle_id", vehicleID,
			"route_id", routeID,
			"error", err,
		)
		return apperrors.Internal("Failed to delete assignment", err)
	}

	s.cfg.Log.Info("Assignment deleted successfully",
		"vehicle_id", vehicleID,
		"route_id", routeID,
	)
	return nil
}

func (s *assignmentService) ListByVehicle(ctx context.Context, vehicleID string) ([]*model.Assignment, error) {
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	assignments, err := s.repo.FindByVehicle(ctx, vehicleID)
	if err != nil {
		s.cfg.Log.Error("Failed to list assignments", "vehicle_id", vehicleID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve assignments", err)
	}

	return assignments, nil
}

func (s *assignmentService) verifyOwnedVehicle(ctx context.Context, token, vehicleID string) error {
	if vehicleID == "" {
		return apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	carrierID, err := s.cfg.Client.Accounts.ResolveCarrier(ctx, token)
	if err != nil {
		return err
	}

	v, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrVehicleNotFound) || errors.Is(err, fleeterrors.ErrInvalidID) {
			return apperrors.InvalidReference("vehicle", vehicleID)
		}
		s.cfg.Log.Error("Failed to verify vehicle", "vehicle_id", vehicleID, "error", err)
		return apperrors.Internal("Failed to verify vehicle", err)
	}

	if v.CarrierID != carrierID {
		s.cfg.Log.Warn("Vehicle ownership check failed",
			"vehicle_id", vehicleID,
			"owner", v.CarrierID,
			"caller", carrierID,
		)
		return apperrors.Forbidden("Access denied")
	}

	return nil
}
