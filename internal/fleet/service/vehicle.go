package service

import (
	"context"
	"errors"
	"sync"

	fleeterrors "buslane/internal/fleet/errors"
	"buslane/internal/fleet/repository"
	"buslane/internal/fleet/validator"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"
	"buslane/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type VehicleService interface {
	Create(ctx context.Context, token string, v *model.Vehicle) error
	GetByID(ctx context.Context, id string) (*model.Vehicle, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, token, id string, updates *model.VehicleUpdate) error
	Delete(ctx context.Context, token, id string) error
}

type vehicleService struct {
	repo           repository.VehicleRepository
	assignmentRepo repository.AssignmentRepository
	intervalRepo   repository.IntervalRepository
	validator      *validator.VehicleValidator
	cfg            *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	assignmentRepo repository.AssignmentRepository,
	intervalRepo repository.IntervalRepository,
	validator *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:           repo,
		assignmentRepo: assignmentRepo,
		intervalRepo:   intervalRepo,
		validator:      validator,
		cfg:            cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, token string, v *model.Vehicle) error {
	carrierID, err := s.cfg.Client.Accounts.ResolveCarrier(ctx, token)
	if err != nil {
		return err
	}
	v.CarrierID = carrierID

	s.sanitize(v)

	// Rating is owned by the ratings worker; a fresh vehicle starts unrated.
	v.Rating = 0
	v.RatingCount = 0

	if err := s.validator.Validate(v); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed",
			"name", v.Name,
			"carrier_id", v.CarrierID,
			"error", err,
		)
		return apperrors.Validation("Vehicle validation failed", validationDetails(err))
	}

	if err := s.repo.Create(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("A vehicle with this name already exists for this carrier")
		}
		s.cfg.Log.Error("Failed to create vehicle",
			"name", v.Name,
			"carrier_id", v.CarrierID,
			"error", err,
		)
		return apperrors.Internal("Failed to create vehicle", err)
	}

	s.cfg.Log.Info("Vehicle created successfully",
		"id", v.ID,
		"name", v.Name,
		"carrier_id", v.CarrierID,
	)
	return nil
}

func (s *vehicleService) GetByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fleeterrors.ErrVehicleNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", id)
		}
		if errors.Is(err, fleeterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		s.cfg.Log.Error("Failed to get vehicle by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	return v, nil
}

func (s *vehicleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Vehicle, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var vehicles []*model.Vehicle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count vehicles", "error", errCount)
			errCount = apperrors.Internal("Failed to count vehicles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		vehicles, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list vehicles", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve vehicles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return vehicles, count, nil
}

func (s *vehicleService) Update(ctx context.Context, token, id string, updates *model.VehicleUpdate) error {
	existing, err := s.resolveOwned(ctx, token, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Vehicle update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", validationDetails(err))
	}

	merged := s.mergeVehicleUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Vehicle validation failed", "id", id, "error", err)
		return apperrors.Validation("Vehicle validation failed", validationDetails(err))
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("A vehicle with this name already exists for this carrier")
		}
		if errors.Is(err, fleeterrors.ErrVehicleNotFound) {
			return apperrors.NotFoundWithID("Vehicle", id)
		}
		s.cfg.Log.Error("Failed to update vehicle", "id", id, "error", err)
		return apperrors.Internal("Failed to update vehicle", err)
	}

	s.cfg.Log.Info("Vehicle updated successfully", "id", id, "name", merged.Name)
	return nil
}

// Delete removes a vehicle together with its assignments and commitment
// intervals in one transaction, so no dangling references survive.
func (s *vehicleService) Delete(ctx context.Context, token, id string) error {
	if _, err := s.resolveOwned(ctx, token, id); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.assignmentRepo.DeleteByVehicle(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to delete vehicle assignments", err)
		}
		if err := s.intervalRepo.DeleteByVehicle(sessCtx, id); err != nil {
			return apperrors.Internal("Failed to delete vehicle intervals", err)
		}
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, fleeterrors.ErrVehicleNotFound) {
				return apperrors.NotFoundWithID("Vehicle", id)
			}
			return apperrors.Internal("Failed to delete vehicle", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete vehicle", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Vehicle deleted successfully", "id", id)
	return nil
}

// resolveOwned loads the vehicle and checks the caller's carrier account
// owns it. Authorization refusals from the accounts service propagate
// unchanged.
func (s *vehicleService) resolveOwned(ctx context.Context, token, id string) (*model.Vehicle, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}

	carrierID, err := s.cfg.Client.Accounts.ResolveCarrier(ctx, token)
	if err != nil {
		return nil, err
	}

	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v.CarrierID != carrierID {
		s.cfg.Log.Warn("Vehicle ownership check failed",
			"id", id,
			"owner", v.CarrierID,
			"caller", carrierID,
		)
		return nil, apperrors.Forbidden("Access denied")
	}

	return v, nil
}

func (s *vehicleService) sanitize(v *model.Vehicle) {
	v.Name = sanitizer.NormalizeName(v.Name)
	v.Brand = sanitizer.TrimAndNormalize(v.Brand)
	v.Model = sanitizer.TrimAndNormalize(v.Model)
	v.Photo = sanitizer.TrimAndNormalize(v.Photo)
}

func (s *vehicleService) mergeVehicleUpdates(existing *model.Vehicle, updates *model.VehicleUpdate) *model.Vehicle {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Brand != "" {
		merged.Brand = updates.Brand
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.Year != nil {
		merged.Year = *updates.Year
	}
	if updates.Seats != nil {
		merged.Seats = *updates.Seats
	}
	if updates.Photo != "" {
		merged.Photo = updates.Photo
	}
	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}

	merged.ID = existing.ID
	merged.CarrierID = existing.CarrierID
	merged.Rating = existing.Rating
	merged.RatingCount = existing.RatingCount
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

// validationDetails extracts the field -> reason map when the error came
// from the struct validator, falling back to a single opaque entry.
func validationDetails(err error) map[string]any {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return valErrs.Details()
	}
	return map[string]any{"error": err.Error()}
}
