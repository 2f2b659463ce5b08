package service

import (
	"context"
	"errors"
	"sort"

	searcherrors "buslane/internal/search/errors"
	"buslane/internal/search/repository"
	"buslane/internal/search/validator"
	"buslane/pkg/config"
	apperrors "buslane/pkg/errors"
	"buslane/pkg/model"
)

type SearchService interface {
	// Search runs the availability pipeline: resolve the directional route,
	// join assignments with vehicles, apply the filter, drop committed
	// vehicles, rank the rest. An unknown route is an empty result, not an
	// error.
	Search(ctx context.Context, filter *model.SearchFilter) ([]*model.RankedResult, error)
	// GetByID returns one vehicle as it would appear in results for the
	// given route. The route is required because the price band lives on
	// the assignment.
	GetByID(ctx context.Context, vehicleID, routeID string) (*model.RankedResult, error)
}

type searchService struct {
	catalog   repository.CatalogRepository
	ledger    repository.LedgerRepository
	validator *validator.FilterValidator
	cfg       *config.Config
}

func NewSearchService(
	catalog repository.CatalogRepository,
	ledger repository.LedgerRepository,
	filterValidator *validator.FilterValidator,
	cfg *config.Config,
) SearchService {
	return &searchService{
		catalog:   catalog,
		ledger:    ledger,
		validator: filterValidator,
		cfg:       cfg,
	}
}

func (s *searchService) Search(ctx context.Context, filter *model.SearchFilter) ([]*model.RankedResult, error) {
	if filter == nil {
		return nil, apperrors.InvalidInput("Search filter is required")
	}

	applySortDefaults(filter)

	if err := s.validator.Validate(filter); err != nil {
		return nil, apperrors.Validation("Search filter validation failed", validationDetails(err))
	}

	route, err := s.catalog.FindRouteByPair(ctx, filter.OriginID, filter.DestinationID)
	if err != nil {
		if errors.Is(err, searcherrors.ErrRouteNotFound) {
			// Nobody has ever offered this pair. Same shape as a search
			// that matched nothing.
			return []*model.RankedResult{}, nil
		}
		s.cfg.Log.Error("Failed to resolve route for search",
			"origin_id", filter.OriginID,
			"destination_id", filter.DestinationID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve route", err)
	}

	assignments, err := s.catalog.FindAssignmentsByRoute(ctx, route.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to load assignments for search", "route_id", route.ID, "error", err)
		return nil, apperrors.Internal("Failed to load route assignments", err)
	}
	if len(assignments) == 0 {
		return []*model.RankedResult{}, nil
	}

	vehicleIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		vehicleIDs = append(vehicleIDs, a.VehicleID)
	}

	vehicles, err := s.catalog.FindVehiclesByIDs(ctx, vehicleIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load vehicles for search", "route_id", route.ID, "error", err)
		return nil, apperrors.Internal("Failed to load vehicles", err)
	}

	vehiclesByID := make(map[string]*model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehiclesByID[v.ID] = v
	}

	candidates := make([]*model.RankedResult, 0, len(assignments))
	candidateIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		v, ok := vehiclesByID[a.VehicleID]
		if !ok {
			// Assignment outlived its vehicle. Skip rather than fail the
			// whole search.
			s.cfg.Log.Warn("Assignment references missing vehicle",
				"assignment_id", a.ID,
				"vehicle_id", a.VehicleID,
			)
			continue
		}
		if !matchesFilter(v, a, filter) {
			continue
		}
		candidates = append(candidates, buildResult(v, a))
		candidateIDs = append(candidateIDs, v.ID)
	}

	if len(candidates) == 0 {
		return []*model.RankedResult{}, nil
	}

	committed, err := s.ledger.FindCommittedVehicleIDs(ctx, candidateIDs, filter.StartTime, filter.EndTime)
	if err != nil {
		s.cfg.Log.Error("Failed to check commitments for search", "route_id", route.ID, "error", err)
		return nil, apperrors.Internal("Failed to check vehicle availability", err)
	}

	results := make([]*model.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if _, busy := committed[c.VehicleID]; busy {
			continue
		}
		results = append(results, c)
	}

	sortResults(results, filter.SortBy, filter.SortOrder)

	s.cfg.Log.Debug("Search completed",
		"route_id", route.ID,
		"candidates", len(candidates),
		"results", len(results),
	)
	return results, nil
}

func (s *searchService) GetByID(ctx context.Context, vehicleID, routeID string) (*model.RankedResult, error) {
	if vehicleID == "" || routeID == "" {
		return nil, apperrors.InvalidInput("Both vehicle ID and route ID are required")
	}

	vehicle, err := s.catalog.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, searcherrors.ErrVehicleNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", vehicleID)
		}
		if errors.Is(err, searcherrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid vehicle ID format")
		}
		s.cfg.Log.Error("Failed to get vehicle for search detail", "id", vehicleID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve vehicle", err)
	}

	assignment, err := s.catalog.FindAssignmentByVehicleAndRoute(ctx, vehicleID, routeID)
	if err != nil {
		if errors.Is(err, searcherrors.ErrAssignmentNotFound) {
			return nil, apperrors.NotFound("Assignment")
		}
		s.cfg.Log.Error("Failed to get assignment for search detail",
			"vehicle_id", vehicleID,
			"route_id", routeID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve assignment", err)
	}

	return buildResult(vehicle, assignment), nil
}

func applySortDefaults(filter *model.SearchFilter) {
	if filter.SortBy == "" {
		filter.SortBy = model.SortByRating
	}
	if filter.SortOrder == "" {
		filter.SortOrder = model.SortDesc
	}
}

// matchesFilter applies seats, band containment and amenity constraints.
// The band check is containment, not intersection: the whole advertised
// band must fit inside the requested budget. An inverted band can never
// satisfy it.
func matchesFilter(v *model.Vehicle, a *model.Assignment, f *model.SearchFilter) bool {
	if v.Seats < f.MinSeats {
		return false
	}
	if a.MinPrice < f.MinPrice || a.MaxPrice > f.MaxPrice {
		return false
	}
	if a.MinPrice > a.MaxPrice {
		return false
	}
	return matchesAmenities(&v.Amenities, f)
}

// Amenity pointers are exact-match constraints: filtering on wifi=false
// returns only vehicles without wifi.
func matchesAmenities(a *model.Amenities, f *model.SearchFilter) bool {
	if f.Luggage != nil && a.Luggage != *f.Luggage {
		return false
	}
	if f.Wifi != nil && a.Wifi != *f.Wifi {
		return false
	}
	if f.TV != nil && a.TV != *f.TV {
		return false
	}
	if f.AirConditioning != nil && a.AirConditioning != *f.AirConditioning {
		return false
	}
	if f.Toilet != nil && a.Toilet != *f.Toilet {
		return false
	}
	return true
}

func buildResult(v *model.Vehicle, a *model.Assignment) *model.RankedResult {
	return &model.RankedResult{
		VehicleID:    v.ID,
		CarrierID:    v.CarrierID,
		Brand:        v.Brand,
		Model:        v.Model,
		Seats:        v.Seats,
		Amenities:    v.Amenities,
		Photo:        v.Photo,
		Rating:       v.Rating,
		MinPrice:     a.MinPrice,
		MaxPrice:     a.MaxPrice,
		RouteID:      a.RouteID,
		AssignmentID: a.ID,
	}
}

// sortResults orders by the requested key and breaks ties by ascending
// vehicle id so equal keys always rank the same way.
func sortResults(results []*model.RankedResult, sortBy, sortOrder string) {
	key := func(r *model.RankedResult) float64 {
		if sortBy == model.SortByPrice {
			return r.MinPrice
		}
		return r.Rating
	}

	sort.SliceStable(results, func(i, j int) bool {
		ki, kj := key(results[i]), key(results[j])
		if ki != kj {
			if sortOrder == model.SortAsc {
				return ki < kj
			}
			return ki > kj
		}
		return results[i].VehicleID < results[j].VehicleID
	})
}

// validationDetails extracts the field -> reason map from validator errors
// so every violation reaches the client in one response.
func validationDetails(err error) map[string]any {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return valErrs.Details()
	}
	return map[string]any{"error": err.Error()}
}
