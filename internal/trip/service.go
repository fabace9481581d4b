package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sunchase/sunchase/internal/api/models"
)

// Validation constants.
const (
	MaxLabelLength = 80
	MaxNotesLength = 500

	DefaultStartHour = 9
	DefaultEndHour   = 17
)

// dateLayout validates travel dates (YYYY-MM-DD).
const dateLayout = "2006-01-02"

// Service provides trip operations.
type Service struct {
	repo Repository
}

// NewService creates a new trip service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all trips for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedTrips, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.Trip, 0, len(result.Items))
	for _, t := range result.Items {
		items = append(items, s.toAPITrip(t))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedTrips{
		Data: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a trip by ID for a user.
func (s *Service) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Create creates a new trip for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.TripCreateRequest) (*models.Trip, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	startHour := DefaultStartHour
	if input.StartHour != nil {
		startHour = *input.StartHour
	}
	endHour := DefaultEndHour
	if input.EndHour != nil {
		endHour = *input.EndHour
	}
	dimension := models.DimensionSunny
	if input.Dimension != "" {
		dimension = input.Dimension
	}
	var maxDistance float64
	if input.MaxDistanceMiles != nil {
		maxDistance = *input.MaxDistanceMiles
	}

	now := time.Now()
	tripID := "trp_" + uuid.New().String()[:22]

	trip := &Trip{
		ID:               tripID,
		UserID:           userID,
		Label:            input.Label,
		OriginName:       input.OriginName,
		OriginLat:        input.Origin.Lat,
		OriginLon:        input.Origin.Lon,
		TravelDate:       input.TravelDate,
		StartHour:        startHour,
		EndHour:          endHour,
		Dimension:        string(dimension),
		MaxDistanceMiles: maxDistance,
		Notes:            input.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Update updates an existing trip for a user.
func (s *Service) Update(ctx context.Context, userID, tripID string, input *models.TripUpdateRequest) (*models.Trip, error) {
	trip, err := s.repo.GetByUserAndID(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Label != nil {
		trip.Label = *input.Label
	}
	if input.OriginName != nil {
		trip.OriginName = *input.OriginName
	}
	if input.Origin != nil {
		trip.OriginLat = input.Origin.Lat
		trip.OriginLon = input.Origin.Lon
	}
	if input.TravelDate != nil {
		trip.TravelDate = *input.TravelDate
	}
	if input.StartHour != nil {
		trip.StartHour = *input.StartHour
	}
	if input.EndHour != nil {
		trip.EndHour = *input.EndHour
	}
	if input.Dimension != nil {
		trip.Dimension = string(*input.Dimension)
	}
	if input.MaxDistanceMiles != nil {
		trip.MaxDistanceMiles = *input.MaxDistanceMiles
	}
	if input.Notes != nil {
		trip.Notes = input.Notes
	}

	// The window must stay valid after partial updates.
	if trip.StartHour >= trip.EndHour {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "startHour", Message: "must be before endHour"},
		}}
	}

	trip.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, trip); err != nil {
		return nil, err
	}

	result := s.toAPITrip(trip)
	return &result, nil
}

// Delete deletes a trip for a user.
func (s *Service) Delete(ctx context.Context, userID, tripID string) error {
	return s.repo.Delete(ctx, userID, tripID)
}

// validateCreateInput validates the create trip input.
func (s *Service) validateCreateInput(input *models.TripCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label == "" {
		errs = append(errs, models.FieldError{Field: "label", Message: "is required"})
	} else if len(input.Label) > MaxLabelLength {
		errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
	}

	errs = append(errs, s.validatePoint(&input.Origin, "origin")...)

	if input.TravelDate == "" {
		errs = append(errs, models.FieldError{Field: "travelDate", Message: "is required"})
	} else {
		errs = append(errs, s.validateDate(input.TravelDate)...)
	}

	startHour := DefaultStartHour
	if input.StartHour != nil {
		startHour = *input.StartHour
	}
	endHour := DefaultEndHour
	if input.EndHour != nil {
		endHour = *input.EndHour
	}
	errs = append(errs, s.validateWindow(startHour, endHour)...)

	if input.Dimension != "" {
		errs = append(errs, s.validateDimension(input.Dimension)...)
	}

	if input.MaxDistanceMiles != nil && *input.MaxDistanceMiles < 0 {
		errs = append(errs, models.FieldError{Field: "maxDistanceMiles", Message: "must not be negative"})
	}

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

// validateUpdateInput validates the update trip input.
func (s *Service) validateUpdateInput(input *models.TripUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Label != nil {
		if *input.Label == "" {
			errs = append(errs, models.FieldError{Field: "label", Message: "cannot be empty"})
		} else if len(*input.Label) > MaxLabelLength {
			errs = append(errs, models.FieldError{Field: "label", Message: "must be at most 80 characters"})
		}
	}

	if input.Origin != nil {
		errs = append(errs, s.validatePoint(input.Origin, "origin")...)
	}

	if input.TravelDate != nil {
		if *input.TravelDate == "" {
			errs = append(errs, models.FieldError{Field: "travelDate", Message: "cannot be empty"})
		} else {
			errs = append(errs, s.validateDate(*input.TravelDate)...)
		}
	}

	if input.StartHour != nil && (*input.StartHour < 0 || *input.StartHour > 23) {
		errs = append(errs, models.FieldError{Field: "startHour", Message: "must be between 0 and 23"})
	}
	if input.EndHour != nil && (*input.EndHour < 0 || *input.EndHour > 23) {
		errs = append(errs, models.FieldError{Field: "endHour", Message: "must be between 0 and 23"})
	}

	if input.Dimension != nil {
		errs = append(errs, s.validateDimension(*input.Dimension)...)
	}

	if input.MaxDistanceMiles != nil && *input.MaxDistanceMiles < 0 {
		errs = append(errs, models.FieldError{Field: "maxDistanceMiles", Message: "must not be negative"})
	}

	if input.Notes != nil && len(*input.Notes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	return errs
}

// validatePoint validates origin coordinates.
func (s *Service) validatePoint(p *models.Point, prefix string) []models.FieldError {
	var errs []models.FieldError

	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".lat",
			Message: "must be between -90 and 90",
		})
	}

	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, models.FieldError{
			Field:   prefix + ".lon",
			Message: "must be between -180 and 180",
		})
	}

	return errs
}

// validateDate validates a travel date.
func (s *Service) validateDate(date string) []models.FieldError {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return []models.FieldError{{Field: "travelDate", Message: "must be in YYYY-MM-DD format"}}
	}
	return nil
}

// validateWindow validates an hour window.
func (s *Service) validateWindow(startHour, endHour int) []models.FieldError {
	var errs []models.FieldError

	if startHour < 0 || startHour > 23 {
		errs = append(errs, models.FieldError{Field: "startHour", Message: "must be between 0 and 23"})
	}
	if endHour < 0 || endHour > 23 {
		errs = append(errs, models.FieldError{Field: "endHour", Message: "must be between 0 and 23"})
	}
	if len(errs) == 0 && startHour >= endHour {
		errs = append(errs, models.FieldError{Field: "startHour", Message: "must be before endHour"})
	}

	return errs
}

// validateDimension validates a ranking dimension.
func (s *Service) validateDimension(d models.Dimension) []models.FieldError {
	if d != models.DimensionSunny && d != models.DimensionComfort {
		return []models.FieldError{{Field: "dimension", Message: "must be sunny or comfort"}}
	}
	return nil
}

// toAPITrip converts a domain Trip to an API Trip.
func (s *Service) toAPITrip(t *Trip) models.Trip {
	var maxDistance *float64
	if t.MaxDistanceMiles > 0 {
		d := t.MaxDistanceMiles
		maxDistance = &d
	}

	return models.Trip{
		ID:               t.ID,
		Label:            t.Label,
		OriginName:       t.OriginName,
		Origin:           models.Point{Lat: t.OriginLat, Lon: t.OriginLon},
		TravelDate:       t.TravelDate,
		StartHour:        t.StartHour,
		EndHour:          t.EndHour,
		Dimension:        models.Dimension(t.Dimension),
		MaxDistanceMiles: maxDistance,
		Notes:            t.Notes,
		CreatedAt:        models.Timestamp(t.CreatedAt),
		UpdatedAt:        models.Timestamp(t.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
