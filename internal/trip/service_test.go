package trip_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sunchase/sunchase/internal/api/models"
	"github.com/sunchase/sunchase/internal/trip"
)

func validCreateRequest() *models.TripCreateRequest {
	return &models.TripCreateRequest{
		Label:      "Bank holiday beach day",
		OriginName: "London",
		Origin:     models.Point{Lat: 51.5072, Lon: -0.1276},
		TravelDate: "2026-09-05",
	}
}

func TestService_Create(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	input := validCreateRequest()

	result, err := service.Create(ctx, "user123", input)
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if result.ID == "" {
		t.Error("expected trip ID to be set")
	}
	if !strings.HasPrefix(result.ID, "trp_") {
		t.Errorf("expected trip ID to start with 'trp_', got %q", result.ID)
	}
	if result.Label != input.Label {
		t.Errorf("expected label %q, got %q", input.Label, result.Label)
	}
	if result.StartHour != trip.DefaultStartHour || result.EndHour != trip.DefaultEndHour {
		t.Errorf("expected default window 9-17, got %d-%d", result.StartHour, result.EndHour)
	}
	if result.Dimension != models.DimensionSunny {
		t.Errorf("expected default dimension sunny, got %q", result.Dimension)
	}
	if result.MaxDistanceMiles != nil {
		t.Errorf("expected no distance cap, got %v", *result.MaxDistanceMiles)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	tests := []struct {
		name      string
		mutate    func(*models.TripCreateRequest)
		wantField string
	}{
		{
			name:      "empty label",
			mutate:    func(r *models.TripCreateRequest) { r.Label = "" },
			wantField: "label",
		},
		{
			name:      "label too long",
			mutate:    func(r *models.TripCreateRequest) { r.Label = strings.Repeat("a", 81) },
			wantField: "label",
		},
		{
			name:      "invalid latitude",
			mutate:    func(r *models.TripCreateRequest) { r.Origin.Lat = 91.0 },
			wantField: "origin.lat",
		},
		{
			name:      "invalid longitude",
			mutate:    func(r *models.TripCreateRequest) { r.Origin.Lon = 181.0 },
			wantField: "origin.lon",
		},
		{
			name:      "missing travel date",
			mutate:    func(r *models.TripCreateRequest) { r.TravelDate = "" },
			wantField: "travelDate",
		},
		{
			name:      "malformed travel date",
			mutate:    func(r *models.TripCreateRequest) { r.TravelDate = "05/09/2026" },
			wantField: "travelDate",
		},
		{
			name:      "start hour out of range",
			mutate:    func(r *models.TripCreateRequest) { r.StartHour = intPtr(24) },
			wantField: "startHour",
		},
		{
			name:      "end hour out of range",
			mutate:    func(r *models.TripCreateRequest) { r.EndHour = intPtr(-1) },
			wantField: "endHour",
		},
		{
			name: "inverted window",
			mutate: func(r *models.TripCreateRequest) {
				r.StartHour = intPtr(17)
				r.EndHour = intPtr(9)
			},
			wantField: "startHour",
		},
		{
			name:      "unknown dimension",
			mutate:    func(r *models.TripCreateRequest) { r.Dimension = "warmest" },
			wantField: "dimension",
		},
		{
			name:      "negative distance cap",
			mutate:    func(r *models.TripCreateRequest) { r.MaxDistanceMiles = floatPtr(-10) },
			wantField: "maxDistanceMiles",
		},
		{
			name: "notes too long",
			mutate: func(r *models.TripCreateRequest) {
				notes := strings.Repeat("a", 501)
				r.Notes = &notes
			},
			wantField: "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCreateRequest()
			tt.mutate(input)

			_, err := service.Create(ctx, "user123", input)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErr *trip.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range validationErr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.wantField, validationErr.Errors)
			}
		})
	}
}

func TestService_Get(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	result, err := service.Get(ctx, "user123", created.ID)
	if err != nil {
		t.Fatalf("failed to get trip: %v", err)
	}

	if result.ID != created.ID {
		t.Errorf("expected ID %q, got %q", created.ID, result.ID)
	}
	if result.Label != created.Label {
		t.Errorf("expected label %q, got %q", created.Label, result.Label)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	_, err := service.Get(ctx, "user123", "nonexistent")
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestService_Get_WrongUser(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user1", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	_, err = service.Get(ctx, "user2", created.ID)
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound for wrong user, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		input := validCreateRequest()
		input.Label = "Trip " + string(rune('A'+i))
		if _, err := service.Create(ctx, "user123", input); err != nil {
			t.Fatalf("failed to create trip: %v", err)
		}
	}

	result, err := service.List(ctx, "user123", 50)
	if err != nil {
		t.Fatalf("failed to list trips: %v", err)
	}

	if len(result.Data) != 3 {
		t.Errorf("expected 3 trips, got %d", len(result.Data))
	}
}

func TestService_List_OnlyOwnTrips(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	if _, err := service.Create(ctx, "user1", validCreateRequest()); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	if _, err := service.Create(ctx, "user2", validCreateRequest()); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	result, err := service.List(ctx, "user1", 50)
	if err != nil {
		t.Fatalf("failed to list trips: %v", err)
	}

	if len(result.Data) != 1 {
		t.Errorf("expected 1 trip for user1, got %d", len(result.Data))
	}
}

func TestService_Update(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	newLabel := "Sunday instead"
	newDate := "2026-09-06"
	comfort := models.DimensionComfort
	updated, err := service.Update(ctx, "user123", created.ID, &models.TripUpdateRequest{
		Label:      &newLabel,
		TravelDate: &newDate,
		Dimension:  &comfort,
	})
	if err != nil {
		t.Fatalf("failed to update trip: %v", err)
	}

	if updated.Label != newLabel {
		t.Errorf("expected label %q, got %q", newLabel, updated.Label)
	}
	if updated.TravelDate != newDate {
		t.Errorf("expected travel date %q, got %q", newDate, updated.TravelDate)
	}
	if updated.Dimension != models.DimensionComfort {
		t.Errorf("expected dimension comfort, got %q", updated.Dimension)
	}
	// Untouched fields are preserved.
	if updated.Origin.Lat != created.Origin.Lat {
		t.Errorf("expected origin preserved, got %v", updated.Origin)
	}
}

func TestService_Update_WindowStaysValid(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	// Moving startHour past the saved endHour must be rejected even
	// though 18 is a valid hour on its own.
	invalid := 18
	_, err = service.Update(ctx, "user123", created.ID, &models.TripUpdateRequest{
		StartHour: &invalid,
	})

	var validationErr *trip.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	label := "New label"
	_, err := service.Update(ctx, "user123", "nonexistent", &models.TripUpdateRequest{Label: &label})
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user123", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if err := service.Delete(ctx, "user123", created.ID); err != nil {
		t.Fatalf("failed to delete trip: %v", err)
	}

	_, err = service.Get(ctx, "user123", created.ID)
	if !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound after delete, got %v", err)
	}
}

func TestService_Delete_WrongUser(t *testing.T) {
	repo := trip.NewInMemoryRepository()
	service := trip.NewService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, "user1", validCreateRequest())
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}

	if err := service.Delete(ctx, "user2", created.ID); !errors.Is(err, trip.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound for wrong user, got %v", err)
	}

	// Still retrievable by the owner.
	if _, err := service.Get(ctx, "user1", created.ID); err != nil {
		t.Errorf("expected trip to survive, got %v", err)
	}
}
