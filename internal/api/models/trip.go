package models

// Trip is a saved destination search.
type Trip struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	OriginName       string    `json:"originName,omitempty"`
	Origin           Point     `json:"origin"`
	TravelDate       string    `json:"travelDate"`
	StartHour        int       `json:"startHour"`
	EndHour          int       `json:"endHour"`
	Dimension        Dimension `json:"dimension"`
	MaxDistanceMiles *float64  `json:"maxDistanceMiles,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
	UpdatedAt        Timestamp `json:"updatedAt"`
}

// TripCreateRequest is the body for POST /v1/trips.
type TripCreateRequest struct {
	Label            string    `json:"label" validate:"required,max=80"`
	OriginName       string    `json:"originName,omitempty"`
	Origin           Point     `json:"origin" validate:"required"`
	TravelDate       string    `json:"travelDate" validate:"required"`
	StartHour        *int      `json:"startHour,omitempty"`
	EndHour          *int      `json:"endHour,omitempty"`
	Dimension        Dimension `json:"dimension,omitempty"`
	MaxDistanceMiles *float64  `json:"maxDistanceMiles,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
}

// TripUpdateRequest is the body for PUT /v1/trips/{tripId}.
// Nil fields are left unchanged.
type TripUpdateRequest struct {
	Label            *string    `json:"label,omitempty"`
	OriginName       *string    `json:"originName,omitempty"`
	Origin           *Point     `json:"origin,omitempty"`
	TravelDate       *string    `json:"travelDate,omitempty"`
	StartHour        *int       `json:"startHour,omitempty"`
	EndHour          *int       `json:"endHour,omitempty"`
	Dimension        *Dimension `json:"dimension,omitempty"`
	MaxDistanceMiles *float64   `json:"maxDistanceMiles,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// PagedTrips is a paginated list of trips.
type PagedTrips struct {
	Data []Trip            `json:"data"`
	Meta PagedResponseMeta `json:"meta"`
}
