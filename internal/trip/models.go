// Package trip provides saved trip plan management: a user's stored
// search (origin, date, hour window, ranking preferences) they can rerun
// as forecasts update.
package trip

import (
	"errors"
	"time"
)

// Trip errors.
var (
	ErrTripNotFound = errors.New("trip not found")
	ErrInvalidTrip  = errors.New("invalid trip")
)

// Trip is a saved trip plan.
type Trip struct {
	ID     string
	UserID string
	Label  string

	// Origin is the search origin, resolved at save time.
	OriginName string
	OriginLat  float64
	OriginLon  float64

	// Search parameters.
	TravelDate       string
	StartHour        int
	EndHour          int
	Dimension        string
	MaxDistanceMiles float64

	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
