package models

// DestinationSearchRequest is the body for POST /v1/destinations:search.
// The origin is given either as a free-text location to geocode or as
// raw coordinates; location wins when both are present.
type DestinationSearchRequest struct {
	Location         string    `json:"location,omitempty"`
	Origin           *Point    `json:"origin,omitempty"`
	Date             string    `json:"date" validate:"required"`
	StartHour        *int      `json:"startHour,omitempty"`
	EndHour          *int      `json:"endHour,omitempty"`
	Dimension        Dimension `json:"dimension,omitempty"`
	MaxDistanceMiles *float64  `json:"maxDistanceMiles,omitempty"`
	Limit            *int      `json:"limit,omitempty"`
}

// PlacePoint is a named observation point with its distance from a query
// coordinate.
type PlacePoint struct {
	Name          string  `json:"name"`
	Region        string  `json:"region"`
	Country       string  `json:"country"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	DistanceMiles float64 `json:"distance_miles"`
}

// WithinResponse is the result of GET /v1/destinations/within.
type WithinResponse struct {
	RadiusMiles float64      `json:"radius_miles"`
	Count       int          `json:"count"`
	Points      []PlacePoint `json:"points"`
}

// GeocodeResponse is the result of GET /v1/geocode.
type GeocodeResponse struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// ReverseGeocodeResponse is the result of GET /v1/geocode/reverse.
type ReverseGeocodeResponse struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// MapCell is one grid boundary cell in a map overlay response.
type MapCell struct {
	ID            int      `json:"id"`
	Center        Point    `json:"center"`
	Boundaries    [4]Point `json:"boundaries"`
	DistanceMiles float64  `json:"distance_miles"`
}

// MapCellsResponse is the result of GET /v1/map/cells.
type MapCellsResponse struct {
	RadiusMiles   float64   `json:"radius_miles"`
	GridSizeMiles float64   `json:"grid_size_miles"`
	Count         int       `json:"count"`
	Cells         []MapCell `json:"cells"`
}
