package geo

import "context"

// Location is the result of a forward-geocoding lookup.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// Geocoder resolves a free-text address into a Location.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (*Location, error)
}
