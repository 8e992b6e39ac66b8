package ports

import "context"

// Contract for resolving a coordinate to a human readable place name.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}
