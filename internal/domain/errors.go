package domain

import "errors"

var (
	// ErrBackendFailure wraps a success=false envelope from the observation backend.
	ErrBackendFailure = errors.New("backend reported failure")

	ErrInvalidSearchType = errors.New("invalid search type")

	// ErrPlaceNotFound means the reverse geocoder had no place for a coordinate.
	ErrPlaceNotFound = errors.New("no place for coordinate")
)
