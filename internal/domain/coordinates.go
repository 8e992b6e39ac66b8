package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// UnknownLocation is the place name shown when a coordinate does not resolve.
const UnknownLocation = "unknown location"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Point converts the coordinates to an orb.Point (x = lon, y = lat).
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Valid reports whether both components are finite numbers.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) &&
		!math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}
