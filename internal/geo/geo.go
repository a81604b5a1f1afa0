// Package geo provides coordinate types, great-circle distance and the map
// geometry used to render search results.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// kmPerMile converts statute miles to kilometers.
const kmPerMile = 1.60934

// Coordinate is an immutable latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate reports whether the coordinate is within valid WGS84 ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// String formats the coordinate as "lat, lon" with five decimal places.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f, %.5f", c.Lat, c.Lon)
}

// DistanceKm returns the haversine great-circle distance between a and b in
// kilometers. The result is symmetric and zero for identical points. Callers
// are responsible for validating coordinate ranges beforehand.
func DistanceKm(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// MilesToKm converts statute miles to kilometers.
func MilesToKm(mi float64) float64 {
	return mi * kmPerMile
}

// coordTextPattern matches free text of the form "lat, lon".
var coordTextPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseCoordinateText interprets free text as a direct "lat, lon" pair.
// Returns false when the text is not coordinate-shaped or out of range, in
// which case the caller should geocode it instead.
func ParseCoordinateText(s string) (Coordinate, bool) {
	m := coordTextPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Coordinate{}, false
	}
	c := Coordinate{Lat: lat, Lon: lon}
	if c.Validate() != nil {
		return Coordinate{}, false
	}
	return c, true
}
