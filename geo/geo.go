// Package geo computes great-circle distances between coordinates.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
const EarthRadiusMeters = 6371000.0

// Distance returns the Haversine distance in meters between two points
// given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinDistance reports whether the two points are at most allowedMeters
// apart. A distance exactly equal to the radius is within.
func IsWithinDistance(lat1, lon1, lat2, lon2 float64, allowedMeters int) bool {
	return withinRadius(Distance(lat1, lon1, lat2, lon2), allowedMeters)
}

func withinRadius(distance float64, allowedMeters int) bool {
	return distance <= float64(allowedMeters)
}

// ValidCoordinates reports whether lat/lon are finite and inside
// [-90,90] x [-180,180].
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
