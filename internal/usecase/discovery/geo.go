package discovery

import "math"

// earthRadiusMiles is the mean Earth radius used for great-circle distance.
const earthRadiusMiles = 3958.8

// DistanceMiles returns the haversine great-circle distance between two
// coordinate pairs. Inputs outside canonical latitude/longitude ranges, or
// non-finite inputs or results, yield +Inf: a candidate that cannot be
// placed on the map is excluded by any radius constraint rather than
// treated as an error.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	if !validCoordinate(lat1, lon1) || !validCoordinate(lat2, lon2) {
		return math.Inf(1)
	}

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	distance := earthRadiusMiles * c
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return math.Inf(1)
	}
	return distance
}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
