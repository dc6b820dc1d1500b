// Package geo holds great-circle helpers shared by the location and matching code.
package geo

import "math"

// EarthRadiusMiles is the mean earth radius used for all distance figures.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the haversine distance between two coordinates in miles,
// rounded to one decimal place.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return RoundTo(EarthRadiusMiles*c, 1)
}

// RoundTo rounds v to the given number of decimal places, halves away from zero.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
