package RouteOptimizer

import "math"

// EarthRadiusKm is the mean earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// ValidateCoordinate rejects NaN, infinite and out-of-range coordinates.
func ValidateCoordinate(lat, lon float64) error {
	if !finite(lat) || !finite(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) (float64, error) {
	if err := ValidateCoordinate(a.Lat, a.Lon); err != nil {
		return 0, &CoordinateError{Index: 0, Name: a.Name, Lat: a.Lat, Lon: a.Lon}
	}
	if err := ValidateCoordinate(b.Lat, b.Lon); err != nil {
		return 0, &CoordinateError{Index: 1, Name: b.Name, Lat: b.Lat, Lon: b.Lon}
	}
	return haversine(a.Lat, a.Lon, b.Lat, b.Lon), nil
}

// haversine assumes validated input.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dphi := (lat2 - lat1) * math.Pi / 180
	dlambda := (lon2 - lon1) * math.Pi / 180

	s1 := math.Sin(dphi / 2)
	s2 := math.Sin(dlambda / 2)
	a := s1*s1 + math.Cos(phi1)*math.Cos(phi2)*s2*s2
	// rounding can push a slightly past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// round1e9 removes floating noise from accumulated sums so equal tours report equal costs.
func round1e9(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}
