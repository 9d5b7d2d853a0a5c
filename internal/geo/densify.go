package geo

import "fleet-route-tracker/internal/domain"

// Densify linearly interpolates between consecutive waypoints, emitting
// stepsPerSegment points per segment (starting at the segment origin) and the
// final waypoint once. The result has (n-1)*stepsPerSegment+1 points and is empty
// for fewer than two waypoints. The input is not modified.
func Densify(waypoints []domain.Coordinates, stepsPerSegment int) []domain.Coordinates {
	if len(waypoints) < 2 {
		return []domain.Coordinates{}
	}
	if stepsPerSegment < 1 {
		stepsPerSegment = 1
	}

	out := make([]domain.Coordinates, 0, (len(waypoints)-1)*stepsPerSegment+1)
	for i := 0; i < len(waypoints)-1; i++ {
		from, to := waypoints[i], waypoints[i+1]
		for step := 0; step < stepsPerSegment; step++ {
			t := float64(step) / float64(stepsPerSegment)
			out = append(out, domain.Coordinates{
				Lon: from.Lon + (to.Lon-from.Lon)*t,
				Lat: from.Lat + (to.Lat-from.Lat)*t,
			})
		}
	}

	return append(out, waypoints[len(waypoints)-1])
}

// PathLengthKm sums segment distances along a path. Unknown points yield +Inf.
func PathLengthKm(path []domain.Coordinates) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += Between(path[i-1], path[i])
	}
	return total
}
