// Package route rebuilds a continuous route from a sparse GPS point
// sequence by filling large temporal gaps with linearly interpolated
// synthetic points.
package route

import (
	"time"

	"github.com/neogeo/surveyor-tracking-backend/internal/models"
	"github.com/neogeo/surveyor-tracking-backend/internal/spatial"
)

const (
	// gapMinutes is the minimum whole-minute gap between consecutive
	// points before interpolation is considered.
	gapMinutes = 5
	// gapDistanceKm is the minimum displacement; closer pairs are
	// treated as a stationary surveyor and never interpolated.
	gapDistanceKm = 0.1
	// One synthetic point per two minutes of gap, capped per pair.
	minutesPerPoint    = 2
	maxSyntheticPoints = 10
)

// Reconstruct fills gaps in a timestamp-ascending point sequence for a
// single surveyor. A gap qualifies when consecutive points are more
// than gapMinutes apart and more than gapDistanceKm apart; both tests
// must pass. Synthetic points are parametric lerps of position and
// timestamp, so the output stays strictly ascending in time.
//
// The function is pure and idempotent: re-running it on its own output
// inserts nothing further, because synthetic points shrink every gap
// below the threshold.
func Reconstruct(points []models.LocationPoint) []models.LocationPoint {
	if len(points) <= 1 {
		return points
	}

	enhanced := make([]models.LocationPoint, 0, len(points))
	enhanced = append(enhanced, points[0])

	for i := 1; i < len(points); i++ {
		prev := points[i-1]
		curr := points[i]

		elapsed := curr.Timestamp.Sub(prev.Timestamp)
		elapsedMinutes := int64(elapsed.Minutes())

		if elapsedMinutes > gapMinutes {
			distance := spatial.HaversineKm(prev.Latitude, prev.Longitude, curr.Latitude, curr.Longitude)

			if distance > gapDistanceKm {
				pointsToAdd := int(elapsedMinutes / minutesPerPoint)
				if pointsToAdd > maxSyntheticPoints {
					pointsToAdd = maxSyntheticPoints
				}

				for j := 1; j <= pointsToAdd; j++ {
					factor := float64(j) / float64(pointsToAdd+1)

					enhanced = append(enhanced, models.LocationPoint{
						SurveyorID: prev.SurveyorID,
						Latitude:   spatial.Lerp(prev.Latitude, curr.Latitude, factor),
						Longitude:  spatial.Lerp(prev.Longitude, curr.Longitude, factor),
						Timestamp:  prev.Timestamp.Add(time.Duration(factor * float64(elapsed))),
						// Synthetic points carry no id and no geometry.
					})
				}
			}
		}

		enhanced = append(enhanced, curr)
	}

	return enhanced
}
