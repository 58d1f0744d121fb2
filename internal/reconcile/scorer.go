package reconcile

import (
	"math"

	"github.com/jengzang/visits-backend-go/internal/config"
)

// Score converts a (hit count, average distance) pair into a 0-100 confidence
// value. More independent pings raise confidence with diminishing returns past
// ~10 hits; distance beyond the tight inner radius linearly erodes it, capped
// at a 20-point penalty at the outer radius.
func Score(hitCount int, avgDistM float64, s config.ReconSettings) int {
	hitScore := math.Min(95, 40+float64(hitCount)*5.5)

	penalty := 0.0
	if avgDistM > s.MinRadius && s.MaxRadius > s.MinRadius {
		penalty = math.Min(20, (avgDistM-s.MinRadius)/(s.MaxRadius-s.MinRadius)*20)
	}

	result := int(math.Round(hitScore - penalty))
	if result < 0 {
		return 0
	}
	if result > 100 {
		return 100
	}
	return result
}
