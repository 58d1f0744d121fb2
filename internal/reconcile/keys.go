package reconcile

import "fmt"

// Visits are addressed for deduplication by (place id, date) while the place
// reference is live, and by (place-name snapshot, date) once it is gone. The
// "p:"/"n:" prefixes keep the two key spaces disjoint so two different places
// that happen to share a name never collide.

func visitKey(placeID *int64, placeName, date string) string {
	if placeID != nil {
		return candidateKey(*placeID, date)
	}
	return "n:" + placeName + "|" + date
}

func candidateKey(placeID int64, date string) string {
	return fmt.Sprintf("p:%d|%s", placeID, date)
}
