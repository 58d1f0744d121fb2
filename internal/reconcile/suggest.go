package reconcile

import (
	"fmt"

	"github.com/jengzang/visits-backend-go/internal/config"
)

// A single ping very close to a place is weak evidence of a visit by itself
// (GPS noise), but combined with several pings slightly farther out, or a
// single user check-in, the combined evidence is strong enough to surface for
// manual confirmation without auto-committing.

// qualifiesAsSuggestion applies the cross-tier evidence rules to one
// (place, day) breakdown
func qualifiesAsSuggestion(st TierStats, s config.ReconSettings) bool {
	switch {
	case st.CheckinCount >= 1:
		return true
	case st.Tier1Hits >= s.Tier1Hits:
		return true
	case st.Tier2Hits >= s.Tier2Hits:
		return true
	case st.Tier3Hits >= s.Tier3Hits:
		return true
	case st.TotalHits >= s.MaxHits:
		return true
	case st.Tier1Hits >= 1 && st.Tier2Hits >= 2:
		return true
	case st.Tier2Hits >= 1 && st.Tier3Hits >= 3:
		return true
	}
	return false
}

// suggestionReason derives the human-readable explanation for a qualifying
// (place, day). Rules are checked most specific/trustworthy first: user
// check-in, then cross-tier combinations, then single-tier counts, then the
// generic extended-range fallback.
func suggestionReason(st TierStats, s config.ReconSettings) string {
	if st.CheckinCount >= 1 {
		return "User checked in here"
	}
	if st.Tier1Hits >= 1 && st.Tier2Hits >= 2 {
		return fmt.Sprintf("%d ping(s) within %.0fm and %d within %.0fm",
			st.Tier1Hits, s.Tier1Radius, st.Tier2Hits, s.Tier2Radius)
	}
	if st.Tier2Hits >= 1 && st.Tier3Hits >= 3 {
		return fmt.Sprintf("%d ping(s) within %.0fm and %d within %.0fm",
			st.Tier2Hits, s.Tier2Radius, st.Tier3Hits, s.Tier3Radius)
	}
	if st.Tier1Hits >= s.Tier1Hits {
		return fmt.Sprintf("%d pings within %.0fm", st.Tier1Hits, s.Tier1Radius)
	}
	if st.Tier2Hits >= s.Tier2Hits {
		return fmt.Sprintf("%d pings within %.0fm", st.Tier2Hits, s.Tier2Radius)
	}
	if st.Tier3Hits >= s.Tier3Hits {
		return fmt.Sprintf("%d pings within %.0fm", st.Tier3Hits, s.Tier3Radius)
	}
	return fmt.Sprintf("%d pings within extended range", st.TotalHits)
}
