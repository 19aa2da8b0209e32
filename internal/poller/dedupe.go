package poller

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"runclub-dashboard/internal/strava"
)

// DedupeHash fingerprints a club feed activity. The feed exposes no stable
// activity id, so the hash over the immutable-looking fields is the only
// available dedup key. Two genuinely distinct activities with identical
// values across all hashed fields collide and are treated as one; that is
// inherent to the upstream contract, not a bug to fix here.
func DedupeHash(a *strava.ClubActivity) string {
	parts := []string{
		DisplayName(a),
		strPtr(a.Name),
		strPtr(a.Type),
		strPtr(a.SportType),
		floatPtr(a.Distance),
		intPtr(a.MovingTime),
		intPtr(a.ElapsedTime),
		floatPtr(a.TotalElevationGain),
		// Empty today; part of the hash in case upstream adds an id
		intPtr(a.RawID),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// DisplayName joins the athlete's first and last name, trimmed.
// Empty when the feed omits both.
func DisplayName(a *strava.ClubActivity) string {
	if a.Athlete == nil {
		return ""
	}
	var fields []string
	if a.Athlete.Firstname != nil && *a.Athlete.Firstname != "" {
		fields = append(fields, *a.Athlete.Firstname)
	}
	if a.Athlete.Lastname != nil && *a.Athlete.Lastname != "" {
		fields = append(fields, *a.Athlete.Lastname)
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func intPtr(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
