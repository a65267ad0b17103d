package domain

import (
	"math"
	"strings"
)

// MatchScore returns the percentage of listing tags covered by the candidate's
// skills, compared case-insensitively for exact equality. A listing without
// tags scores 0.
func MatchScore(candidateSkills, listingTags []string) int {
	if len(listingTags) == 0 {
		return 0
	}

	skills := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		skills[strings.ToLower(s)] = struct{}{}
	}

	matched := 0
	for _, tag := range listingTags {
		if _, ok := skills[strings.ToLower(tag)]; ok {
			matched++
		}
	}

	score := int(math.Round(100 * float64(matched) / float64(len(listingTags))))
	return min(score, 100)
}

// MatchBand buckets a score the same way the score badge colours it.
func MatchBand(score int) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "low"
	}
}
