// Package matcher scores volunteer profiles against open emergencies and ranks
// the results. Scoring is pure and synchronous; it holds no shared mutable
// state and is safe to call from any goroutine.
package matcher

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Match pairs an emergency with its computed score for one volunteer. Matches
// are transient, computed fresh on every request and never persisted.
type Match struct {
	Emergency       models.Emergency `json:"emergency"`
	Score           float64          `json:"score"`
	MatchReason     string           `json:"matchReason"`
	MatchPercentage string           `json:"matchPercentage"`
}

// Matcher applies the score calculator across a candidate set.
type Matcher struct {
	weights   Weights
	relevance RelevanceStrategy
}

// New returns a Matcher with the given weights and relevance strategy. A nil
// strategy falls back to KeywordRelevance.
func New(weights Weights, relevance RelevanceStrategy) (*Matcher, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if relevance == nil {
		relevance = KeywordRelevance{}
	}
	return &Matcher{weights: weights, relevance: relevance}, nil
}

// MatchVolunteer scores every emergency for the volunteer and returns the
// matches sorted by score, highest first. The sort is stable so equal scores
// keep their input order. Emergencies without an ID are skipped, one bad
// record does not block scoring the rest.
func (m *Matcher) MatchVolunteer(v models.Volunteer, emergencies []models.Emergency) []Match {
	matches := make([]Match, 0, len(emergencies))
	for _, e := range emergencies {
		if e.ID == "" {
			zap.S().Warnw("skipping emergency without an id", "type", e.Type, "location", e.Location)
			continue
		}
		score := m.Score(v, e)
		matches = append(matches, Match{
			Emergency:       e,
			Score:           score,
			MatchReason:     matchReason(score),
			MatchPercentage: fmt.Sprintf("%.0f%% match", score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// FilterByMinimumScore retains the matches with score >= min, preserving order.
func FilterByMinimumScore(matches []Match, min float64) []Match {
	filtered := make([]Match, 0, len(matches))
	for _, match := range matches {
		if match.Score >= min {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

// BestMatch returns the first element of an already-sorted match list, or nil
// if the list is empty.
func BestMatch(matches []Match) *Match {
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func matchReason(score float64) string {
	switch {
	case score >= 80:
		return "Excellent match for your skills!"
	case score >= 65:
		return "Great match - you can help here"
	case score >= 50:
		return "Good match - your skills are needed"
	case score >= 35:
		return "Moderate match - general help needed"
	default:
		return "You can still help make a difference"
	}
}
