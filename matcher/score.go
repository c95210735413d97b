package matcher

import (
	"fmt"
	"strings"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Weights configures how much each sub-score contributes to the total match
// score. The three weights must sum to 100.
type Weights struct {
	Skill    float64
	Urgency  float64
	Distance float64
}

// DefaultWeights returns the weights the mobile clients were tuned against.
func DefaultWeights() Weights {
	return Weights{Skill: 40, Urgency: 35, Distance: 25}
}

// Validate checks that the weights are non-negative and sum to 100.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Urgency < 0 || w.Distance < 0 {
		return fmt.Errorf("match weights must be non-negative, got %+v", w)
	}
	if sum := w.Skill + w.Urgency + w.Distance; sum != 100 {
		return fmt.Errorf("match weights must sum to 100, got %v", sum)
	}
	return nil
}

// RelevanceStrategy scores a single volunteer skill tag against an emergency
// type, in [0,100]. Kept as an interface so the keyword heuristic below can be
// swapped for something smarter without touching the engine.
type RelevanceStrategy interface {
	Relevance(skill, emergencyType string) float64
}

// KeywordRelevance is the default RelevanceStrategy: case-insensitive substring
// matching of skill tags against emergency type keywords.
type KeywordRelevance struct{}

// Relevance implements RelevanceStrategy. Inputs are lowercased before the
// keyword checks; category blocks are tried in order and the first hit wins.
func (KeywordRelevance) Relevance(skill, emergencyType string) float64 {
	skill = strings.ToLower(skill)
	emergencyType = strings.ToLower(emergencyType)

	if containsAny(emergencyType, "medical", "health", "injury", "accident") {
		if containsAny(skill, "medical", "first aid", "nurse", "doctor", "health") {
			return 100
		}
		if containsAny(skill, "cpr", "emergency") {
			return 90
		}
	}

	if strings.Contains(emergencyType, "fire") {
		if containsAny(skill, "fire", "firefight") {
			return 100
		}
		if containsAny(skill, "rescue", "emergency") {
			return 70
		}
	}

	if containsAny(emergencyType, "flood", "water") {
		if containsAny(skill, "water", "swim", "rescue", "boat") {
			return 100
		}
	}

	if containsAny(emergencyType, "search", "rescue", "missing") {
		if containsAny(skill, "search", "rescue") {
			return 100
		}
	}

	if containsAny(emergencyType, "earthquake", "building", "collapse") {
		if containsAny(skill, "rescue", "construction", "engineer") {
			return 100
		}
	}

	if containsAny(emergencyType, "food", "shelter", "displaced") {
		if containsAny(skill, "logistics", "distribution", "coordination") {
			return 90
		}
	}

	// General emergency response skills apply to every category.
	if containsAny(skill, "emergency", "response", "first aid") {
		return 70
	}
	if containsAny(skill, "communication", "coordination") {
		return 60
	}
	if containsAny(skill, "volunteer", "community") {
		return 50
	}

	// Floor, everyone can help somehow.
	return 30
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// SkillScore returns the skill sub-score in [0,100]. Missing data degrades to a
// neutral or baseline value rather than an error.
func (m *Matcher) SkillScore(v models.Volunteer, e models.Emergency) float64 {
	if e.Type == "" {
		return 50
	}
	if len(v.Skills) == 0 {
		return 30
	}
	var max float64
	for _, skill := range v.Skills {
		if score := m.relevance.Relevance(skill, e.Type); score > max {
			max = score
		}
	}
	return max
}

// UrgencyScore returns the urgency sub-score in [0,100] from the fixed table.
// Unknown or missing urgency is neutral.
func UrgencyScore(urgency string) float64 {
	switch strings.ToLower(urgency) {
	case "critical":
		return 100
	case "high":
		return 85
	case "medium", "moderate":
		return 60
	case "low":
		return 35
	default:
		return 50
	}
}

// DistanceScore returns the distance sub-score in [0,100]. This is a coarse
// text heuristic over the volunteer's service area and the emergency location,
// a deliberate placeholder until real geo-distance is available; swap via
// RelevanceStrategy-style plumbing rather than editing in place.
func DistanceScore(serviceArea, location string) float64 {
	if serviceArea == "" || location == "" {
		return 50
	}

	serviceArea = strings.ToLower(serviceArea)
	location = strings.ToLower(location)

	if serviceArea == location {
		return 100
	}
	if strings.Contains(serviceArea, location) || strings.Contains(location, serviceArea) {
		return 80
	}

	// Shared long word, e.g. "Nairobi West" and "Nairobi East". Short words
	// like "st" or "rd" are ignored.
	for _, vWord := range strings.Fields(serviceArea) {
		if len(vWord) <= 3 {
			continue
		}
		for _, eWord := range strings.Fields(location) {
			if vWord == eWord {
				return 65
			}
		}
	}

	return 40
}

// Score computes the weighted total match score in [0,100] between one
// volunteer and one emergency. Pure and total: it never fails, missing fields
// fall back to neutral sub-scores.
func (m *Matcher) Score(v models.Volunteer, e models.Emergency) float64 {
	skill := m.SkillScore(v, e)
	urgency := UrgencyScore(e.Urgency)
	distance := DistanceScore(v.ServiceArea, e.Location)

	return (skill*m.weights.Skill + urgency*m.weights.Urgency + distance*m.weights.Distance) / 100
}
