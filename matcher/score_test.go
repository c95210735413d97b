package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := New(DefaultWeights(), nil)
	assert.NoError(t, err)
	return m
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{Skill: 50, Urgency: 30, Distance: 20}.Validate())

	assert.Error(t, Weights{Skill: 40, Urgency: 35, Distance: 20}.Validate())
	assert.Error(t, Weights{Skill: 120, Urgency: -10, Distance: -10}.Validate())
	assert.Error(t, Weights{}.Validate())
}

func TestNew_RejectsInvalidWeights(t *testing.T) {
	m, err := New(Weights{Skill: 1, Urgency: 1, Distance: 1}, nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestSkillScore_MissingData(t *testing.T) {
	m := newTestMatcher(t)

	// Empty emergency type is neutral.
	got := m.SkillScore(models.Volunteer{Skills: []string{"Medical"}}, models.Emergency{})
	assert.Equal(t, 50.0, got)

	// Volunteer with no skills gets the general-help baseline.
	got = m.SkillScore(models.Volunteer{}, models.Emergency{Type: "Fire"})
	assert.Equal(t, 30.0, got)
}

func TestSkillScore_TakesBestSkill(t *testing.T) {
	m := newTestMatcher(t)

	v := models.Volunteer{Skills: []string{"Cooking", "CPR", "Nurse"}}
	e := models.Emergency{Type: "Medical Emergency"}

	// Nurse (100) beats CPR (90) beats the floor (30).
	assert.Equal(t, 100.0, m.SkillScore(v, e))
}

func TestKeywordRelevance(t *testing.T) {
	r := KeywordRelevance{}

	tests := []struct {
		name          string
		skill         string
		emergencyType string
		want          float64
	}{
		{"medical exact", "First Aid", "Medical", 100},
		{"medical cpr", "CPR", "health crisis", 90},
		{"fire direct", "Firefighting", "Fire", 100},
		{"fire rescue", "Rescue", "Fire outbreak", 70},
		{"flood water", "Swimming", "Flood", 100},
		{"search and rescue", "Search Operations", "Missing person", 100},
		{"earthquake engineer", "Structural Engineer", "Building Collapse", 100},
		{"shelter logistics", "Logistics", "Food and Shelter", 90},
		{"general emergency", "Emergency Response", "Landslide", 70},
		{"coordination", "Coordination", "Landslide", 60},
		{"community", "Community Outreach", "Landslide", 50},
		{"floor", "Accounting", "Landslide", 30},
		{"case insensitive", "fIrSt AiD", "MEDICAL", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Relevance(tt.skill, tt.emergencyType))
		})
	}
}

func TestUrgencyScore(t *testing.T) {
	assert.Equal(t, 100.0, UrgencyScore("Critical"))
	assert.Equal(t, 85.0, UrgencyScore("High"))
	assert.Equal(t, 60.0, UrgencyScore("Medium"))
	assert.Equal(t, 60.0, UrgencyScore("moderate"))
	assert.Equal(t, 35.0, UrgencyScore("Low"))
	assert.Equal(t, 50.0, UrgencyScore(""))
	assert.Equal(t, 50.0, UrgencyScore("whatever"))
}

func TestDistanceScore(t *testing.T) {
	assert.Equal(t, 50.0, DistanceScore("", "Nairobi"))
	assert.Equal(t, 50.0, DistanceScore("Nairobi", ""))
	assert.Equal(t, 100.0, DistanceScore("Nairobi", "nairobi"))
	assert.Equal(t, 80.0, DistanceScore("Nairobi", "Nairobi West"))
	assert.Equal(t, 80.0, DistanceScore("Nairobi West", "Nairobi"))
	assert.Equal(t, 65.0, DistanceScore("Nairobi West", "Nairobi East"))
	assert.Equal(t, 40.0, DistanceScore("Mombasa", "Kisumu"))

	// Short shared words do not count as a shared area.
	assert.Equal(t, 40.0, DistanceScore("12 st lane", "34 st road"))
}

func TestScore_WeightedTotal(t *testing.T) {
	m := newTestMatcher(t)

	medic := models.Volunteer{
		Skills:      []string{"First Aid"},
		ServiceArea: "Nairobi",
	}
	clerk := models.Volunteer{
		Skills:      []string{"Accounting"},
		ServiceArea: "Nairobi",
	}

	// skill 100 * 0.40 + urgency 100 * 0.35 + distance 80 * 0.25
	assert.Equal(t, 95.0, m.Score(medic, models.Emergency{
		Type:     "Medical",
		Urgency:  "Critical",
		Location: "Nairobi West",
	}))

	// skill 30 * 0.40 + urgency 85 * 0.35 + distance 80 * 0.25
	assert.Equal(t, 61.75, m.Score(clerk, models.Emergency{
		Type:     "Fire",
		Urgency:  "High",
		Location: "Nairobi West",
	}))

	// skill 30 * 0.40 + urgency 35 * 0.35 + distance 40 * 0.25
	assert.Equal(t, 34.25, m.Score(clerk, models.Emergency{
		Type:     "Landslide",
		Urgency:  "Low",
		Location: "Kisumu",
	}))
}

func TestScore_NeverFails(t *testing.T) {
	m := newTestMatcher(t)

	// A completely empty pair still produces a neutral score.
	got := m.Score(models.Volunteer{}, models.Emergency{})
	assert.Equal(t, (50.0*40+50.0*35+50.0*25)/100, got)
}

func TestScore_CustomWeights(t *testing.T) {
	m, err := New(Weights{Skill: 100, Urgency: 0, Distance: 0}, nil)
	assert.NoError(t, err)

	v := models.Volunteer{Skills: []string{"Firefighting"}, ServiceArea: "Mombasa"}
	e := models.Emergency{Type: "Fire", Urgency: "Low", Location: "Kisumu"}

	assert.Equal(t, 100.0, m.Score(v, e))
}
