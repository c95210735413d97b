package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/api"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/matcher"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/metrics"
)

// DefaultMinimumScore is the match threshold shown to volunteers unless the
// request overrides it.
const DefaultMinimumScore = 35

// Match exported for testing purposes
type Match struct {
	VDB    databases.VolunteerDatabase
	EDB    databases.EmergencyDatabase
	Engine *matcher.Matcher
}

type matchResponse struct {
	Matches   []matcher.Match `json:"matches"`
	BestMatch *matcher.Match  `json:"bestMatch"`
	Total     int             `json:"total"`
}

// VolunteerMatchesHandler scores every open emergency for the volunteer and
// returns the ranked matches above the minimum score, plus the best match.
func (m Match) VolunteerMatchesHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	volunteer, err := m.VDB.FindOne(ctx, bson.M{"_id": volunteerID})
	if err != nil {
		config.ErrorStatus("failed to get volunteer by ID", http.StatusNotFound, w, err)
		return
	}

	emergencies, err := m.EDB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get emergencies", http.StatusInternalServerError, w, err)
		return
	}

	minScore := float64(DefaultMinimumScore)
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			zap.S().Warnf("invalid min_score %q, using default of %v", raw, minScore)
		} else {
			minScore = parsed
		}
	}

	matches := m.Engine.MatchVolunteer(*volunteer, emergencies)

	metrics.MatchRequestsTotal.Inc()
	for _, match := range matches {
		metrics.MatchScores.Observe(match.Score)
	}

	filtered := matcher.FilterByMinimumScore(matches, minScore)

	resp := matchResponse{
		Matches:   filtered,
		BestMatch: matcher.BestMatch(filtered),
		Total:     len(filtered),
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
