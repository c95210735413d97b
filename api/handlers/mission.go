package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/missions"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Mission exported for testing purposes
type Mission struct {
	Lifecycle *missions.Lifecycle
	VDB       databases.VolunteerDatabase
	EDB       databases.EmergencyDatabase
	Feed      *EmergencyFeed
}

// AcceptMissionHandler commits the volunteer to the emergency
func (m Mission) AcceptMissionHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]
	emergencyID := mux.Vars(r)["emergency_id"]

	emergency, err := m.EDB.FindOne(r.Context(), bson.M{"_id": emergencyID})
	if err != nil {
		config.ErrorStatus("failed to get emergency by ID", http.StatusNotFound, w, err)
		return
	}

	err = m.Lifecycle.Accept(r.Context(), volunteerID, emergencyID, missions.Snapshot{
		Type:     emergency.Type,
		Location: emergency.Location,
		Urgency:  emergency.Urgency,
	})
	if err != nil {
		writeMissionError(w, "failed to accept mission", err)
		return
	}

	if m.Feed != nil {
		m.Feed.Broadcast("mission_accepted", map[string]interface{}{
			"volunteerId": volunteerID,
			"emergencyId": emergencyID,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Mission accepted successfully",
	})
}

// UnacceptMissionHandler withdraws the volunteer from the emergency
func (m Mission) UnacceptMissionHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]
	emergencyID := mux.Vars(r)["emergency_id"]

	err := m.Lifecycle.Unaccept(r.Context(), volunteerID, emergencyID)
	if err != nil {
		writeMissionError(w, "failed to unaccept mission", err)
		return
	}

	if m.Feed != nil {
		m.Feed.Broadcast("mission_unaccepted", map[string]interface{}{
			"volunteerId": volunteerID,
			"emergencyId": emergencyID,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Mission unaccepted successfully",
	})
}

// VolunteerMissionsHandler returns the volunteer's accepted missions
func (m Mission) VolunteerMissionsHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]

	volunteer, err := m.VDB.FindOne(r.Context(), bson.M{"_id": volunteerID})
	if err != nil {
		config.ErrorStatus("failed to get volunteer by ID", http.StatusNotFound, w, err)
		return
	}

	missionsList := volunteer.AcceptedMissions
	if missionsList == nil {
		missionsList = map[string]models.MissionCommitment{}
	}

	b, err := json.Marshal(map[string]interface{}{
		"acceptedMissions":  missionsList,
		"missionsCompleted": volunteer.MissionsCompleted,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// writeMissionError maps the lifecycle's typed errors to status codes
func writeMissionError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, missions.ErrVolunteerIDRequired), errors.Is(err, missions.ErrEmergencyIDRequired):
		config.ErrorStatus(message, http.StatusBadRequest, w, err)
	case errors.Is(err, missions.ErrNoCommitment):
		config.ErrorStatus(message, http.StatusNotFound, w, err)
	case errors.Is(err, missions.ErrOperationInProgress):
		config.ErrorStatus(message, http.StatusConflict, w, err)
	default:
		config.ErrorStatus(message, http.StatusInternalServerError, w, err)
	}
}
