package models

// Volunteer holds the structure for the volunteers collection in mongo.
// Field names are shared with the mobile clients and must not be renamed.
type Volunteer struct {
	ID                string                       `json:"_id" bson:"_id"`
	FullName          string                       `json:"fullName" bson:"fullName"`
	Email             string                       `json:"email" bson:"email"`
	Password          string                       `json:"-" bson:"password"`
	ServiceArea       string                       `json:"serviceArea" bson:"serviceArea"`
	Radius            float64                      `json:"radius" bson:"radius"`
	Skills            []string                     `json:"skills" bson:"skills"`
	Availability      []string                     `json:"availability" bson:"availability"`
	IsAvailable       bool                         `json:"isAvailable" bson:"isAvailable"`
	AcceptedMissions  map[string]MissionCommitment `json:"acceptedMissions" bson:"acceptedMissions"`
	MissionsCompleted int64                        `json:"missionsCompleted" bson:"missionsCompleted"`
}

// MissionCommitment is the record stored under a volunteer's acceptedMissions map,
// keyed by emergency ID. The emergency fields are a snapshot taken at accept time
// and are not kept in sync with later edits to the emergency.
type MissionCommitment struct {
	EmergencyID   string `json:"emergencyId" bson:"emergencyId"`
	EmergencyType string `json:"emergencyType" bson:"emergencyType"`
	Location      string `json:"location" bson:"location"`
	Urgency       string `json:"urgency" bson:"urgency"`
	AcceptedAt    string `json:"acceptedAt" bson:"acceptedAt"`
	Status        string `json:"status" bson:"status"`
}

// MissionStatusActive is the only commitment status in use. Commitments are
// deleted on unaccept rather than moved to a terminal status.
const MissionStatusActive = "Active"
