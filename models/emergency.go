package models

// Emergency holds the structure for the emergencies collection in mongo.
// Field names are shared with the mobile clients and must not be renamed.
type Emergency struct {
	ID                 string                `json:"_id" bson:"_id"`
	Type               string                `json:"type" bson:"type"`
	Location           string                `json:"location" bson:"location"`
	Urgency            string                `json:"urgency" bson:"urgency"`
	Description        string                `json:"description" bson:"description"`
	Volunteers         string                `json:"volunteers" bson:"volunteers"`
	DateTime           string                `json:"dateTime" bson:"dateTime"`
	RequiredSkills     string                `json:"requiredSkills" bson:"requiredSkills"`
	AssignedVolunteers map[string]Assignment `json:"assignedVolunteers" bson:"assignedVolunteers"`
}

// Assignment is the record stored under an emergency's assignedVolunteers map,
// keyed by volunteer ID. It mirrors the commitment stored on the volunteer side.
type Assignment struct {
	UserID     string `json:"userId" bson:"userId"`
	AcceptedAt string `json:"acceptedAt" bson:"acceptedAt"`
}

// AssignedCount returns the number of volunteers currently assigned.
func (e Emergency) AssignedCount() int {
	return len(e.AssignedVolunteers)
}
