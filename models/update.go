package models

// Update holds the structure for the updates collection in mongo. Updates are the
// community feed posts volunteers share from the field, optionally with a photo.
type Update struct {
	ID              string `json:"_id" bson:"_id"`
	UserID          string `json:"userId" bson:"userId"`
	UserName        string `json:"userName" bson:"userName"`
	UserInitial     string `json:"userInitial" bson:"userInitial"`
	Description     string `json:"description" bson:"description"`
	ImageURL        string `json:"imageUrl" bson:"imageUrl"`
	Timestamp       string `json:"timestamp" bson:"timestamp"`
	TimeMillis      int64  `json:"timeMillis" bson:"timeMillis"`
	ProfileImageURL string `json:"profileImageUrl" bson:"profileImageUrl"`
}
