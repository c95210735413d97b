package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Update exported for testing purposes
type Update struct {
	DB databases.UpdateDatabase
}

type createUpdateRequest struct {
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	Description     string `json:"description" validate:"required"`
	ImageURL        string `json:"imageUrl"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// UpdateFeedHandler returns the community updates, newest first
func (u Update) UpdateFeedHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		Limit = 10
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit, err))
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)

	dbResp, err := u.DB.Find(context.TODO(), bson.D{}, &options.FindOptions{
		Limit: &limit64,
		Skip:  &skip64,
		Sort:  bson.D{{Key: "timeMillis", Value: -1}},
	})
	if err != nil {
		config.ErrorStatus("failed to get updates", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Update{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateUpdateHandler posts a community update from the field
func (u Update) CreateUpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req createUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid update payload", http.StatusBadRequest, w, err)
		return
	}

	now := time.Now()
	update := models.Update{
		ID:              primitive.NewObjectID().Hex(),
		UserID:          req.UserID,
		UserName:        req.UserName,
		UserInitial:     userInitial(req.UserName),
		Description:     req.Description,
		ImageURL:        req.ImageURL,
		Timestamp:       now.Format("2006-01-02 15:04:05"),
		TimeMillis:      now.UnixMilli(),
		ProfileImageURL: req.ProfileImageURL,
	}

	_, err := u.DB.InsertOne(context.Background(), update)
	if err != nil {
		config.ErrorStatus("failed to create update", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Update posted successfully",
		"id":      update.ID,
	})
}

// DeleteUpdateHandler removes an update by ID
func (u Update) DeleteUpdateHandler(w http.ResponseWriter, r *http.Request) {
	updateID := mux.Vars(r)["update_id"]

	err := u.DB.DeleteOne(context.Background(), bson.M{"_id": updateID})
	if err != nil {
		config.ErrorStatus("failed to delete update", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Update deleted successfully",
	})
}

func userInitial(name string) string {
	trimmed := []rune(strings.TrimSpace(name))
	if len(trimmed) == 0 {
		return "?"
	}
	return strings.ToUpper(string(trimmed[0]))
}
