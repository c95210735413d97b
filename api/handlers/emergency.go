package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

var (
	// Page denotes the starting Page for pagination results
	Page = 0

	validate = validator.New()
)

// Emergency exported for testing purposes
type Emergency struct {
	DB   databases.EmergencyDatabase
	Feed *EmergencyFeed
}

type createEmergencyRequest struct {
	Type           string `json:"type" validate:"required"`
	Location       string `json:"location" validate:"required"`
	Urgency        string `json:"urgency" validate:"required,oneof=Critical High Medium Moderate Low critical high medium moderate low"`
	Description    string `json:"description"`
	Volunteers     string `json:"volunteers"`
	RequiredSkills string `json:"requiredSkills"`
}

// EmergencyHandler returns all emergencies, paginated
func (e Emergency) EmergencyHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		Limit = 10
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit, err))
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)
	dbResp, err := e.DB.Find(context.TODO(), bson.D{}, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get emergencies", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Emergency exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Emergency{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EmergencyByIDHandler returns an emergency by ID
func (e Emergency) EmergencyByIDHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	zap.S().Debugf("emergency_id: %v", emergencyID)

	dbResp, err := e.DB.FindOne(context.Background(), bson.M{"_id": emergencyID})
	if err != nil {
		config.ErrorStatus("failed to get emergency by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"emergency":     dbResp,
		"assignedCount": dbResp.AssignedCount(),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateEmergencyHandler creates an emergency
func (e Emergency) CreateEmergencyHandler(w http.ResponseWriter, r *http.Request) {
	var req createEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid emergency payload", http.StatusBadRequest, w, err)
		return
	}

	emergency := models.Emergency{
		ID:                 primitive.NewObjectID().Hex(),
		Type:               req.Type,
		Location:           req.Location,
		Urgency:            req.Urgency,
		Description:        req.Description,
		Volunteers:         req.Volunteers,
		DateTime:           time.Now().Format("2006-01-02 15:04:05"),
		RequiredSkills:     req.RequiredSkills,
		AssignedVolunteers: map[string]models.Assignment{},
	}

	_, err := e.DB.InsertOne(context.Background(), emergency)
	if err != nil {
		config.ErrorStatus("failed to create emergency", http.StatusInternalServerError, w, err)
		return
	}

	if e.Feed != nil {
		e.Feed.Broadcast("emergency_created", emergency)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Emergency created successfully",
		"id":      emergency.ID,
	})
}

// UpdateEmergencyHandler updates an emergency's fields
func (e Emergency) UpdateEmergencyHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	// Decode the incoming changes
	var updatedFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updatedFields); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// Prepare the update document. assignedVolunteers is owned by the
	// mission lifecycle and must not be edited through this route.
	update := bson.M{}
	for key, value := range updatedFields {
		if key == "_id" || key == "assignedVolunteers" {
			continue
		}
		update[key] = value
	}
	if len(update) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, fmt.Errorf("empty update"))
		return
	}

	_, err := e.DB.UpdateOne(context.Background(), bson.M{"_id": emergencyID}, bson.M{"$set": update})
	if err != nil {
		config.ErrorStatus("failed to update emergency", http.StatusInternalServerError, w, err)
		return
	}

	if e.Feed != nil {
		e.Feed.Broadcast("emergency_updated", map[string]interface{}{
			"_id":    emergencyID,
			"fields": update,
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Emergency updated successfully",
	})
}

// DeleteEmergencyHandler deletes an emergency by ID
func (e Emergency) DeleteEmergencyHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	err := e.DB.DeleteOne(context.Background(), bson.M{"_id": emergencyID})
	if err != nil {
		config.ErrorStatus("failed to delete emergency", http.StatusInternalServerError, w, err)
		return
	}

	if e.Feed != nil {
		e.Feed.Broadcast("emergency_deleted", map[string]interface{}{"_id": emergencyID})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Emergency deleted successfully",
	})
}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}
