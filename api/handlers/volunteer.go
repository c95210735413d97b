package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// Volunteer exported for testing purposes
type Volunteer struct {
	DB databases.VolunteerDatabase
}

type registerVolunteerRequest struct {
	FullName     string   `json:"fullName" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	ServiceArea  string   `json:"serviceArea"`
	Radius       float64  `json:"radius"`
	Skills       []string `json:"skills"`
	Availability []string `json:"availability"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	Volunteer struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	} `json:"volunteer"`
}

// RegisterVolunteerHandler creates a volunteer profile with a bcrypt password
func (v Volunteer) RegisterVolunteerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerVolunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate.Struct(req); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			config.ErrorStatus("failed to validate request body", http.StatusInternalServerError, w, err)
			return
		}
		config.ErrorStatus("invalid volunteer payload", http.StatusBadRequest, w, err)
		return
	}

	existing, err := v.DB.Find(context.Background(), bson.M{"email": req.Email})
	if err == nil && len(existing) > 0 {
		config.ErrorStatus("volunteer with this email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	volunteer := models.Volunteer{
		ID:               primitive.NewObjectID().Hex(),
		FullName:         req.FullName,
		Email:            req.Email,
		Password:         string(hash),
		ServiceArea:      req.ServiceArea,
		Radius:           req.Radius,
		Skills:           req.Skills,
		Availability:     req.Availability,
		IsAvailable:      true,
		AcceptedMissions: map[string]models.MissionCommitment{},
	}

	_, err = v.DB.InsertOne(context.Background(), volunteer)
	if err != nil {
		config.ErrorStatus("failed to create volunteer", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Volunteer registered successfully",
		"id":      volunteer.ID,
	})
}

// LoginHandler handles volunteer login via email/password and returns a JWT
func (v Volunteer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		config.ErrorStatus("email and password required", http.StatusBadRequest, w, fmt.Errorf("missing credentials"))
		return
	}

	volunteer, err := v.DB.FindOne(r.Context(), bson.M{"email": email})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(volunteer.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("JWT_SECRET not set"))
		return
	}

	claims := jwt.MapClaims{
		"sub":   volunteer.ID,
		"email": volunteer.Email,
		"scope": "volunteer",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	var resp loginResponse
	resp.Token = signed
	resp.Volunteer.ID = volunteer.ID
	resp.Volunteer.Email = volunteer.Email
	resp.Volunteer.FullName = volunteer.FullName

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// VolunteerByIDHandler returns a volunteer by ID
func (v Volunteer) VolunteerByIDHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]

	dbResp, err := v.DB.FindOne(context.Background(), bson.M{"_id": volunteerID})
	if err != nil {
		config.ErrorStatus("failed to get volunteer by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateVolunteerHandler updates a volunteer's profile fields
func (v Volunteer) UpdateVolunteerHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]

	var updatedFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updatedFields); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// acceptedMissions and missionsCompleted are owned by the mission
	// lifecycle; password changes go through their own flow.
	update := bson.M{}
	for key, value := range updatedFields {
		switch key {
		case "_id", "password", "acceptedMissions", "missionsCompleted":
			continue
		}
		update[key] = value
	}
	if len(update) == 0 {
		config.ErrorStatus("no updatable fields in request body", http.StatusBadRequest, w, fmt.Errorf("empty update"))
		return
	}

	_, err := v.DB.UpdateOne(context.Background(), bson.M{"_id": volunteerID}, bson.M{"$set": update})
	if err != nil {
		config.ErrorStatus("failed to update volunteer", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Volunteer updated successfully",
	})
}

// SetAvailabilityHandler toggles a volunteer's isAvailable flag
func (v Volunteer) SetAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	volunteerID := mux.Vars(r)["volunteer_id"]

	var req struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	_, err := v.DB.UpdateOne(context.Background(),
		bson.M{"_id": volunteerID},
		bson.M{"$set": bson.M{"isAvailable": req.IsAvailable}},
	)
	if err != nil {
		config.ErrorStatus("failed to update availability", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":     "Availability updated successfully",
		"isAvailable": req.IsAvailable,
	})
}
