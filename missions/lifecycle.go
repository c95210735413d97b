// Package missions governs a volunteer's commitment to an emergency: the
// accept and unaccept transitions, the denormalized records they maintain on
// both the volunteer and the emergency, and the missionsCompleted counter.
package missions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/metrics"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

// TimestampLayout is the acceptedAt format shared with the mobile clients.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	// ErrVolunteerIDRequired is returned when the volunteer ID is empty.
	ErrVolunteerIDRequired = errors.New("volunteer id is required")
	// ErrEmergencyIDRequired is returned when the emergency ID is empty.
	ErrEmergencyIDRequired = errors.New("emergency id is required")
	// ErrNoCommitment is returned by Unaccept when the volunteer has no
	// commitment for the given emergency.
	ErrNoCommitment = errors.New("no commitment exists for this mission")
	// ErrOperationInProgress is returned when an accept or unaccept for the
	// same volunteer and emergency is already running.
	ErrOperationInProgress = errors.New("mission operation already in progress")
)

// Snapshot carries the emergency fields copied onto the commitment record at
// accept time.
type Snapshot struct {
	Type     string
	Location string
	Urgency  string
}

// Lifecycle performs the accept/unaccept transitions. The writes to the
// volunteer record, the emergency record and the counter are sequential and
// individually durable: a failure partway through leaves the earlier writes in
// place for the reconciler to pick up, nothing is rolled back.
type Lifecycle struct {
	VDB databases.VolunteerDatabase
	EDB databases.EmergencyDatabase

	mu       sync.Mutex
	inflight map[string]struct{}

	now func() time.Time
}

// NewLifecycle initializes a mission lifecycle over the given databases.
func NewLifecycle(vdb databases.VolunteerDatabase, edb databases.EmergencyDatabase) *Lifecycle {
	return &Lifecycle{
		VDB:      vdb,
		EDB:      edb,
		inflight: make(map[string]struct{}),
		now:      time.Now,
	}
}

// begin registers an in-flight operation for the volunteer/emergency pair.
// It reports false when one is already running.
func (l *Lifecycle) begin(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inflight[key]; busy {
		return false
	}
	l.inflight[key] = struct{}{}
	return true
}

func (l *Lifecycle) end(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inflight, key)
}

// Accept commits the volunteer to the emergency: it writes the commitment
// under the volunteer's acceptedMissions, writes the companion assignment
// under the emergency's assignedVolunteers, and increments missionsCompleted.
// Each step runs only after the previous one succeeded. Completed steps are
// not rolled back on a later failure; the reconciler repairs one-sided
// commitments.
func (l *Lifecycle) Accept(ctx context.Context, volunteerID, emergencyID string, snap Snapshot) error {
	if volunteerID == "" {
		metrics.MissionAcceptsTotal.WithLabelValues("rejected").Inc()
		return ErrVolunteerIDRequired
	}
	if emergencyID == "" {
		metrics.MissionAcceptsTotal.WithLabelValues("rejected").Inc()
		return ErrEmergencyIDRequired
	}

	key := volunteerID + "/" + emergencyID
	if !l.begin(key) {
		metrics.MissionAcceptsTotal.WithLabelValues("rejected").Inc()
		return ErrOperationInProgress
	}
	defer l.end(key)

	acceptedAt := l.now().Format(TimestampLayout)
	commitment := models.MissionCommitment{
		EmergencyID:   emergencyID,
		EmergencyType: snap.Type,
		Location:      snap.Location,
		Urgency:       snap.Urgency,
		AcceptedAt:    acceptedAt,
		Status:        models.MissionStatusActive,
	}

	_, err := l.VDB.UpdateOne(ctx,
		bson.M{"_id": volunteerID},
		bson.M{"$set": bson.M{"acceptedMissions." + emergencyID: commitment}},
	)
	if err != nil {
		metrics.MissionAcceptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write accepted mission: %w", err)
	}

	_, err = l.EDB.UpdateOne(ctx,
		bson.M{"_id": emergencyID},
		bson.M{"$set": bson.M{"assignedVolunteers." + volunteerID: models.Assignment{
			UserID:     volunteerID,
			AcceptedAt: acceptedAt,
		}}},
	)
	if err != nil {
		// The volunteer-side write stays in place, the reconciler completes it.
		metrics.MissionAcceptsTotal.WithLabelValues("error").Inc()
		zap.S().Errorw("accept left a one-sided commitment",
			"volunteerId", volunteerID,
			"emergencyId", emergencyID,
		)
		return fmt.Errorf("failed to write assignment: %w", err)
	}

	_, err = l.VDB.UpdateOne(ctx,
		bson.M{"_id": volunteerID},
		bson.M{"$inc": bson.M{"missionsCompleted": 1}},
	)
	if err != nil {
		metrics.MissionAcceptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to increment mission count: %w", err)
	}

	metrics.MissionAcceptsTotal.WithLabelValues("ok").Inc()
	return nil
}

// Unaccept withdraws the volunteer from the emergency: it deletes the
// commitment from the volunteer's acceptedMissions, deletes the assignment
// from the emergency's assignedVolunteers, and decrements missionsCompleted,
// floored at zero. Same sequencing and partial-failure behavior as Accept.
func (l *Lifecycle) Unaccept(ctx context.Context, volunteerID, emergencyID string) error {
	if volunteerID == "" {
		metrics.MissionUnacceptsTotal.WithLabelValues("rejected").Inc()
		return ErrVolunteerIDRequired
	}
	if emergencyID == "" {
		metrics.MissionUnacceptsTotal.WithLabelValues("rejected").Inc()
		return ErrEmergencyIDRequired
	}

	key := volunteerID + "/" + emergencyID
	if !l.begin(key) {
		metrics.MissionUnacceptsTotal.WithLabelValues("rejected").Inc()
		return ErrOperationInProgress
	}
	defer l.end(key)

	volunteer, err := l.VDB.FindOne(ctx, bson.M{"_id": volunteerID})
	if err != nil {
		metrics.MissionUnacceptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load volunteer: %w", err)
	}
	if _, ok := volunteer.AcceptedMissions[emergencyID]; !ok {
		metrics.MissionUnacceptsTotal.WithLabelValues("rejected").Inc()
		return ErrNoCommitment
	}

	_, err = l.VDB.UpdateOne(ctx,
		bson.M{"_id": volunteerID},
		bson.M{"$unset": bson.M{"acceptedMissions." + emergencyID: ""}},
	)
	if err != nil {
		metrics.MissionUnacceptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to remove accepted mission: %w", err)
	}

	_, err = l.EDB.UpdateOne(ctx,
		bson.M{"_id": emergencyID},
		bson.M{"$unset": bson.M{"assignedVolunteers." + volunteerID: ""}},
	)
	if err != nil {
		metrics.MissionUnacceptsTotal.WithLabelValues("error").Inc()
		zap.S().Errorw("unaccept left a one-sided removal",
			"volunteerId", volunteerID,
			"emergencyId", emergencyID,
		)
		return fmt.Errorf("failed to remove assignment: %w", err)
	}

	// The missionsCompleted guard in the filter makes this a no-op at zero,
	// so the counter can never go negative.
	_, err = l.VDB.UpdateOne(ctx,
		bson.M{"_id": volunteerID, "missionsCompleted": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"missionsCompleted": -1}},
	)
	if err != nil {
		metrics.MissionUnacceptsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to decrement mission count: %w", err)
	}

	metrics.MissionUnacceptsTotal.WithLabelValues("ok").Inc()
	return nil
}
