package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/config"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases/mocks"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

var reconcileOK = &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}

func TestReconcile_CompletesOneSidedCommitment(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return([]models.Volunteer{
		{
			ID: "vol-1",
			AcceptedMissions: map[string]models.MissionCommitment{
				"em-1": {
					EmergencyID:   "em-1",
					EmergencyType: "Flood",
					Location:      "Nakuru",
					Urgency:       "Critical",
					AcceptedAt:    "2025-03-14 09:26:53",
					Status:        models.MissionStatusActive,
				},
			},
		},
	}, nil)
	// The emergency exists but never got the assignment written back.
	edb.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{
		{ID: "em-1", Type: "Flood", AssignedVolunteers: map[string]models.Assignment{}},
	}, nil)

	var capturedUpdate bson.M
	edb.On("UpdateOne", mock.Anything, bson.M{"_id": "em-1"}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(reconcileOK, nil)

	s := NewScheduler(vdb, edb, config.Config{})
	s.reconcileCommitments()

	edb.AssertNumberOfCalls(t, "UpdateOne", 1)

	set, ok := capturedUpdate["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected a $set update, got %v", capturedUpdate)
	}
	assignment, ok := set["assignedVolunteers.vol-1"].(models.Assignment)
	if !ok {
		t.Fatalf("expected an assignment for vol-1, got %v", set)
	}
	assert.Equal(t, "vol-1", assignment.UserID)
	assert.Equal(t, "2025-03-14 09:26:53", assignment.AcceptedAt)
}

func TestReconcile_RemovesOrphanedAssignment(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	// The volunteer dropped the commitment but the assignment record survived.
	vdb.On("Find", mock.Anything, mock.Anything).Return([]models.Volunteer{
		{ID: "vol-1", AcceptedMissions: map[string]models.MissionCommitment{}},
	}, nil)
	edb.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{
		{ID: "em-1", AssignedVolunteers: map[string]models.Assignment{
			"vol-1": {UserID: "vol-1", AcceptedAt: "2025-03-14 09:26:53"},
		}},
	}, nil)

	var capturedUpdate bson.M
	edb.On("UpdateOne", mock.Anything, bson.M{"_id": "em-1"}, mock.Anything).Run(func(args mock.Arguments) {
		capturedUpdate = args.Get(2).(bson.M)
	}).Return(reconcileOK, nil)

	s := NewScheduler(vdb, edb, config.Config{})
	s.reconcileCommitments()

	edb.AssertNumberOfCalls(t, "UpdateOne", 1)

	unset, ok := capturedUpdate["$unset"].(bson.M)
	if !ok {
		t.Fatalf("expected an $unset update, got %v", capturedUpdate)
	}
	if _, ok := unset["assignedVolunteers.vol-1"]; !ok {
		t.Errorf("expected the orphaned assignment to be cleared, got %v", unset)
	}
}

func TestReconcile_BothSidesPresentIsUntouched(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return([]models.Volunteer{
		{ID: "vol-1", AcceptedMissions: map[string]models.MissionCommitment{
			"em-1": {EmergencyID: "em-1", AcceptedAt: "2025-03-14 09:26:53", Status: models.MissionStatusActive},
		}},
	}, nil)
	edb.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{
		{ID: "em-1", AssignedVolunteers: map[string]models.Assignment{
			"vol-1": {UserID: "vol-1", AcceptedAt: "2025-03-14 09:26:53"},
		}},
	}, nil)

	s := NewScheduler(vdb, edb, config.Config{})
	s.reconcileCommitments()

	edb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_SkipsCommitmentToDeletedEmergency(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("Find", mock.Anything, mock.Anything).Return([]models.Volunteer{
		{ID: "vol-1", AcceptedMissions: map[string]models.MissionCommitment{
			"em-gone": {EmergencyID: "em-gone", AcceptedAt: "2025-03-14 09:26:53"},
		}},
	}, nil)
	edb.On("Find", mock.Anything, mock.Anything).Return([]models.Emergency{}, nil)

	s := NewScheduler(vdb, edb, config.Config{})
	s.reconcileCommitments()

	edb.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
