package missions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases/mocks"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

var updateOK = &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func hasKey(doc interface{}, op, key string) bool {
	m, ok := doc.(bson.M)
	if !ok {
		return false
	}
	inner, ok := m[op].(bson.M)
	if !ok {
		return false
	}
	_, ok = inner[key]
	return ok
}

func TestAccept_WritesBothSidesAndIncrements(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	var commitment models.MissionCommitment
	vdb.On("UpdateOne", mock.Anything,
		bson.M{"_id": "vol-1"},
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$set", "acceptedMissions.em-1") }),
	).Run(func(args mock.Arguments) {
		update := args.Get(2).(bson.M)
		commitment = update["$set"].(bson.M)["acceptedMissions.em-1"].(models.MissionCommitment)
	}).Return(updateOK, nil).Once()

	edb.On("UpdateOne", mock.Anything,
		bson.M{"_id": "em-1"},
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$set", "assignedVolunteers.vol-1") }),
	).Return(updateOK, nil).Once()

	vdb.On("UpdateOne", mock.Anything,
		bson.M{"_id": "vol-1"},
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$inc", "missionsCompleted") }),
	).Return(updateOK, nil).Once()

	l := NewLifecycle(vdb, edb)
	l.now = fixedClock

	err := l.Accept(context.Background(), "vol-1", "em-1", Snapshot{
		Type:     "Fire",
		Location: "Nakuru",
		Urgency:  "High",
	})

	assert.NoError(t, err)
	vdb.AssertExpectations(t)
	edb.AssertExpectations(t)

	assert.Equal(t, "em-1", commitment.EmergencyID)
	assert.Equal(t, "Fire", commitment.EmergencyType)
	assert.Equal(t, "Nakuru", commitment.Location)
	assert.Equal(t, "High", commitment.Urgency)
	assert.Equal(t, models.MissionStatusActive, commitment.Status)
	assert.Equal(t, "2025-03-14 09:26:53", commitment.AcceptedAt)
}

func TestAccept_EmergencyWriteFailureSkipsCounter(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateOK, nil)
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	l := NewLifecycle(vdb, edb)

	err := l.Accept(context.Background(), "vol-1", "em-1", Snapshot{})

	assert.Error(t, err)
	// Only the commitment write happened, the counter increment was skipped.
	vdb.AssertNumberOfCalls(t, "UpdateOne", 1)
}

func TestAccept_VolunteerWriteFailureStopsEverything(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	l := NewLifecycle(vdb, edb)

	err := l.Accept(context.Background(), "vol-1", "em-1", Snapshot{})

	assert.Error(t, err)
	edb.AssertNumberOfCalls(t, "UpdateOne", 0)
}

func TestAccept_RequiresIDs(t *testing.T) {
	l := NewLifecycle(&mocks.VolunteerDatabase{}, &mocks.EmergencyDatabase{})

	err := l.Accept(context.Background(), "", "em-1", Snapshot{})
	assert.ErrorIs(t, err, ErrVolunteerIDRequired)

	err = l.Accept(context.Background(), "vol-1", "", Snapshot{})
	assert.ErrorIs(t, err, ErrEmergencyIDRequired)
}

func TestAccept_RejectsConcurrentDuplicate(t *testing.T) {
	l := NewLifecycle(&mocks.VolunteerDatabase{}, &mocks.EmergencyDatabase{})

	assert.True(t, l.begin("vol-1/em-1"))

	err := l.Accept(context.Background(), "vol-1", "em-1", Snapshot{})
	assert.ErrorIs(t, err, ErrOperationInProgress)

	// A different pair is unaffected by the held guard.
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}
	vdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateOK, nil)
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateOK, nil)
	l2 := NewLifecycle(vdb, edb)
	assert.True(t, l2.begin("vol-1/em-1"))
	assert.NoError(t, l2.Accept(context.Background(), "vol-2", "em-1", Snapshot{}))

	l.end("vol-1/em-1")
}

func TestUnaccept_RemovesBothSidesAndDecrements(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("FindOne", mock.Anything, bson.M{"_id": "vol-1"}).Return(&models.Volunteer{
		ID: "vol-1",
		AcceptedMissions: map[string]models.MissionCommitment{
			"em-1": {EmergencyID: "em-1", Status: models.MissionStatusActive},
		},
		MissionsCompleted: 3,
	}, nil)

	vdb.On("UpdateOne", mock.Anything,
		bson.M{"_id": "vol-1"},
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$unset", "acceptedMissions.em-1") }),
	).Return(updateOK, nil).Once()

	edb.On("UpdateOne", mock.Anything,
		bson.M{"_id": "em-1"},
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$unset", "assignedVolunteers.vol-1") }),
	).Return(updateOK, nil).Once()

	// The decrement filter must carry the floor guard.
	vdb.On("UpdateOne", mock.Anything,
		mock.MatchedBy(func(f interface{}) bool {
			filter, ok := f.(bson.M)
			if !ok {
				return false
			}
			guard, ok := filter["missionsCompleted"].(bson.M)
			return ok && guard["$gt"] == 0
		}),
		mock.MatchedBy(func(u interface{}) bool { return hasKey(u, "$inc", "missionsCompleted") }),
	).Return(updateOK, nil).Once()

	l := NewLifecycle(vdb, edb)

	err := l.Unaccept(context.Background(), "vol-1", "em-1")

	assert.NoError(t, err)
	vdb.AssertExpectations(t)
	edb.AssertExpectations(t)
}

func TestUnaccept_NoCommitment(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("FindOne", mock.Anything, mock.Anything).Return(&models.Volunteer{ID: "vol-1"}, nil)

	l := NewLifecycle(vdb, edb)

	err := l.Unaccept(context.Background(), "vol-1", "em-1")

	assert.ErrorIs(t, err, ErrNoCommitment)
	vdb.AssertNumberOfCalls(t, "UpdateOne", 0)
	edb.AssertNumberOfCalls(t, "UpdateOne", 0)
}

func TestUnaccept_VolunteerLoadFailure(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	vdb.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	l := NewLifecycle(vdb, edb)

	err := l.Unaccept(context.Background(), "vol-1", "em-1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoCommitment)
}

func TestAcceptThenUnaccept_NetZeroCounter(t *testing.T) {
	vdb := &mocks.VolunteerDatabase{}
	edb := &mocks.EmergencyDatabase{}

	// Track the running counter the way mongo would apply the updates.
	var counter int64
	vdb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			update, ok := args.Get(2).(bson.M)
			if !ok {
				return
			}
			inc, ok := update["$inc"].(bson.M)
			if !ok {
				return
			}
			delta := int64(inc["missionsCompleted"].(int))
			filter := args.Get(1).(bson.M)
			if _, guarded := filter["missionsCompleted"]; guarded && counter <= 0 {
				return
			}
			counter += delta
		}).
		Return(updateOK, nil)
	edb.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(updateOK, nil)
	vdb.On("FindOne", mock.Anything, mock.Anything).Return(&models.Volunteer{
		ID: "vol-1",
		AcceptedMissions: map[string]models.MissionCommitment{
			"em-1": {EmergencyID: "em-1"},
		},
	}, nil)

	l := NewLifecycle(vdb, edb)

	assert.NoError(t, l.Accept(context.Background(), "vol-1", "em-1", Snapshot{}))
	assert.NoError(t, l.Unaccept(context.Background(), "vol-1", "em-1"))
	assert.Equal(t, int64(0), counter)

	// A second unaccept cycle at zero cannot drive the counter negative.
	assert.NoError(t, l.Unaccept(context.Background(), "vol-1", "em-1"))
	assert.Equal(t, int64(0), counter)
}
