package databases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/databases/mocks"
	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

func TestEmergencyFind_SkipsMalformedDocuments(t *testing.T) {
	good, err := bson.Marshal(models.Emergency{
		ID:       "em-1",
		Type:     "Flood",
		Location: "Nakuru",
		Urgency:  "Critical",
	})
	if err != nil {
		t.Fatal(err)
	}

	var db mocks.DatabaseHelper = mocks.DatabaseHelper{}
	var conn mocks.CollectionHelper = mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.AnythingOfType("*[]bson.Raw")).Run(func(args mock.Arguments) {
		raws := args.Get(0).(*[]bson.Raw)
		*raws = []bson.Raw{good, bson.Raw{0x1, 0x2, 0x3}}
	}).Return(nil)

	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper)
	db.On("Collection", "emergencies").Return(&conn)

	edb := databases.NewEmergencyDatabase(&db)

	emergencies, err := edb.Find(context.Background(), bson.D{})
	assert.NoError(t, err)
	assert.Len(t, emergencies, 1)
	assert.Equal(t, "em-1", emergencies[0].ID)
	assert.Equal(t, "Flood", emergencies[0].Type)
}

func TestEmergencyFind_CursorError(t *testing.T) {
	var db mocks.DatabaseHelper = mocks.DatabaseHelper{}
	var conn mocks.CollectionHelper = mocks.CollectionHelper{}
	cursorHelper := &mocks.CursorHelper{}

	cursorHelper.On("Decode", mock.Anything).Return(assert.AnError)

	conn.On("Find", mock.Anything, mock.Anything).Return(cursorHelper)
	db.On("Collection", "emergencies").Return(&conn)

	edb := databases.NewEmergencyDatabase(&db)

	emergencies, err := edb.Find(context.Background(), bson.D{})
	assert.Error(t, err)
	assert.Nil(t, emergencies)
}
