package databases

// go generate: mockery --name VolunteerDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

const volunteerName = "volunteers"

// VolunteerDatabase contains the methods to use with the volunteer database
type VolunteerDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Volunteer, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Volunteer, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type volunteerDatabase struct {
	db DatabaseHelper
}

// NewVolunteerDatabase initializes a new instance of volunteer database with the provided db connection
func NewVolunteerDatabase(db DatabaseHelper) VolunteerDatabase {
	return &volunteerDatabase{
		db: db,
	}
}

func (v *volunteerDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Volunteer, error) {
	volunteer := &models.Volunteer{}
	err := v.db.Collection(volunteerName).FindOne(ctx, filter, opts...).Decode(&volunteer)
	if err != nil {
		return nil, err
	}
	return volunteer, nil
}

func (v *volunteerDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Volunteer, error) {
	var volunteers []models.Volunteer
	cr := v.db.Collection(volunteerName).Find(ctx, filter, opts...)
	err := cr.Decode(&volunteers)
	if err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (v *volunteerDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res := v.db.Collection(volunteerName).InsertOne(ctx, document, opts...)
	return res, nil
}

func (v *volunteerDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return v.db.Collection(volunteerName).UpdateOne(ctx, filter, update, opts...)
}

func (v *volunteerDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return v.db.Collection(volunteerName).DeleteOne(ctx, filter, opts...)
}
