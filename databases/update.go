package databases

// go generate: mockery --name UpdateDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KULANEAisha/Disaster-Response-Volunteer-System/models"
)

const updateName = "updates"

// UpdateDatabase contains the methods to use with the updates database
type UpdateDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Update, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
}

type updateDatabase struct {
	db DatabaseHelper
}

// NewUpdateDatabase initializes a new instance of updates database with the provided db connection
func NewUpdateDatabase(db DatabaseHelper) UpdateDatabase {
	return &updateDatabase{
		db: db,
	}
}

func (u *updateDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Update, error) {
	var updates []models.Update
	cr := u.db.Collection(updateName).Find(ctx, filter, opts...)
	err := cr.Decode(&updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (u *updateDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res := u.db.Collection(updateName).InsertOne(ctx, document, opts...)
	return res, nil
}

func (u *updateDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return u.db.Collection(updateName).DeleteOne(ctx, filter, opts...)
}
