package databases

// go generate: mockery --name MedicineDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/character8/medicx-clinic-central-main/models"
)

const medicineName = "medicines"

// MedicineDatabase contains the methods to use with the medicines collection
type MedicineDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Medicine, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Medicine, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type medicineDatabase struct {
	db DatabaseHelper
}

// NewMedicineDatabase initializes a new instance of medicine database with
// the provided db connection
func NewMedicineDatabase(db DatabaseHelper) MedicineDatabase {
	return &medicineDatabase{
		db: db,
	}
}

func (c *medicineDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Medicine, error) {
	medicine := &models.Medicine{}
	err := c.db.Collection(medicineName).FindOne(ctx, filter, opts...).Decode(&medicine)
	if err != nil {
		return nil, err
	}
	return medicine, nil
}

func (c *medicineDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Medicine, error) {
	var medicines []models.Medicine
	curr, err := c.db.Collection(medicineName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &medicines)
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

func (c *medicineDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(medicineName).InsertOne(ctx, document, opts...)
}

func (c *medicineDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	return c.db.Collection(medicineName).UpdateOne(ctx, filter, update, opts...)
}

func (c *medicineDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(medicineName).DeleteOne(ctx, filter, opts...)
}

func (c *medicineDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(medicineName).CountDocuments(ctx, filter, opts...)
}
