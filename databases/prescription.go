package databases

// go generate: mockery --name PrescriptionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/character8/medicx-clinic-central-main/models"
)

const prescriptionName = "medicine_prescriptions"

// PrescriptionDatabase contains the methods to use with the prescriptions
// collection
type PrescriptionDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PrescribedMedicine, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type prescriptionDatabase struct {
	db DatabaseHelper
}

// NewPrescriptionDatabase initializes a new instance of prescription database
// with the provided db connection
func NewPrescriptionDatabase(db DatabaseHelper) PrescriptionDatabase {
	return &prescriptionDatabase{
		db: db,
	}
}

func (c *prescriptionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.PrescribedMedicine, error) {
	var prescriptions []models.PrescribedMedicine
	curr, err := c.db.Collection(prescriptionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &prescriptions)
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (c *prescriptionDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(prescriptionName).InsertOne(ctx, document, opts...)
}
