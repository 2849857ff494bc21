package databases

// go generate: mockery --name UsageDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/character8/medicx-clinic-central-main/models"
)

const usageName = "medicine_usage"

// UsageDatabase contains the methods to use with the medicine usage
// collection
type UsageDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MedicineUsage, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type usageDatabase struct {
	db DatabaseHelper
}

// NewUsageDatabase initializes a new instance of usage database with the
// provided db connection
func NewUsageDatabase(db DatabaseHelper) UsageDatabase {
	return &usageDatabase{
		db: db,
	}
}

func (c *usageDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.MedicineUsage, error) {
	var records []models.MedicineUsage
	curr, err := c.db.Collection(usageName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *usageDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(usageName).InsertOne(ctx, document, opts...)
}

func (c *usageDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(usageName).CountDocuments(ctx, filter, opts...)
}
