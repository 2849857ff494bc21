package databases

// go generate: mockery --name StockEventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/character8/medicx-clinic-central-main/models"
)

const stockEventName = "medicine_stock_history"

// StockEventDatabase contains the methods to use with the stock ledger
// collection. The ledger is append-only: no update, no delete.
type StockEventDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StockEvent, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type stockEventDatabase struct {
	db DatabaseHelper
}

// NewStockEventDatabase initializes a new instance of stock event database
// with the provided db connection
func NewStockEventDatabase(db DatabaseHelper) StockEventDatabase {
	return &stockEventDatabase{
		db: db,
	}
}

func (c *stockEventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.StockEvent, error) {
	var events []models.StockEvent
	curr, err := c.db.Collection(stockEventName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *stockEventDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(stockEventName).InsertOne(ctx, document, opts...)
}

func (c *stockEventDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(stockEventName).CountDocuments(ctx, filter, opts...)
}
