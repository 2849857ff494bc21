package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/models"
)

func TestNewStockEventDatabase(t *testing.T) {
	_ = os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	_ = os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	stockDB := databases.NewStockEventDatabase(db)

	assert.NotEmpty(t, stockDB)
}

func TestStockEventDatabase_Find(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.StockEvent)
		*arg = []models.StockEvent{{ID: "mocked-event", StockType: models.StockTypeAdd, Quantity: 5}}
	})
	cursorHelper.(*mocks.CursorHelper).
		On("Close", context.Background()).
		Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "medicine_stock_history").Return(collectionHelper)

	// Create new database with mocked Database interface
	stockDba := databases.NewStockEventDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	events, err := stockDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, events)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct
	// result
	events, err = stockDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.StockEvent{{ID: "mocked-event", StockType: models.StockTypeAdd, Quantity: 5}}, events)
	assert.NoError(t, err)
}

func TestStockEventDatabase_InsertOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var iorHelper databases.InsertOneResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	iorHelper = &mocks.InsertOneResultHelper{}

	iorHelper.(*mocks.InsertOneResultHelper).
		On("Decode").
		Return("mocked-id")

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), bson.M{"error": false}).
		Return(iorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "medicine_stock_history").Return(collectionHelper)

	stockDba := databases.NewStockEventDatabase(dbHelper)

	ior, err := stockDba.InsertOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, ior)
	assert.EqualError(t, err, "mocked-error")

	ior, err = stockDba.InsertOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, "mocked-id", ior.Decode())
	assert.NoError(t, err)
}
