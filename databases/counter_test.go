package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/models"
)

func TestCounterDatabase_Next(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Counter)
		(*arg).Seq = 42
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": "broken"}, mock.Anything, mock.Anything).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOneAndUpdate", context.Background(), bson.M{"_id": models.CounterPatients}, mock.Anything, mock.Anything).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "counters").Return(collectionHelper)

	// Create new database with mocked Database interface
	counterDba := databases.NewCounterDatabase(dbHelper)

	// The sequence advance surfaces decode failures untouched
	seq, err := counterDba.Next(context.Background(), "broken")

	assert.Zero(t, seq)
	assert.EqualError(t, err, "mocked-error")

	seq, err = counterDba.Next(context.Background(), models.CounterPatients)

	assert.Equal(t, int64(42), seq)
	assert.NoError(t, err)
}
