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

func TestPatientDatabase_FindOne(t *testing.T) {

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
		arg := args.Get(0).(**models.Patient)
		(*arg).ID = "mocked-patient"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "patients").Return(collectionHelper)

	// Create new database with mocked Database interface
	patientDba := databases.NewPatientDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	patient, err := patientDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, patient)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct
	// result
	patient, err = patientDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.Patient{ID: "mocked-patient"}, patient)
	assert.NoError(t, err)
}

func TestPatientDatabase_Find(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", context.Background(), mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Patient)
		*arg = []models.Patient{{ID: "mocked-patient"}}
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
		On("Collection", "patients").Return(collectionHelper)

	patientDba := databases.NewPatientDatabase(dbHelper)

	patients, err := patientDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, patients)
	assert.EqualError(t, err, "mocked-error")

	patients, err = patientDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.Patient{{ID: "mocked-patient"}}, patients)
	assert.NoError(t, err)
}
