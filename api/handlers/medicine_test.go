package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/character8/medicx-clinic-central-main/api/handlers"
	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
)

func newMedicineHandler(t *testing.T) (handlers.Medicine, *mocks.MedicineDatabase, *mocks.StockEventDatabase, *mocks.CounterDatabase) {
	medicineDB := mocks.NewMedicineDatabase(t)
	stockDB := mocks.NewStockEventDatabase(t)
	counterDB := mocks.NewCounterDatabase(t)
	svc := &reports.Service{
		Medicines: medicineDB,
		Stock:     stockDB,
		Usage:     mocks.NewUsageDatabase(t),
		Patients:  mocks.NewPatientDatabase(t),
	}
	m := handlers.Medicine{DB: medicineDB, Counters: counterDB, Service: svc}
	return m, medicineDB, stockDB, counterDB
}

func TestMedicine_CreateMedicineHandlerWithOpeningStock(t *testing.T) {
	m, medicineDB, stockDB, counterDB := newMedicineHandler(t)

	counterDB.On("Next", mock.Anything, models.CounterMedicines).Return(int64(7), nil)
	medicineDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Medicine")).Return(nil, nil)

	// the opening quantity lands as the first add event, not a cache write
	stockDB.On("InsertOne", mock.Anything, mock.MatchedBy(func(e *models.StockEvent) bool {
		return e.StockType == models.StockTypeAdd && e.Quantity == 50
	})).Return(nil, nil)
	stockDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{{ID: "e1", StockType: models.StockTypeAdd, Quantity: 50}}, nil)
	medicineDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	body := `{"name": "Paracetamol", "category": "tablet", "opening_quantity": 50}`
	req := httptest.NewRequest("POST", "/api/v1/medicine", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.CreateMedicineHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var created models.Medicine
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 7, created.SerialNumber)
	assert.Equal(t, 50, created.TotalQuantity)
	assert.NotEmpty(t, created.ID)
}

func TestMedicine_CreateMedicineHandlerNoOpeningStock(t *testing.T) {
	m, medicineDB, stockDB, counterDB := newMedicineHandler(t)

	counterDB.On("Next", mock.Anything, models.CounterMedicines).Return(int64(8), nil)
	medicineDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.Medicine")).Return(nil, nil)

	body := `{"name": "Ibuprofen", "category": "tablet"}`
	req := httptest.NewRequest("POST", "/api/v1/medicine", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.CreateMedicineHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	stockDB.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)

	var created models.Medicine
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 0, created.TotalQuantity)
}

func TestMedicine_CreateMedicineHandlerInvalidCategory(t *testing.T) {
	m := handlers.Medicine{}

	body := `{"name": "Paracetamol", "category": "candy"}`
	req := httptest.NewRequest("POST", "/api/v1/medicine", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.CreateMedicineHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid medicine category")
}

func TestMedicine_CreateMedicineHandlerMissingName(t *testing.T) {
	m := handlers.Medicine{}

	req := httptest.NewRequest("POST", "/api/v1/medicine", strings.NewReader(`{"category": "syrup"}`))
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.CreateMedicineHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMedicine_UpdateMedicineHandlerStripsCacheFields(t *testing.T) {
	medicineDB := mocks.NewMedicineDatabase(t)
	medicineDB.On("UpdateOne", mock.Anything, bson.M{"_id": "m1"}, mock.MatchedBy(func(update bson.M) bool {
		set, ok := update["$set"].(map[string]interface{})
		if !ok {
			return false
		}
		_, hasQuantity := set["total_quantity"]
		_, hasSerial := set["serial_number"]
		_, hasID := set["_id"]
		_, hasLastUpdated := set["last_updated"]
		return set["name"] == "Panadol" && hasLastUpdated && !hasQuantity && !hasSerial && !hasID
	})).Return(nil)

	m := handlers.Medicine{DB: medicineDB}

	body := `{"name": "Panadol", "total_quantity": 9999, "serial_number": 1, "_id": "evil"}`
	req := httptest.NewRequest("PUT", "/api/v1/medicine/m1", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"medicine_id": "m1"})
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.UpdateMedicineHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMedicine_UpdateMedicineHandlerInvalidCategory(t *testing.T) {
	m := handlers.Medicine{}

	body := `{"category": "candy"}`
	req := httptest.NewRequest("PUT", "/api/v1/medicine/m1", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"medicine_id": "m1"})
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.UpdateMedicineHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMedicine_MedicinesHandlerEmptyCategoryReturnsAll(t *testing.T) {
	medicineDB := mocks.NewMedicineDatabase(t)
	medicineDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Medicine{
			{ID: "m1", SerialNumber: 2, Name: "Paracetamol", Category: "tablet"},
			{ID: "m2", SerialNumber: 1, Name: "Benadryl", Category: "syrup"},
		}, nil)

	m := handlers.Medicine{DB: medicineDB}

	req := httptest.NewRequest("GET", "/api/v1/medicines", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.MedicinesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.MedicinesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Medicines, 2)
	assert.Equal(t, int64(2), resp.Pagination.TotalRecords)
}

func TestMedicine_MedicinesHandlerCategoryFilter(t *testing.T) {
	medicineDB := mocks.NewMedicineDatabase(t)
	medicineDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Medicine{
			{ID: "m1", SerialNumber: 2, Name: "Paracetamol", Category: "tablet"},
			{ID: "m2", SerialNumber: 1, Name: "Benadryl", Category: "syrup"},
		}, nil)

	m := handlers.Medicine{DB: medicineDB}

	req := httptest.NewRequest("GET", "/api/v1/medicines?category=syrup", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(m.MedicinesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.MedicinesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Medicines, 1)
	assert.Equal(t, "Benadryl", resp.Medicines[0].Name)
}
