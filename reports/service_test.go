package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/ledger"
	"github.com/character8/medicx-clinic-central-main/models"
)

func newTestService(t *testing.T) (*Service, *mocks.MedicineDatabase, *mocks.StockEventDatabase, *mocks.UsageDatabase, *mocks.PatientDatabase) {
	medicines := mocks.NewMedicineDatabase(t)
	stock := mocks.NewStockEventDatabase(t)
	usage := mocks.NewUsageDatabase(t)
	patients := mocks.NewPatientDatabase(t)
	svc := &Service{
		Medicines: medicines,
		Stock:     stock,
		Usage:     usage,
		Patients:  patients,
	}
	return svc, medicines, stock, usage, patients
}

func TestGetMedicineWithStockRecomputesQuantity(t *testing.T) {
	svc, medicines, stock, _, _ := newTestService(t)

	// stored cache column says 99, the ledger says 12
	medicines.On("FindOne", mock.Anything, mock.Anything).
		Return(&models.Medicine{ID: "m1", Name: "Paracetamol", TotalQuantity: 99}, nil)
	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 10},
			{ID: "e2", MedicineID: "m1", StockType: models.StockTypeRemove, Quantity: 3},
			{ID: "e3", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 5},
		}, nil)

	got, err := svc.GetMedicineWithStock(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Medicine.TotalQuantity)
	assert.Len(t, got.History, 3)

	// same events, same answer
	again, err := svc.GetMedicineWithStock(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, got.Medicine.TotalQuantity, again.Medicine.TotalQuantity)
}

func TestGetMedicineWithStockFetchError(t *testing.T) {
	svc, medicines, _, _, _ := newTestService(t)

	boom := errors.New("connection reset")
	medicines.On("FindOne", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := svc.GetMedicineWithStock(context.Background(), "m1")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "fetch medicine", fe.Op)
	assert.ErrorIs(t, err, boom)
}

func TestRemoveStockInsufficient(t *testing.T) {
	svc, _, stock, _, _ := newTestService(t)

	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 5},
		}, nil)

	_, err := svc.RemoveStock(context.Background(), StockRequest{MedicineID: "m1", Quantity: 10})
	var insufficient *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)
	stock.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestRemoveStockAppendsAndWritesHint(t *testing.T) {
	svc, medicines, stock, _, _ := newTestService(t)

	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 20},
		}, nil)
	stock.On("InsertOne", mock.Anything, mock.AnythingOfType("*models.StockEvent")).Return(nil, nil)
	medicines.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	event, err := svc.RemoveStock(context.Background(), StockRequest{MedicineID: "m1", Quantity: 8, CreatedBy: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, models.StockTypeRemove, event.StockType)
	assert.Equal(t, 8, event.Quantity)
	assert.NotEmpty(t, event.ID)
}

func TestAddStockNoValidation(t *testing.T) {
	svc, medicines, stock, _, _ := newTestService(t)

	stock.On("InsertOne", mock.Anything, mock.AnythingOfType("*models.StockEvent")).Return(nil, nil)
	stock.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
	medicines.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	event, err := svc.AddStock(context.Background(), StockRequest{MedicineID: "m1", Quantity: 50, ExpiryDate: "2027-01-01"})
	require.NoError(t, err)
	assert.Equal(t, models.StockTypeAdd, event.StockType)
	assert.Equal(t, "2027-01-01", event.ExpiryDate)
}

func TestRecordUsageValidatesBeforeWriting(t *testing.T) {
	svc, _, stock, usage, _ := newTestService(t)

	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 2},
		}, nil)

	err := svc.RecordUsage(context.Background(), &models.MedicineUsage{
		MedicineID:   "m1",
		PatientID:    "p1",
		QuantityUsed: 3,
	})
	var insufficient *ledger.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	usage.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestRecordUsageAppendsPairedRemoveEvent(t *testing.T) {
	svc, medicines, stock, usage, _ := newTestService(t)

	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 10},
		}, nil)
	usage.On("InsertOne", mock.Anything, mock.AnythingOfType("*models.MedicineUsage")).Return(nil, nil)
	stock.On("InsertOne", mock.Anything, mock.MatchedBy(func(e *models.StockEvent) bool {
		return e.StockType == models.StockTypeRemove && e.Quantity == 4 && e.MedicineID == "m1"
	})).Return(nil, nil)
	medicines.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	record := &models.MedicineUsage{MedicineID: "m1", PatientID: "p1", QuantityUsed: 4}
	require.NoError(t, svc.RecordUsage(context.Background(), record))
	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.UsageDate)
}

func TestGroupedUsageResolvesJoins(t *testing.T) {
	svc, medicines, stock, usage, patients := newTestService(t)
	_ = stock

	usage.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.MedicineUsage{
			{ID: "u1", MedicineID: "m1", PatientID: "p1", QuantityUsed: 2, UsageDate: "2024-03-01T09:00:00Z"},
			{ID: "u2", MedicineID: "m1", PatientID: "p2", QuantityUsed: 1, UsageDate: "2024-03-02T09:00:00Z"},
		}, nil)
	medicines.On("Find", mock.Anything, mock.Anything).
		Return([]models.Medicine{{ID: "m1", Name: "Paracetamol"}}, nil)
	patients.On("Find", mock.Anything, mock.Anything).
		Return([]models.Patient{
			{ID: "p1", PatientID: 101, Name: "Ayesha"},
			{ID: "p2", PatientID: 102, Name: "Bilal"},
		}, nil)

	resp, err := svc.GroupedUsage(context.Background(), UsageFilters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Reports, 2)
	assert.Equal(t, "Bilal", resp.Reports[0].Patient.Name)
	assert.Equal(t, "Paracetamol", resp.Reports[0].Medicines[0].Medicine.Name)
	assert.Equal(t, int64(2), resp.Pagination.TotalRecords)
	assert.Equal(t, int64(1), resp.Pagination.TotalPages)
}

func TestGroupedUsageOrphanPolicy(t *testing.T) {
	records := []models.MedicineUsage{
		{ID: "u1", MedicineID: "m-gone", PatientID: "p1", QuantityUsed: 2, UsageDate: "2024-03-01T09:00:00Z"},
	}

	for _, policy := range []OrphanPolicy{DropOrphans, SurfaceOrphans} {
		svc, medicines, _, usage, patients := newTestService(t)
		svc.Orphans = policy

		usage.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(records, nil)
		medicines.On("Find", mock.Anything, mock.Anything).Return(nil, nil)
		patients.On("Find", mock.Anything, mock.Anything).
			Return([]models.Patient{{ID: "p1", PatientID: 101, Name: "Ayesha"}}, nil)

		resp, err := svc.GroupedUsage(context.Background(), UsageFilters{}, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, resp.Reports)
		if policy == SurfaceOrphans {
			require.Len(t, resp.OrphanedRecords, 1)
			assert.Equal(t, "u1", resp.OrphanedRecords[0].ID)
		} else {
			assert.Empty(t, resp.OrphanedRecords)
		}
	}
}

func TestReconcileStockCachesCollectsViolations(t *testing.T) {
	svc, medicines, stock, _, _ := newTestService(t)

	medicines.On("Find", mock.Anything, mock.Anything).
		Return([]models.Medicine{
			{ID: "m1", Name: "Paracetamol", TotalQuantity: 7},
			{ID: "m2", Name: "Ibuprofen", TotalQuantity: 0},
		}, nil)
	// m1 ledger matches its cache; m2 ledger derives negative
	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e1", MedicineID: "m1", StockType: models.StockTypeAdd, Quantity: 7},
		}, nil).Once()
	stock.On("Find", mock.Anything, mock.Anything).
		Return([]models.StockEvent{
			{ID: "e2", MedicineID: "m2", StockType: models.StockTypeRemove, Quantity: 5},
		}, nil).Times(2)
	medicines.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	violations, err := svc.ReconcileStockCaches(context.Background())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "m2", violations[0].MedicineID)
	assert.Equal(t, -5, violations[0].Derived)
}
