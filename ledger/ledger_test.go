package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/character8/medicx-clinic-central-main/ledger"
	"github.com/character8/medicx-clinic-central-main/models"
)

func event(id string, stockType string, qty int, at int64) models.StockEvent {
	return models.StockEvent{
		ID:         id,
		MedicineID: "med-1",
		StockType:  stockType,
		Quantity:   qty,
		CreatedAt:  primitive.DateTime(at),
	}
}

func TestDeriveQuantity(t *testing.T) {
	events := []models.StockEvent{
		event("a", models.StockTypeAdd, 10, 1),
		event("b", models.StockTypeRemove, 3, 2),
		event("c", models.StockTypeAdd, 5, 3),
	}

	assert.Equal(t, 12, ledger.DeriveQuantity(events))
}

func TestDeriveQuantityIsOrderIndependent(t *testing.T) {
	events := []models.StockEvent{
		event("a", models.StockTypeAdd, 10, 1),
		event("b", models.StockTypeRemove, 3, 2),
		event("c", models.StockTypeAdd, 5, 3),
		event("d", models.StockTypeRemove, 7, 4),
	}

	permutations := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}, {3, 0, 1, 2},
	}
	for _, p := range permutations {
		shuffled := make([]models.StockEvent, 0, len(events))
		for _, i := range p {
			shuffled = append(shuffled, events[i])
		}
		assert.Equal(t, 5, ledger.DeriveQuantity(shuffled))
	}
}

func TestDeriveQuantityEmpty(t *testing.T) {
	assert.Equal(t, 0, ledger.DeriveQuantity(nil))
}

func TestDeriveQuantityDoesNotClampNegatives(t *testing.T) {
	events := []models.StockEvent{
		event("a", models.StockTypeAdd, 2, 1),
		event("b", models.StockTypeRemove, 5, 2),
	}

	assert.Equal(t, -3, ledger.DeriveQuantity(events))
}

func TestRunningBalanceSortsByCreatedAt(t *testing.T) {
	// deliberately out of order
	events := []models.StockEvent{
		event("c", models.StockTypeAdd, 5, 3),
		event("a", models.StockTypeAdd, 10, 1),
		event("b", models.StockTypeRemove, 3, 2),
	}

	entries := ledger.RunningBalance(events)

	assert.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Event.ID)
	assert.Equal(t, 10, entries[0].Balance)
	assert.Equal(t, "b", entries[1].Event.ID)
	assert.Equal(t, 7, entries[1].Balance)
	assert.Equal(t, "c", entries[2].Event.ID)
	assert.Equal(t, 12, entries[2].Balance)

	// input order untouched
	assert.Equal(t, "c", events[0].ID)
}

func TestValidateRemoval(t *testing.T) {
	err := ledger.ValidateRemoval(5, 10)
	assert.Error(t, err)

	var insufficient *ledger.InsufficientStockError
	assert.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 10, insufficient.Requested)

	assert.NoError(t, ledger.ValidateRemoval(10, 5))
	assert.NoError(t, ledger.ValidateRemoval(10, 10))
}

func TestCheckIntegrity(t *testing.T) {
	assert.NoError(t, ledger.CheckIntegrity("med-1", 0))
	assert.NoError(t, ledger.CheckIntegrity("med-1", 12))

	err := ledger.CheckIntegrity("med-1", -3)
	assert.Error(t, err)

	var integrity *ledger.DataIntegrityError
	assert.True(t, errors.As(err, &integrity))
	assert.Equal(t, "med-1", integrity.MedicineID)
	assert.Equal(t, -3, integrity.Derived)
}
