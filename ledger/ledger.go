// Package ledger derives medicine stock levels from the append-only
// medicine_stock_history collection. The stored total_quantity column is a
// cache hint; these functions are the authoritative read path.
package ledger

import (
	"fmt"
	"sort"

	"github.com/character8/medicx-clinic-central-main/models"
)

// DeriveQuantity folds a medicine's stock event history into its net
// quantity. Summation is commutative, so the events may arrive in any order.
// A negative result is not clamped here; callers surface it with
// CheckIntegrity instead.
func DeriveQuantity(events []models.StockEvent) int {
	total := 0
	for _, e := range events {
		switch e.StockType {
		case models.StockTypeAdd:
			total += e.Quantity
		case models.StockTypeRemove:
			total -= e.Quantity
		}
	}
	return total
}

// RunningBalance returns the detail-page ledger view: every event with the
// balance after applying it, ordered by creation time ascending. The input
// slice is not modified.
func RunningBalance(events []models.StockEvent) []models.StockHistoryEntry {
	ordered := make([]models.StockEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	entries := make([]models.StockHistoryEntry, 0, len(ordered))
	balance := 0
	for _, e := range ordered {
		if e.StockType == models.StockTypeAdd {
			balance += e.Quantity
		} else if e.StockType == models.StockTypeRemove {
			balance -= e.Quantity
		}
		entries = append(entries, models.StockHistoryEntry{Event: e, Balance: balance})
	}
	return entries
}

// InsufficientStockError is returned when a removal asks for more than the
// derived stock holds. Recoverable: the caller corrects the quantity and
// retries.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

// ValidateRemoval must be called before appending any remove event; there is
// no store-level constraint backing this rule.
func ValidateRemoval(current, requested int) error {
	if requested > current {
		return &InsufficientStockError{Available: current, Requested: requested}
	}
	return nil
}

// DataIntegrityError flags a derived quantity below zero, which means remove
// events were appended without validation upstream. Affected medicines stay
// readable; the error is for logging and reconciliation reports.
type DataIntegrityError struct {
	MedicineID string
	Derived    int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("stock ledger for medicine %s derives to %d", e.MedicineID, e.Derived)
}

// CheckIntegrity returns a *DataIntegrityError when derived is negative.
func CheckIntegrity(medicineID string, derived int) error {
	if derived < 0 {
		return &DataIntegrityError{MedicineID: medicineID, Derived: derived}
	}
	return nil
}
