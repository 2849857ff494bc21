package models

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MedicineCategories is the fixed set of dosage-form categories accepted by
// the stock pages.
var MedicineCategories = []string{
	"tablet", "syrup", "injection", "sachet", "drops", "lotion",
	"cream", "ointment", "suspension", "gel", "infusion", "transfusion",
}

// Medicine holds the structure for the medicines collection.
//
// TotalQuantity is a cached projection of the stock ledger, written back as a
// hint after stock mutations. Reads that matter derive the quantity from the
// medicine_stock_history collection instead of trusting this field.
type Medicine struct {
	ID            string             `json:"id" bson:"_id"`
	SerialNumber  int                `json:"serial_number" bson:"serial_number"` // sequential, assigned from the counters collection
	Name          string             `json:"name" bson:"name"`
	Category      string             `json:"category" bson:"category"`
	TotalQuantity int                `json:"total_quantity" bson:"total_quantity"`
	ExpiryDate    string             `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
	LastUpdated   primitive.DateTime `json:"last_updated" bson:"last_updated"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// SearchTargets returns the fields the free-text medicine search matches
// against.
func (m Medicine) SearchTargets() []string {
	return []string{m.Name, strconv.Itoa(m.SerialNumber)}
}

// FilterCategory returns the value the category filter compares against.
func (m Medicine) FilterCategory() string { return m.Category }

// FilterDate returns the value the date-prefix filter compares against.
func (m Medicine) FilterDate() string { return m.ExpiryDate }

// ValidMedicineCategory reports whether c is one of the accepted dosage-form
// categories.
func ValidMedicineCategory(c string) bool {
	for _, cat := range MedicineCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// MedicineWithStock is the reconciled read view of a medicine: the stored row
// with TotalQuantity recomputed from its ledger, plus the per-event running
// balance for the detail page.
type MedicineWithStock struct {
	Medicine Medicine            `json:"medicine"`
	History  []StockHistoryEntry `json:"history"`
}

// MedicinesResponse is the paginated list response for medicine searches
type MedicinesResponse struct {
	Medicines  []Medicine `json:"medicines"`
	Pagination Pagination `json:"pagination"`
}
