package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Stock event types. The ledger is append-only; these are the only two
// mutations a medicine's quantity ever sees.
const (
	StockTypeAdd    = "add"
	StockTypeRemove = "remove"
)

// StockEvent holds the structure for the medicine_stock_history collection.
// Events are immutable once written; current quantity is always derived by
// summing them.
type StockEvent struct {
	ID         string             `json:"id" bson:"_id"`
	MedicineID string             `json:"medicine_id" bson:"medicine_id"`
	StockType  string             `json:"stock_type" bson:"stock_type"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	ExpiryDate string             `json:"expiry_date,omitempty" bson:"expiry_date,omitempty"`
	CreatedBy  string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UserType   string             `json:"user_type,omitempty" bson:"user_type,omitempty"` // empty for removals paired with a usage record
	CreatedAt  primitive.DateTime `json:"created_at" bson:"created_at"`
}

// StockHistoryEntry is one row of the detail-page ledger view: the event plus
// the balance after applying it.
type StockHistoryEntry struct {
	Event   StockEvent `json:"event"`
	Balance int        `json:"balance"`
}
