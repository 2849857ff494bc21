package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/character8/medicx-clinic-central-main/api"
	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
)

// Stock exported for testing purposes
type Stock struct {
	Service *reports.Service
}

type stockMutationRequest struct {
	StockType  string `json:"stock_type"`
	Quantity   int    `json:"quantity"`
	ExpiryDate string `json:"expiry_date,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	UserType   string `json:"user_type,omitempty"`
}

// MutateStockHandler appends an add or remove event to a medicine's ledger.
// Removals are validated against the derived quantity before they land.
func (s Stock) MutateStockHandler(w http.ResponseWriter, r *http.Request) {
	medicineID := mux.Vars(r)["medicine_id"]

	var body stockMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Quantity <= 0 {
		config.ErrorStatus("quantity must be positive", http.StatusBadRequest, w, fmt.Errorf("got %d", body.Quantity))
		return
	}

	req := reports.StockRequest{
		MedicineID: medicineID,
		Quantity:   body.Quantity,
		ExpiryDate: body.ExpiryDate,
		CreatedBy:  body.CreatedBy,
		UserType:   body.UserType,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var event *models.StockEvent
	var err error
	switch body.StockType {
	case models.StockTypeAdd:
		event, err = s.Service.AddStock(ctx, req)
	case models.StockTypeRemove:
		event, err = s.Service.RemoveStock(ctx, req)
	default:
		config.ErrorStatus("invalid stock type", http.StatusBadRequest, w, fmt.Errorf("unknown stock type %q", body.StockType))
		return
	}
	if err != nil {
		writeServiceError(w, "failed to record stock event", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

// StockHistoryHandler returns a medicine's full event history with the
// running balance after each event.
func (s Stock) StockHistoryHandler(w http.ResponseWriter, r *http.Request) {
	medicineID := mux.Vars(r)["medicine_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := s.Service.GetMedicineWithStock(ctx, medicineID)
	if err != nil {
		writeServiceError(w, "failed to get stock history", err)
		return
	}

	history := dbResp.History
	if len(history) == 0 {
		history = []models.StockHistoryEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
