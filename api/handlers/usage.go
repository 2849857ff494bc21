package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/character8/medicx-clinic-central-main/api"
	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
)

// Usage exported for testing purposes
type Usage struct {
	Service *reports.Service
}

// RecordUsageHandler records one dispensing occasion: the usage row plus the
// paired remove event in the stock ledger.
func (u Usage) RecordUsageHandler(w http.ResponseWriter, r *http.Request) {
	var usage models.MedicineUsage
	if err := json.NewDecoder(r.Body).Decode(&usage); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if usage.MedicineID == "" {
		config.ErrorStatus("medicine id is required", http.StatusBadRequest, w, errMissingField("medicine_id"))
		return
	}
	if usage.PatientID == "" {
		config.ErrorStatus("patient id is required", http.StatusBadRequest, w, errMissingField("patient_id"))
		return
	}
	if usage.QuantityUsed <= 0 {
		config.ErrorStatus("quantity must be positive", http.StatusBadRequest, w, fmt.Errorf("got %d", usage.QuantityUsed))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := u.Service.RecordUsage(ctx, &usage); err != nil {
		writeServiceError(w, "failed to record usage", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(usage)
}

// GroupedUsageHandler returns the per-patient-per-day grouped usage view with
// searchTerm/date filters and 1-indexed pagination.
func (u Usage) GroupedUsageHandler(w http.ResponseWriter, r *http.Request) {
	filters := reports.UsageFilters{
		SearchTerm: r.URL.Query().Get("searchTerm"),
		DateFilter: r.URL.Query().Get("date"),
	}
	page := getPage(r)
	limit := getLimit(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.Service.GroupedUsage(ctx, filters, page, limit)
	if err != nil {
		writeServiceError(w, "failed to get usage reports", err)
		return
	}

	if len(dbResp.Reports) == 0 {
		dbResp.Reports = []models.GroupedUsageReport{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
