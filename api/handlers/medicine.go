package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/character8/medicx-clinic-central-main/api"
	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/models"
	"github.com/character8/medicx-clinic-central-main/reports"
)

// Medicine exported for testing purposes
type Medicine struct {
	DB       databases.MedicineDatabase
	Counters databases.CounterDatabase
	Service  *reports.Service
}

// CreateMedicineRequest is the body for medicine creation. OpeningQuantity,
// when positive, lands as the first add event in the ledger rather than a
// direct write to the cached quantity.
type CreateMedicineRequest struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	OpeningQuantity int    `json:"opening_quantity,omitempty"`
	ExpiryDate      string `json:"expiry_date,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
}

// CreateMedicineHandler creates a medicine with a zeroed stock cache and an
// optional opening add event.
func (m Medicine) CreateMedicineHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Name == "" {
		config.ErrorStatus("medicine name is required", http.StatusBadRequest, w, errMissingField("name"))
		return
	}
	if !models.ValidMedicineCategory(req.Category) {
		config.ErrorStatus("invalid medicine category", http.StatusBadRequest, w, fmt.Errorf("unknown category %q", req.Category))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	seq, err := m.Counters.Next(ctx, models.CounterMedicines)
	if err != nil {
		config.ErrorStatus("failed to assign serial number", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	medicine := models.Medicine{
		ID:           uuid.NewString(),
		SerialNumber: int(seq),
		Name:         req.Name,
		Category:     req.Category,
		ExpiryDate:   req.ExpiryDate,
		LastUpdated:  now,
		CreatedAt:    now,
	}

	if _, err := m.DB.InsertOne(ctx, medicine); err != nil {
		config.ErrorStatus("failed to create medicine", http.StatusInternalServerError, w, err)
		return
	}

	if req.OpeningQuantity > 0 {
		_, err := m.Service.AddStock(ctx, reports.StockRequest{
			MedicineID: medicine.ID,
			Quantity:   req.OpeningQuantity,
			ExpiryDate: req.ExpiryDate,
			CreatedBy:  req.CreatedBy,
		})
		if err != nil {
			zap.S().Errorw("medicine created but opening stock event failed",
				"medicineID", medicine.ID,
				"error", err,
			)
		} else {
			medicine.TotalQuantity = req.OpeningQuantity
		}
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(medicine)
}

// MedicineByIDHandler returns a medicine with its quantity recomputed from
// the ledger and the per-event running balance.
func (m Medicine) MedicineByIDHandler(w http.ResponseWriter, r *http.Request) {
	medicineID := mux.Vars(r)["medicine_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := m.Service.GetMedicineWithStock(ctx, medicineID)
	if err != nil {
		writeServiceError(w, "failed to get medicine", err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateMedicineHandler merges the request body into the stored medicine row.
// The cached quantity and the serial number are not updatable here; stock
// moves only through the ledger.
func (m Medicine) UpdateMedicineHandler(w http.ResponseWriter, r *http.Request) {
	medicineID := mux.Vars(r)["medicine_id"]

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if category, ok := updateData["category"].(string); ok && !models.ValidMedicineCategory(category) {
		config.ErrorStatus("invalid medicine category", http.StatusBadRequest, w, fmt.Errorf("unknown category %q", category))
		return
	}
	delete(updateData, "_id")
	delete(updateData, "serial_number")
	delete(updateData, "total_quantity")
	updateData["last_updated"] = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.DB.UpdateOne(ctx, bson.M{"_id": medicineID}, bson.M{"$set": updateData}); err != nil {
		config.ErrorStatus("failed to update medicine", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Medicine updated successfully",
	})
}

// DeleteMedicineHandler deletes a medicine by its ID. Usage records that
// reference it become orphans and are excluded from aggregates.
func (m Medicine) DeleteMedicineHandler(w http.ResponseWriter, r *http.Request) {
	medicineID := mux.Vars(r)["medicine_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := m.DB.DeleteOne(ctx, bson.M{"_id": medicineID}); err != nil {
		config.ErrorStatus("failed to delete medicine", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Medicine deleted successfully",
	})
}

// MedicinesHandler lists medicines with the shared search/category filter and
// 1-indexed pagination.
func (m Medicine) MedicinesHandler(w http.ResponseWriter, r *http.Request) {
	spec := reports.FilterSpec{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}
	if spec.Category == "" {
		spec.Category = reports.CategoryAll
	}
	page := getPage(r)
	limit := getLimit(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"serial_number": -1})
	dbResp, err := m.DB.Find(ctx, bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get medicines", http.StatusNotFound, w, err)
		return
	}

	filtered := reports.SearchFiltered(dbResp, spec)
	resp := models.MedicinesResponse{
		Medicines:  reports.Paginate(filtered, page, limit),
		Pagination: newPagination(len(filtered), page, limit),
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// writeServiceError maps façade errors onto HTTP statuses: a failed removal
// is the caller's fault, a store failure is the upstream's.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	var fetchErr *reports.FetchError
	if errors.As(err, &fetchErr) {
		config.ErrorStatus(message, http.StatusBadGateway, w, err)
		return
	}
	config.ErrorStatus(message, http.StatusBadRequest, w, err)
}
