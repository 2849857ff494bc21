package handlers

import (
	"encoding/json"
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

// Patient exported for testing purposes
type Patient struct {
	DB       databases.PatientDatabase
	Counters databases.CounterDatabase
}

// CreatePatientHandler registers a new patient and assigns the next
// sequential patient number.
func (p Patient) CreatePatientHandler(w http.ResponseWriter, r *http.Request) {
	var patient models.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if patient.Name == "" {
		config.ErrorStatus("patient name is required", http.StatusBadRequest, w, errMissingField("name"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	seq, err := p.Counters.Next(ctx, models.CounterPatients)
	if err != nil {
		config.ErrorStatus("failed to assign patient number", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	patient.ID = uuid.NewString()
	patient.PatientID = int(seq)
	if patient.RegistrationDate == "" {
		patient.RegistrationDate = time.Now().UTC().Format("2006-01-02")
	}
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if _, err := p.DB.InsertOne(ctx, patient); err != nil {
		config.ErrorStatus("failed to create patient", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("patient registered", "patientID", patient.PatientID)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(patient)
}

// PatientByIDHandler returns a patient by ID
func (p Patient) PatientByIDHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	zap.S().Debugf("patient_id: %v", patientID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.FindOne(ctx, bson.M{"_id": patientID})
	if err != nil {
		config.ErrorStatus("failed to get patient by ID", http.StatusNotFound, w, err)
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

// UpdatePatientHandler merges the request body into the stored patient row.
// The sequential patient number is never reassigned.
func (p Patient) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	var updateData map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	delete(updateData, "_id")
	delete(updateData, "patient_id")
	updateData["updatedAt"] = primitive.NewDateTimeFromTime(time.Now())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.DB.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$set": updateData}); err != nil {
		config.ErrorStatus("failed to update patient", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Patient updated successfully",
	})
}

// PatientsHandler lists patients with the shared search/category/date filter
// and 1-indexed pagination.
func (p Patient) PatientsHandler(w http.ResponseWriter, r *http.Request) {
	spec := reports.FilterSpec{
		Search:     r.URL.Query().Get("search"),
		Category:   r.URL.Query().Get("category"),
		DatePrefix: r.URL.Query().Get("date"),
	}
	if spec.Category == "" {
		spec.Category = reports.CategoryAll
	}
	page := getPage(r)
	limit := getLimit(r)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"patient_id": -1})
	dbResp, err := p.DB.Find(ctx, bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get patients", http.StatusNotFound, w, err)
		return
	}

	filtered := reports.SearchFiltered(dbResp, spec)
	resp := models.PatientsResponse{
		Patients:   reports.Paginate(filtered, page, limit),
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
