package handlers

import (
	"encoding/json"
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

// Report exported for testing purposes
type Report struct {
	DB       databases.ReportDatabase
	PDB      databases.PrescriptionDatabase
	PatDB    databases.PatientDatabase
	Counters databases.CounterDatabase
}

func validReportRole(role string) bool {
	switch role {
	case models.RoleReception, models.RoleDoctor, models.RoleAdmin:
		return true
	}
	return false
}

// CreateReportHandler creates a patient report and then its prescription rows
// one by one. The writes are sequential and not transactional: a prescription
// insert failing does not roll back the report or the earlier prescriptions,
// it is just counted and logged.
func (v Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Report.PatientID == "" {
		config.ErrorStatus("patient id is required", http.StatusBadRequest, w, errMissingField("patient_id"))
		return
	}
	if !validReportRole(req.Report.CreatedByRole) {
		config.ErrorStatus("invalid creator role", http.StatusBadRequest, w, fmt.Errorf("unknown role %q", req.Report.CreatedByRole))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	seq, err := v.Counters.Next(ctx, models.CounterReports)
	if err != nil {
		config.ErrorStatus("failed to assign report number", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	report := req.Report
	report.ID = uuid.NewString()
	report.ReportNumber = int(seq)
	if report.ReportDate == "" {
		report.ReportDate = time.Now().UTC().Format("2006-01-02")
	}
	report.CreatedAt = now

	if _, err := v.DB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	created, failed := 0, 0
	for _, prescription := range req.Prescriptions {
		prescription.ID = uuid.NewString()
		prescription.PatientReportID = report.ID
		prescription.CreatedAt = now

		if _, err := v.PDB.InsertOne(ctx, prescription); err != nil {
			failed++
			zap.S().Errorw("failed to create prescription",
				"reportID", report.ID,
				"medicineID", prescription.MedicineID,
				"error", err,
			)
			continue
		}
		created++
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.CreateReportResponse{
		Report:               report,
		PrescriptionsCreated: created,
		PrescriptionsFailed:  failed,
	})
}

// ReportByIDHandler returns a report with its prescriptions
func (v Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := v.DB.FindOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	prescriptions, err := v.PDB.Find(ctx, bson.M{"patient_report_id": reportID})
	if err != nil {
		config.ErrorStatus("failed to get prescriptions", http.StatusInternalServerError, w, err)
		return
	}
	if len(prescriptions) == 0 {
		prescriptions = []models.PrescribedMedicine{}
	}

	b, err := json.Marshal(map[string]interface{}{
		"report":        report,
		"prescriptions": prescriptions,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsByPatientIDHandler returns all reports for a patient, newest first
func (v Report) ReportsByPatientIDHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"report_number": -1})
	dbResp, err := v.DB.Find(ctx, bson.M{"patient_id": patientID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}

	if len(dbResp) == 0 {
		dbResp = []models.PatientReport{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsSearchHandler is the reception-side search: reports joined with
// their patient rows, matched by report number, patient name or patient
// number.
func (v Report) ReportsSearchHandler(w http.ResponseWriter, r *http.Request) {
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

	opts := options.Find().SetSort(bson.M{"report_number": -1})
	dbReports, err := v.DB.Find(ctx, bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}

	joined, err := v.joinPatients(r, dbReports)
	if err != nil {
		config.ErrorStatus("failed to get patients for reports", http.StatusInternalServerError, w, err)
		return
	}

	filtered := reports.SearchFiltered(joined, spec)
	resp := models.ReportSearchResponse{
		Reports:    reports.Paginate(filtered, page, limit),
		Pagination: newPagination(len(filtered), page, limit),
	}
	if len(resp.Reports) == 0 {
		resp.Reports = []models.ReportWithPatient{}
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// joinPatients resolves the patient row for each report with a single $in
// lookup. Reports whose patient no longer resolves keep a nil Patient and
// still show up in the search by report number.
func (v Report) joinPatients(r *http.Request, dbReports []models.PatientReport) ([]models.ReportWithPatient, error) {
	patientIDs := make([]string, 0, len(dbReports))
	seen := map[string]bool{}
	for _, rep := range dbReports {
		if rep.PatientID != "" && !seen[rep.PatientID] {
			seen[rep.PatientID] = true
			patientIDs = append(patientIDs, rep.PatientID)
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patients, err := v.PatDB.Find(ctx, bson.M{"_id": bson.M{"$in": patientIDs}})
	if err != nil {
		return nil, err
	}
	patientByID := make(map[string]models.Patient, len(patients))
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	joined := make([]models.ReportWithPatient, 0, len(dbReports))
	for _, rep := range dbReports {
		row := models.ReportWithPatient{Report: rep}
		if p, ok := patientByID[rep.PatientID]; ok {
			patient := p
			row.Patient = &patient
		}
		joined = append(joined, row)
	}
	return joined, nil
}
