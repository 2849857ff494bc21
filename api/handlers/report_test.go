package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/character8/medicx-clinic-central-main/api/handlers"
	"github.com/character8/medicx-clinic-central-main/databases/mocks"
	"github.com/character8/medicx-clinic-central-main/models"
)

func TestReport_CreateReportHandler(t *testing.T) {
	reportDB := mocks.NewReportDatabase(t)
	prescriptionDB := mocks.NewPrescriptionDatabase(t)
	counterDB := mocks.NewCounterDatabase(t)

	counterDB.On("Next", mock.Anything, models.CounterReports).Return(int64(7), nil)
	reportDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.PatientReport")).Return(nil, nil)
	// first prescription lands, second fails
	prescriptionDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.PrescribedMedicine")).Return(nil, nil).Once()
	prescriptionDB.On("InsertOne", mock.Anything, mock.AnythingOfType("models.PrescribedMedicine")).Return(nil, errors.New("mocked-error")).Once()

	v := handlers.Report{DB: reportDB, PDB: prescriptionDB, Counters: counterDB}

	body := `{
		"report": {"patient_id": "p1", "created_by_role": "doctor", "clinical_complaint": "fever"},
		"prescriptions": [
			{"medicine_id": "m1", "morning": true, "quantity": 10},
			{"medicine_id": "m2", "night": true, "quantity": 5}
		]
	}`
	req := httptest.NewRequest("POST", "/api/v1/report", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(v.CreateReportHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp models.CreateReportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Report.ReportNumber)
	assert.NotEmpty(t, resp.Report.ID)
	assert.Equal(t, 1, resp.PrescriptionsCreated)
	assert.Equal(t, 1, resp.PrescriptionsFailed)
}

func TestReport_CreateReportHandlerInvalidRole(t *testing.T) {
	v := handlers.Report{}

	body := `{"report": {"patient_id": "p1", "created_by_role": "pharmacy"}}`
	req := httptest.NewRequest("POST", "/api/v1/report", strings.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(v.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReport_ReportsSearchHandler(t *testing.T) {
	reportDB := mocks.NewReportDatabase(t)
	patientDB := mocks.NewPatientDatabase(t)

	reportDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.PatientReport{
			{ID: "r2", ReportNumber: 2, PatientID: "p2", ReportDate: "2024-03-02"},
			{ID: "r1", ReportNumber: 1, PatientID: "p1", ReportDate: "2024-03-01"},
		}, nil)
	patientDB.On("Find", mock.Anything, mock.Anything).
		Return([]models.Patient{
			{ID: "p1", PatientID: 101, Name: "Ayesha Khan"},
			{ID: "p2", PatientID: 102, Name: "Bilal Ahmed"},
		}, nil)

	v := handlers.Report{DB: reportDB, PatDB: patientDB}

	req := httptest.NewRequest("GET", "/api/v1/reports/search?search=ayesha", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(v.ReportsSearchHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ReportSearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, 1, resp.Reports[0].Report.ReportNumber)
	require.NotNil(t, resp.Reports[0].Patient)
	assert.Equal(t, "Ayesha Khan", resp.Reports[0].Patient.Name)
}

func TestReport_ReportsSearchHandlerByReportNumber(t *testing.T) {
	reportDB := mocks.NewReportDatabase(t)
	patientDB := mocks.NewPatientDatabase(t)

	// the patient row no longer resolves, the report still matches by number
	reportDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.PatientReport{
			{ID: "r9", ReportNumber: 9, PatientID: "p-gone", ReportDate: "2024-03-02"},
		}, nil)
	patientDB.On("Find", mock.Anything, mock.Anything).Return(nil, nil)

	v := handlers.Report{DB: reportDB, PatDB: patientDB}

	req := httptest.NewRequest("GET", "/api/v1/reports/search?search=9", nil)
	rr := httptest.NewRecorder()

	http.HandlerFunc(v.ReportsSearchHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp models.ReportSearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Reports, 1)
	assert.Nil(t, resp.Reports[0].Patient)
}
