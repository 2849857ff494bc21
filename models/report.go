package models

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PatientReport holds the structure for the patient_reports collection. A
// report started by reception and later completed by a doctor is two separate
// rows linked only by patient_id; rows are never updated in the doctor flow.
type PatientReport struct {
	ID           string `json:"id" bson:"_id"`
	ReportNumber int    `json:"report_number" bson:"report_number"` // sequential, assigned from the counters collection
	PatientID    string `json:"patient_id" bson:"patient_id"`

	Hemoglobin    *float64 `json:"hemoglobin,omitempty" bson:"hemoglobin,omitempty"`
	WBC           *float64 `json:"wbc,omitempty" bson:"wbc,omitempty"`
	Platelets     *float64 `json:"platelets,omitempty" bson:"platelets,omitempty"`
	BloodPressure string   `json:"blood_pressure,omitempty" bson:"blood_pressure,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	Weight        *float64 `json:"weight,omitempty" bson:"weight,omitempty"`

	ClinicalComplaint string `json:"clinical_complaint,omitempty" bson:"clinical_complaint,omitempty"`
	MedicalHistory    string `json:"medical_history,omitempty" bson:"medical_history,omitempty"`
	Observations      string `json:"observations,omitempty" bson:"observations,omitempty"`
	Recommendations   string `json:"recommendations,omitempty" bson:"recommendations,omitempty"`

	ReportDate           string              `json:"report_date" bson:"report_date"`
	CreatedBy            string              `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedByRole        string              `json:"created_by_role" bson:"created_by_role"`
	ReceptionCompletedAt *primitive.DateTime `json:"reception_completed_at,omitempty" bson:"reception_completed_at,omitempty"`
	DoctorCompletedAt    *primitive.DateTime `json:"doctor_completed_at,omitempty" bson:"doctor_completed_at,omitempty"`
	CreatedAt            primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// ReportWithPatient is the reception search view: a report joined with its
// patient row.
type ReportWithPatient struct {
	Report  PatientReport `json:"report"`
	Patient *Patient      `json:"patient,omitempty"`
}

// SearchTargets returns the fields the reception report search matches
// against.
func (r ReportWithPatient) SearchTargets() []string {
	targets := []string{strconv.Itoa(r.Report.ReportNumber)}
	if r.Patient != nil {
		targets = append(targets, r.Patient.Name, strconv.Itoa(r.Patient.PatientID))
	}
	return targets
}

// FilterCategory returns the value the category filter compares against.
func (r ReportWithPatient) FilterCategory() string {
	if r.Patient == nil {
		return ""
	}
	return r.Patient.Category
}

// FilterDate returns the value the date-prefix filter compares against.
func (r ReportWithPatient) FilterDate() string { return r.Report.ReportDate }

// ReportSearchResponse is the paginated response for the reception report
// search.
type ReportSearchResponse struct {
	Reports    []ReportWithPatient `json:"reports"`
	Pagination Pagination          `json:"pagination"`
}

// Pagination holds pagination info for list responses
type Pagination struct {
	CurrentPage  int64 `json:"currentPage"`
	TotalPages   int64 `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
	Limit        int64 `json:"limit"`
}
