package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PrescribedMedicine holds the structure for the medicine_prescriptions
// collection: the join of a patient report and a medicine with dosage flags.
// This records intent, not dispensing; dispensing lands in medicine_usage.
type PrescribedMedicine struct {
	ID              string             `json:"id" bson:"_id"`
	PatientReportID string             `json:"patient_report_id" bson:"patient_report_id"`
	MedicineID      string             `json:"medicine_id" bson:"medicine_id"`
	Morning         bool               `json:"morning" bson:"morning"`
	Afternoon       bool               `json:"afternoon" bson:"afternoon"`
	Evening         bool               `json:"evening" bson:"evening"`
	Night           bool               `json:"night" bson:"night"`
	Quantity        int                `json:"quantity" bson:"quantity"`
	CreatedAt       primitive.DateTime `json:"created_at" bson:"created_at"`
}

// CreateReportRequest is the body for report creation: the report row plus
// the prescriptions written alongside it. The writes are sequential and not
// transactional; a failure mid-way leaves a report with fewer prescriptions
// than intended.
type CreateReportRequest struct {
	Report        PatientReport        `json:"report"`
	Prescriptions []PrescribedMedicine `json:"prescriptions"`
}

// CreateReportResponse reports what was actually persisted.
type CreateReportResponse struct {
	Report               PatientReport `json:"report"`
	PrescriptionsCreated int           `json:"prescriptions_created"`
	PrescriptionsFailed  int           `json:"prescriptions_failed"`
}
