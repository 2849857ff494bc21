package models

// Counter names for the persisted sequences
const (
	CounterPatients  = "patients"
	CounterMedicines = "medicines"
	CounterReports   = "patient_reports"
)

// Counter holds the structure for the counters collection, one document per
// named sequence. Seq is advanced atomically with findOneAndUpdate.
type Counter struct {
	ID  string `json:"id" bson:"_id"`
	Seq int64  `json:"seq" bson:"seq"`
}
