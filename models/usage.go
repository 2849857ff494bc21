package models

// MedicineUsage holds the structure for the medicine_usage collection, one
// row per dispensing occasion. Medicine and Patient are resolved in-process
// from their own collections and are never persisted on this document.
type MedicineUsage struct {
	ID           string `json:"id" bson:"_id"`
	MedicineID   string `json:"medicine_id" bson:"medicine_id"`
	PatientID    string `json:"patient_id" bson:"patient_id"`
	QuantityUsed int    `json:"quantity_used" bson:"quantity_used"`
	UsageDate    string `json:"usage_date" bson:"usage_date"`
	CreatedBy    string `json:"created_by,omitempty" bson:"created_by,omitempty"`

	Medicine *Medicine `json:"medicine,omitempty" bson:"-"`
	Patient  *Patient  `json:"patient,omitempty" bson:"-"`
}

// UsageLine is one medicine entry inside a grouped usage report. The same
// medicine dispensed twice in a day yields two lines.
type UsageLine struct {
	Medicine Medicine `json:"medicine"`
	Quantity int      `json:"quantity"`
}

// GroupedUsageReport is the per-patient, per-day aggregate the usage page and
// exporters render. ReportDate is the usage_date of the first record placed
// into the group.
type GroupedUsageReport struct {
	ReportDate     string      `json:"report_date"`
	Patient        Patient     `json:"patient"`
	Medicines      []UsageLine `json:"medicines"`
	TotalMedicines int         `json:"total_medicines"`
}

// GroupedUsageResponse is the paginated response for the grouped usage view.
// OrphanedRecords is populated only when the façade is configured to surface
// records whose medicine or patient could not be resolved; they are excluded
// from the groups either way.
type GroupedUsageResponse struct {
	Reports         []GroupedUsageReport `json:"reports"`
	Pagination      Pagination           `json:"pagination"`
	OrphanedRecords []MedicineUsage      `json:"orphaned_records,omitempty"`
}
