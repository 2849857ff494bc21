package models

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Patient categories used by the registration form. The category filter
// treats "all" as unconstrained, everything else as an exact match.
const (
	PatientCategoryPaid        = "Paid"
	PatientCategoryFree        = "Free"
	PatientCategoryThalassemic = "Thalassemic"
)

// Patient holds the structure for the patients collection
type Patient struct {
	ID               string             `json:"id" bson:"_id"`
	PatientID        int                `json:"patient_id" bson:"patient_id"` // sequential, assigned from the counters collection
	Name             string             `json:"name" bson:"name"`
	Age              int                `json:"age" bson:"age"`
	Gender           string             `json:"gender" bson:"gender"`
	PhoneNumber      string             `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Address          string             `json:"address,omitempty" bson:"address,omitempty"`
	Category         string             `json:"category,omitempty" bson:"category,omitempty"`
	Description      string             `json:"description,omitempty" bson:"description,omitempty"`
	RegistrationDate string             `json:"registration_date" bson:"registration_date"`
	CreatedBy        string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt        primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt        primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// SearchTargets returns the fields the free-text patient search matches
// against, ORed together.
func (p Patient) SearchTargets() []string {
	return []string{p.Name, strconv.Itoa(p.PatientID), p.PhoneNumber}
}

// FilterCategory returns the value the category filter compares against.
func (p Patient) FilterCategory() string { return p.Category }

// FilterDate returns the value the date-prefix filter compares against.
func (p Patient) FilterDate() string { return p.RegistrationDate }

// PatientsResponse is the paginated list response for patient searches
type PatientsResponse struct {
	Patients   []Patient  `json:"patients"`
	Pagination Pagination `json:"pagination"`
}
