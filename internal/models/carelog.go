package models

import "time"

// Care log types.
const (
	CareFeeding     = "Feeding"
	CareGrooming    = "Grooming"
	CareExercise    = "Exercise"
	CareMedication  = "Medication"
	CareVetVisit    = "VetVisit"
	CareVaccination = "Vaccination"
)

// CareDetails is the type-dependent details bag of a care log. Only the
// fields relevant to the log's type are populated; the whole bag is stored
// as a single JSON column.
type CareDetails struct {
	// Feeding
	FoodType  string `json:"food_type,omitempty"`
	FoodBrand string `json:"food_brand,omitempty"`
	Amount    string `json:"amount,omitempty"`
	TimeSlot  string `json:"time_slot,omitempty"`

	// Grooming
	GroomingType string `json:"grooming_type,omitempty"`

	// Exercise
	Duration     int     `json:"duration,omitempty"` // minutes
	Distance     float64 `json:"distance,omitempty"` // km
	ActivityType string  `json:"activity_type,omitempty"`

	// Medication
	MedicationName string `json:"medication_name,omitempty"`
	Dosage         string `json:"dosage,omitempty"`

	// Vet visit
	VeterinarianName string `json:"veterinarian_name,omitempty"`
	Clinic           string `json:"clinic,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Diagnosis        string `json:"diagnosis,omitempty"`
	Treatment        string `json:"treatment,omitempty"`

	// Vaccination
	VaccineName string     `json:"vaccine_name,omitempty"`
	NextDueDate *time.Time `json:"next_due_date,omitempty"`

	// Common
	Notes string   `json:"notes,omitempty"`
	Cost  *float64 `json:"cost,omitempty"`
}

// Reminder is embedded into the care log row so the upcoming-reminders
// window stays a plain indexed query.
type Reminder struct {
	Enabled   bool       `json:"enabled"`
	NextDate  *time.Time `json:"next_date,omitempty"`
	Frequency string     `json:"frequency,omitempty"` // Daily, Weekly, Monthly, Custom
}

type CareLog struct {
	ID                 int         `gorm:"primaryKey" json:"id"`
	PetID              int         `gorm:"index;not null" json:"pet_id"`
	UserID             int         `gorm:"index;not null" json:"user_id"`
	Type               string      `gorm:"not null;index" json:"type"`
	Details            CareDetails `gorm:"serializer:json" json:"details"`
	Date               time.Time   `gorm:"index" json:"date"`
	Reminder           Reminder    `gorm:"embedded;embeddedPrefix:reminder_" json:"reminder"`
	ShareWithCommunity bool        `json:"share_with_community"`
	CreatedAt          time.Time   `json:"created_at"`

	Pet Pet `gorm:"foreignKey:PetID" json:"-"`
}
