package model

import "time"

// Medication represents a single medication tracked by a user
type Medication struct {
	ID         int64     `json:"id"`
	UserID     int       `json:"user_id"`
	Name       string    `json:"name"`
	Dosage     string    `json:"dosage"`    // Free text, e.g. "200mg"
	Frequency  string    `json:"frequency"` // Free text, not parsed into a schedule
	TakenDates DateSet   `json:"taken_dates"`
	ProofPhoto *string   `json:"proof_photo,omitempty"` // Pointer for optional field
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateMedicationRequest is used for adding a new medication
type CreateMedicationRequest struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

// UpdateMedicationRequest replaces the descriptive fields of a medication.
// The taken-date ledger and proof photo are never updated through this path.
type UpdateMedicationRequest struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

// MarkTakenRequest optionally overrides the calendar day being recorded;
// when omitted the server uses the current UTC day.
type MarkTakenRequest struct {
	Date string `json:"date,omitempty"`
}

// AdherenceReport is the response body of the adherence endpoint
type AdherenceReport struct {
	Adherence int `json:"adherence"`
}
