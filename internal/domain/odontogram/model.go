package odontogram

import (
	"time"

	"github.com/google/uuid"
)

// Condition is the recorded clinical state of a tooth.
type Condition string

const (
	CondHealthy   Condition = "healthy"
	CondCaries    Condition = "caries"
	CondFilled    Condition = "filled"
	CondCrown     Condition = "crown"
	CondExtracted Condition = "extracted"
	CondImplant   Condition = "implant"
	CondMissing   Condition = "missing"
	CondSealant   Condition = "sealant"
)

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	switch c {
	case CondHealthy, CondCaries, CondFilled, CondCrown,
		CondExtracted, CondImplant, CondMissing, CondSealant:
		return true
	}
	return false
}

// ToothRecord maps to the odontogram table: the latest recorded condition of
// one tooth for a patient. Teeth use FDI two-digit notation.
type ToothRecord struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	ToothNumber string    `db:"tooth_number" json:"tooth_number"`
	Condition   Condition `db:"condition" json:"condition"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	RecordedBy  uuid.UUID `db:"recorded_by" json:"recorded_by"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ValidFDI reports whether n is a valid FDI tooth number: quadrants 1-4
// positions 1-8 for permanent teeth, quadrants 5-8 positions 1-5 for
// deciduous teeth.
func ValidFDI(n string) bool {
	if len(n) != 2 {
		return false
	}
	q, p := n[0], n[1]
	switch {
	case q >= '1' && q <= '4':
		return p >= '1' && p <= '8'
	case q >= '5' && q <= '8':
		return p >= '1' && p <= '5'
	}
	return false
}
