package episode

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalEpisode maps to the clinical_episode table: one unit of performed
// clinical work during a visit. An episode may be attached to a plan item at
// creation or linked later; the link is what completes the item.
type ClinicalEpisode struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	OccurredAt     time.Time  `db:"occurred_at" json:"occurred_at"`
	Description    string     `db:"description" json:"description"`
	ToothNumber    *string    `db:"tooth_number" json:"tooth_number,omitempty"`
	PlanItemID     *uuid.UUID `db:"plan_item_id" json:"plan_item_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
