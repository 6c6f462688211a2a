package plan

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a treatment plan.
type State string

const (
	StateDraft      State = "DRAFT"
	StatePresented  State = "PRESENTED"
	StateAccepted   State = "ACCEPTED"
	StateInProgress State = "IN_PROGRESS"
	StateCompleted  State = "COMPLETED"
	StateRejected   State = "REJECTED"
	StateCancelled  State = "CANCELLED"
)

// Valid reports whether s is a known plan state.
func (s State) Valid() bool {
	switch s {
	case StateDraft, StatePresented, StateAccepted, StateInProgress,
		StateCompleted, StateRejected, StateCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRejected || s == StateCancelled
}

// InExecution reports whether clinical work may be recorded against the plan.
func (s State) InExecution() bool {
	return s == StateAccepted || s == StateInProgress
}

// ItemState is the completion state of a single plan item.
type ItemState string

const (
	ItemPending    ItemState = "PENDING"
	ItemInProgress ItemState = "IN_PROGRESS"
	ItemCompleted  ItemState = "COMPLETED"
)

// Valid reports whether s is a known item state.
func (s ItemState) Valid() bool {
	return s == ItemPending || s == ItemInProgress || s == ItemCompleted
}

// TreatmentPlan maps to the treatment_plan table: an ordered set of priced
// procedures proposed to a patient. The item set is mutable only while the
// plan is DRAFT; from ACCEPTED on, only item completion state may change.
type TreatmentPlan struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	PractitionerID     uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	Title              string     `db:"title" json:"title"`
	State              State      `db:"state" json:"state"`
	Priority           int        `db:"priority" json:"priority"`
	InternalNotes      *string    `db:"internal_notes" json:"internal_notes,omitempty"`
	RejectionReason    *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	PresentedAt        *time.Time `db:"presented_at" json:"presented_at,omitempty"`
	AcceptedAt         *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	CompletedAt        *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	VersionID          int        `db:"version_id" json:"version_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (p *TreatmentPlan) GetVersionID() int { return p.VersionID }

// SetVersionID sets the current version.
func (p *TreatmentPlan) SetVersionID(v int) { p.VersionID = v }

// Item maps to the plan_item table: one procedure line within a plan. The
// three price snapshot columns are copied from the catalog exactly once, when
// the item is created, and are never recomputed; PriceTotal is their sum.
type Item struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	PlanID        uuid.UUID  `db:"plan_id" json:"plan_id"`
	ServiceID     uuid.UUID  `db:"service_id" json:"service_id"`
	MaterialID    *uuid.UUID `db:"material_id" json:"material_id,omitempty"`
	SortOrder     int        `db:"sort_order" json:"order"`
	State         ItemState  `db:"state" json:"state"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	EstimatedDate *time.Time `db:"estimated_date" json:"estimated_date,omitempty"`
	RealizedDate  *time.Time `db:"realized_date" json:"realized_date,omitempty"`
	EpisodeID     *uuid.UUID `db:"episode_id" json:"episode_id,omitempty"`

	PriceService        float64 `db:"price_service_snapshot" json:"price_service_snapshot"`
	PriceFixedMaterials float64 `db:"price_fixed_materials_snapshot" json:"price_fixed_materials_snapshot"`
	PriceMaterial       float64 `db:"price_material_snapshot" json:"price_material_snapshot"`
	PriceTotal          float64 `db:"price_total" json:"price_total"`

	VersionID int       `db:"version_id" json:"version_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (i *Item) GetVersionID() int { return i.VersionID }

// SetVersionID sets the current version.
func (i *Item) SetVersionID(v int) { i.VersionID = v }

// Progress summarizes item completion for a plan.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Percent returns completion as 0-100. An empty plan reports 0.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Detail bundles a plan with its items and progress for read endpoints.
type Detail struct {
	Plan     *TreatmentPlan `json:"plan"`
	Items    []*Item        `json:"items"`
	Progress Progress       `json:"progress"`
}
