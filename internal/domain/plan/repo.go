package plan

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. A zero PatientID means all patients.
type ListFilter struct {
	PatientID uuid.UUID
	States    []State
	Limit     int
	Offset    int
}

// PlanRepository persists treatment plans.
type PlanRepository interface {
	Create(ctx context.Context, p *TreatmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	// GetForUpdate reads the plan row under a row lock. Only meaningful
	// inside a transaction; used to serialize item-set mutations.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error)
	// Update writes the plan if its stored version matches p.VersionID,
	// then bumps the version. A stale version yields
	// ErrConcurrentModification.
	Update(ctx context.Context, p *TreatmentPlan) error
	List(ctx context.Context, f ListFilter) ([]*TreatmentPlan, int, error)
}

// ItemRepository persists plan items.
type ItemRepository interface {
	Create(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// Update applies the same optimistic version check as plan updates.
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Item, error)
	// NextSortOrder returns max(sort_order)+1 for the plan. Call with the
	// plan row locked so concurrent inserts cannot collide.
	NextSortOrder(ctx context.Context, planID uuid.UUID) (int, error)
	Progress(ctx context.Context, planID uuid.UUID) (Progress, error)
}

// TxRunner executes fn atomically. Repository calls made with the context fn
// receives join the same transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
