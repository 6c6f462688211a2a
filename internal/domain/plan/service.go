package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/domain/catalog"
)

// CatalogGateway is the slice of the catalog the plan engine needs: the full
// priced definition of a procedure at item-creation time.
type CatalogGateway interface {
	GetEntry(ctx context.Context, serviceID uuid.UUID) (*catalog.Entry, error)
}

// Service implements treatment plan business logic.
type Service struct {
	plans   PlanRepository
	items   ItemRepository
	catalog CatalogGateway
	tx      TxRunner
	now     func() time.Time
}

// NewService creates a plan service.
func NewService(plans PlanRepository, items ItemRepository, cat CatalogGateway, tx TxRunner) *Service {
	return &Service{plans: plans, items: items, catalog: cat, tx: tx, now: time.Now}
}

// CreatePlanInput carries the fields for a new draft plan.
type CreatePlanInput struct {
	PatientID      uuid.UUID `json:"patient_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Title          string    `json:"title"`
	Priority       int       `json:"priority"`
	InternalNotes  *string   `json:"internal_notes,omitempty"`
}

// CreatePlan opens a new plan in DRAFT.
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*TreatmentPlan, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if in.PractitionerID == uuid.Nil {
		return nil, fmt.Errorf("%w: practitioner_id is required", ErrValidation)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	p := &TreatmentPlan{
		ID:             uuid.New(),
		PatientID:      in.PatientID,
		PractitionerID: in.PractitionerID,
		Title:          in.Title,
		State:          StateDraft,
		Priority:       in.Priority,
		InternalNotes:  in.InternalNotes,
	}
	if err := s.plans.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlan returns a plan with its items and progress.
func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	prog, err := s.items.Progress(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Plan: p, Items: items, Progress: prog}, nil
}

// ListPlans returns plans, optionally filtered by patient and state.
func (s *Service) ListPlans(ctx context.Context, f ListFilter) ([]*TreatmentPlan, int, error) {
	for _, st := range f.States {
		if !st.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown state %q", ErrValidation, st)
		}
	}
	return s.plans.List(ctx, f)
}

// AddItemInput carries the fields for a new plan item.
type AddItemInput struct {
	ServiceID     uuid.UUID  `json:"service_id"`
	MaterialID    *uuid.UUID `json:"material_id,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	EstimatedDate *time.Time `json:"estimated_date,omitempty"`
}

// AddItem appends a priced item to a DRAFT plan. The price snapshot is
// computed here, once; the plan row is locked so concurrent adds get
// distinct sort orders.
func (s *Service) AddItem(ctx context.Context, planID uuid.UUID, in AddItemInput) (*Item, error) {
	if in.ServiceID == uuid.Nil {
		return nil, fmt.Errorf("%w: service_id is required", ErrValidation)
	}

	entry, err := s.catalog.GetEntry(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, in.ServiceID)
		}
		return nil, err
	}
	if !entry.Service.Active {
		return nil, fmt.Errorf("%w: service %s is inactive", ErrValidation, entry.Service.Code)
	}
	snap, err := ComputeSnapshot(entry, in.MaterialID)
	if err != nil {
		return nil, err
	}

	var item *Item
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.plans.GetForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if p.State != StateDraft {
			return fmt.Errorf("%w: items can only be added while the plan is DRAFT", ErrPlanLocked)
		}
		order, err := s.items.NextSortOrder(ctx, planID)
		if err != nil {
			return err
		}
		item = &Item{
			ID:                  uuid.New(),
			PlanID:              planID,
			ServiceID:           in.ServiceID,
			MaterialID:          in.MaterialID,
			SortOrder:           order,
			State:               ItemPending,
			Notes:               in.Notes,
			EstimatedDate:       in.EstimatedDate,
			PriceService:        snap.Service,
			PriceFixedMaterials: snap.FixedMaterials,
			PriceMaterial:       snap.Material,
			PriceTotal:          snap.Total(),
		}
		return s.items.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes a PENDING item from a DRAFT plan.
func (s *Service) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		p, err := s.plans.GetForUpdate(ctx, it.PlanID)
		if err != nil {
			return err
		}
		if p.State != StateDraft {
			return fmt.Errorf("%w: items can only be removed while the plan is DRAFT", ErrPlanLocked)
		}
		if it.State != ItemPending {
			return fmt.Errorf("%w: only pending items can be removed", ErrValidation)
		}
		return s.items.Delete(ctx, itemID)
	})
}

// EditItemInput carries the mutable item fields. Price, procedure and
// material are fixed at creation; to change them, remove and re-add.
type EditItemInput struct {
	Notes         *string    `json:"notes,omitempty"`
	EstimatedDate *time.Time `json:"estimated_date,omitempty"`
}

// EditItem updates an item's notes or estimated date on a DRAFT plan.
func (s *Service) EditItem(ctx context.Context, itemID uuid.UUID, in EditItemInput) (*Item, error) {
	var out *Item
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		it, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		p, err := s.plans.GetByID(ctx, it.PlanID)
		if err != nil {
			return err
		}
		if p.State != StateDraft {
			return fmt.Errorf("%w: items can only be edited while the plan is DRAFT", ErrPlanLocked)
		}
		if in.Notes != nil {
			it.Notes = in.Notes
		}
		if in.EstimatedDate != nil {
			it.EstimatedDate = in.EstimatedDate
		}
		if err := s.items.Update(ctx, it); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Present moves a plan from DRAFT to PRESENTED. The plan row is locked so
// the item count and the state write serialize against concurrent item
// removal; a plan can never leave DRAFT with an empty item set.
func (s *Service) Present(ctx context.Context, planID uuid.UUID) (*TreatmentPlan, error) {
	var out *TreatmentPlan
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.plans.GetForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		items, err := s.items.ListByPlan(ctx, planID)
		if err != nil {
			return err
		}
		if err := p.Present(len(items), s.now()); err != nil {
			return err
		}
		if err := s.plans.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Accept moves a plan from PRESENTED to ACCEPTED, freezing its items.
func (s *Service) Accept(ctx context.Context, planID uuid.UUID) (*TreatmentPlan, error) {
	return s.transition(ctx, planID, func(p *TreatmentPlan) error {
		return p.Accept(s.now())
	})
}

// Reject records the patient declining a DRAFT or PRESENTED plan.
func (s *Service) Reject(ctx context.Context, planID uuid.UUID, reason string) (*TreatmentPlan, error) {
	return s.transition(ctx, planID, func(p *TreatmentPlan) error {
		return p.Reject(reason)
	})
}

// Cancel abandons an accepted or in-progress plan, recording why.
func (s *Service) Cancel(ctx context.Context, planID uuid.UUID, reason string) (*TreatmentPlan, error) {
	return s.transition(ctx, planID, func(p *TreatmentPlan) error {
		return p.Cancel(reason, s.now())
	})
}

// transition reads the plan, applies a lifecycle change and writes it back
// under the optimistic version check.
func (s *Service) transition(ctx context.Context, planID uuid.UUID, apply func(*TreatmentPlan) error) (*TreatmentPlan, error) {
	p, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.plans.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
