package episode

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemLinker attaches a recorded episode to a treatment plan item,
// completing the item as of occurredAt. Implemented by the plan service.
type ItemLinker interface {
	LinkEpisode(ctx context.Context, itemID, episodeID uuid.UUID, occurredAt *time.Time) error
}

// TxRunner executes fn atomically.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements clinical episode business logic.
type Service struct {
	repo   Repository
	linker ItemLinker
	tx     TxRunner
}

// NewService creates an episode service.
func NewService(repo Repository, linker ItemLinker, tx TxRunner) *Service {
	return &Service{repo: repo, linker: linker, tx: tx}
}

// CreateInput carries the fields for a recorded episode.
type CreateInput struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	PractitionerID uuid.UUID  `json:"practitioner_id"`
	OccurredAt     *time.Time `json:"occurred_at,omitempty"`
	Description    string     `json:"description"`
	ToothNumber    *string    `json:"tooth_number,omitempty"`
	PlanItemID     *uuid.UUID `json:"plan_item_id,omitempty"`
}

// Create records an episode. When a plan item is named, the episode insert
// and the item link commit or roll back together, so a recorded visit can
// never half-complete a plan.
func (s *Service) Create(ctx context.Context, in CreateInput) (*ClinicalEpisode, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("episode: patient_id is required")
	}
	if in.PractitionerID == uuid.Nil {
		return nil, fmt.Errorf("episode: practitioner_id is required")
	}
	if in.Description == "" {
		return nil, fmt.Errorf("episode: description is required")
	}
	occurred := time.Now()
	if in.OccurredAt != nil {
		occurred = *in.OccurredAt
	}
	e := &ClinicalEpisode{
		ID:             uuid.New(),
		PatientID:      in.PatientID,
		PractitionerID: in.PractitionerID,
		OccurredAt:     occurred,
		Description:    in.Description,
		ToothNumber:    in.ToothNumber,
		PlanItemID:     in.PlanItemID,
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		if in.PlanItemID != nil {
			return s.linker.LinkEpisode(ctx, *in.PlanItemID, e.ID, &e.OccurredAt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns one episode.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ClinicalEpisode, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns a patient's episode history, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalEpisode, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, fmt.Errorf("episode: patient_id is required")
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
