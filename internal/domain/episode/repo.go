package episode

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an episode does not exist.
var ErrNotFound = errors.New("episode not found")

// Repository persists clinical episodes.
type Repository interface {
	Create(ctx context.Context, e *ClinicalEpisode) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalEpisode, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalEpisode, int, error)
}
