package odontogram

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record exists for the tooth.
var ErrNotFound = errors.New("tooth record not found")

// Repository persists tooth records. One row per patient and tooth; Upsert
// replaces the previous condition.
type Repository interface {
	Upsert(ctx context.Context, r *ToothRecord) error
	Get(ctx context.Context, patientID uuid.UUID, tooth string) (*ToothRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothRecord, error)
}
