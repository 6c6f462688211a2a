package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a service, group or option id is unknown.
var ErrNotFound = errors.New("catalog entry not found")

type Repository interface {
	Create(ctx context.Context, p *Procedure) error
	GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error)
	// GetEntry returns the procedure with its material groups and options.
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, p *Procedure) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Procedure, int, error)

	AddGroup(ctx context.Context, g *MaterialGroup) error
	AddOption(ctx context.Context, o *MaterialOption) error
	GroupsForService(ctx context.Context, serviceID uuid.UUID) ([]GroupWithOptions, error)
}
