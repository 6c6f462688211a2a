package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProcedure(ctx context.Context, p *Procedure) error {
	if p.Code == "" {
		return fmt.Errorf("code is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("base_price cannot be negative")
	}
	if p.FixedMaterialsCost < 0 {
		return fmt.Errorf("fixed_materials_cost cannot be negative")
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

// UpdateProcedure edits a catalog definition. Price edits here never touch
// plan items priced earlier; their snapshots are frozen copies.
func (s *Service) UpdateProcedure(ctx context.Context, p *Procedure) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.BasePrice < 0 {
		return fmt.Errorf("base_price cannot be negative")
	}
	if p.FixedMaterialsCost < 0 {
		return fmt.Errorf("fixed_materials_cost cannot be negative")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) ListProcedures(ctx context.Context, activeOnly bool, limit, offset int) ([]*Procedure, int, error) {
	return s.repo.List(ctx, activeOnly, limit, offset)
}

func (s *Service) AddGroup(ctx context.Context, g *MaterialGroup) error {
	if g.ServiceID == uuid.Nil {
		return fmt.Errorf("service_id is required")
	}
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	if g.Quantity <= 0 {
		g.Quantity = 1
	}
	return s.repo.AddGroup(ctx, g)
}

func (s *Service) AddOption(ctx context.Context, o *MaterialOption) error {
	if o.GroupID == uuid.Nil {
		return fmt.Errorf("group_id is required")
	}
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	if o.Price < 0 {
		return fmt.Errorf("price cannot be negative")
	}
	return s.repo.AddOption(ctx, o)
}
