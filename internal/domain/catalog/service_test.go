package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	procedures map[uuid.UUID]*Procedure
	groups     map[uuid.UUID][]GroupWithOptions
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		procedures: make(map[uuid.UUID]*Procedure),
		groups:     make(map[uuid.UUID][]GroupWithOptions),
	}
}

func (m *mockRepo) Create(_ context.Context, p *Procedure) error {
	p.ID = uuid.New()
	m.procedures[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Procedure, error) {
	p, ok := m.procedures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetEntry(_ context.Context, id uuid.UUID) (*Entry, error) {
	p, ok := m.procedures[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Entry{Service: *p, Groups: m.groups[id]}, nil
}

func (m *mockRepo) Update(_ context.Context, p *Procedure) error {
	if _, ok := m.procedures[p.ID]; !ok {
		return ErrNotFound
	}
	m.procedures[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, activeOnly bool, limit, offset int) ([]*Procedure, int, error) {
	var r []*Procedure
	for _, p := range m.procedures {
		if activeOnly && !p.Active {
			continue
		}
		r = append(r, p)
	}
	return r, len(r), nil
}

func (m *mockRepo) AddGroup(_ context.Context, g *MaterialGroup) error {
	g.ID = uuid.New()
	m.groups[g.ServiceID] = append(m.groups[g.ServiceID], GroupWithOptions{MaterialGroup: *g})
	return nil
}

func (m *mockRepo) AddOption(_ context.Context, o *MaterialOption) error {
	o.ID = uuid.New()
	for sid, groups := range m.groups {
		for i := range groups {
			if groups[i].MaterialGroup.ID == o.GroupID {
				groups[i].Options = append(groups[i].Options, *o)
				m.groups[sid] = groups
				return nil
			}
		}
	}
	return ErrNotFound
}

func (m *mockRepo) GroupsForService(_ context.Context, serviceID uuid.UUID) ([]GroupWithOptions, error) {
	return m.groups[serviceID], nil
}

func TestCreateProcedure_Success(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Procedure{Code: "D2740", Name: "Crown, ceramic", BasePrice: 450}
	if err := svc.CreateProcedure(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Active {
		t.Error("expected new procedure to be active")
	}
	if p.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
}

func TestCreateProcedure_MissingCode(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.CreateProcedure(context.Background(), &Procedure{Name: "Crown"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateProcedure_NegativePrice(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Procedure{Code: "X", Name: "x", BasePrice: -1}
	if err := svc.CreateProcedure(context.Background(), p); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetEntry_WithGroups(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	p := &Procedure{Code: "D2740", Name: "Crown", BasePrice: 450}
	svc.CreateProcedure(context.Background(), p)

	g := &MaterialGroup{ServiceID: p.ID, Name: "Crown material", Mandatory: true}
	if err := svc.AddGroup(context.Background(), g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Quantity != 1 {
		t.Errorf("expected quantity defaulted to 1, got %d", g.Quantity)
	}
	if err := svc.AddOption(context.Background(), &MaterialOption{GroupID: g.ID, Name: "Zirconia", Price: 120}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, err := svc.GetEntry(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entry.Groups) != 1 || len(entry.Groups[0].Options) != 1 {
		t.Fatalf("expected 1 group with 1 option, got %+v", entry.Groups)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.GetEntry(context.Background(), uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntry_FindOption(t *testing.T) {
	optID := uuid.New()
	entry := &Entry{Groups: []GroupWithOptions{{
		MaterialGroup: MaterialGroup{ID: uuid.New(), Name: "Material", Quantity: 2},
		Options:       []MaterialOption{{ID: optID, Name: "Zirconia", Price: 120}},
	}}}

	opt, group, ok := entry.FindOption(optID)
	if !ok {
		t.Fatal("expected option to be found")
	}
	if opt.Price != 120 || group.Quantity != 2 {
		t.Errorf("unexpected option/group: %+v %+v", opt, group)
	}

	if _, _, ok := entry.FindOption(uuid.New()); ok {
		t.Error("expected unknown option to be missing")
	}
}

func TestEntry_MandatoryGroups(t *testing.T) {
	entry := &Entry{Groups: []GroupWithOptions{
		{MaterialGroup: MaterialGroup{Name: "A", Mandatory: true}},
		{MaterialGroup: MaterialGroup{Name: "B"}},
	}}
	mg := entry.MandatoryGroups()
	if len(mg) != 1 || mg[0].Name != "A" {
		t.Errorf("expected only mandatory group A, got %+v", mg)
	}
}

func TestAddOption_NegativePrice(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.AddOption(context.Background(), &MaterialOption{GroupID: uuid.New(), Name: "x", Price: -5})
	if err == nil {
		t.Fatal("expected error")
	}
}
