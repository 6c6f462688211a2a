package plan

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/domain/catalog"
)

// In-memory repos mirroring the Postgres semantics the service relies on:
// reads hand out copies, updates enforce the version check.

type mockPlanRepo struct {
	plans map[uuid.UUID]TreatmentPlan
	// failUpdate forces the next Update to report an infrastructure error.
	failUpdate bool
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[uuid.UUID]TreatmentPlan)}
}

func (m *mockPlanRepo) Create(_ context.Context, p *TreatmentPlan) error {
	m.plans[p.ID] = *p
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("%w: plan", ErrNotFound)
	}
	return &p, nil
}

func (m *mockPlanRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPlanRepo) Update(_ context.Context, p *TreatmentPlan) error {
	if m.failUpdate {
		m.failUpdate = false
		return fmt.Errorf("%w: connection reset", ErrStoreUnavailable)
	}
	stored, ok := m.plans[p.ID]
	if !ok {
		return fmt.Errorf("%w: plan", ErrNotFound)
	}
	if stored.VersionID != p.VersionID {
		return ErrConcurrentModification
	}
	p.VersionID++
	m.plans[p.ID] = *p
	return nil
}

func (m *mockPlanRepo) List(_ context.Context, f ListFilter) ([]*TreatmentPlan, int, error) {
	var out []*TreatmentPlan
	for id := range m.plans {
		p := m.plans[id]
		if f.PatientID != uuid.Nil && p.PatientID != f.PatientID {
			continue
		}
		if len(f.States) > 0 {
			match := false
			for _, st := range f.States {
				if p.State == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, &p)
	}
	return out, len(out), nil
}

type mockItemRepo struct {
	items map[uuid.UUID]Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[uuid.UUID]Item)}
}

func (m *mockItemRepo) Create(_ context.Context, it *Item) error {
	m.items[it.ID] = *it
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id uuid.UUID) (*Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	return &it, nil
}

func (m *mockItemRepo) Update(_ context.Context, it *Item) error {
	stored, ok := m.items[it.ID]
	if !ok {
		return fmt.Errorf("%w: item", ErrNotFound)
	}
	if stored.VersionID != it.VersionID {
		return ErrConcurrentModification
	}
	it.VersionID++
	m.items[it.ID] = *it
	return nil
}

func (m *mockItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("%w: item", ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *mockItemRepo) ListByPlan(_ context.Context, planID uuid.UUID) ([]*Item, error) {
	var out []*Item
	for id := range m.items {
		it := m.items[id]
		if it.PlanID == planID {
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockItemRepo) NextSortOrder(_ context.Context, planID uuid.UUID) (int, error) {
	max := 0
	for _, it := range m.items {
		if it.PlanID == planID && it.SortOrder > max {
			max = it.SortOrder
		}
	}
	return max + 1, nil
}

func (m *mockItemRepo) Progress(_ context.Context, planID uuid.UUID) (Progress, error) {
	var p Progress
	for _, it := range m.items {
		if it.PlanID != planID {
			continue
		}
		p.Total++
		if it.State == ItemCompleted {
			p.Completed++
		}
	}
	return p, nil
}

type mockCatalog struct {
	entries map[uuid.UUID]*catalog.Entry
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{entries: make(map[uuid.UUID]*catalog.Entry)}
}

func (m *mockCatalog) GetEntry(_ context.Context, id uuid.UUID) (*catalog.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return e, nil
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc     *Service
	plans   *mockPlanRepo
	items   *mockItemRepo
	catalog *mockCatalog
}

func newFixture() *fixture {
	plans := newMockPlanRepo()
	items := newMockItemRepo()
	cat := newMockCatalog()
	return &fixture{
		svc:     NewService(plans, items, cat, passTx{}),
		plans:   plans,
		items:   items,
		catalog: cat,
	}
}

func (f *fixture) addService(base, fixed float64, groups ...catalog.GroupWithOptions) uuid.UUID {
	id := uuid.New()
	f.catalog.entries[id] = &catalog.Entry{
		Service: catalog.Procedure{
			ID: id, Code: fmt.Sprintf("SVC-%s", id.String()[:4]),
			Name: "procedure", BasePrice: base, FixedMaterialsCost: fixed,
			Active: true,
		},
		Groups: groups,
	}
	return id
}

func (f *fixture) newPlan(state State) *TreatmentPlan {
	p := &TreatmentPlan{
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		Title:          "restoration",
		State:          state,
	}
	f.plans.plans[p.ID] = *p
	return p
}

func (f *fixture) newItem(planID uuid.UUID, state ItemState) *Item {
	it := &Item{
		ID:        uuid.New(),
		PlanID:    planID,
		ServiceID: uuid.New(),
		SortOrder: len(f.items.items) + 1,
		State:     state,
	}
	f.items.items[it.ID] = *it
	return it
}
