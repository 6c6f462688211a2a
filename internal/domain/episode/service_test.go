package episode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	episodes map[uuid.UUID]*ClinicalEpisode
	failNext bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{episodes: make(map[uuid.UUID]*ClinicalEpisode)}
}

func (m *mockRepo) Create(_ context.Context, e *ClinicalEpisode) error {
	if m.failNext {
		m.failNext = false
		return errors.New("insert failed")
	}
	m.episodes[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*ClinicalEpisode, error) {
	e, ok := m.episodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalEpisode, int, error) {
	var out []*ClinicalEpisode
	for _, e := range m.episodes {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

type mockLinker struct {
	linked     map[uuid.UUID]uuid.UUID
	occurredAt map[uuid.UUID]*time.Time
	err        error
}

func (m *mockLinker) LinkEpisode(_ context.Context, itemID, episodeID uuid.UUID, occurredAt *time.Time) error {
	if m.err != nil {
		return m.err
	}
	if m.linked == nil {
		m.linked = make(map[uuid.UUID]uuid.UUID)
		m.occurredAt = make(map[uuid.UUID]*time.Time)
	}
	m.linked[itemID] = episodeID
	m.occurredAt[itemID] = occurredAt
	return nil
}

// rollbackTx mimics transactional semantics well enough for the linked
// create: if fn fails, the repo's writes are discarded.
type rollbackTx struct {
	repo *mockRepo
}

func (r rollbackTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	before := make(map[uuid.UUID]*ClinicalEpisode, len(r.repo.episodes))
	for k, v := range r.repo.episodes {
		before[k] = v
	}
	if err := fn(ctx); err != nil {
		r.repo.episodes = before
		return err
	}
	return nil
}

func TestCreate(t *testing.T) {
	repo := newMockRepo()
	linker := &mockLinker{}
	svc := NewService(repo, linker, rollbackTx{repo})

	e, err := svc.Create(context.Background(), CreateInput{
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		Description:    "composite filling, tooth 26",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.OccurredAt.IsZero() {
		t.Fatalf("occurred_at not defaulted")
	}
	if len(linker.linked) != 0 {
		t.Fatalf("linker called without a plan item")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockLinker{}, rollbackTx{newMockRepo()})
	cases := []CreateInput{
		{PractitionerID: uuid.New(), Description: "x"},
		{PatientID: uuid.New(), Description: "x"},
		{PatientID: uuid.New(), PractitionerID: uuid.New()},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCreate_LinksPlanItem(t *testing.T) {
	repo := newMockRepo()
	linker := &mockLinker{}
	svc := NewService(repo, linker, rollbackTx{repo})

	itemID := uuid.New()
	e, err := svc.Create(context.Background(), CreateInput{
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		Description:    "crown cementation",
		PlanItemID:     &itemID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if linker.linked[itemID] != e.ID {
		t.Fatalf("item not linked to episode")
	}
}

// The episode's occurrence date travels with the link so the item's realized
// date reflects the visit, not the moment of recording.
func TestCreate_LinkCarriesOccurrenceDate(t *testing.T) {
	repo := newMockRepo()
	linker := &mockLinker{}
	svc := NewService(repo, linker, rollbackTx{repo})

	itemID := uuid.New()
	visited := time.Now().AddDate(0, 0, -14)
	_, err := svc.Create(context.Background(), CreateInput{
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		Description:    "root canal, second session",
		OccurredAt:     &visited,
		PlanItemID:     &itemID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got := linker.occurredAt[itemID]
	if got == nil || !got.Equal(visited) {
		t.Fatalf("link occurred_at = %v, want %v", got, visited)
	}
}

// A failed link must roll back the episode insert.
func TestCreate_LinkFailureRollsBack(t *testing.T) {
	repo := newMockRepo()
	linker := &mockLinker{err: errors.New("item already linked")}
	svc := NewService(repo, linker, rollbackTx{repo})

	itemID := uuid.New()
	_, err := svc.Create(context.Background(), CreateInput{
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		Description:    "crown cementation",
		PlanItemID:     &itemID,
	})
	if err == nil {
		t.Fatalf("expected link failure")
	}
	if len(repo.episodes) != 0 {
		t.Fatalf("episode persisted despite failed link")
	}
}
