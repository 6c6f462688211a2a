package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentio/dentio/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// storeErr classifies a persistence failure: row-shape errors pass through,
// everything else is infrastructure.
func storeErr(err error) error {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

type planRepoPG struct{ pool *pgxpool.Pool }

// NewPlanRepoPG creates the Postgres plan repository.
func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository {
	return &planRepoPG{pool: pool}
}

func (r *planRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const planCols = `id, patient_id, practitioner_id, title, state, priority,
	internal_notes, rejection_reason, cancellation_reason, presented_at,
	accepted_at, completed_at, cancelled_at, version_id, created_at, updated_at`

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.PatientID, &p.PractitionerID, &p.Title, &p.State,
		&p.Priority, &p.InternalNotes, &p.RejectionReason, &p.CancellationReason,
		&p.PresentedAt, &p.AcceptedAt, &p.CompletedAt, &p.CancelledAt,
		&p.VersionID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: plan", ErrNotFound)
	}
	return &p, storeErr(err)
}

func (r *planRepoPG) Create(ctx context.Context, p *TreatmentPlan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plan (id, patient_id, practitioner_id, title, state, priority, internal_notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.PractitionerID, p.Title, p.State, p.Priority, p.InternalNotes)
	return storeErr(err)
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1`, id))
}

func (r *planRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plan WHERE id = $1 FOR UPDATE`, id))
}

func (r *planRepoPG) Update(ctx context.Context, p *TreatmentPlan) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_plan
		SET state = $1, priority = $2, internal_notes = $3, rejection_reason = $4,
			cancellation_reason = $5, presented_at = $6, accepted_at = $7,
			completed_at = $8, cancelled_at = $9,
			version_id = version_id + 1, updated_at = now()
		WHERE id = $10 AND version_id = $11`,
		p.State, p.Priority, p.InternalNotes, p.RejectionReason, p.CancellationReason,
		p.PresentedAt, p.AcceptedAt, p.CompletedAt, p.CancelledAt,
		p.ID, p.VersionID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		// The row is gone or someone else bumped the version first.
		if _, getErr := r.GetByID(ctx, p.ID); getErr != nil {
			return getErr
		}
		return ErrConcurrentModification
	}
	p.VersionID++
	return nil
}

func (r *planRepoPG) List(ctx context.Context, f ListFilter) ([]*TreatmentPlan, int, error) {
	where := `WHERE true`
	var args []interface{}
	if f.PatientID != uuid.Nil {
		args = append(args, f.PatientID)
		where += fmt.Sprintf(` AND patient_id = $%d`, len(args))
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		args = append(args, states)
		where += fmt.Sprintf(` AND state = ANY($%d)`, len(args))
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM treatment_plan `+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr(err)
	}

	args = append(args, f.Limit, f.Offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plan `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	defer rows.Close()

	var out []*TreatmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, storeErr(rows.Err())
}

type itemRepoPG struct{ pool *pgxpool.Pool }

// NewItemRepoPG creates the Postgres item repository.
func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository {
	return &itemRepoPG{pool: pool}
}

func (r *itemRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const itemCols = `id, plan_id, service_id, material_id, sort_order, state,
	notes, estimated_date, realized_date, episode_id,
	price_service_snapshot, price_fixed_materials_snapshot, price_material_snapshot,
	price_total, version_id, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.PlanID, &it.ServiceID, &it.MaterialID,
		&it.SortOrder, &it.State, &it.Notes, &it.EstimatedDate, &it.RealizedDate,
		&it.EpisodeID, &it.PriceService, &it.PriceFixedMaterials,
		&it.PriceMaterial, &it.PriceTotal, &it.VersionID,
		&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: item", ErrNotFound)
	}
	return &it, storeErr(err)
}

func (r *itemRepoPG) Create(ctx context.Context, it *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO plan_item (id, plan_id, service_id, material_id, sort_order, state,
			notes, estimated_date, price_service_snapshot, price_fixed_materials_snapshot,
			price_material_snapshot, price_total)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		it.ID, it.PlanID, it.ServiceID, it.MaterialID, it.SortOrder, it.State,
		it.Notes, it.EstimatedDate, it.PriceService, it.PriceFixedMaterials,
		it.PriceMaterial, it.PriceTotal)
	return storeErr(err)
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+itemCols+` FROM plan_item WHERE id = $1`, id))
}

func (r *itemRepoPG) Update(ctx context.Context, it *Item) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE plan_item
		SET state = $1, notes = $2, estimated_date = $3, realized_date = $4,
			episode_id = $5, version_id = version_id + 1, updated_at = now()
		WHERE id = $6 AND version_id = $7`,
		it.State, it.Notes, it.EstimatedDate, it.RealizedDate, it.EpisodeID,
		it.ID, it.VersionID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, it.ID); getErr != nil {
			return getErr
		}
		return ErrConcurrentModification
	}
	it.VersionID++
	return nil
}

func (r *itemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM plan_item WHERE id = $1`, id)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: item", ErrNotFound)
	}
	return nil
}

func (r *itemRepoPG) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM plan_item WHERE plan_id = $1 ORDER BY sort_order`, planID)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, storeErr(rows.Err())
}

func (r *itemRepoPG) NextSortOrder(ctx context.Context, planID uuid.UUID) (int, error) {
	var next int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT coalesce(max(sort_order), 0) + 1 FROM plan_item WHERE plan_id = $1`,
		planID).Scan(&next)
	return next, storeErr(err)
}

func (r *itemRepoPG) Progress(ctx context.Context, planID uuid.UUID) (Progress, error) {
	var p Progress
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE state = 'COMPLETED'), count(*)
		FROM plan_item WHERE plan_id = $1`, planID).Scan(&p.Completed, &p.Total)
	return p, storeErr(err)
}
