package odontogram

import (
	"context"
	"errors"

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

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the Postgres odontogram repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const cols = `id, patient_id, tooth_number, condition, notes, recorded_by, updated_at`

func scanRecord(row pgx.Row) (*ToothRecord, error) {
	var t ToothRecord
	err := row.Scan(&t.ID, &t.PatientID, &t.ToothNumber, &t.Condition,
		&t.Notes, &t.RecordedBy, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Upsert(ctx context.Context, t *ToothRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO odontogram (id, patient_id, tooth_number, condition, notes, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (patient_id, tooth_number)
		DO UPDATE SET condition = excluded.condition, notes = excluded.notes,
			recorded_by = excluded.recorded_by, updated_at = now()`,
		t.ID, t.PatientID, t.ToothNumber, t.Condition, t.Notes, t.RecordedBy)
	return err
}

func (r *repoPG) Get(ctx context.Context, patientID uuid.UUID, tooth string) (*ToothRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+cols+` FROM odontogram WHERE patient_id = $1 AND tooth_number = $2`,
		patientID, tooth))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ToothRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM odontogram WHERE patient_id = $1 ORDER BY tooth_number`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ToothRecord
	for rows.Next() {
		t, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
