package catalog

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

type repoPG struct{ pool *pgxpool.Pool }

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

const procCols = `id, code, name, description, base_price, fixed_materials_cost,
	active, created_at, updated_at`

func (r *repoPG) scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description,
		&p.BasePrice, &p.FixedMaterialsCost, &p.Active,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Procedure) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO catalog_service (id, code, name, description, base_price, fixed_materials_cost, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Code, p.Name, p.Description, p.BasePrice, p.FixedMaterialsCost, p.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return r.scanProcedure(r.conn(ctx).QueryRow(ctx,
		`SELECT `+procCols+` FROM catalog_service WHERE id = $1`, id))
}

func (r *repoPG) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := r.GroupsForService(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Entry{Service: *p, Groups: groups}, nil
}

func (r *repoPG) Update(ctx context.Context, p *Procedure) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE catalog_service
		SET code=$2, name=$3, description=$4, base_price=$5, fixed_materials_cost=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Code, p.Name, p.Description, p.BasePrice, p.FixedMaterialsCost, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Procedure, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM catalog_service`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+procCols+` FROM catalog_service`+where+` ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Procedure
	for rows.Next() {
		p, err := r.scanProcedure(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddGroup(ctx context.Context, g *MaterialGroup) error {
	g.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO material_group (id, service_id, name, mandatory, quantity)
		VALUES ($1,$2,$3,$4,$5)`,
		g.ID, g.ServiceID, g.Name, g.Mandatory, g.Quantity)
	return err
}

func (r *repoPG) AddOption(ctx context.Context, o *MaterialOption) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO material_option (id, group_id, name, price)
		VALUES ($1,$2,$3,$4)`,
		o.ID, o.GroupID, o.Name, o.Price)
	return err
}

func (r *repoPG) GroupsForService(ctx context.Context, serviceID uuid.UUID) ([]GroupWithOptions, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, service_id, name, mandatory, quantity
		FROM material_group WHERE service_id = $1 ORDER BY name`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []GroupWithOptions
	for rows.Next() {
		var g GroupWithOptions
		if err := rows.Scan(&g.ID, &g.ServiceID, &g.Name, &g.Mandatory, &g.Quantity); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		opts, err := r.optionsForGroup(ctx, groups[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load options for group %s: %w", groups[i].ID, err)
		}
		groups[i].Options = opts
	}
	return groups, nil
}

func (r *repoPG) optionsForGroup(ctx context.Context, groupID uuid.UUID) ([]MaterialOption, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, group_id, name, price
		FROM material_option WHERE group_id = $1 ORDER BY name`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []MaterialOption
	for rows.Next() {
		var o MaterialOption
		if err := rows.Scan(&o.ID, &o.GroupID, &o.Name, &o.Price); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
