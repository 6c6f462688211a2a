package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Procedure maps to the catalog_service table: one priced dental procedure
// definition (e.g. a crown, an extraction, a cleaning).
type Procedure struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Code               string    `db:"code" json:"code"`
	Name               string    `db:"name" json:"name"`
	Description        *string   `db:"description" json:"description,omitempty"`
	BasePrice          float64   `db:"base_price" json:"base_price"`
	FixedMaterialsCost float64   `db:"fixed_materials_cost" json:"fixed_materials_cost"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// MaterialGroup maps to the material_group table. A group offers alternative
// materials for a procedure (e.g. crown material: zirconia vs. porcelain).
// Mandatory groups require a selection before the item can be priced;
// Quantity multiplies the chosen option's unit price.
type MaterialGroup struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ServiceID uuid.UUID `db:"service_id" json:"service_id"`
	Name      string    `db:"name" json:"name"`
	Mandatory bool      `db:"mandatory" json:"mandatory"`
	Quantity  int       `db:"quantity" json:"quantity"`
}

// MaterialOption maps to the material_option table: one selectable material
// with its unit price.
type MaterialOption struct {
	ID      uuid.UUID `db:"id" json:"id"`
	GroupID uuid.UUID `db:"group_id" json:"group_id"`
	Name    string    `db:"name" json:"name"`
	Price   float64   `db:"price" json:"price"`
}

// GroupWithOptions is a material group together with its options.
type GroupWithOptions struct {
	MaterialGroup
	Options []MaterialOption `json:"options"`
}

// Entry is the full catalog definition of a service: the priced procedure and
// its material groups. It is the read model handed to the pricing snapshot
// calculator at item creation time.
type Entry struct {
	Service Procedure          `json:"service"`
	Groups  []GroupWithOptions `json:"groups"`
}

// FindOption locates a material option by id across all groups, returning the
// option and its owning group.
func (e *Entry) FindOption(optionID uuid.UUID) (*MaterialOption, *GroupWithOptions, bool) {
	for gi := range e.Groups {
		g := &e.Groups[gi]
		for oi := range g.Options {
			if g.Options[oi].ID == optionID {
				return &g.Options[oi], g, true
			}
		}
	}
	return nil, nil, false
}

// MandatoryGroups returns the groups that require a material selection.
func (e *Entry) MandatoryGroups() []GroupWithOptions {
	var out []GroupWithOptions
	for _, g := range e.Groups {
		if g.Mandatory {
			out = append(out, g)
		}
	}
	return out
}
