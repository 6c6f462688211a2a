package plan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/domain/catalog"
)

// PriceSnapshot holds the three price components captured at item creation.
// Once written to an item the snapshot is immutable; later catalog edits
// never change what the patient was quoted.
type PriceSnapshot struct {
	Service        float64
	FixedMaterials float64
	Material       float64
}

// Total returns the sum of the snapshot components.
func (s PriceSnapshot) Total() float64 {
	return s.Service + s.FixedMaterials + s.Material
}

// ComputeSnapshot prices a procedure against the current catalog. The
// variable material component is the chosen option's price times its group
// quantity. Every mandatory group must have its option chosen; the chosen
// option must belong to a group of this procedure.
func ComputeSnapshot(entry *catalog.Entry, materialID *uuid.UUID) (PriceSnapshot, error) {
	snap := PriceSnapshot{
		Service:        entry.Service.BasePrice,
		FixedMaterials: entry.Service.FixedMaterialsCost,
	}

	mandatory := entry.MandatoryGroups()
	if materialID == nil {
		if len(mandatory) > 0 {
			return PriceSnapshot{}, fmt.Errorf("%w: procedure %s requires a material choice for group %q",
				ErrValidation, entry.Service.Code, mandatory[0].Name)
		}
		return snap, nil
	}

	option, group, ok := entry.FindOption(*materialID)
	if !ok {
		return PriceSnapshot{}, fmt.Errorf("%w: material %s does not belong to procedure %s",
			ErrValidation, *materialID, entry.Service.Code)
	}
	for _, m := range mandatory {
		if m.ID != group.ID {
			return PriceSnapshot{}, fmt.Errorf("%w: no material chosen for mandatory group %q",
				ErrValidation, m.Name)
		}
	}
	snap.Material = option.Price * float64(group.Quantity)
	return snap, nil
}
