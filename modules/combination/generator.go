// Package combination provides the menu combination generator and the
// in-memory store of generated combinations with their mutable state.
package combination

import (
	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

// Generate expands the per-role product lists into the ordered list of
// menu combinations: one per (entrada, principio, proteina) triple,
// each paired with a single accompaniment and a single drink picked by
// cycling through their lists with (index mod length). Accompaniments
// and drinks are deliberately not part of the cross-product; cycling
// keeps the combination count at e*p*r while using every accompaniment
// and drink roughly evenly.
//
// Generation is deterministic: identical inputs in identical order
// produce identical ids and role assignments.
func Generate(in menu.GenerationInput) ([]*menu.Combination, error) {
	if empty := in.EmptyRoles(); len(empty) > 0 {
		return nil, menu.NewMissingCategoryError(empty)
	}

	combos := make([]*menu.Combination, 0, len(in.Entrada)*len(in.Principio)*len(in.Proteina))
	seq := 0
	for _, entrada := range in.Entrada {
		for _, principio := range in.Principio {
			for _, proteina := range in.Proteina {
				acomp := in.Acompanamiento[seq%len(in.Acompanamiento)]
				bebida := in.Bebida[seq%len(in.Bebida)]
				seq++

				combos = append(combos, &menu.Combination{
					ID:             menu.CombinationID(seq),
					Entrada:        entrada,
					Principio:      principio,
					Proteina:       proteina,
					Acompanamiento: []menu.Product{acomp},
					Bebida:         bebida,
					Schedule:       []menu.ScheduleEntry{},
				})
			}
		}
	}

	return combos, nil
}
