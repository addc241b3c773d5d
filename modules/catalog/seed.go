package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/google/uuid"
)

// Seed populates an empty catalog with a demo category tree and a few
// products per role so the editor is usable out of the box. It is a
// no-op when categories already exist.
func (r *Repository) Seed(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&menu.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	principal := menu.Category{
		ID:       uuid.New().String(),
		Name:     "Menú del día",
		Type:     menu.CategoryPrincipal,
		Position: 0,
	}
	if err := r.db.WithContext(ctx).Create(&principal).Error; err != nil {
		return fmt.Errorf("failed to seed principal category: %w", err)
	}

	roleNames := map[menu.CategoryRole]string{
		menu.RoleEntrada:        "Entradas",
		menu.RolePrincipio:      "Principios",
		menu.RoleProteina:       "Proteínas",
		menu.RoleAcompanamiento: "Acompañamientos",
		menu.RoleBebida:         "Bebidas",
	}
	roleProducts := map[menu.CategoryRole][]string{
		menu.RoleEntrada:        {"Sopa de guineo", "Ajiaco", "Crema de ahuyama"},
		menu.RolePrincipio:      {"Frijoles", "Lentejas", "Arveja verde"},
		menu.RoleProteina:       {"Pechuga a la plancha", "Carne asada", "Mojarra frita"},
		menu.RoleAcompanamiento: {"Arroz blanco", "Patacones"},
		menu.RoleBebida:         {"Jugo de mora", "Limonada"},
	}

	for i, role := range menu.Roles() {
		sub := menu.Category{
			ID:       uuid.New().String(),
			Name:     roleNames[role],
			Type:     menu.CategorySubcategory,
			ParentID: principal.ID,
			Position: i + 1,
		}
		if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", sub.Name, err)
		}

		for _, name := range roleProducts[role] {
			price := 3500.0
			product := menu.Product{
				ID:         uuid.New().String(),
				Name:       name,
				CategoryID: sub.ID,
				Price:      &price,
				Status:     menu.ProductActive,
				CreatedBy:  "seed",
			}
			if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", name, err)
			}
		}
	}

	log.Println("[catalog] Seeded demo categories and products")
	return nil
}
