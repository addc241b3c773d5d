// Package catalog provides the repository over the backend of record:
// categories, products, favorite records, and persisted combination state.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// Repository provides database operations for the menu catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the catalog tables.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&menu.Category{},
		&menu.Product{},
		&menu.FavoriteRecord{},
		&menu.CombinationState{},
	)
}

// ListCategories retrieves all categories ordered by position.
func (r *Repository) ListCategories(ctx context.Context) ([]menu.Category, error) {
	var categories []menu.Category
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListProducts retrieves active products, optionally filtered by
// sub-category. Results are ordered by name for stable listings.
func (r *Repository) ListProducts(ctx context.Context, subcategoryID string) ([]menu.Product, error) {
	query := r.db.WithContext(ctx).Where("status = ?", menu.ProductActive).Order("name ASC")
	if subcategoryID != "" {
		query = query.Where("category_id = ?", subcategoryID)
	}

	var products []menu.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ProductsByIDs retrieves products by id, preserving the order of the
// given ids. Unknown ids are skipped.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []string) ([]menu.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []menu.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]menu.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]menu.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// GetProduct retrieves a single product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*menu.Product, error) {
	var product menu.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// ActiveFavorites retrieves the active favorite records for a user.
// An empty user id is a caller error and is not retried.
func (r *Repository) ActiveFavorites(ctx context.Context, userID string) ([]menu.FavoriteRecord, error) {
	if userID == "" {
		return nil, menu.ErrUserRequired
	}

	var records []menu.FavoriteRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return records, nil
}

// ToggleFavorite applies an add/remove/toggle action to the favorite
// record for (user, product), creating the record on first use.
func (r *Repository) ToggleFavorite(ctx context.Context, userID, productID string, action menu.FavoriteAction) error {
	if userID == "" {
		return menu.ErrUserRequired
	}
	if productID == "" {
		return fmt.Errorf("product id is required")
	}

	var record menu.FavoriteRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&record).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = menu.FavoriteRecord{UserID: userID, ProductID: productID}
	case err != nil:
		return fmt.Errorf("failed to load favorite record: %w", err)
	}

	wasActive := record.Active
	switch action {
	case menu.FavoriteAdd:
		record.Active = true
	case menu.FavoriteRemove:
		record.Active = false
	case menu.FavoriteToggle:
		record.Active = !record.Active
	default:
		return fmt.Errorf("unknown favorite action: %q", action)
	}

	// Count activations only; re-adding an already active favorite is
	// a no-op for the counter.
	if record.Active && !wasActive {
		record.FavoriteCount++
	}

	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save favorite record: %w", err)
	}
	return nil
}

// MarkOrdered stamps the last-ordered timestamp of a favorite record.
func (r *Repository) MarkOrdered(ctx context.Context, userID, productID string, at time.Time) error {
	if userID == "" {
		return menu.ErrUserRequired
	}
	result := r.db.WithContext(ctx).
		Model(&menu.FavoriteRecord{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("last_ordered_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark ordered: %w", result.Error)
	}
	return nil
}

// UpsertCombinationState writes the persisted state for one combination,
// replacing any previous row for the same id.
func (r *Repository) UpsertCombinationState(ctx context.Context, state menu.CombinationState) error {
	if err := r.db.WithContext(ctx).Save(&state).Error; err != nil {
		return fmt.Errorf("failed to upsert combination state: %w", err)
	}
	return nil
}

// CombinationStates retrieves persisted combination state keyed by id.
func (r *Repository) CombinationStates(ctx context.Context, ids []string) (map[string]menu.CombinationState, error) {
	if len(ids) == 0 {
		return map[string]menu.CombinationState{}, nil
	}

	var rows []menu.CombinationState
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load combination states: %w", err)
	}

	states := make(map[string]menu.CombinationState, len(rows))
	for _, row := range rows {
		states[row.ID] = row
	}
	return states, nil
}

// DeleteCombinationStates removes persisted state rows by id. Used when
// a derived view removes a combination explicitly.
func (r *Repository) DeleteCombinationStates(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Delete(&menu.CombinationState{}, "id IN ?", ids).Error; err != nil {
		return fmt.Errorf("failed to delete combination states: %w", err)
	}
	return nil
}
