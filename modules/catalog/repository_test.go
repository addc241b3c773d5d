package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createProduct(t *testing.T, db *gorm.DB, name, categoryID string, status menu.ProductStatus) menu.Product {
	t.Helper()

	product := menu.Product{
		ID:         uuid.New().String(),
		Name:       name,
		CategoryID: categoryID,
		Status:     status,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func TestRepository_ListCategories_Ordered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for i, name := range []string{"Bebidas", "Entradas", "Principios"} {
		category := menu.Category{
			ID:       uuid.New().String(),
			Name:     name,
			Type:     menu.CategorySubcategory,
			Position: 3 - i,
		}
		if err := db.Create(&category).Error; err != nil {
			t.Fatalf("failed to create category: %v", err)
		}
	}

	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	if categories[0].Name != "Principios" || categories[2].Name != "Bebidas" {
		t.Errorf("expected categories ordered by position, got %s..%s", categories[0].Name, categories[2].Name)
	}
}

func TestRepository_ListProducts_ActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	categoryID := uuid.New().String()
	createProduct(t, db, "Ajiaco", categoryID, menu.ProductActive)
	createProduct(t, db, "Sancocho", categoryID, menu.ProductActive)
	createProduct(t, db, "Borrador", categoryID, menu.ProductDraft)
	createProduct(t, db, "Otro", uuid.New().String(), menu.ProductActive)

	products, err := repo.ListProducts(context.Background(), categoryID)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 active products in category, got %d", len(products))
	}
	if products[0].Name != "Ajiaco" {
		t.Errorf("expected products ordered by name, got %q first", products[0].Name)
	}

	all, err := repo.ListProducts(context.Background(), "")
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 active products overall, got %d", len(all))
	}
}

func TestRepository_ProductsByIDs_PreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	categoryID := uuid.New().String()
	a := createProduct(t, db, "A", categoryID, menu.ProductActive)
	b := createProduct(t, db, "B", categoryID, menu.ProductActive)
	c := createProduct(t, db, "C", categoryID, menu.ProductActive)

	products, err := repo.ProductsByIDs(context.Background(), []string{c.ID, "unknown", a.ID, b.ID})
	if err != nil {
		t.Fatalf("ProductsByIDs() error = %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	if products[0].ID != c.ID || products[1].ID != a.ID || products[2].ID != b.ID {
		t.Error("expected products in requested id order with unknown ids skipped")
	}
}

func TestRepository_GetProduct_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if _, err := repo.GetProduct(context.Background(), "missing"); err != ErrProductNotFound {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestRepository_ToggleFavorite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := uuid.New().String()

	// First toggle creates the record as active.
	if err := repo.ToggleFavorite(ctx, "user-1", productID, menu.FavoriteToggle); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}

	records, err := repo.ActiveFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveFavorites() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 active favorite, got %d", len(records))
	}
	if records[0].FavoriteCount != 1 {
		t.Errorf("expected favorite count 1, got %d", records[0].FavoriteCount)
	}

	// Second toggle deactivates it.
	if err := repo.ToggleFavorite(ctx, "user-1", productID, menu.FavoriteToggle); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	records, err = repo.ActiveFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveFavorites() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no active favorites after second toggle, got %d", len(records))
	}
}

func TestRepository_ToggleFavorite_RepeatedAddCountsOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := uuid.New().String()

	for i := 0; i < 3; i++ {
		if err := repo.ToggleFavorite(ctx, "user-1", productID, menu.FavoriteAdd); err != nil {
			t.Fatalf("ToggleFavorite() error = %v", err)
		}
	}

	records, err := repo.ActiveFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveFavorites() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 active favorite, got %d", len(records))
	}
	if records[0].FavoriteCount != 1 {
		t.Errorf("expected favorite count 1 after repeated adds, got %d", records[0].FavoriteCount)
	}

	// A remove and a fresh add is a second activation.
	if err := repo.ToggleFavorite(ctx, "user-1", productID, menu.FavoriteRemove); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if err := repo.ToggleFavorite(ctx, "user-1", productID, menu.FavoriteAdd); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	records, err = repo.ActiveFavorites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveFavorites() error = %v", err)
	}
	if records[0].FavoriteCount != 2 {
		t.Errorf("expected favorite count 2 after reactivation, got %d", records[0].FavoriteCount)
	}
}

func TestRepository_ActiveFavorites_RequiresUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if _, err := repo.ActiveFavorites(context.Background(), ""); err != menu.ErrUserRequired {
		t.Errorf("expected ErrUserRequired, got %v", err)
	}
}

func TestRepository_CombinationStates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	state := menu.CombinationState{
		ID:        "menu-1",
		Favorite:  true,
		Quantity:  5,
		UpdatedAt: now,
	}
	if err := repo.UpsertCombinationState(ctx, state); err != nil {
		t.Fatalf("UpsertCombinationState() error = %v", err)
	}

	// Upsert replaces the existing row.
	state.Quantity = 9
	if err := repo.UpsertCombinationState(ctx, state); err != nil {
		t.Fatalf("UpsertCombinationState() error = %v", err)
	}

	states, err := repo.CombinationStates(ctx, []string{"menu-1", "menu-2"})
	if err != nil {
		t.Fatalf("CombinationStates() error = %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("expected 1 state row, got %d", len(states))
	}
	if got := states["menu-1"]; got.Quantity != 9 || !got.Favorite {
		t.Errorf("unexpected state row: %+v", got)
	}

	if err := repo.DeleteCombinationStates(ctx, []string{"menu-1"}); err != nil {
		t.Fatalf("DeleteCombinationStates() error = %v", err)
	}
	states, err = repo.CombinationStates(ctx, []string{"menu-1"})
	if err != nil {
		t.Fatalf("CombinationStates() error = %v", err)
	}
	if len(states) != 0 {
		t.Errorf("expected no state rows after delete, got %d", len(states))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if err := repo.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	count := len(categories)
	if count == 0 {
		t.Fatal("expected seeded categories")
	}

	if err := repo.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	categories, err = repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != count {
		t.Errorf("expected second seed to be a no-op, got %d categories", len(categories))
	}
}
