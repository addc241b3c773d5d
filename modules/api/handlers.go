package api

import (
	"context"
	"errors"
	"log"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/catalog"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/combination"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/favorites"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/workingset"
	"github.com/gofiber/fiber/v2"
)

// Handlers handles the HTTP surface of the menu editor. Each handler is
// the Go-side seam for one UI event.
type Handlers struct {
	repo        *catalog.Repository
	cache       *workingset.Cache
	store       *combination.Store
	sync        *favorites.Synchronizer
	defaultUser string
}

// NewHandlers creates the API handlers.
func NewHandlers(repo *catalog.Repository, cache *workingset.Cache, store *combination.Store, sync *favorites.Synchronizer, defaultUser string) *Handlers {
	return &Handlers{
		repo:        repo,
		cache:       cache,
		store:       store,
		sync:        sync,
		defaultUser: defaultUser,
	}
}

// userID resolves the acting user. Session handling is external; the
// header is trusted as-is.
func (h *Handlers) userID(c *fiber.Ctx) string {
	if id := c.Get("X-User-ID"); id != "" {
		return id
	}
	return h.defaultUser
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	if err := h.cache.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// ListCategories handles GET /api/v1/catalog/categories.
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	categories, err := h.repo.ListCategories(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "catalog_error",
			Message: err.Error(),
		})
	}
	return c.JSON(CategoryListResponse{Categories: categories, Total: len(categories)})
}

// ListProducts handles GET /api/v1/catalog/products?subcategory=<id>.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	products, err := h.repo.ListProducts(c.Context(), c.Query("subcategory"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "catalog_error",
			Message: err.Error(),
		})
	}
	return c.JSON(ProductListResponse{Products: products, Total: len(products)})
}

// GetWorkingSet handles GET /api/v1/workingset. An expired or missing
// snapshot is a miss: the client repopulates from the catalog and
// writes a fresh one.
func (h *Handlers) GetWorkingSet(c *fiber.Ctx) error {
	snap, ok := h.cache.Load(c.Context())
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "workingset_absent",
			Message: "Working set is absent or expired",
		})
	}
	return c.JSON(WorkingSetResponse{
		Snapshot:         snap,
		RemainingSeconds: int64(h.cache.RemainingTTL(c.Context()).Seconds()),
	})
}

// UpdateWorkingSet handles PATCH /api/v1/workingset.
func (h *Handlers) UpdateWorkingSet(c *fiber.Ctx) error {
	var patch menu.SnapshotPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if patch.ActiveSubTab != nil && !patch.ActiveSubTab.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_sub_tab",
			Message: "Valid sub-tabs: menu_of_day, favorites, specials",
		})
	}

	snap := h.cache.Update(c.Context(), patch)
	return c.JSON(WorkingSetResponse{
		Snapshot:         snap,
		RemainingSeconds: int64(h.cache.RemainingTTL(c.Context()).Seconds()),
	})
}

// ResetWorkingSet handles DELETE /api/v1/workingset.
func (h *Handlers) ResetWorkingSet(c *fiber.Ctx) error {
	h.cache.Reset(c.Context())
	return c.SendStatus(fiber.StatusNoContent)
}

// GetWorkingSetTTL handles GET /api/v1/workingset/ttl.
func (h *Handlers) GetWorkingSetTTL(c *fiber.Ctx) error {
	return c.JSON(TTLResponse{
		RemainingSeconds: int64(h.cache.RemainingTTL(c.Context()).Seconds()),
	})
}

// Generate handles POST /api/v1/menu/generate. It resolves the selected
// product ids, regenerates the combination store, and reconciles
// backend favorites into the fresh contents.
func (h *Handlers) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	input, err := h.resolveInput(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "catalog_error",
			Message: err.Error(),
		})
	}

	_, err = h.store.Regenerate(c.Context(), input)
	if err != nil {
		var missing *menu.MissingCategoryError
		if errors.As(err, &missing) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Error:        "missing_category",
				Message:      missing.Error(),
				MissingRoles: missing.Roles,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "generation_error",
			Message: err.Error(),
		})
	}

	if err := h.sync.Apply(c.Context(), h.userID(c), h.store); err != nil {
		// Reconciliation is best-effort; the generated menu is usable
		// without it.
		log.Printf("[api] Favorites reconciliation failed: %v", err)
	}

	return c.JSON(CombinationListResponse{Combinations: h.store.Combinations(), Total: h.store.Len()})
}

// ListCombinations handles GET /api/v1/menu/combinations?view=all|favorites|specials.
func (h *Handlers) ListCombinations(c *fiber.Ctx) error {
	var combos []menu.Combination
	switch c.Query("view", "all") {
	case "favorites":
		combos = h.store.Favorites()
	case "specials":
		combos = h.store.Specials()
	default:
		combos = h.store.Combinations()
	}
	return c.JSON(CombinationListResponse{Combinations: combos, Total: len(combos)})
}

// ToggleFavorite handles POST /api/v1/menu/combinations/:id/favorite.
func (h *Handlers) ToggleFavorite(c *fiber.Ctx) error {
	combo, err := h.store.ToggleFavorite(c.Context(), c.Params("id"))
	return h.combinationResponse(c, combo, err)
}

// ToggleSpecial handles POST /api/v1/menu/combinations/:id/special.
func (h *Handlers) ToggleSpecial(c *fiber.Ctx) error {
	combo, err := h.store.ToggleSpecial(c.Context(), c.Params("id"))
	return h.combinationResponse(c, combo, err)
}

// UpdateQuantity handles PUT /api/v1/menu/combinations/:id/quantity.
func (h *Handlers) UpdateQuantity(c *fiber.Ctx) error {
	var req QuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if req.Quantity < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_quantity",
			Message: "Quantity must be non-negative",
		})
	}

	combo, err := h.store.UpdateQuantity(c.Context(), c.Params("id"), req.Quantity)
	return h.combinationResponse(c, combo, err)
}

// AddSchedule handles POST /api/v1/menu/combinations/:id/schedule.
func (h *Handlers) AddSchedule(c *fiber.Ctx) error {
	entry, ok := h.parseScheduleEntry(c)
	if !ok {
		return nil
	}
	combo, err := h.store.AddSchedule(c.Context(), c.Params("id"), entry)
	return h.combinationResponse(c, combo, err)
}

// EditSchedule handles PUT /api/v1/menu/combinations/:id/schedule/:index.
func (h *Handlers) EditSchedule(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_index",
			Message: "Schedule index must be an integer",
		})
	}
	entry, ok := h.parseScheduleEntry(c)
	if !ok {
		return nil
	}
	combo, storeErr := h.store.EditSchedule(c.Context(), c.Params("id"), index, entry)
	return h.combinationResponse(c, combo, storeErr)
}

// RemoveSchedule handles DELETE /api/v1/menu/combinations/:id/schedule/:index.
func (h *Handlers) RemoveSchedule(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_index",
			Message: "Schedule index must be an integer",
		})
	}
	combo, storeErr := h.store.RemoveSchedule(c.Context(), c.Params("id"), index)
	return h.combinationResponse(c, combo, storeErr)
}

// combinationResponse renders a mutated combination or the store error.
func (h *Handlers) combinationResponse(c *fiber.Ctx, combo menu.Combination, err error) error {
	if err != nil {
		if errors.Is(err, menu.ErrCombinationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "combination_not_found",
				Message: "Unknown combination id",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
	}
	return c.JSON(combo)
}

// parseScheduleEntry reads and validates a schedule entry body. On
// failure the error response has already been written.
func (h *Handlers) parseScheduleEntry(c *fiber.Ctx) (menu.ScheduleEntry, bool) {
	var req ScheduleEntryRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return menu.ScheduleEntry{}, false
	}
	entry, err := req.toScheduleEntry()
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_date",
			Message: "Schedule date must be YYYY-MM-DD",
		})
		return menu.ScheduleEntry{}, false
	}
	return entry, true
}

// resolveInput loads the selected products per role, preserving the
// selection order of each list.
func (h *Handlers) resolveInput(ctx context.Context, req GenerateRequest) (menu.GenerationInput, error) {
	var input menu.GenerationInput
	var err error

	if input.Entrada, err = h.repo.ProductsByIDs(ctx, req.Entrada); err != nil {
		return input, err
	}
	if input.Principio, err = h.repo.ProductsByIDs(ctx, req.Principio); err != nil {
		return input, err
	}
	if input.Proteina, err = h.repo.ProductsByIDs(ctx, req.Proteina); err != nil {
		return input, err
	}
	if input.Acompanamiento, err = h.repo.ProductsByIDs(ctx, req.Acompanamiento); err != nil {
		return input, err
	}
	input.Bebida, err = h.repo.ProductsByIDs(ctx, req.Bebida)
	return input, err
}
