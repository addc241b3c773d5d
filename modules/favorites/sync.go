// Package favorites reconciles the backend's favorite records with the
// combination store's favorite flags at load time. The reconciliation
// is one-way (backend to store) and runs once per store population;
// later favorite changes flow store to backend through the store's own
// toggle path.
package favorites

import (
	"context"
	"log"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

// RecordSource fetches favorite records from the backend of record.
type RecordSource interface {
	ActiveFavorites(ctx context.Context, userID string) ([]menu.FavoriteRecord, error)
}

// Marker is the store surface the synchronizer writes flags into.
// Combination-level and product-level favorites are distinct
// projections and are applied separately.
type Marker interface {
	MarkFavoriteCombinations(ids map[string]bool) int
	MarkFavoriteProducts(productIDs map[string]bool) int
}

// Synchronizer applies backend favorites to a combination store.
type Synchronizer struct {
	source RecordSource
}

// New creates a favorites synchronizer.
func New(source RecordSource) *Synchronizer {
	return &Synchronizer{source: source}
}

// Apply fetches the active favorite records for the user and marks the
// matching combinations. Records whose product id carries the
// combination id prefix are treated as combination-level favorites;
// the rest mark every combination containing that product.
func (s *Synchronizer) Apply(ctx context.Context, userID string, store Marker) error {
	records, err := s.source.ActiveFavorites(ctx, userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	combinationIDs := make(map[string]bool)
	productIDs := make(map[string]bool)
	for _, record := range records {
		if menu.IsCombinationID(record.ProductID) {
			combinationIDs[record.ProductID] = true
		} else {
			productIDs[record.ProductID] = true
		}
	}

	marked := store.MarkFavoriteCombinations(combinationIDs)
	marked += store.MarkFavoriteProducts(productIDs)
	log.Printf("[favorites] Reconciled %d favorite records for %s (%d combinations marked)", len(records), userID, marked)
	return nil
}
