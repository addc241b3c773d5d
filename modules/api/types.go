package api

import (
	"time"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

// ErrorResponse is the response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	// MissingRoles lists the empty generation roles for generation errors.
	MissingRoles []menu.CategoryRole `json:"missing_roles,omitempty"`
}

// GenerateRequest selects the candidate product ids per category role.
type GenerateRequest struct {
	Entrada        []string `json:"entrada"`
	Principio      []string `json:"principio"`
	Proteina       []string `json:"proteina"`
	Acompanamiento []string `json:"acompanamiento"`
	Bebida         []string `json:"bebida"`
}

// CombinationListResponse is the response for combination listings.
type CombinationListResponse struct {
	Combinations []menu.Combination `json:"combinations"`
	Total        int                `json:"total"`
}

// WorkingSetResponse wraps the current snapshot with its remaining TTL.
type WorkingSetResponse struct {
	Snapshot         *menu.Snapshot `json:"snapshot"`
	RemainingSeconds int64          `json:"remaining_ttl_seconds"`
}

// TTLResponse carries the remaining snapshot TTL for display.
type TTLResponse struct {
	RemainingSeconds int64 `json:"remaining_ttl_seconds"`
}

// QuantityRequest sets the quantity of a combination.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ScheduleEntryRequest adds or replaces one scheduled occurrence.
type ScheduleEntryRequest struct {
	Date     string `json:"date"`
	Quantity int    `json:"quantity"`
}

// toScheduleEntry parses the request into a domain schedule entry.
func (r ScheduleEntryRequest) toScheduleEntry() (menu.ScheduleEntry, error) {
	date, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return menu.ScheduleEntry{}, err
	}
	return menu.ScheduleEntry{Date: date, Quantity: r.Quantity}, nil
}

// CategoryListResponse is the response for category listings.
type CategoryListResponse struct {
	Categories []menu.Category `json:"categories"`
	Total      int             `json:"total"`
}

// ProductListResponse is the response for product listings.
type ProductListResponse struct {
	Products []menu.Product `json:"products"`
	Total    int            `json:"total"`
}
