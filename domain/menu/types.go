// Package menu provides the domain types for the daily-menu editor:
// the catalog entities, the editor working-set snapshot, and the
// generated menu combinations with their mutable state.
package menu

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SnapshotVersion is the schema version stamped into every persisted
// working-set snapshot. Blobs with a different version are treated as
// absent on load.
const SnapshotVersion = 1

// SnapshotTTL is the fixed time-to-live of a working-set snapshot,
// measured from its CreatedAt. It is the single expiry constant for
// every read path.
const SnapshotTTL = 30 * time.Minute

// SpecialWindowDuration is the default availability window stamped onto
// a combination when it is marked as a special.
const SpecialWindowDuration = 7 * 24 * time.Hour

// CategoryRole identifies one of the five fixed slots of a menu combination.
type CategoryRole string

const (
	RoleEntrada        CategoryRole = "entrada"
	RolePrincipio      CategoryRole = "principio"
	RoleProteina       CategoryRole = "proteina"
	RoleAcompanamiento CategoryRole = "acompanamiento"
	RoleBebida         CategoryRole = "bebida"
)

// Roles lists every category role in slot order.
func Roles() []CategoryRole {
	return []CategoryRole{RoleEntrada, RolePrincipio, RoleProteina, RoleAcompanamiento, RoleBebida}
}

// CategoryType distinguishes principal categories from sub-categories.
type CategoryType string

const (
	CategoryPrincipal   CategoryType = "principal"
	CategorySubcategory CategoryType = "subcategory"
)

// ProductStatus is the lifecycle status of a catalog product.
type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductDraft        ProductStatus = "draft"
	ProductArchived     ProductStatus = "archived"
	ProductDiscontinued ProductStatus = "discontinued"
)

// SubTab identifies the active tab of the menu editor.
type SubTab string

const (
	SubTabMenuOfDay SubTab = "menu_of_day"
	SubTabFavorites SubTab = "favorites"
	SubTabSpecials  SubTab = "specials"
)

// IsValid returns true if the sub-tab value is one of the known tabs.
func (s SubTab) IsValid() bool {
	switch s {
	case SubTabMenuOfDay, SubTabFavorites, SubTabSpecials:
		return true
	default:
		return false
	}
}

// StockInfo describes the stock position of a product.
type StockInfo struct {
	Current   int       `gorm:"column:current" json:"current"`
	Min       int       `gorm:"column:min" json:"min"`
	Max       int       `gorm:"column:max" json:"max"`
	Status    string    `gorm:"column:status;size:32" json:"status"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Product is a catalog product. Products are owned by the catalog
// repository and copied by value into snapshots and combinations.
type Product struct {
	ID          string         `gorm:"primarykey;size:36" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	CategoryID  string         `gorm:"size:36;index" json:"category_id"`
	Price       *float64       `json:"price,omitempty"`
	Stock       *StockInfo     `gorm:"embedded;embeddedPrefix:stock_" json:"stock,omitempty"`
	Status      ProductStatus  `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedBy   string         `gorm:"size:64" json:"created_by,omitempty"`
	UpdatedBy   string         `gorm:"size:64" json:"updated_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Product model.
func (Product) TableName() string {
	return "products"
}

// CategorySchedule is the optional availability schedule of a category.
// Weekdays is a comma-separated list of lowercase weekday names.
type CategorySchedule struct {
	Active   bool   `gorm:"column:active" json:"active"`
	Weekdays string `gorm:"column:weekdays;size:64" json:"weekdays,omitempty"`
	Start    string `gorm:"column:start;size:5" json:"start,omitempty"`
	End      string `gorm:"column:end;size:5" json:"end,omitempty"`
}

// Category is a menu category or sub-category. Sub-categories reference
// their principal category through ParentID.
type Category struct {
	ID       string            `gorm:"primarykey;size:36" json:"id"`
	Name     string            `gorm:"size:100;not null" json:"name"`
	Type     CategoryType      `gorm:"size:20;not null" json:"type"`
	ParentID string            `gorm:"size:36;index" json:"parent_id,omitempty"`
	Position int               `gorm:"not null;default:0" json:"position"`
	Schedule *CategorySchedule `gorm:"embedded;embeddedPrefix:schedule_" json:"schedule,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// Snapshot is the menu editor's working set. It is replaced wholesale on
// every mutation; CreatedAt is set once per session and is the sole
// basis for expiry.
type Snapshot struct {
	Version               int        `json:"version"`
	Categories            []Category `json:"categories"`
	SelectedCategoryID    string     `json:"selected_category_id,omitempty"`
	SelectedSubcategoryID string     `json:"selected_subcategory_id,omitempty"`
	CandidateProducts     []Product  `json:"candidate_products"`
	MenuProducts          []Product  `json:"menu_products"`
	FavoriteProducts      []Product  `json:"favorite_products"`
	SpecialProducts       []Product  `json:"special_products"`
	ActiveSubTab          SubTab     `json:"active_sub_tab"`
	CreatedAt             time.Time  `json:"created_at"`
}

// Clone returns a copy of the snapshot with its own slices, so callers
// can never mutate a stored snapshot in place.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Categories = append([]Category(nil), s.Categories...)
	clone.CandidateProducts = append([]Product(nil), s.CandidateProducts...)
	clone.MenuProducts = append([]Product(nil), s.MenuProducts...)
	clone.FavoriteProducts = append([]Product(nil), s.FavoriteProducts...)
	clone.SpecialProducts = append([]Product(nil), s.SpecialProducts...)
	return &clone
}

// Expired reports whether the snapshot's TTL has elapsed at the given time.
func (s *Snapshot) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) >= SnapshotTTL
}

// SnapshotPatch carries the fields of a partial working-set update.
// Nil fields are left unchanged by the merge.
type SnapshotPatch struct {
	Categories            *[]Category `json:"categories,omitempty"`
	SelectedCategoryID    *string     `json:"selected_category_id,omitempty"`
	SelectedSubcategoryID *string     `json:"selected_subcategory_id,omitempty"`
	CandidateProducts     *[]Product  `json:"candidate_products,omitempty"`
	MenuProducts          *[]Product  `json:"menu_products,omitempty"`
	FavoriteProducts      *[]Product  `json:"favorite_products,omitempty"`
	SpecialProducts       *[]Product  `json:"special_products,omitempty"`
	ActiveSubTab          *SubTab     `json:"active_sub_tab,omitempty"`
}

// SpecialWindow is the availability window of a special combination.
type SpecialWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ScheduleEntry is one scheduled occurrence of a combination.
type ScheduleEntry struct {
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// Combination is one fully-assembled menu option spanning the five
// category roles. Fields below the products are mutable editor state.
type Combination struct {
	ID             string          `json:"id"`
	Entrada        Product         `json:"entrada"`
	Principio      Product         `json:"principio"`
	Proteina       Product         `json:"proteina"`
	Acompanamiento []Product       `json:"acompanamiento"`
	Bebida         Product         `json:"bebida"`
	Favorite       bool            `json:"favorite"`
	Special        bool            `json:"special"`
	Quantity       int             `json:"quantity"`
	SpecialWindow  *SpecialWindow  `json:"special_window,omitempty"`
	Schedule       []ScheduleEntry `json:"schedule"`
}

// Products returns every product of the combination in slot order.
func (c *Combination) Products() []Product {
	products := make([]Product, 0, 4+len(c.Acompanamiento))
	products = append(products, c.Entrada, c.Principio, c.Proteina)
	products = append(products, c.Acompanamiento...)
	products = append(products, c.Bebida)
	return products
}

// GenerationInput holds the per-role product lists fed to the generator.
type GenerationInput struct {
	Entrada        []Product `json:"entrada"`
	Principio      []Product `json:"principio"`
	Proteina       []Product `json:"proteina"`
	Acompanamiento []Product `json:"acompanamiento"`
	Bebida         []Product `json:"bebida"`
}

// ByRole returns the product list for the given role.
func (in GenerationInput) ByRole(role CategoryRole) []Product {
	switch role {
	case RoleEntrada:
		return in.Entrada
	case RolePrincipio:
		return in.Principio
	case RoleProteina:
		return in.Proteina
	case RoleAcompanamiento:
		return in.Acompanamiento
	case RoleBebida:
		return in.Bebida
	default:
		return nil
	}
}

// EmptyRoles returns the roles whose product list is empty, in slot order.
func (in GenerationInput) EmptyRoles() []CategoryRole {
	var empty []CategoryRole
	for _, role := range Roles() {
		if len(in.ByRole(role)) == 0 {
			empty = append(empty, role)
		}
	}
	return empty
}

// FavoriteAction is the action applied to a favorite record.
type FavoriteAction string

const (
	FavoriteAdd    FavoriteAction = "add"
	FavoriteRemove FavoriteAction = "remove"
	FavoriteToggle FavoriteAction = "toggle"
)

// FavoriteRecord is the backend-of-record row for a user's favorite
// product. It is the source of truth for product-level favorites; the
// per-combination favorite flag is a projection reconciled at load time.
type FavoriteRecord struct {
	UserID        string     `gorm:"primarykey;size:64" json:"user_id"`
	ProductID     string     `gorm:"primarykey;size:36" json:"product_id"`
	Active        bool       `gorm:"not null;default:true" json:"active"`
	FavoriteCount int        `gorm:"not null;default:0" json:"favorite_count"`
	LastOrderedAt *time.Time `json:"last_ordered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the table name for the FavoriteRecord model.
func (FavoriteRecord) TableName() string {
	return "favorite_records"
}

// CombinationState is the persisted mutable state of a combination,
// keyed by combination id. Schedule holds a JSON-encoded list of
// schedule entries with dates as "2006-01-02" strings.
type CombinationState struct {
	ID         string     `gorm:"primarykey;size:64" json:"id"`
	Favorite   bool       `gorm:"not null;default:false" json:"favorite"`
	Special    bool       `gorm:"not null;default:false" json:"special"`
	Quantity   int        `gorm:"not null;default:0" json:"quantity"`
	WindowFrom *time.Time `json:"window_from,omitempty"`
	WindowTo   *time.Time `json:"window_to,omitempty"`
	Schedule   string     `gorm:"size:4000" json:"schedule,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the table name for the CombinationState model.
func (CombinationState) TableName() string {
	return "combination_states"
}

// CombinationIDPrefix is the prefix of sequential combination ids
// ("menu-1", "menu-2", ...).
const CombinationIDPrefix = "menu"

// CombinationID builds the sequential combination identifier for the
// 1-based position n of a generation pass.
func CombinationID(n int) string {
	return fmt.Sprintf("%s-%d", CombinationIDPrefix, n)
}

// IsCombinationID reports whether the id carries the combination prefix,
// distinguishing combination-level favorites from product-level ones.
func IsCombinationID(id string) bool {
	return strings.HasPrefix(id, CombinationIDPrefix+"-")
}
