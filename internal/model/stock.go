package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLocation holds the running balance for one (item, store, project)
// triple. ClosingStock is always persisted eagerly: after every successful
// entry it equals opening stock plus the sum of all entry quantities.
type StockLocation struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConsumableItemID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_locations_triple" json:"consumable_item_id"`
	ConsumableItem   *ConsumableItem `gorm:"foreignKey:ConsumableItemID" json:"consumable_item,omitempty"`
	StoreID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_locations_triple" json:"store_id"`
	Store            *Store          `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	ProjectID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_locations_triple" json:"project_id"`
	Project          *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	OpeningStock     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"opening_stock"`
	ClosingStock     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"closing_stock"`
	LastUpdated      time.Time       `gorm:"not null" json:"last_updated"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockEntry is one append-only movement against a location, snapshotting the
// balance before and after. Entries are never updated or deleted; a
// retroactive edit would invalidate every later snapshot.
type StockEntry struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StockLocationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"stock_location_id"`
	StockLocation   *StockLocation  `gorm:"foreignKey:StockLocationID" json:"stock_location,omitempty"`
	EntryDate       time.Time       `gorm:"not null;index" json:"entry_date"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	OpeningStock    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"opening_stock"`
	ClosingStock    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"closing_stock"`
	Remarks         *string         `gorm:"type:text" json:"remarks,omitempty"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}
