package repository

import (
	"context"
	"errors"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryFilter narrows the stock-entry ledger listing.
type EntryFilter struct {
	StoreCode   string
	ProjectCode string
	DateFrom    *time.Time
	DateTo      *time.Time
}

type StockRepository interface {
	LocationExists(ctx context.Context, itemID, storeID, projectID uuid.UUID) (bool, error)
	CreateLocation(ctx context.Context, loc *model.StockLocation) error
	FindLocationByID(ctx context.Context, id uuid.UUID) (*model.StockLocation, error)
	// FindLocationByIDForUpdate locks the location row so the
	// read-compute-write of the running balance is serialised.
	FindLocationByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockLocation, error)
	SaveLocation(ctx context.Context, loc *model.StockLocation) error
	CreateEntry(ctx context.Context, entry *model.StockEntry) error
	ListEntries(ctx context.Context, itemID uuid.UUID, filter EntryFilter, page, limit int) ([]model.StockEntry, int64, error)
	ListEntriesForLocation(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.StockEntry, int64, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) LocationExists(ctx context.Context, itemID, storeID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.StockLocation{}).
		Where("consumable_item_id = ? AND store_id = ? AND project_id = ?", itemID, storeID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *stockRepository) CreateLocation(ctx context.Context, loc *model.StockLocation) error {
	return GetDB(ctx, r.db).Create(loc).Error
}

func (r *stockRepository) FindLocationByID(ctx context.Context, id uuid.UUID) (*model.StockLocation, error) {
	var loc model.StockLocation
	err := GetDB(ctx, r.db).Preload("ConsumableItem").Preload("Store").Preload("Project").
		First(&loc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *stockRepository) FindLocationByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockLocation, error) {
	var loc model.StockLocation
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *stockRepository) SaveLocation(ctx context.Context, loc *model.StockLocation) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(loc).Error
}

func (r *stockRepository) CreateEntry(ctx context.Context, entry *model.StockEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *stockRepository) ListEntries(ctx context.Context, itemID uuid.UUID, filter EntryFilter, page, limit int) ([]model.StockEntry, int64, error) {
	db := GetDB(ctx, r.db)

	build := func(q *gorm.DB) *gorm.DB {
		q = q.Joins("JOIN stock_locations ON stock_locations.id = stock_entries.stock_location_id").
			Joins("JOIN stores ON stores.id = stock_locations.store_id").
			Joins("JOIN projects ON projects.id = stock_locations.project_id").
			Where("stock_locations.consumable_item_id = ?", itemID)
		if filter.StoreCode != "" {
			q = q.Where("stores.code ILIKE ?", "%"+filter.StoreCode+"%")
		}
		if filter.ProjectCode != "" {
			q = q.Where("projects.code ILIKE ?", "%"+filter.ProjectCode+"%")
		}
		if filter.DateFrom != nil {
			q = q.Where("stock_entries.entry_date >= ?", *filter.DateFrom)
		}
		if filter.DateTo != nil {
			q = q.Where("stock_entries.entry_date <= ?", *filter.DateTo)
		}
		return q
	}

	var total int64
	if err := build(db.Model(&model.StockEntry{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.StockEntry
	offset := (page - 1) * limit
	err := build(db.Model(&model.StockEntry{})).
		Preload("StockLocation").
		Order("stock_entries.entry_date DESC, stock_entries.created_at DESC, stock_entries.id").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *stockRepository) ListEntriesForLocation(ctx context.Context, locationID uuid.UUID, page, limit int) ([]model.StockEntry, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.StockEntry{}).Where("stock_location_id = ?", locationID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.StockEntry
	offset := (page - 1) * limit
	err := db.Where("stock_location_id = ?", locationID).
		Order("entry_date DESC, created_at DESC, id").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
