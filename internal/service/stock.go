package service

import (
	"context"
	"fmt"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type StockEntryRequest struct {
	EntryDate time.Time       `json:"entry_date" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	Remarks   *string         `json:"remarks"`
	CreatedBy string          `json:"createdBy" binding:"required,uuid"`
}

type CreateStockLocationRequest struct {
	ConsumableItemID string             `json:"consumable_item_id" binding:"required,uuid"`
	StoreID          string             `json:"store_id" binding:"required,uuid"`
	ProjectID        string             `json:"project_id" binding:"required,uuid"`
	OpeningStock     decimal.Decimal    `json:"opening_stock"`
	InitialEntry     *StockEntryRequest `json:"initial_entry"`
}

type ListStockEntriesQuery struct {
	Item        string `form:"item" binding:"required,uuid"`
	StoreCode   string `form:"store_code"`
	ProjectCode string `form:"project_code"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=20"`
}

// StockService maintains per-(item, store, project) running balances. All
// movements go through CreateEntry so the location's closing stock and the
// entry snapshots can never drift apart.
type StockService interface {
	CreateLocation(ctx context.Context, req CreateStockLocationRequest) (*model.StockLocation, error)
	GetLocation(ctx context.Context, id string) (*model.StockLocation, error)
	CreateEntry(ctx context.Context, locationID string, req StockEntryRequest) (*model.StockEntry, error)
	ListEntries(ctx context.Context, q ListStockEntriesQuery) ([]model.StockEntry, int64, error)
	ListEntriesForLocation(ctx context.Context, locationID string, page, limit int) ([]model.StockEntry, int64, error)
}

type stockService struct {
	stock     repository.StockRepository
	identity  repository.IdentityRepository
	txManager repository.TransactionManager
}

func NewStockService(stock repository.StockRepository, identity repository.IdentityRepository, txManager repository.TransactionManager) StockService {
	return &stockService{stock: stock, identity: identity, txManager: txManager}
}

func (s *stockService) CreateLocation(ctx context.Context, req CreateStockLocationRequest) (*model.StockLocation, error) {
	itemID, err := uuid.Parse(req.ConsumableItemID)
	if err != nil {
		return nil, apperr.Validation("consumable_item_id", "invalid uuid")
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.Validation("store_id", "invalid uuid")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, apperr.Validation("project_id", "invalid uuid")
	}
	if req.OpeningStock.IsNegative() {
		return nil, apperr.Validation("opening_stock", "must not be negative")
	}
	if req.InitialEntry != nil {
		if err := validateEntryAmounts(*req.InitialEntry); err != nil {
			return nil, err
		}
	}

	var loc model.StockLocation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, ref := range []struct {
			field  string
			id     uuid.UUID
			exists func(context.Context, uuid.UUID) (bool, error)
		}{
			{"consumable_item_id", itemID, s.identity.ItemExists},
			{"store_id", storeID, s.identity.StoreExists},
			{"project_id", projectID, s.identity.ProjectExists},
		} {
			ok, checkErr := ref.exists(txCtx, ref.id)
			if checkErr != nil {
				return checkErr
			}
			if !ok {
				return apperr.Reference(ref.field, ref.id.String())
			}
		}

		taken, existsErr := s.stock.LocationExists(txCtx, itemID, storeID, projectID)
		if existsErr != nil {
			return existsErr
		}
		if taken {
			return apperr.ErrDuplicateLocation
		}

		now := time.Now()
		loc = model.StockLocation{
			ConsumableItemID: itemID,
			StoreID:          storeID,
			ProjectID:        projectID,
			OpeningStock:     req.OpeningStock,
			ClosingStock:     req.OpeningStock,
			LastUpdated:      now,
		}
		if createErr := s.stock.CreateLocation(txCtx, &loc); createErr != nil {
			return fmt.Errorf("failed to create stock location: %w", createErr)
		}

		if req.InitialEntry != nil {
			if _, entryErr := s.appendEntry(txCtx, &loc, *req.InitialEntry); entryErr != nil {
				return entryErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.stock.FindLocationByID(ctx, loc.ID)
}

func (s *stockService) GetLocation(ctx context.Context, id string) (*model.StockLocation, error) {
	locID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	return s.stock.FindLocationByID(ctx, locID)
}

func (s *stockService) CreateEntry(ctx context.Context, locationID string, req StockEntryRequest) (*model.StockEntry, error) {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	if err := validateEntryAmounts(req); err != nil {
		return nil, err
	}

	var entry *model.StockEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		loc, findErr := s.stock.FindLocationByIDForUpdate(txCtx, locID)
		if findErr != nil {
			return findErr
		}
		created, entryErr := s.appendEntry(txCtx, loc, req)
		if entryErr != nil {
			return entryErr
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// appendEntry records one movement against an already-locked location and
// rolls the running balance forward. The caller owns the transaction.
func (s *stockService) appendEntry(ctx context.Context, loc *model.StockLocation, req StockEntryRequest) (*model.StockEntry, error) {
	creator, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		return nil, apperr.Validation("createdBy", "invalid uuid")
	}
	ok, err := s.identity.EmployeeExists(ctx, creator)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Reference("createdBy", creator.String())
	}

	opening := loc.ClosingStock
	closing := opening.Add(req.Quantity)

	entry := model.StockEntry{
		StockLocationID: loc.ID,
		EntryDate:       req.EntryDate,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		OpeningStock:    opening,
		ClosingStock:    closing,
		Remarks:         req.Remarks,
		CreatedBy:       creator,
	}
	if err := s.stock.CreateEntry(ctx, &entry); err != nil {
		return nil, fmt.Errorf("failed to create stock entry: %w", err)
	}

	loc.ClosingStock = closing
	loc.LastUpdated = time.Now()
	if err := s.stock.SaveLocation(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to update stock location balance: %w", err)
	}
	return &entry, nil
}

func (s *stockService) ListEntries(ctx context.Context, q ListStockEntriesQuery) ([]model.StockEntry, int64, error) {
	itemID, err := uuid.Parse(q.Item)
	if err != nil {
		return nil, 0, apperr.Validation("item", "invalid uuid")
	}
	filter := repository.EntryFilter{
		StoreCode:   q.StoreCode,
		ProjectCode: q.ProjectCode,
	}
	if q.DateFrom != "" {
		from, parseErr := time.Parse("2006-01-02", q.DateFrom)
		if parseErr != nil {
			return nil, 0, apperr.Validation("date_from", "expected YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, parseErr := time.Parse("2006-01-02", q.DateTo)
		if parseErr != nil {
			return nil, 0, apperr.Validation("date_to", "expected YYYY-MM-DD")
		}
		// Inclusive upper bound: cover the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}
	page, limit := normalisePage(q.Page, q.Limit)
	return s.stock.ListEntries(ctx, itemID, filter, page, limit)
}

func (s *stockService) ListEntriesForLocation(ctx context.Context, locationID string, page, limit int) ([]model.StockEntry, int64, error) {
	locID, err := uuid.Parse(locationID)
	if err != nil {
		return nil, 0, apperr.Validation("id", "invalid uuid")
	}
	if _, err := s.stock.FindLocationByID(ctx, locID); err != nil {
		return nil, 0, err
	}
	page, limit = normalisePage(page, limit)
	return s.stock.ListEntriesForLocation(ctx, locID, page, limit)
}

func validateEntryAmounts(req StockEntryRequest) error {
	if !req.Quantity.IsPositive() {
		return apperr.Validation("quantity", "must be greater than zero")
	}
	if !req.UnitPrice.IsPositive() {
		return apperr.Validation("unit_price", "must be greater than zero")
	}
	return nil
}

func normalisePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}
