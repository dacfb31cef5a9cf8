package service

import (
	"context"
	"testing"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthroughTx runs the unit of work without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// allowAllIdentity resolves every reference.
type allowAllIdentity struct{}

func (allowAllIdentity) EmployeeExists(context.Context, uuid.UUID) (bool, error)     { return true, nil }
func (allowAllIdentity) OrganisationExists(context.Context, uuid.UUID) (bool, error) { return true, nil }
func (allowAllIdentity) ProjectExists(context.Context, uuid.UUID) (bool, error)      { return true, nil }
func (allowAllIdentity) StoreExists(context.Context, uuid.UUID) (bool, error)        { return true, nil }
func (allowAllIdentity) ItemExists(context.Context, uuid.UUID) (bool, error)         { return true, nil }
func (allowAllIdentity) UOMExists(context.Context, uuid.UUID) (bool, error)          { return true, nil }
func (allowAllIdentity) EquipmentExists(context.Context, uuid.UUID) (bool, error)    { return true, nil }
func (allowAllIdentity) PartnerExists(context.Context, uuid.UUID) (bool, error)      { return true, nil }

// memStockRepo keeps locations and entries in maps, enough to drive the
// service's balance arithmetic.
type memStockRepo struct {
	locations map[uuid.UUID]*model.StockLocation
	entries   []model.StockEntry
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{locations: make(map[uuid.UUID]*model.StockLocation)}
}

func (m *memStockRepo) LocationExists(_ context.Context, itemID, storeID, projectID uuid.UUID) (bool, error) {
	for _, loc := range m.locations {
		if loc.ConsumableItemID == itemID && loc.StoreID == storeID && loc.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStockRepo) CreateLocation(_ context.Context, loc *model.StockLocation) error {
	loc.ID = uuid.New()
	m.locations[loc.ID] = loc
	return nil
}

func (m *memStockRepo) FindLocationByID(_ context.Context, id uuid.UUID) (*model.StockLocation, error) {
	loc, ok := m.locations[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *loc
	return &copied, nil
}

func (m *memStockRepo) FindLocationByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockLocation, error) {
	return m.FindLocationByID(ctx, id)
}

func (m *memStockRepo) SaveLocation(_ context.Context, loc *model.StockLocation) error {
	m.locations[loc.ID] = loc
	return nil
}

func (m *memStockRepo) CreateEntry(_ context.Context, entry *model.StockEntry) error {
	entry.ID = uuid.New()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memStockRepo) ListEntries(context.Context, uuid.UUID, repository.EntryFilter, int, int) ([]model.StockEntry, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

func (m *memStockRepo) ListEntriesForLocation(_ context.Context, locationID uuid.UUID, _, _ int) ([]model.StockEntry, int64, error) {
	var out []model.StockEntry
	for _, e := range m.entries {
		if e.StockLocationID == locationID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func newStockServiceForTest() (*memStockRepo, StockService) {
	repo := newMemStockRepo()
	return repo, NewStockService(repo, allowAllIdentity{}, passthroughTx{})
}

func entryReq(qty, price int64) StockEntryRequest {
	return StockEntryRequest{
		EntryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
		CreatedBy: uuid.NewString(),
	}
}

func TestCreateLocationWithInitialEntry(t *testing.T) {
	repo, svc := newStockServiceForTest()

	initial := entryReq(50, 92)
	loc, err := svc.CreateLocation(context.Background(), CreateStockLocationRequest{
		ConsumableItemID: uuid.NewString(),
		StoreID:          uuid.NewString(),
		ProjectID:        uuid.NewString(),
		OpeningStock:     decimal.NewFromInt(100),
		InitialEntry:     &initial,
	})
	require.NoError(t, err)

	assert.True(t, loc.OpeningStock.Equal(decimal.NewFromInt(100)))
	assert.True(t, loc.ClosingStock.Equal(decimal.NewFromInt(150)), "closing = opening + initial entry")

	require.Len(t, repo.entries, 1)
	assert.True(t, repo.entries[0].OpeningStock.Equal(decimal.NewFromInt(100)))
	assert.True(t, repo.entries[0].ClosingStock.Equal(decimal.NewFromInt(150)))
}

func TestCreateLocationRejectsDuplicateTriple(t *testing.T) {
	_, svc := newStockServiceForTest()

	req := CreateStockLocationRequest{
		ConsumableItemID: uuid.NewString(),
		StoreID:          uuid.NewString(),
		ProjectID:        uuid.NewString(),
	}
	_, err := svc.CreateLocation(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateLocation(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrDuplicateLocation)
}

func TestCreateEntryRollsBalanceForward(t *testing.T) {
	repo, svc := newStockServiceForTest()

	loc, err := svc.CreateLocation(context.Background(), CreateStockLocationRequest{
		ConsumableItemID: uuid.NewString(),
		StoreID:          uuid.NewString(),
		ProjectID:        uuid.NewString(),
		OpeningStock:     decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	first, err := svc.CreateEntry(context.Background(), loc.ID.String(), entryReq(25, 90))
	require.NoError(t, err)
	assert.True(t, first.OpeningStock.Equal(decimal.NewFromInt(10)))
	assert.True(t, first.ClosingStock.Equal(decimal.NewFromInt(35)))

	second, err := svc.CreateEntry(context.Background(), loc.ID.String(), entryReq(15, 91))
	require.NoError(t, err)
	assert.True(t, second.OpeningStock.Equal(decimal.NewFromInt(35)), "each entry opens where the last closed")
	assert.True(t, second.ClosingStock.Equal(decimal.NewFromInt(50)))

	saved := repo.locations[loc.ID]
	assert.True(t, saved.ClosingStock.Equal(decimal.NewFromInt(50)))
	assert.False(t, saved.LastUpdated.IsZero())
}

func TestCreateEntryValidation(t *testing.T) {
	_, svc := newStockServiceForTest()

	loc, err := svc.CreateLocation(context.Background(), CreateStockLocationRequest{
		ConsumableItemID: uuid.NewString(),
		StoreID:          uuid.NewString(),
		ProjectID:        uuid.NewString(),
	})
	require.NoError(t, err)

	_, err = svc.CreateEntry(context.Background(), loc.ID.String(), entryReq(0, 90))
	assert.True(t, apperr.IsBadInput(err), "zero quantity")

	_, err = svc.CreateEntry(context.Background(), loc.ID.String(), entryReq(10, 0))
	assert.True(t, apperr.IsBadInput(err), "zero unit price")

	_, err = svc.CreateEntry(context.Background(), uuid.NewString(), entryReq(10, 90))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
