package repository

import (
	"context"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityRepository answers existence checks for the master-data rows this
// core references but never owns. Master CRUD lives elsewhere.
type IdentityRepository interface {
	EmployeeExists(ctx context.Context, id uuid.UUID) (bool, error)
	OrganisationExists(ctx context.Context, id uuid.UUID) (bool, error)
	ProjectExists(ctx context.Context, id uuid.UUID) (bool, error)
	StoreExists(ctx context.Context, id uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, id uuid.UUID) (bool, error)
	UOMExists(ctx context.Context, id uuid.UUID) (bool, error)
	EquipmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	PartnerExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type identityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func exists[M any](ctx context.Context, db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	var m M
	if err := GetDB(ctx, db).Model(&m).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *identityRepository) EmployeeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Employee](ctx, r.db, id)
}

func (r *identityRepository) OrganisationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Organisation](ctx, r.db, id)
}

func (r *identityRepository) ProjectExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Project](ctx, r.db, id)
}

func (r *identityRepository) StoreExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Store](ctx, r.db, id)
}

func (r *identityRepository) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.ConsumableItem](ctx, r.db, id)
}

func (r *identityRepository) UOMExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.UOM](ctx, r.db, id)
}

func (r *identityRepository) EquipmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Equipment](ctx, r.db, id)
}

func (r *identityRepository) PartnerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[model.Partner](ctx, r.db, id)
}
