package repository

import (
	"context"
	"errors"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocPtr ties a document type to its pointer, which is what actually carries
// the WorkflowDocument methods.
type DocPtr[D any] interface {
	*D
	model.WorkflowDocument
}

// StageFilter selects documents by the state of one stage, applying the
// sequential-gate semantics to every preceding stage in the chain.
type StageFilter struct {
	Stage  model.Stage
	Status model.StageStatus
	// Strict requires preceding stages to be approved outright. The default
	// (false) admits documents whose earlier stages are still pending, which
	// is the behaviour field users rely on today.
	Strict bool
}

// StageCondition is one column restriction produced from a StageFilter.
type StageCondition struct {
	Column   string
	Statuses []model.StageStatus
}

// StageConditions expands a filter over an ordered stage chain. The target
// stage must hold the requested status; preceding stages must not be rejected
// (permissive) or must be approved (strict). Stages after the target are
// unconstrained.
func StageConditions(stages []model.Stage, f StageFilter) []StageCondition {
	conds := make([]StageCondition, 0, len(stages))
	for _, st := range stages {
		if st == f.Stage {
			break
		}
		allowed := []model.StageStatus{model.StatusPending, model.StatusApproved}
		if f.Strict {
			allowed = []model.StageStatus{model.StatusApproved}
		}
		conds = append(conds, StageCondition{Column: model.StageColumn(st), Statuses: allowed})
	}
	return append(conds, StageCondition{
		Column:   model.StageColumn(f.Stage),
		Statuses: []model.StageStatus{f.Status},
	})
}

// DocumentRepository persists one workflow document shape. The same
// implementation serves all six kinds; only the item table differs.
type DocumentRepository[D any, PD DocPtr[D]] interface {
	Create(ctx context.Context, doc PD) error
	FindByID(ctx context.Context, id uuid.UUID) (PD, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (PD, error)
	Save(ctx context.Context, doc PD) error
	List(ctx context.Context, projectID uuid.UUID, filter *StageFilter, page, limit int) ([]D, int64, error)
	ReplaceItems(ctx context.Context, doc PD, specs []model.LineItemSpec) error
	Delete(ctx context.Context, doc PD) error
}

type documentRepository[D any, PD DocPtr[D]] struct {
	db        *gorm.DB
	itemModel any    // prototype of the item row, e.g. &model.DieselRequisitionItem{}
	itemFK    string // owning FK column on the item table
}

func NewDocumentRepository[D any, PD DocPtr[D]](db *gorm.DB, itemModel any, itemFK string) DocumentRepository[D, PD] {
	return &documentRepository[D, PD]{db: db, itemModel: itemModel, itemFK: itemFK}
}

func (r *documentRepository[D, PD]) Create(ctx context.Context, doc PD) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository[D, PD]) FindByID(ctx context.Context, id uuid.UUID) (PD, error) {
	var d D
	pd := PD(&d)
	err := GetDB(ctx, r.db).Preload("Items").Preload("Creator").First(pd, "id = ?", id).Error
	if err != nil {
		var zero PD
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, apperr.ErrNotFound
		}
		return zero, err
	}
	return pd, nil
}

// FindByIDForUpdate locks the header row for the duration of the enclosing
// transaction, serialising concurrent stage decisions on the same document.
func (r *documentRepository[D, PD]) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (PD, error) {
	var d D
	pd := PD(&d)
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(pd, "id = ?", id).Error
	if err != nil {
		var zero PD
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, apperr.ErrNotFound
		}
		return zero, err
	}
	return pd, nil
}

func (r *documentRepository[D, PD]) Save(ctx context.Context, doc PD) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(doc).Error
}

func (r *documentRepository[D, PD]) List(ctx context.Context, projectID uuid.UUID, filter *StageFilter, page, limit int) ([]D, int64, error) {
	db := GetDB(ctx, r.db)
	var probe D
	stages := PD(&probe).ApprovalStages()

	countQuery := db.Model(new(D)).Where("project_id = ?", projectID)
	if filter != nil {
		for _, c := range StageConditions(stages, *filter) {
			countQuery = countQuery.Where(c.Column+" IN ?", c.Statuses)
		}
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetchQuery := db.Preload("Items").Preload("Creator").Where("project_id = ?", projectID)
	if filter != nil {
		for _, c := range StageConditions(stages, *filter) {
			fetchQuery = fetchQuery.Where(c.Column+" IN ?", c.Statuses)
		}
	}

	var docs []D
	offset := (page - 1) * limit
	if err := fetchQuery.Order("date DESC, created_at DESC, id").Offset(offset).Limit(limit).Find(&docs).Error; err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ReplaceItems swaps the full line-item set: existing rows are deleted and
// the new set bulk-inserted. There is no merge semantics.
func (r *documentRepository[D, PD]) ReplaceItems(ctx context.Context, doc PD, specs []model.LineItemSpec) error {
	db := GetDB(ctx, r.db)
	if err := db.Where(r.itemFK+" = ?", doc.DocumentID()).Delete(r.itemModel).Error; err != nil {
		return err
	}
	if err := doc.AttachItems(specs); err != nil {
		return err
	}
	return db.Create(doc.LineItems()).Error
}

func (r *documentRepository[D, PD]) Delete(ctx context.Context, doc PD) error {
	db := GetDB(ctx, r.db)
	if err := db.Where(r.itemFK+" = ?", doc.DocumentID()).Delete(r.itemModel).Error; err != nil {
		return err
	}
	return db.Delete(doc).Error
}
