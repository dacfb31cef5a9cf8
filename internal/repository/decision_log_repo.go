package repository

import (
	"context"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DecisionLogRepository persists the append-only approval trail.
type DecisionLogRepository interface {
	Append(ctx context.Context, decision *model.StageDecision) error
	ListForDocument(ctx context.Context, kind model.DocumentKind, documentID uuid.UUID) ([]model.StageDecision, error)
}

type decisionLogRepository struct {
	db *gorm.DB
}

func NewDecisionLogRepository(db *gorm.DB) DecisionLogRepository {
	return &decisionLogRepository{db: db}
}

func (r *decisionLogRepository) Append(ctx context.Context, decision *model.StageDecision) error {
	return GetDB(ctx, r.db).Create(decision).Error
}

func (r *decisionLogRepository) ListForDocument(ctx context.Context, kind model.DocumentKind, documentID uuid.UUID) ([]model.StageDecision, error) {
	var decisions []model.StageDecision
	err := GetDB(ctx, r.db).
		Where("document_kind = ? AND document_id = ?", kind, documentID).
		Order("created_at ASC, id").
		Find(&decisions).Error
	if err != nil {
		return nil, err
	}
	return decisions, nil
}
