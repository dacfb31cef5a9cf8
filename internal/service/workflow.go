package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"

	"github.com/google/uuid"
)

// DecisionRequest carries one stage decision. Any tri-state value may be set
// from any other; there is no terminal state.
type DecisionRequest struct {
	Status       string  `json:"status" binding:"required"`
	RejectReason *string `json:"reject_reason"`
}

// validateDecision checks the decision inputs that need no database access:
// the status must be one of the three stage statuses, and a rejection must
// carry a non-blank reason. It returns the normalised status and reason.
func validateDecision(status string, reason *string) (model.StageStatus, *string, error) {
	st := model.StageStatus(status)
	if !st.Valid() {
		return "", nil, apperr.Validation("status", "must be one of pending, approved, rejected")
	}
	if st == model.StatusRejected {
		if reason == nil || strings.TrimSpace(*reason) == "" {
			return "", nil, apperr.Validation("reject_reason", "required when rejecting")
		}
		trimmed := strings.TrimSpace(*reason)
		return st, &trimmed, nil
	}
	return st, nil, nil
}

// validateStage checks the stage name against the document type's chain
// before any row is touched.
func validateStage(doc model.Approvable, stage string) (model.Stage, error) {
	st := model.Stage(stage)
	if model.StageColumn(st) == "" {
		return "", apperr.Validation("stage", "unknown stage")
	}
	if _, ok := doc.StageState(st); !ok {
		return "", apperr.Validation("stage", "stage not defined for this document type")
	}
	return st, nil
}

// DecideStage applies one approval decision: the stage status is overwritten,
// the stage's reject reason is set or cleared, and an immutable StageDecision
// row is appended — all under a row lock in one transaction. Line items are
// never touched.
func (s *documentService[D, PD]) DecideStage(ctx context.Context, id, stage, actorID string, req DecisionRequest) (*D, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	status, reason, err := validateDecision(req.Status, req.RejectReason)
	if err != nil {
		return nil, err
	}
	var probe D
	st, err := validateStage(PD(&probe), stage)
	if err != nil {
		return nil, err
	}

	var decidedBy *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		decidedBy = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.repo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return findErr
		}
		if !doc.ApplyDecision(st, status, reason) {
			return apperr.Validation("stage", "stage not defined for this document type")
		}
		if saveErr := s.repo.Save(txCtx, doc); saveErr != nil {
			return fmt.Errorf("failed to persist %s decision: %w", s.kind(), saveErr)
		}

		decision := &model.StageDecision{
			DocumentKind: s.kind(),
			DocumentID:   docID,
			Stage:        st,
			Decision:     status,
			DecidedBy:    decidedBy,
			Reason:       reason,
		}
		if logErr := s.decisions.Append(txCtx, decision); logErr != nil {
			return fmt.Errorf("failed to record stage decision: %w", logErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, docID)
}
