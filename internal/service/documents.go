package service

import (
	"context"
	"fmt"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/repository"
	ws "github.com/devifai-2026/mechanic-backend-sub000/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type LineItemRequest struct {
	Item       string           `json:"item" binding:"required,uuid"`
	UOMID      string           `json:"uom_id" binding:"required,uuid"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required"`
	Notes      *string          `json:"notes"`
	Equipment  *string          `json:"equipment" binding:"omitempty,uuid"`
	MeterStart *decimal.Decimal `json:"meter_start"`
	MeterEnd   *decimal.Decimal `json:"meter_end"`
}

type CreateDocumentRequest struct {
	Date      time.Time         `json:"date" binding:"required"`
	CreatedBy string            `json:"createdBy" binding:"required,uuid"`
	OrgID     *string           `json:"org_id" binding:"omitempty,uuid"`
	ProjectID string            `json:"project_id" binding:"required,uuid"`
	Items     []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ListDocumentsQuery struct {
	ProjectID   string
	Stage       string
	StageStatus string
	Page        int
	Limit       int
}

// DocumentService is the lifecycle surface shared by all six document kinds.
type DocumentService[D any] interface {
	Create(ctx context.Context, req CreateDocumentRequest) (*D, error)
	Get(ctx context.Context, id string) (*D, error)
	List(ctx context.Context, q ListDocumentsQuery) ([]D, int64, error)
	ReplaceItems(ctx context.Context, id string, items []LineItemRequest) (*D, error)
	Delete(ctx context.Context, id string) error
	DecideStage(ctx context.Context, id, stage, actorID string, req DecisionRequest) (*D, error)
	History(ctx context.Context, id string) ([]model.StageDecision, error)
}

type documentService[D any, PD repository.DocPtr[D]] struct {
	repo      repository.DocumentRepository[D, PD]
	identity  repository.IdentityRepository
	decisions repository.DecisionLogRepository
	txManager repository.TransactionManager
	hub       *ws.Hub // nil when the kind does not notify
	// strictGate switches stage-filtered listings to require strict approval
	// on preceding stages.
	strictGate bool
}

// DocumentServiceConfig tunes per-kind behaviour at wiring time.
type DocumentServiceConfig struct {
	StrictGate     bool
	NotifyOnCreate bool
}

func NewDocumentService[D any, PD repository.DocPtr[D]](
	repo repository.DocumentRepository[D, PD],
	identity repository.IdentityRepository,
	decisions repository.DecisionLogRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	cfg DocumentServiceConfig,
) DocumentService[D] {
	if !cfg.NotifyOnCreate {
		hub = nil
	}
	return &documentService[D, PD]{
		repo:       repo,
		identity:   identity,
		decisions:  decisions,
		txManager:  txManager,
		hub:        hub,
		strictGate: cfg.StrictGate,
	}
}

func (s *documentService[D, PD]) kind() model.DocumentKind {
	var probe D
	return PD(&probe).DocumentKind()
}

func (s *documentService[D, PD]) Create(ctx context.Context, req CreateDocumentRequest) (*D, error) {
	createdBy, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		return nil, apperr.Validation("createdBy", "invalid uuid")
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, apperr.Validation("project_id", "invalid uuid")
	}
	var orgID *uuid.UUID
	if req.OrgID != nil && *req.OrgID != "" {
		parsed, parseErr := uuid.Parse(*req.OrgID)
		if parseErr != nil {
			return nil, apperr.Validation("org_id", "invalid uuid")
		}
		orgID = &parsed
	}
	specs, err := toLineItemSpecs(req.Items)
	if err != nil {
		return nil, err
	}

	var doc D
	pd := PD(&doc)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.checkHeaderRefs(txCtx, createdBy, orgID, projectID); err != nil {
			return err
		}
		if err := s.checkItemRefs(txCtx, specs); err != nil {
			return err
		}

		pd.SetCore(req.Date, createdBy, orgID, projectID)
		if err := pd.AttachItems(specs); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, pd); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.kind(), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Publish(ws.Event{
			Event: "document.created",
			Data: map[string]any{
				"kind":       string(s.kind()),
				"id":         pd.DocumentID().String(),
				"project_id": projectID.String(),
			},
		})
	}

	return s.reload(ctx, pd.DocumentID())
}

func (s *documentService[D, PD]) Get(ctx context.Context, id string) (*D, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	return s.reload(ctx, docID)
}

func (s *documentService[D, PD]) List(ctx context.Context, q ListDocumentsQuery) ([]D, int64, error) {
	projectID, err := uuid.Parse(q.ProjectID)
	if err != nil {
		return nil, 0, apperr.Validation("project_id", "invalid uuid")
	}

	var filter *repository.StageFilter
	if q.Stage != "" || q.StageStatus != "" {
		stage := model.Stage(q.Stage)
		if model.StageColumn(stage) == "" {
			return nil, 0, apperr.Validation("stage", "unknown stage")
		}
		var probe D
		if _, ok := PD(&probe).StageState(stage); !ok {
			return nil, 0, apperr.Validation("stage", "stage not defined for this document type")
		}
		status := model.StageStatus(q.StageStatus)
		if status != model.StatusPending && status != model.StatusApproved {
			return nil, 0, apperr.Validation("stage_status", "must be pending or approved")
		}
		filter = &repository.StageFilter{Stage: stage, Status: status, Strict: s.strictGate}
	}

	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, projectID, filter, page, limit)
}

func (s *documentService[D, PD]) ReplaceItems(ctx context.Context, id string, items []LineItemRequest) (*D, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items", "at least one line item is required")
	}
	specs, err := toLineItemSpecs(items)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.repo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return findErr
		}
		if err := s.checkItemRefs(txCtx, specs); err != nil {
			return err
		}
		if err := s.repo.ReplaceItems(txCtx, doc, specs); err != nil {
			return fmt.Errorf("failed to replace %s items: %w", s.kind(), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, docID)
}

func (s *documentService[D, PD]) Delete(ctx context.Context, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("id", "invalid uuid")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		doc, findErr := s.repo.FindByIDForUpdate(txCtx, docID)
		if findErr != nil {
			return findErr
		}
		if err := s.repo.Delete(txCtx, doc); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.kind(), err)
		}
		return nil
	})
}

func (s *documentService[D, PD]) History(ctx context.Context, id string) ([]model.StageDecision, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid uuid")
	}
	return s.decisions.ListForDocument(ctx, s.kind(), docID)
}

func (s *documentService[D, PD]) reload(ctx context.Context, id uuid.UUID) (*D, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return (*D)(doc), nil
}

func (s *documentService[D, PD]) checkHeaderRefs(ctx context.Context, createdBy uuid.UUID, orgID *uuid.UUID, projectID uuid.UUID) error {
	ok, err := s.identity.EmployeeExists(ctx, createdBy)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Reference("createdBy", createdBy.String())
	}
	if orgID != nil {
		ok, err = s.identity.OrganisationExists(ctx, *orgID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Reference("org_id", orgID.String())
		}
	}
	ok, err = s.identity.ProjectExists(ctx, projectID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Reference("project_id", projectID.String())
	}
	return nil
}

func (s *documentService[D, PD]) checkItemRefs(ctx context.Context, specs []model.LineItemSpec) error {
	for _, spec := range specs {
		ok, err := s.identity.ItemExists(ctx, spec.ItemID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Reference("items.item", spec.ItemID.String())
		}
		ok, err = s.identity.UOMExists(ctx, spec.UOMID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Reference("items.uom_id", spec.UOMID.String())
		}
		if spec.EquipmentID != nil {
			ok, err = s.identity.EquipmentExists(ctx, *spec.EquipmentID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Reference("items.equipment", spec.EquipmentID.String())
			}
		}
	}
	return nil
}

// toLineItemSpecs validates the request lines and converts them to the
// type-neutral spec the document shapes consume.
func toLineItemSpecs(items []LineItemRequest) ([]model.LineItemSpec, error) {
	specs := make([]model.LineItemSpec, 0, len(items))
	for _, it := range items {
		itemID, err := uuid.Parse(it.Item)
		if err != nil {
			return nil, apperr.Validation("items.item", "invalid uuid")
		}
		uomID, err := uuid.Parse(it.UOMID)
		if err != nil {
			return nil, apperr.Validation("items.uom_id", "invalid uuid")
		}
		if !it.Quantity.IsPositive() {
			return nil, apperr.Validation("items.quantity", "must be greater than zero")
		}
		var equipmentID *uuid.UUID
		if it.Equipment != nil && *it.Equipment != "" {
			parsed, parseErr := uuid.Parse(*it.Equipment)
			if parseErr != nil {
				return nil, apperr.Validation("items.equipment", "invalid uuid")
			}
			equipmentID = &parsed
		}
		specs = append(specs, model.LineItemSpec{
			ItemID:      itemID,
			UOMID:       uomID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			EquipmentID: equipmentID,
			MeterStart:  it.MeterStart,
			MeterEnd:    it.MeterEnd,
		})
	}
	return specs, nil
}
