package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/apperr"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/middleware"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocumentService lets each test stub just the method under test.
type fakeDocumentService struct {
	create      func(ctx context.Context, req service.CreateDocumentRequest) (*model.DieselRequisition, error)
	get         func(ctx context.Context, id string) (*model.DieselRequisition, error)
	decideStage func(ctx context.Context, id, stage, actorID string, req service.DecisionRequest) (*model.DieselRequisition, error)
}

func (f *fakeDocumentService) Create(ctx context.Context, req service.CreateDocumentRequest) (*model.DieselRequisition, error) {
	return f.create(ctx, req)
}

func (f *fakeDocumentService) Get(ctx context.Context, id string) (*model.DieselRequisition, error) {
	return f.get(ctx, id)
}

func (f *fakeDocumentService) List(ctx context.Context, q service.ListDocumentsQuery) ([]model.DieselRequisition, int64, error) {
	return nil, 0, nil
}

func (f *fakeDocumentService) ReplaceItems(ctx context.Context, id string, items []service.LineItemRequest) (*model.DieselRequisition, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeDocumentService) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeDocumentService) DecideStage(ctx context.Context, id, stage, actorID string, req service.DecisionRequest) (*model.DieselRequisition, error) {
	return f.decideStage(ctx, id, stage, actorID, req)
}

func (f *fakeDocumentService) History(ctx context.Context, id string) ([]model.StageDecision, error) {
	return nil, nil
}

func newTestRouter(svc service.DocumentService[model.DieselRequisition]) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewDocumentHandler("diesel-requisitions", svc).RegisterRoutes(router.Group(""))
	return router
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.GetJWTSecret())
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDocument(t *testing.T) {
	created := &model.DieselRequisition{}
	created.ID = uuid.New()
	svc := &fakeDocumentService{
		create: func(ctx context.Context, req service.CreateDocumentRequest) (*model.DieselRequisition, error) {
			return created, nil
		},
	}
	router := newTestRouter(svc)

	body := gin.H{
		"date":       "2026-03-01T00:00:00Z",
		"createdBy":  uuid.NewString(),
		"project_id": uuid.NewString(),
		"items": []gin.H{
			{"item": uuid.NewString(), "uom_id": uuid.NewString(), "quantity": "120"},
		},
	}
	w := doRequest(router, http.MethodPost, "/api/diesel-requisitions", bearerToken(t, middleware.RoleMechanic), body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateDocumentRejectsMissingItems(t *testing.T) {
	svc := &fakeDocumentService{
		create: func(ctx context.Context, req service.CreateDocumentRequest) (*model.DieselRequisition, error) {
			t.Fatal("service must not be called for an invalid body")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	body := gin.H{
		"date":       "2026-03-01T00:00:00Z",
		"createdBy":  uuid.NewString(),
		"project_id": uuid.NewString(),
		"items":      []gin.H{},
	}
	w := doRequest(router, http.MethodPost, "/api/diesel-requisitions", bearerToken(t, middleware.RoleMechanic), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateDocumentRequiresToken(t *testing.T) {
	router := newTestRouter(&fakeDocumentService{})
	w := doRequest(router, http.MethodPost, "/api/diesel-requisitions", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetDocumentNotFound(t *testing.T) {
	svc := &fakeDocumentService{
		get: func(ctx context.Context, id string) (*model.DieselRequisition, error) {
			return nil, apperr.ErrNotFound
		},
	}
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/api/diesel-requisitions/"+uuid.NewString(), bearerToken(t, middleware.RoleMechanic), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecideStageRoleGating(t *testing.T) {
	decided := &model.DieselRequisition{}
	decided.ID = uuid.New()
	var gotStage string
	svc := &fakeDocumentService{
		decideStage: func(ctx context.Context, id, stage, actorID string, req service.DecisionRequest) (*model.DieselRequisition, error) {
			gotStage = stage
			return decided, nil
		},
	}
	router := newTestRouter(svc)
	path := "/api/diesel-requisitions/" + decided.ID.String() + "/stages/sic"
	body := gin.H{"status": "approved"}

	// The sic stage belongs to the site incharge.
	w := doRequest(router, http.MethodPut, path, bearerToken(t, middleware.RoleMechanicIncharge), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPut, path, bearerToken(t, middleware.RoleSiteIncharge), body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sic", gotStage)

	// Admin bypasses the stage-to-role mapping.
	w = doRequest(router, http.MethodPut, path, bearerToken(t, middleware.RoleAdmin), body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDecideStageMapsValidationErrors(t *testing.T) {
	svc := &fakeDocumentService{
		decideStage: func(ctx context.Context, id, stage, actorID string, req service.DecisionRequest) (*model.DieselRequisition, error) {
			return nil, apperr.Validation("reject_reason", "required when rejecting")
		},
	}
	router := newTestRouter(svc)
	path := "/api/diesel-requisitions/" + uuid.NewString() + "/stages/pm"

	w := doRequest(router, http.MethodPut, path, bearerToken(t, middleware.RoleProjectManager), gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
