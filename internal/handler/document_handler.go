package handler

import (
	"net/http"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/middleware"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/model"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/service"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/pagination"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

// stageRoles maps each approval stage to the one role allowed to decide it.
// Admins bypass the mapping.
var stageRoles = map[model.Stage]string{
	model.StageMIC: middleware.RoleMechanicIncharge,
	model.StageSIC: middleware.RoleSiteIncharge,
	model.StagePM:  middleware.RoleProjectManager,
}

var (
	writerRoles = []string{
		middleware.RoleMechanic,
		middleware.RoleMechanicIncharge,
		middleware.RoleSiteIncharge,
		middleware.RoleProjectManager,
	}
	approverRoles = []string{
		middleware.RoleMechanicIncharge,
		middleware.RoleSiteIncharge,
		middleware.RoleProjectManager,
	}
)

// DocumentHandler serves the shared lifecycle surface for one document kind.
// The same handler shape is mounted six times under different paths.
type DocumentHandler[D any] struct {
	path    string
	service service.DocumentService[D]
}

func NewDocumentHandler[D any](path string, svc service.DocumentService[D]) *DocumentHandler[D] {
	return &DocumentHandler[D]{path: path, service: svc}
}

func (h *DocumentHandler[D]) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/api/" + h.path)
	{
		docs.POST("", middleware.RequireRole(writerRoles...), h.Create)
		docs.GET("", middleware.RequireRole(writerRoles...), h.List)
		docs.GET("/:id", middleware.RequireRole(writerRoles...), h.Get)
		docs.GET("/:id/history", middleware.RequireRole(writerRoles...), h.History)
		docs.PUT("/:id/items", middleware.RequireRole(writerRoles...), h.ReplaceItems)
		docs.DELETE("/:id", middleware.RequireRole(middleware.RoleProjectManager), h.Delete)
		docs.PUT("/:id/stages/:stage", middleware.RequireRole(approverRoles...), h.DecideStage)
	}
}

// Create submits a new document with its line items; all stages start pending
func (h *DocumentHandler[D]) Create(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// Get returns one document with its line items and creator
func (h *DocumentHandler[D]) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// List returns documents for a project, optionally filtered to those sitting
// at a stage with a given status (an approver's work queue)
func (h *DocumentHandler[D]) List(c *gin.Context) {
	params := pagination.Parse(c)
	q := service.ListDocumentsQuery{
		ProjectID:   c.Query("project_id"),
		Stage:       c.Query("stage"),
		StageStatus: c.Query("stage_status"),
		Page:        params.Page,
		Limit:       params.Limit,
	}

	docs, total, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, docs, pagination.NewMeta(total, params)))
}

// ReplaceItems swaps the full line-item set; approval state is untouched
func (h *DocumentHandler[D]) ReplaceItems(c *gin.Context) {
	var req struct {
		Items []service.LineItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	doc, err := h.service.ReplaceItems(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// Delete removes a document and its line items
func (h *DocumentHandler[D]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// DecideStage records one approval decision on a stage
func (h *DocumentHandler[D]) DecideStage(c *gin.Context) {
	stage := model.Stage(c.Param("stage"))
	role := c.GetString("userRole")
	if role != middleware.RoleAdmin {
		required, known := stageRoles[stage]
		if known && role != required {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: stage requires role "+required))
			return
		}
	}

	var req service.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	userID, _ := c.Get("userID")
	actorID, _ := userID.(string)

	doc, err := h.service.DecideStage(c.Request.Context(), c.Param("id"), c.Param("stage"), actorID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// History returns the append-only decision log for a document
func (h *DocumentHandler[D]) History(c *gin.Context) {
	decisions, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, decisions))
}
