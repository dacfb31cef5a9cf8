package handler

import (
	"net/http"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/middleware"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/service"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/pagination"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/api/stock-locations")
	{
		locations.POST("", middleware.RequireRole(writerRoles...), h.CreateLocation)
		locations.GET("/:id", middleware.RequireRole(writerRoles...), h.GetLocation)
		locations.POST("/:id/entries", middleware.RequireRole(writerRoles...), h.CreateEntry)
		locations.GET("/:id/entries", middleware.RequireRole(writerRoles...), h.ListEntriesForLocation)
	}

	entries := router.Group("/api/stock-entries")
	{
		entries.GET("", middleware.RequireRole(writerRoles...), h.ListEntries)
	}
}

// CreateLocation registers a balance for an (item, store, project) triple
func (h *StockHandler) CreateLocation(c *gin.Context) {
	var req service.CreateStockLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	loc, err := h.stockService.CreateLocation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, loc))
}

// GetLocation returns one location with its current balances
func (h *StockHandler) GetLocation(c *gin.Context) {
	loc, err := h.stockService.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, loc))
}

// CreateEntry appends a movement and rolls the location balance forward
func (h *StockHandler) CreateEntry(c *gin.Context) {
	var req service.StockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	entry, err := h.stockService.CreateEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// ListEntriesForLocation returns the ledger of one location, newest first
func (h *StockHandler) ListEntriesForLocation(c *gin.Context) {
	params := pagination.Parse(c)
	entries, total, err := h.stockService.ListEntriesForLocation(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, entries, pagination.NewMeta(total, params)))
}

// ListEntries returns an item's movements across locations, filterable by
// store code, project code and date range
func (h *StockHandler) ListEntries(c *gin.Context) {
	params := pagination.Parse(c)
	q := service.ListStockEntriesQuery{
		Item:        c.Query("item"),
		StoreCode:   c.Query("store_code"),
		ProjectCode: c.Query("project_code"),
		DateFrom:    c.Query("date_from"),
		DateTo:      c.Query("date_to"),
		Page:        params.Page,
		Limit:       params.Limit,
	}

	entries, total, err := h.stockService.ListEntries(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, entries, pagination.NewMeta(total, params)))
}
