package handler

import (
	"net/http"

	"github.com/devifai-2026/mechanic-backend-sub000/internal/middleware"
	"github.com/devifai-2026/mechanic-backend-sub000/internal/service"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/pagination"
	"github.com/devifai-2026/mechanic-backend-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billingService service.BillingService
}

func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bills := router.Group("/api/material-bills")
	{
		bills.POST("", middleware.RequireRole(middleware.RoleProjectManager), h.CreateMaterialBill)
		bills.GET("", middleware.RequireRole(writerRoles...), h.ListMaterialBills)
		bills.GET("/unbilled", middleware.RequireRole(writerRoles...), h.ListUnbilledMaterialTransactions)
	}

	invoices := router.Group("/api/diesel-invoices")
	{
		invoices.POST("", middleware.RequireRole(middleware.RoleProjectManager), h.CreateDieselInvoice)
		invoices.GET("", middleware.RequireRole(writerRoles...), h.ListDieselInvoices)
		invoices.GET("/unbilled", middleware.RequireRole(writerRoles...), h.ListUninvoicedDieselReceipts)
	}
}

// CreateMaterialBill settles one fully approved material transaction
func (h *BillingHandler) CreateMaterialBill(c *gin.Context) {
	var req service.CreateMaterialBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	bill, err := h.billingService.CreateMaterialBill(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, bill))
}

// ListMaterialBills returns the bills raised for a project
func (h *BillingHandler) ListMaterialBills(c *gin.Context) {
	params := pagination.Parse(c)
	bills, total, err := h.billingService.ListMaterialBills(c.Request.Context(), c.Query("project_id"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, bills, pagination.NewMeta(total, params)))
}

// ListUnbilledMaterialTransactions returns approved transactions with no bill yet
func (h *BillingHandler) ListUnbilledMaterialTransactions(c *gin.Context) {
	txs, err := h.billingService.ListUnbilledMaterialTransactions(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, txs))
}

// CreateDieselInvoice settles one fully approved diesel receipt
func (h *BillingHandler) CreateDieselInvoice(c *gin.Context) {
	var req service.CreateDieselInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	invoice, err := h.billingService.CreateDieselInvoice(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListDieselInvoices returns the invoices raised for a project
func (h *BillingHandler) ListDieselInvoices(c *gin.Context) {
	params := pagination.Parse(c)
	invoices, total, err := h.billingService.ListDieselInvoices(c.Request.Context(), c.Query("project_id"), params.Page, params.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, invoices, pagination.NewMeta(total, params)))
}

// ListUninvoicedDieselReceipts returns approved receipts with no invoice yet
func (h *BillingHandler) ListUninvoicedDieselReceipts(c *gin.Context) {
	receipts, err := h.billingService.ListUninvoicedDieselReceipts(c.Request.Context(), c.Query("project_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, receipts))
}
