package handler

import (
	tradeapp "github.com/erp/purchasing/internal/application/trade"
	"github.com/erp/purchasing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PurchaseTransactionItemHandler handles line item endpoints
type PurchaseTransactionItemHandler struct {
	BaseHandler
	itemService *tradeapp.PurchaseTransactionItemService
}

// NewPurchaseTransactionItemHandler creates a new PurchaseTransactionItemHandler
func NewPurchaseTransactionItemHandler(itemService *tradeapp.PurchaseTransactionItemService) *PurchaseTransactionItemHandler {
	return &PurchaseTransactionItemHandler{
		itemService: itemService,
	}
}

// Create adds one item to the transaction in the path
func (h *PurchaseTransactionItemHandler) Create(c *gin.Context) {
	transactionID, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req tradeapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), transactionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// CreateBulk adds several items atomically
func (h *PurchaseTransactionItemHandler) CreateBulk(c *gin.Context) {
	transactionID, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req tradeapp.CreateItemsBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := h.itemService.CreateBulk(c.Request.Context(), transactionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, items)
}

// ListByTransaction pages through the items of one transaction
func (h *PurchaseTransactionItemHandler) ListByTransaction(c *gin.Context) {
	transactionID, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BindError(c, err)
		return
	}
	page = page.Normalize()

	items, total, err := h.itemService.ListByTransaction(c.Request.Context(), transactionID, page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page.Page, page.PageSize)
}

// Summary aggregates quantities and amounts over a transaction's items
func (h *PurchaseTransactionItemHandler) Summary(c *gin.Context) {
	transactionID, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	summary, err := h.itemService.Summary(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Get returns one item
func (h *PurchaseTransactionItemHandler) Get(c *gin.Context) {
	itemID, err := uuidParam(c, "item_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	item, err := h.itemService.Get(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update changes pricing, remarks or warranty of an item
func (h *PurchaseTransactionItemHandler) Update(c *gin.Context) {
	itemID, err := uuidParam(c, "item_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req tradeapp.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete soft deletes an item and releases its serial numbers
func (h *PurchaseTransactionItemHandler) Delete(c *gin.Context) {
	itemID, err := uuidParam(c, "item_id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetBySerialNumber finds the active item carrying a serial number
func (h *PurchaseTransactionItemHandler) GetBySerialNumber(c *gin.Context) {
	item, err := h.itemService.GetBySerialNumber(c.Request.Context(), c.Param("serial"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListWithWarranty pages through items that carry a warranty
func (h *PurchaseTransactionItemHandler) ListWithWarranty(c *gin.Context) {
	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.BindError(c, err)
		return
	}
	page = page.Normalize()

	items, total, err := h.itemService.ListWithWarranty(c.Request.Context(), page.Page, page.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, page.Page, page.PageSize)
}
