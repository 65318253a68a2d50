package handler

import (
	tradeapp "github.com/erp/purchasing/internal/application/trade"
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PurchaseTransactionHandler handles purchase transaction endpoints
type PurchaseTransactionHandler struct {
	BaseHandler
	transactionService *tradeapp.PurchaseTransactionService
}

// NewPurchaseTransactionHandler creates a new PurchaseTransactionHandler
func NewPurchaseTransactionHandler(transactionService *tradeapp.PurchaseTransactionService) *PurchaseTransactionHandler {
	return &PurchaseTransactionHandler{
		transactionService: transactionService,
	}
}

// Create creates a DRAFT transaction. A repeated Idempotency-Key returns the
// transaction created by the first request.
func (h *PurchaseTransactionHandler) Create(c *gin.Context) {
	var req tradeapp.CreatePurchaseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c)

	txn, err := h.transactionService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// CreateWithItems creates a transaction together with its first items
func (h *PurchaseTransactionHandler) CreateWithItems(c *gin.Context) {
	var req tradeapp.CreatePurchaseTransactionWithItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c)

	txn, err := h.transactionService.CreateWithItems(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, txn)
}

// Get returns a transaction with its items
func (h *PurchaseTransactionHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	txn, err := h.transactionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// GetByTransactionID looks a transaction up by its human readable id, e.g. PUR-AAA0002
func (h *PurchaseTransactionHandler) GetByTransactionID(c *gin.Context) {
	txn, err := h.transactionService.GetByTransactionID(c.Request.Context(), c.Param("transaction_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Update changes header fields of an editable transaction
func (h *PurchaseTransactionHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req tradeapp.UpdatePurchaseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	txn, err := h.transactionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txn)
}

// Delete soft deletes a cancellable transaction
func (h *PurchaseTransactionHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Transition returns a handler applying op to the transaction in the path
func (h *PurchaseTransactionHandler) Transition(op trade.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuidParam(c, "id")
		if err != nil {
			h.HandleError(c, err)
			return
		}

		txn, err := h.transactionService.Transition(c.Request.Context(), id, op)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, txn)
	}
}

// List lists transactions with filters and pagination
func (h *PurchaseTransactionHandler) List(c *gin.Context) {
	var filter tradeapp.PurchaseTransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	txns, total, err := h.transactionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := dto.PageRequest{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, txns, total, page.Page, page.PageSize)
}

// Search matches transaction id, PO number and remarks
func (h *PurchaseTransactionHandler) Search(c *gin.Context) {
	var req tradeapp.SearchPurchaseTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	txns, err := h.transactionService.Search(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txns)
}

// Statistics summarizes active transactions
func (h *PurchaseTransactionHandler) Statistics(c *gin.Context) {
	stats, err := h.transactionService.Statistics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
