package handler

import (
	"net/http"

	sequenceapp "github.com/erp/purchasing/internal/application/sequence"
	"github.com/erp/purchasing/internal/domain/sequence"
	"github.com/erp/purchasing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SequenceHandler exposes identifier allocation and sequence administration
type SequenceHandler struct {
	BaseHandler
	sequenceService *sequenceapp.SequenceService
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(sequenceService *sequenceapp.SequenceService) *SequenceHandler {
	return &SequenceHandler{
		sequenceService: sequenceService,
	}
}

// Next allocates the next identifier for a prefix, creating the sequence on first use
func (h *SequenceHandler) Next(c *gin.Context) {
	id, err := h.sequenceService.AllocateNext(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	prefix, _ := sequence.NormalizePrefix(c.Param("prefix"))
	h.Success(c, NextIDResponse{Prefix: prefix, ID: id})
}

// Bulk allocates count contiguous identifiers
func (h *SequenceHandler) Bulk(c *gin.Context) {
	var req sequenceapp.BulkAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ids, err := h.sequenceService.AllocateBulk(c.Request.Context(), c.Param("prefix"), req.Count)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	prefix, _ := sequence.NormalizePrefix(c.Param("prefix"))
	h.Success(c, sequenceapp.AllocationResponse{Prefix: prefix, IDs: ids})
}

// Get returns the latest identifier of a prefix without allocating
func (h *SequenceHandler) Get(c *gin.Context) {
	seq, err := h.sequenceService.Current(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// Stats describes a prefix, including one that was never used
func (h *SequenceHandler) Stats(c *gin.Context) {
	stats, err := h.sequenceService.Stats(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Reset rewinds a sequence; an empty body restores the initial identifier
func (h *SequenceHandler) Reset(c *gin.Context) {
	var req sequenceapp.ResetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	seq, err := h.sequenceService.Reset(c.Request.Context(), c.Param("prefix"), req.ResetTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// Activate re-enables allocation for a prefix
func (h *SequenceHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate stops allocation for a prefix
func (h *SequenceHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *SequenceHandler) setActive(c *gin.Context, active bool) {
	seq, err := h.sequenceService.SetActive(c.Request.Context(), c.Param("prefix"), active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// List lists sequences ordered by prefix
func (h *SequenceHandler) List(c *gin.Context) {
	var filter sequenceapp.SequenceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	seqs, total, err := h.sequenceService.ListPrefixes(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := dto.PageRequest{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, seqs, total, page.Page, page.PageSize)
}

// Health probes the allocator; an unhealthy allocator answers 503
func (h *SequenceHandler) Health(c *gin.Context) {
	resp := h.sequenceService.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, APIResponse[sequenceapp.HealthResponse]{Success: status == http.StatusOK, Data: resp})
}
