package handler

import (
	"github.com/erp/purchasing/internal/domain/trade"
	"github.com/erp/purchasing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the sequence endpoints under /sequences
func (h *SequenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/sequences").
		GET("", h.List).
		GET("/health", h.Health).
		GET("/:prefix", h.Get).
		GET("/:prefix/stats", h.Stats).
		POST("/:prefix/next", h.Next).
		POST("/:prefix/bulk", h.Bulk).
		POST("/:prefix/reset", h.Reset).
		POST("/:prefix/activate", h.Activate).
		POST("/:prefix/deactivate", h.Deactivate).
		RegisterRoutes(rg)
}

// RegisterRoutes mounts the transaction endpoints under /purchase-transactions.
// Lifecycle operations are exposed as POST /:id/{operation} in kebab case.
func (h *PurchaseTransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := router.NewDomainGroup("/purchase-transactions").
		POST("", h.Create).
		POST("/with-items", h.CreateWithItems).
		GET("", h.List).
		GET("/search", h.Search).
		GET("/statistics", h.Statistics).
		GET("/code/:transaction_id", h.GetByTransactionID).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
	for _, op := range trade.AllOperations {
		g.POST("/:id/"+kebab(op.String()), h.Transition(op))
	}
	g.RegisterRoutes(rg)
}

// RegisterRoutes mounts item endpoints both nested under their transaction and under /purchase-items
func (h *PurchaseTransactionItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/purchase-transactions/:id/items").
		POST("", h.Create).
		POST("/bulk", h.CreateBulk).
		GET("", h.ListByTransaction).
		GET("/summary", h.Summary).
		RegisterRoutes(rg)

	router.NewDomainGroup("/purchase-items").
		GET("/warranty", h.ListWithWarranty).
		GET("/serial/:serial", h.GetBySerialNumber).
		GET("/:item_id", h.Get).
		PUT("/:item_id", h.Update).
		DELETE("/:item_id", h.Delete).
		RegisterRoutes(rg)
}

// RegisterRoutes mounts /system/info under the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewDomainGroup("/system").
		GET("/info", h.GetSystemInfo).
		RegisterRoutes(rg)
}
