package handler

import (
	"strings"

	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uuidParam parses a path parameter as a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewValidationError(name, "Invalid UUID: "+raw)
	}
	return id, nil
}

// idempotencyKey returns the trimmed Idempotency-Key header, if any
func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))
}

// kebab turns an operation name into its URL segment, start_processing -> start-processing
func kebab(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
