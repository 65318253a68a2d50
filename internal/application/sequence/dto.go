package sequence

import (
	"time"

	"github.com/erp/purchasing/internal/domain/sequence"
)

// SequenceResponse represents a sequence in API responses
type SequenceResponse struct {
	Prefix    string    `json:"prefix"`
	LatestID  string    `json:"latest_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToSequenceResponse converts a domain Sequence to a response
func ToSequenceResponse(seq *sequence.Sequence) SequenceResponse {
	return SequenceResponse{
		Prefix:    seq.Prefix,
		LatestID:  seq.LatestID,
		IsActive:  seq.IsActive,
		CreatedAt: seq.CreatedAt,
		UpdatedAt: seq.UpdatedAt,
	}
}

// SequenceListFilter represents filter options for the prefix listing
type SequenceListFilter struct {
	Page       int  `form:"page" binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	ActiveOnly bool `form:"active_only"`
}

// BulkAllocateRequest requests several identifiers at once
type BulkAllocateRequest struct {
	Count int `json:"count" binding:"required,min=1"`
}

// ResetRequest rewinds a sequence; an empty ResetTo restores the initial id
type ResetRequest struct {
	ResetTo string `json:"reset_to"`
}

// AllocationResponse carries freshly allocated identifiers
type AllocationResponse struct {
	Prefix string   `json:"prefix"`
	IDs    []string `json:"ids"`
}

// StatsResponse describes a prefix, including one that does not exist yet
type StatsResponse struct {
	Prefix    string     `json:"prefix"`
	Exists    bool       `json:"exists"`
	LatestID  string     `json:"latest_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HealthResponse reports whether the allocator can issue identifiers
type HealthResponse struct {
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	PrefixCount     int64     `json:"prefix_count"`
	TestIDGenerated string    `json:"test_id_generated,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
