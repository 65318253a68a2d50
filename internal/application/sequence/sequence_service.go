package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/purchasing/internal/domain/sequence"
	"github.com/erp/purchasing/internal/domain/shared"
	"github.com/erp/purchasing/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultMaxBulk is the largest batch AllocateBulk accepts by default
	DefaultMaxBulk = 1000

	// HealthCheckPrefix is the prefix probed by HealthCheck
	HealthCheckPrefix = "_HEALTH_CHECK_"
)

// SequenceService issues and administers human readable identifiers
type SequenceService struct {
	repo    sequence.Repository
	logger  *zap.Logger
	metrics *telemetry.PurchasingMetrics
	maxBulk int
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(repo sequence.Repository, logger *zap.Logger) *SequenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SequenceService{
		repo:    repo,
		logger:  logger.Named("sequence"),
		maxBulk: DefaultMaxBulk,
	}
}

// SetMetrics sets the purchasing metrics collector
func (s *SequenceService) SetMetrics(m *telemetry.PurchasingMetrics) {
	s.metrics = m
}

// SetMaxBulk overrides the AllocateBulk upper bound
func (s *SequenceService) SetMaxBulk(n int) {
	if n > 0 {
		s.maxBulk = n
	}
}

// AllocateNext returns a new identifier for prefix, creating the sequence on first use
func (s *SequenceService) AllocateNext(ctx context.Context, prefix string) (string, error) {
	ids, err := s.allocate(ctx, prefix, 1)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AllocateBulk returns count contiguous identifiers in allocation order
func (s *SequenceService) AllocateBulk(ctx context.Context, prefix string, count int) ([]string, error) {
	if count <= 0 || count > s.maxBulk {
		return nil, shared.NewValidationError("count", fmt.Sprintf("count must be between 1 and %d", s.maxBulk))
	}
	return s.allocate(ctx, prefix, count)
}

func (s *SequenceService) allocate(ctx context.Context, rawPrefix string, count int) (_ []string, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sequence", "allocate",
		telemetry.WithAttribute(telemetry.SpanAttrCount, count))
	defer telemetry.EndSpan(span, &err)

	prefix, err := sequence.NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.SpanAttrPrefix, prefix))

	var (
		ids      []string
		healed   bool
		previous string
	)
	_, err = s.repo.Modify(ctx, prefix, true, func(seq *sequence.Sequence) error {
		previous = seq.LatestID
		var allocErr error
		ids, healed, allocErr = seq.Allocate(count)
		return allocErr
	})
	if err != nil {
		return nil, err
	}

	if healed {
		s.logger.Warn("Sequence state was corrupted and has been reset",
			zap.String("prefix", prefix),
			zap.String("previous_latest_id", previous),
			zap.String("issued_id", ids[0]))
		if s.metrics != nil {
			s.metrics.RecordSequenceSelfHeal(ctx, prefix)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSequenceAllocation(ctx, prefix, count)
	}
	return ids, nil
}

// Current returns the latest identifier without allocating
func (s *SequenceService) Current(ctx context.Context, rawPrefix string) (*SequenceResponse, error) {
	prefix, err := sequence.NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	seq, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, s.notFound(err, prefix)
	}
	resp := ToSequenceResponse(seq)
	return &resp, nil
}

// Reset rewinds an existing sequence
func (s *SequenceService) Reset(ctx context.Context, rawPrefix, resetTo string) (*SequenceResponse, error) {
	prefix, err := sequence.NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	seq, err := s.repo.Modify(ctx, prefix, false, func(seq *sequence.Sequence) error {
		return seq.Reset(resetTo)
	})
	if err != nil {
		return nil, s.notFound(err, prefix)
	}
	s.logger.Info("Sequence reset", zap.String("prefix", prefix), zap.String("latest_id", seq.LatestID))
	resp := ToSequenceResponse(seq)
	return &resp, nil
}

// SetActive activates or deactivates an existing sequence
func (s *SequenceService) SetActive(ctx context.Context, rawPrefix string, active bool) (*SequenceResponse, error) {
	prefix, err := sequence.NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	seq, err := s.repo.Modify(ctx, prefix, false, func(seq *sequence.Sequence) error {
		seq.SetActive(active)
		return nil
	})
	if err != nil {
		return nil, s.notFound(err, prefix)
	}
	resp := ToSequenceResponse(seq)
	return &resp, nil
}

// ListPrefixes lists sequences ordered by prefix
func (s *SequenceService) ListPrefixes(ctx context.Context, filter SequenceListFilter) ([]SequenceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "prefix", OrderDir: "asc"}
	seqs, err := s.repo.FindAll(ctx, f, filter.ActiveOnly)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter.ActiveOnly)
	if err != nil {
		return nil, 0, err
	}

	out := make([]SequenceResponse, len(seqs))
	for i := range seqs {
		out[i] = ToSequenceResponse(&seqs[i])
	}
	return out, total, nil
}

// Stats describes a prefix; an unknown prefix reports exists=false
func (s *SequenceService) Stats(ctx context.Context, rawPrefix string) (*StatsResponse, error) {
	prefix, err := sequence.NormalizePrefix(rawPrefix)
	if err != nil {
		return nil, err
	}
	seq, err := s.repo.FindByPrefix(ctx, prefix)
	if errors.Is(err, shared.ErrNotFound) {
		return &StatsResponse{Prefix: prefix}, nil
	}
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		Prefix:    seq.Prefix,
		Exists:    true,
		LatestID:  seq.LatestID,
		IsActive:  seq.IsActive,
		CreatedAt: &seq.CreatedAt,
		UpdatedAt: &seq.UpdatedAt,
	}, nil
}

// HealthCheck allocates one identifier on a dedicated prefix that stays deactivated between probes
func (s *SequenceService) HealthCheck(ctx context.Context) HealthResponse {
	resp := HealthResponse{Timestamp: time.Now()}

	var testID string
	_, err := s.repo.Modify(ctx, HealthCheckPrefix, true, func(seq *sequence.Sequence) error {
		seq.Activate()
		ids, _, err := seq.Allocate(1)
		seq.Deactivate()
		if err != nil {
			return err
		}
		testID = ids[0]
		return nil
	})
	if err != nil {
		s.logger.Error("Sequence health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Message = "failed to allocate test identifier: " + err.Error()
		return resp
	}

	count, err := s.repo.Count(ctx, true)
	if err != nil {
		resp.Status = "unhealthy"
		resp.Message = "failed to count sequences: " + err.Error()
		return resp
	}

	resp.Status = "healthy"
	resp.Message = "sequence allocator is operational"
	resp.PrefixCount = count
	resp.TestIDGenerated = testID
	return resp
}

func (s *SequenceService) notFound(err error, prefix string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Sequence", prefix)
	}
	return err
}
