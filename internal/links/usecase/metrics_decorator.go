package usecase

import (
	"context"
	"time"

	linksDomain "github.com/allisson/securelink/internal/links/domain"
	"github.com/allisson/securelink/internal/metrics"
)

// linkUseCaseWithMetrics decorates LinkUseCase with metrics instrumentation.
type linkUseCaseWithMetrics struct {
	next    LinkUseCase
	metrics metrics.BusinessMetrics
}

// NewLinkUseCaseWithMetrics wraps a LinkUseCase with metrics recording.
func NewLinkUseCaseWithMetrics(useCase LinkUseCase, m metrics.BusinessMetrics) LinkUseCase {
	return &linkUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Generate records metrics for link generation operations.
func (l *linkUseCaseWithMetrics) Generate(
	ctx context.Context,
	input *GenerateInput,
) (*linksDomain.LinkSummary, error) {
	start := time.Now()
	summary, err := l.next.Generate(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "links", "link_generate", status)
	l.metrics.RecordDuration(ctx, "links", "link_generate", time.Since(start), status)

	return summary, err
}

// Validate records metrics for link validation operations, including the
// per-reason outcome counter for invalid results.
func (l *linkUseCaseWithMetrics) Validate(
	ctx context.Context,
	code string,
) (*linksDomain.ValidationResult, error) {
	start := time.Now()
	result, err := l.next.Validate(ctx, code)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "links", "link_validate", status)
	l.metrics.RecordDuration(ctx, "links", "link_validate", time.Since(start), status)

	if err == nil {
		outcome := "valid"
		if !result.Valid {
			outcome = string(result.Reason)
		}
		l.metrics.RecordValidationOutcome(ctx, outcome)
	}

	return result, err
}

// Revoke records metrics for link revocation operations.
func (l *linkUseCaseWithMetrics) Revoke(ctx context.Context, code string) error {
	start := time.Now()
	err := l.next.Revoke(ctx, code)

	status := "success"
	if err != nil {
		status = "error"
	}

	l.metrics.RecordOperation(ctx, "links", "link_revoke", status)
	l.metrics.RecordDuration(ctx, "links", "link_revoke", time.Since(start), status)

	return err
}
