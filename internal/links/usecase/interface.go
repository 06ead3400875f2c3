// Package usecase implements the link engine: orchestration of encryption,
// code generation, and time-boxed persistence for link issuance and
// validation.
package usecase

import (
	"context"
	"time"

	linksDomain "github.com/allisson/securelink/internal/links/domain"
)

// LinkRepository defines the interface for link record persistence operations.
//
// The store is the single source of truth for concurrency control on a given
// code: Create must be create-if-absent and Consume must be an atomic
// get-and-delete. TTL expiry is enforced by the store itself; the engine never
// runs a background sweep.
type LinkRepository interface {
	Create(ctx context.Context, record *linksDomain.LinkRecord, ttl time.Duration) error
	Get(ctx context.Context, code string) (*linksDomain.LinkRecord, error)
	Consume(ctx context.Context, code string) (*linksDomain.LinkRecord, error)
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

// GenerateInput carries the caller-supplied parameters of a Generate call.
// TTL of zero means the configured default expiration.
type GenerateInput struct {
	Token      string
	Data       map[string]any
	OneTimeUse bool
	TTL        time.Duration
}

// LinkUseCase defines the interface for link issuance and validation.
type LinkUseCase interface {
	// Generate encrypts the payload, secures a unique short code, and persists
	// the record with a TTL. No code is returned unless persistence confirmed.
	Generate(ctx context.Context, input *GenerateInput) (*linksDomain.LinkSummary, error)

	// Validate looks up a short code and returns a structured result. All
	// validation failures are recoverable-by-design results, never faults;
	// only transient store failures surface as errors.
	Validate(ctx context.Context, code string) (*linksDomain.ValidationResult, error)

	// Revoke deletes a link immediately. Revoking an absent code succeeds;
	// deletion is idempotent and unobservable to probing clients.
	Revoke(ctx context.Context, code string) error
}
