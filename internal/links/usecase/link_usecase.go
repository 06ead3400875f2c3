package usecase

import (
	"context"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
	cryptoService "github.com/allisson/securelink/internal/crypto/service"
	apperrors "github.com/allisson/securelink/internal/errors"
	linksDomain "github.com/allisson/securelink/internal/links/domain"
	linksService "github.com/allisson/securelink/internal/links/service"
)

// maxCreateAttempts bounds retries when a create-if-absent write loses the
// narrow race between the generator's exists check and Create.
const maxCreateAttempts = 3

// linkUseCase implements the LinkUseCase interface.
//
// The keychain is read-only shared state across all concurrent calls; the
// engine holds no other mutable process-wide state. The store is the only
// suspension point and the only arbiter of per-code concurrency.
type linkUseCase struct {
	linkRepo    LinkRepository
	codeGen     linksService.CodeGenerator
	keyChain    *cryptoDomain.LinkKeyChain
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
	defaultTTL  time.Duration
	logger      *slog.Logger
}

// NewLinkUseCase creates a new link use case instance with the provided dependencies.
func NewLinkUseCase(
	linkRepo LinkRepository,
	codeGen linksService.CodeGenerator,
	keyChain *cryptoDomain.LinkKeyChain,
	aeadManager cryptoService.AEADManager,
	algorithm cryptoDomain.Algorithm,
	defaultTTL time.Duration,
	logger *slog.Logger,
) LinkUseCase {
	return &linkUseCase{
		linkRepo:    linkRepo,
		codeGen:     codeGen,
		keyChain:    keyChain,
		aeadManager: aeadManager,
		algorithm:   algorithm,
		defaultTTL:  defaultTTL,
		logger:      logger,
	}
}

// Generate encrypts the payload, secures a unique short code, and persists the
// record with a TTL.
//
// Encryption and generation errors abort the call entirely: no code is
// returned and no record persisted unless the create-if-absent write
// confirmed. A Create that loses the collision race regenerates the code and
// retries a bounded number of times.
func (l *linkUseCase) Generate(
	ctx context.Context,
	input *GenerateInput,
) (*linksDomain.LinkSummary, error) {
	activeKey, found := l.keyChain.Active()
	if !found {
		return nil, cryptoDomain.ErrActiveLinkKeyNotFound
	}

	payload := &linksDomain.LinkPayload{
		Token: input.Token,
		Data:  input.Data,
	}
	plaintext, err := payload.Marshal()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize link payload")
	}

	cipher, err := l.aeadManager.CreateCipher(activeKey.Key, l.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = l.defaultTTL
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := l.codeGen.Generate(ctx, l.linkRepo.Exists)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		record := &linksDomain.LinkRecord{
			Code:       code,
			KeyID:      activeKey.ID,
			Algorithm:  l.algorithm,
			Ciphertext: ciphertext,
			Nonce:      nonce,
			OneTimeUse: input.OneTimeUse,
			CreatedAt:  now,
			ExpiresAt:  now.Add(ttl),
		}

		err = l.linkRepo.Create(ctx, record, ttl)
		if err == nil {
			return &linksDomain.LinkSummary{
				Code:      code,
				CreatedAt: record.CreatedAt,
				ExpiresAt: record.ExpiresAt,
			}, nil
		}
		if apperrors.Is(err, linksDomain.ErrCodeExists) {
			// Lost the exists/Create race; draw a fresh code.
			continue
		}
		return nil, err
	}

	return nil, apperrors.Wrapf(apperrors.ErrExhausted, "create collided %d times", maxCreateAttempts)
}

// Validate looks up a short code, decrypts its envelope, and applies the
// policy checks in order: presence, expiry, one-time consumption, integrity,
// payload shape.
//
// A one-time-use record is atomically consumed before any success is
// returned, so two racing validations of the same code cannot both succeed.
// Missing, expired, and consumed codes all yield the same merged reason.
func (l *linkUseCase) Validate(
	ctx context.Context,
	code string,
) (*linksDomain.ValidationResult, error) {
	record, err := l.linkRepo.Get(ctx, code)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return notFoundResult(), nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	if record.IsExpired(now) {
		// The store purges expired keys on its own; this is the defensive
		// re-check against lazy expiry or clock skew. Best-effort cleanup.
		if err := l.linkRepo.Delete(ctx, code); err != nil {
			l.logger.Warn("failed to delete expired link", "code", code, "error", err)
		}
		return notFoundResult(), nil
	}

	if record.OneTimeUse {
		// Claim the record atomically before returning anything. The loser
		// of a racing validation observes an absent key, which is exactly
		// the merged not-found reason.
		consumed, err := l.linkRepo.Consume(ctx, code)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return notFoundResult(), nil
			}
			return nil, err
		}
		record = consumed

		if record.IsExpired(time.Now().UTC()) {
			return notFoundResult(), nil
		}
	}

	key, found := l.keyChain.Get(record.KeyID)
	if !found {
		l.logger.Error("link record references unknown key", "code", code, "key_id", record.KeyID)
		return &linksDomain.ValidationResult{
			Valid:  false,
			Reason: linksDomain.ReasonIntegrityFailure,
		}, nil
	}

	cipher, err := l.aeadManager.CreateCipher(key.Key, record.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(record.Ciphertext, record.Nonce, nil)
	if err != nil {
		l.logger.Warn("link envelope failed authentication", "code", code)
		return &linksDomain.ValidationResult{
			Valid:  false,
			Reason: linksDomain.ReasonIntegrityFailure,
		}, nil
	}

	payload, err := linksDomain.UnmarshalLinkPayload(plaintext)
	if err != nil {
		// Only this engine writes records, so a payload that decrypts but
		// does not deserialize is an internal invariant violation.
		l.logger.Error("link payload failed to deserialize", "code", code, "error", err)
		return &linksDomain.ValidationResult{
			Valid:  false,
			Reason: linksDomain.ReasonMalformedPayload,
		}, nil
	}

	return &linksDomain.ValidationResult{
		Valid:     true,
		Payload:   payload,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Revoke deletes a link immediately. Absent codes are not an error.
func (l *linkUseCase) Revoke(ctx context.Context, code string) error {
	err := l.linkRepo.Delete(ctx, code)
	if err != nil && apperrors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

// notFoundResult is the merged negative result for missing, expired, and
// consumed codes.
func notFoundResult() *linksDomain.ValidationResult {
	return &linksDomain.ValidationResult{
		Valid:  false,
		Reason: linksDomain.ReasonNotFoundOrExpired,
	}
}
