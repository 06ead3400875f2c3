// Package domain defines the core domain models for short-lived secure links.
// A link stands in for an encrypted payload: the caller's identity token plus
// arbitrary action data, sealed into an envelope and persisted under a short
// code with an expiration.
package domain

import (
	"encoding/json"
	"time"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
)

// LinkPayload is the data a caller wants protected behind a short code.
//
// Token is an opaque caller identity token; it is stored and returned
// verbatim, never parsed or verified here. Data is an arbitrary mapping of
// string keys to JSON-compatible values describing the action the link
// authorizes.
type LinkPayload struct {
	Token string         `json:"token"`
	Data  map[string]any `json:"data"`
}

// Marshal serializes the payload to bytes for encryption.
func (p *LinkPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalLinkPayload deserializes decrypted payload bytes.
func UnmarshalLinkPayload(b []byte) (*LinkPayload, error) {
	var p LinkPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LinkRecord is the unit persisted under a short code.
//
// The envelope is self-describing: Ciphertext carries the AEAD authentication
// tag, Nonce the per-encryption random value, and KeyID/Algorithm name the key
// and cipher that sealed it. Altering any of these bytes makes decryption fail.
//
// The record is immutable after creation. A one-time-use record is never
// rewritten on consumption; it is atomically deleted by the store instead, so
// no consumed flag needs a stored representation.
type LinkRecord struct {
	// Code is the short public identifier the record is stored under.
	Code string `json:"code"`
	// KeyID names the link key that sealed the envelope.
	KeyID string `json:"key_id"`
	// Algorithm names the AEAD algorithm that sealed the envelope.
	Algorithm cryptoDomain.Algorithm `json:"algorithm"`
	// Ciphertext is the encrypted payload with authentication tag appended.
	Ciphertext []byte `json:"envelope"`
	// Nonce is the random value used during AEAD encryption.
	Nonce []byte `json:"nonce"`
	// OneTimeUse marks the record as single-validate.
	OneTimeUse bool `json:"one_time_use"`
	// CreatedAt is the UTC timestamp when the link was issued.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is CreatedAt plus the configured TTL.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the record has passed its expiration.
//
// The store purges expired keys on its own, but the engine re-checks
// defensively: a lazily expiring store or clock skew must not make an expired
// link validate.
func (r *LinkRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// LinkSummary is what Generate returns to the caller: the short code and its
// validity window. The payload itself is never echoed back.
type LinkSummary struct {
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidationReason classifies why a validation returned invalid.
type ValidationReason string

const (
	// ReasonNotFoundOrExpired covers never-existed, expired, deleted, and
	// already-consumed codes. The categories are merged on purpose so a
	// probing client cannot learn whether a code ever existed or was used.
	ReasonNotFoundOrExpired ValidationReason = "NOT_FOUND_OR_EXPIRED"

	// ReasonIntegrityFailure means the stored envelope failed authentication:
	// corruption or tampering rather than a normal miss.
	ReasonIntegrityFailure ValidationReason = "INTEGRITY_FAILURE"

	// ReasonMalformedPayload means the envelope decrypted but its contents
	// could not be deserialized. Indicates a bug or cross-version mismatch.
	ReasonMalformedPayload ValidationReason = "MALFORMED_PAYLOAD"
)

// ValidationResult is the structured outcome of validating a short code.
// Invalid outcomes carry a Reason; valid outcomes carry the original payload
// and issuance time.
type ValidationResult struct {
	Valid     bool
	Payload   *LinkPayload
	CreatedAt time.Time
	Reason    ValidationReason
}
