package domain

import "context"

// KMSKeeper abstracts a KMS-backed key wrapping service. *secrets.Keeper from
// gocloud.dev implements it.
//
// Keepers wrap and unwrap link key material so that raw keys never appear in
// the environment: LINK_KEYS entries hold KMS ciphertext and are unwrapped at
// startup.
type KMSKeeper interface {
	KeyUnwrapper

	// Encrypt wraps plaintext key material with the KMS key.
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)

	// Close releases resources held by the keeper.
	Close() error
}
