package domain

import (
	"github.com/allisson/securelink/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// Link keys must be exactly 32 bytes (256 bits) for both AES-256-GCM and
	// ChaCha20-Poly1305.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates an envelope failed to decrypt.
	//
	// This error can occur due to:
	//   - Wrong decryption key used
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Invalid nonce provided
	//   - Corrupted encrypted data
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")

	// ErrLinkKeysNotSet indicates the LINK_KEYS environment variable is not configured.
	ErrLinkKeysNotSet = errors.New("LINK_KEYS environment variable not set")

	// ErrActiveLinkKeyIDNotSet indicates the ACTIVE_LINK_KEY_ID environment variable is not configured.
	ErrActiveLinkKeyIDNotSet = errors.New("ACTIVE_LINK_KEY_ID environment variable not set")

	// ErrInvalidLinkKeysFormat indicates a LINK_KEYS entry is not in "id:base64key" format.
	ErrInvalidLinkKeysFormat = errors.New("invalid LINK_KEYS format, expected \"id:base64key\"")

	// ErrInvalidLinkKeyBase64 indicates a link key is not valid base64.
	ErrInvalidLinkKeyBase64 = errors.New("invalid base64 in link key")

	// ErrActiveLinkKeyNotFound indicates the active key ID does not exist in the keychain.
	ErrActiveLinkKeyNotFound = errors.New("active link key not found in keychain")

	// ErrLinkKeyNotFound indicates a record references a key ID that is not in
	// the keychain, typically a key that was removed from LINK_KEYS while
	// records sealed with it were still live.
	ErrLinkKeyNotFound = errors.New("link key not found in keychain")
)
