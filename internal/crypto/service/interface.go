// Package service provides the AEAD ciphers used to seal and open link
// envelopes (AES-256-GCM, ChaCha20-Poly1305).
package service

import (
	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
//
// Implementations are stateless and safe for concurrent use; every Encrypt
// call draws a fresh random nonce, so sealing the same plaintext twice yields
// different outputs.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD. It fails
	// deterministically if any byte of ciphertext, nonce, or AAD was altered.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}
