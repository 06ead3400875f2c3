// Package service provides the short code generator for link issuance.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	apperrors "github.com/allisson/securelink/internal/errors"
)

// codeAlphabet is the URL-safe alphabet codes are drawn from: alphanumeric,
// case-sensitive, no padding or separator characters. 62^6 candidates at the
// default length make collisions negligible at realistic occupancy.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ExistsFunc reports whether a candidate code is already taken. The generator
// never touches the store directly; collision checking is injected by the
// caller.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator produces short, URL-safe, collision-checked identifiers.
type CodeGenerator interface {
	// Generate draws random candidates until one passes the exists check.
	// Fails with ErrExhausted once the bounded retries run out; that is a
	// safety valve against a pathological store state, not an expected path.
	Generate(ctx context.Context, exists ExistsFunc) (string, error)
}

type codeGenerator struct {
	length      int
	maxAttempts int
}

// NewCodeGenerator creates a generator producing codes of the given length
// with at most maxAttempts collision retries. Codes are drawn from [A-Za-z0-9]
// using crypto/rand; a predictable source would let an attacker enumerate
// live links. The length range matches what the API accepts as a code shape.
func NewCodeGenerator(length, maxAttempts int) (CodeGenerator, error) {
	if length < 6 {
		return nil, errors.New("length must be at least 6")
	}
	if length > 10 {
		return nil, errors.New("length must not exceed 10")
	}
	if maxAttempts < 1 {
		return nil, errors.New("maxAttempts must be at least 1")
	}

	return &codeGenerator{length: length, maxAttempts: maxAttempts}, nil
}

// Generate draws a candidate, asks the injected exists check, and retries on
// collision up to the configured bound.
func (g *codeGenerator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.randomCode()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", apperrors.ErrExhausted, g.maxAttempts)
}

// randomCode draws one candidate of the configured length from the alphabet.
func (g *codeGenerator) randomCode() (string, error) {
	code := make([]byte, g.length)
	charsLen := big.NewInt(int64(len(codeAlphabet)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}

	return string(code), nil
}
