package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
	cryptoService "github.com/allisson/securelink/internal/crypto/service"
)

// RunCreateLinkKey generates a cryptographically secure 32-byte link key used
// to seal link envelopes. If keyID is empty, a default ID in the format
// "link-key-YYYY-MM-DD" is generated.
//
// When kmsKeyURI is set, the key material is encrypted with KMS before output
// and LINK_KEYS holds the wrapped ciphertext. When empty, the key is emitted
// as plain base64; acceptable for development, but production deployments
// should wrap keys with a cloud KMS provider.
//
// Output format:
//   - LINK_KEYS="<keyID>:<base64-encoded-key-or-ciphertext>"
//   - ACTIVE_LINK_KEY_ID="<keyID>"
//   - KMS_KEY_URI="<uri>" (KMS mode only)
func RunCreateLinkKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsKeyURI string,
) error {
	// Generate default key ID if not provided
	if keyID == "" {
		keyID = fmt.Sprintf("link-key-%s", time.Now().Format("2006-01-02"))
	}

	// Generate a cryptographically secure 32-byte link key
	linkKey := make([]byte, 32)
	if _, err := rand.Read(linkKey); err != nil {
		return fmt.Errorf("failed to generate link key: %w", err)
	}
	defer cryptoDomain.Zero(linkKey)

	encodedKey, err := encodeLinkKey(ctx, kmsService, writer, linkKey, kmsKeyURI)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(writer, "# Link Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "LINK_KEYS=\"%s:%s\"\n", keyID, encodedKey)
	_, _ = fmt.Fprintf(writer, "ACTIVE_LINK_KEY_ID=\"%s\"\n", keyID)

	logger.Info("link key generated", slog.String("key_id", keyID), slog.Bool("kms_wrapped", kmsKeyURI != ""))

	return nil
}

// encodeLinkKey encodes the raw key material for the LINK_KEYS variable,
// wrapping it through KMS first when a key URI is configured.
func encodeLinkKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	linkKey []byte,
	kmsKeyURI string,
) (string, error) {
	if kmsKeyURI == "" {
		return base64.StdEncoding.EncodeToString(linkKey), nil
	}

	_, _ = fmt.Fprintln(writer, "# KMS Mode: Encrypting link key with KMS")
	_, _ = fmt.Fprintln(writer)

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(writer, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	ciphertext, err := keeper.Encrypt(ctx, linkKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt link key with KMS: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
