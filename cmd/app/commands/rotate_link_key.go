package commands

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	cryptoDomain "github.com/allisson/securelink/internal/crypto/domain"
	cryptoService "github.com/allisson/securelink/internal/crypto/service"
)

// RunRotateLinkKey generates a new link key and combines it with the existing
// LINK_KEYS value so old envelopes remain decryptable while new envelopes are
// sealed with the fresh key.
func RunRotateLinkKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsKeyURI, existingLinkKeys, existingActiveKeyID string,
) error {
	// Validate existing configuration
	if existingLinkKeys == "" {
		return fmt.Errorf("LINK_KEYS is not set - cannot rotate without existing keys")
	}
	if existingActiveKeyID == "" {
		return fmt.Errorf("ACTIVE_LINK_KEY_ID is not set")
	}

	// Generate default key ID if not provided
	if keyID == "" {
		keyID = fmt.Sprintf("link-key-%s", time.Now().Format("2006-01-02"))
	}

	// Reject duplicate key IDs since the keychain indexes keys by ID
	for entry := range strings.SplitSeq(existingLinkKeys, ",") {
		if id, _, found := strings.Cut(strings.TrimSpace(entry), ":"); found && id == keyID {
			return fmt.Errorf("key ID %q already exists in LINK_KEYS, choose a different --id", keyID)
		}
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

	newLinkKeys := fmt.Sprintf("%s,%s:%s", existingLinkKeys, keyID, encodedKey)

	_, _ = fmt.Fprintln(writer, "# Link Key Rotation")
	_, _ = fmt.Fprintln(writer, "# Update these environment variables in your .env file or secrets manager")
	_, _ = fmt.Fprintf(writer, "# Previous active key: %s\n", existingActiveKeyID)
	_, _ = fmt.Fprintln(writer)
	if kmsKeyURI != "" {
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	}
	_, _ = fmt.Fprintf(writer, "LINK_KEYS=\"%s\"\n", newLinkKeys)
	_, _ = fmt.Fprintf(writer, "ACTIVE_LINK_KEY_ID=\"%s\"\n", keyID)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Old keys can be removed once all links sealed with them have expired")

	logger.Info(
		"link key rotated",
		slog.String("new_key_id", keyID),
		slog.String("previous_key_id", existingActiveKeyID),
	)

	return nil
}
