package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"sync"
)

// LinkKey represents a symmetric key used to seal link envelopes.
//
// Keys are provisioned once at process startup and never rotated at runtime.
// Because every stored record carries the ID of the key that sealed it, a
// restart with an extended keychain keeps previously issued links readable.
//
// Security considerations:
//   - Link keys must be 32 bytes (256 bits)
//   - Keys should be generated using cryptographically secure random generators
//   - In production, keys can be provisioned KMS-wrapped (see KMSKeeper)
//
// Fields:
//   - ID: Unique identifier for the key (e.g., "prod-link-key-2026")
//   - Key: The raw 32-byte key material
type LinkKey struct {
	ID  string
	Key []byte
}

// LinkKeyChain manages a collection of link keys with one designated as active.
//
// The active key seals every new envelope. Older keys remain available so that
// records sealed before a configuration change still decrypt; a record names
// the key that sealed it via its key ID.
//
// Thread safety: the keychain uses sync.Map internally; all lookups after
// initialization are read-only shared state and need no locking.
type LinkKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveKeyID returns the ID of the key used to seal new envelopes.
// This corresponds to the ACTIVE_LINK_KEY_ID environment variable.
func (c *LinkKeyChain) ActiveKeyID() string {
	return c.activeID
}

// Active returns the key used to seal new envelopes.
func (c *LinkKeyChain) Active() (*LinkKey, bool) {
	return c.Get(c.activeID)
}

// Get retrieves a link key from the keychain by its ID.
//
// Used during validation to obtain the key a stored record was sealed with.
// Returns the key and a boolean indicating whether it was found.
func (c *LinkKeyChain) Get(id string) (*LinkKey, bool) {
	if key, ok := c.keys.Load(id); ok {
		return key.(*LinkKey), ok
	}

	return nil, false
}

// Close securely clears all link keys from memory and resets the keychain.
//
// Call this during application shutdown or when a partially loaded keychain
// must be discarded. Key bytes are zeroed before the entries are dropped.
func (c *LinkKeyChain) Close() {
	c.keys.Range(func(_, value any) bool {
		Zero(value.(*LinkKey).Key)
		return true
	})
	c.activeID = ""
	c.keys.Clear()
}

// NewLinkKeyChain creates a new LinkKeyChain with the first key as active.
func NewLinkKeyChain(keys []*LinkKey) *LinkKeyChain {
	chain := &LinkKeyChain{
		activeID: keys[0].ID,
	}

	for _, key := range keys {
		chain.keys.Store(key.ID, key)
	}

	return chain
}

// KeyUnwrapper decrypts KMS-wrapped key material. *secrets.Keeper from
// gocloud.dev satisfies this interface.
type KeyUnwrapper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// LoadLinkKeyChainFromEnv loads link keys from environment variables.
//
// This function reads key configuration from two environment variables:
//   - LINK_KEYS: Comma-separated list of key entries in format "id:base64key"
//   - ACTIVE_LINK_KEY_ID: ID of the key used to seal new envelopes
//
// Format example:
//
//	LINK_KEYS="key1:YWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXoxMjM0NTY3OA==,key2:MTIzNDU2Nzg5MGFiY2RlZmdoaWprbG1ub3BxcnN0dXZ3eA=="
//	ACTIVE_LINK_KEY_ID="key2"
//
// When unwrap is non-nil, each base64-decoded entry is treated as
// KMS-wrapped ciphertext and decrypted through it before use; otherwise the
// decoded bytes are the raw key material. Either way each resulting key must
// be exactly 32 bytes.
//
// On any error the partially built keychain is closed so no key material
// survives a failed initialization.
func LoadLinkKeyChainFromEnv(ctx context.Context, unwrap KeyUnwrapper) (*LinkKeyChain, error) {
	raw := os.Getenv("LINK_KEYS")
	if raw == "" {
		return nil, ErrLinkKeysNotSet
	}

	active := os.Getenv("ACTIVE_LINK_KEY_ID")
	if active == "" {
		return nil, ErrActiveLinkKeyIDNotSet
	}

	chain := &LinkKeyChain{activeID: active}

	parts := strings.SplitSeq(raw, ",")
	for part := range parts {
		p := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(p) != 2 {
			chain.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidLinkKeysFormat, part)
		}
		id := p[0]
		key, err := base64.StdEncoding.DecodeString(p[1])
		if err != nil {
			chain.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidLinkKeyBase64, id, err)
		}
		if unwrap != nil {
			unwrapped, err := unwrap.Decrypt(ctx, key)
			if err != nil {
				Zero(key)
				chain.Close()
				return nil, fmt.Errorf("failed to unwrap link key %s: %w", id, err)
			}
			Zero(key)
			key = unwrapped
		}
		if len(key) != 32 {
			Zero(key)
			chain.Close()
			return nil, fmt.Errorf(
				"%w: link key %s must be 32 bytes, got %d",
				ErrInvalidKeySize,
				id,
				len(key),
			)
		}
		chain.keys.Store(id, &LinkKey{ID: id, Key: key})
	}

	if _, ok := chain.Get(active); !ok {
		chain.Close()
		return nil, fmt.Errorf("%w: ACTIVE_LINK_KEY_ID=%s", ErrActiveLinkKeyNotFound, active)
	}

	return chain, nil
}
