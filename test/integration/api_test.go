// Package integration provides end-to-end integration tests for the link API.
// Tests drive the full router, use case, crypto, and Redis stack over HTTP.
package integration

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/securelink/internal/app"
	"github.com/allisson/securelink/internal/config"
	linksDTO "github.com/allisson/securelink/internal/links/http/dto"
	"github.com/allisson/securelink/internal/testutil"
)

// testIdentityToken is the opaque identity token embedded in generated links.
const testIdentityToken = "integration-test-identity-token"

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	redis     *goredis.Client
	server    *httptest.Server
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	useAuth bool,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if useAuth {
		req.Header.Set("Authorization", "Bearer "+testIdentityToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// generateLink creates a link over the API and returns its code.
func (ctx *integrationTestContext) generateLink(
	t *testing.T,
	data map[string]any,
	oneTimeUse bool,
	ttlSeconds int,
) string {
	t.Helper()

	requestBody := linksDTO.GenerateLinkRequest{
		Data:       data,
		OneTimeUse: oneTimeUse,
		TTLSeconds: ttlSeconds,
	}

	resp, body := ctx.makeRequest(t, http.MethodPost, "/api/v1/links", requestBody, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "generate failed: %s", body)

	var response linksDTO.LinkResponse
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotEmpty(t, response.Code)

	return response.Code
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Setup Redis test database
	redisClient := testutil.SetupRedis(t)

	// Generate an ephemeral link key for this test run
	linkKey := make([]byte, 32)
	_, err := rand.Read(linkKey)
	require.NoError(t, err, "failed to generate link key")

	t.Setenv("LINK_KEYS", fmt.Sprintf("test-key-1:%s", base64.StdEncoding.EncodeToString(linkKey)))
	t.Setenv("ACTIVE_LINK_KEY_ID", "test-key-1")

	// Create configuration pointing at the test Redis database
	cfg := &config.Config{
		ServerHost:          "localhost",
		ServerPort:          8080,
		RedisAddr:           testutil.GetRedisTestAddr(),
		RedisDB:             15,
		RedisPoolSize:       10,
		RedisDialTimeout:    5 * time.Second,
		LinkExpiration:      time.Hour,
		LinkCodeLength:      6,
		LinkMaxCodeAttempts: 10,
		LinkKeyAlgorithm:    "aes-gcm",
		LogLevel:            "error",
	}

	// Create DI container
	container := app.NewContainer(cfg)

	// Setup HTTP server; SetupRouter has already been called by container.HTTPServer()
	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")

	testServer := httptest.NewServer(handler)

	return &integrationTestContext{
		container: container,
		redis:     redisClient,
		server:    testServer,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(t.Context()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}
}

// TestIntegration_Health_BasicChecks validates infrastructure health and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	// [1/2] Test GET /health - Health check endpoint
	t.Run("01_HealthCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response map[string]string
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "healthy", response["status"])
	})

	// [2/2] Test GET /ready - Readiness check endpoint
	t.Run("02_ReadinessCheck", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/ready", nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response map[string]any
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "ready", response["status"])

		components, ok := response["components"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ok", components["redis"])
	})
}

// TestIntegration_Links_CompleteFlow tests the reusable link lifecycle:
// generate, repeated validation, revocation, and post-revocation behavior.
func TestIntegration_Links_CompleteFlow(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	var (
		linkCode string
		linkData = map[string]any{"action": "password-reset", "user_id": "12345"}
	)

	// [1/5] Test POST /api/v1/links - Generate link
	t.Run("01_GenerateLink", func(t *testing.T) {
		requestBody := linksDTO.GenerateLinkRequest{
			Data:       linkData,
			OneTimeUse: false,
			TTLSeconds: 3600,
		}

		resp, body := ctx.makeRequest(t, http.MethodPost, "/api/v1/links", requestBody, true)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var response linksDTO.LinkResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.NotEmpty(t, response.Code)
		assert.Len(t, response.Code, 6)
		assert.False(t, response.CreatedAt.IsZero())
		assert.WithinDuration(t, response.CreatedAt.Add(time.Hour), response.ExpiresAt, 2*time.Second)

		linkCode = response.Code
	})

	// [2/5] Test GET /api/v1/links/:code - Validate link
	t.Run("02_ValidateLink", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+linkCode, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.True(t, response.Valid)
		assert.Empty(t, response.Reason)
		assert.Equal(t, testIdentityToken, response.Token)
		assert.Equal(t, linkData, response.Data)
		require.NotNil(t, response.CreatedAt)
	})

	// [3/5] Test GET /api/v1/links/:code - Reusable links validate repeatedly
	t.Run("03_ValidateLinkAgain", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+linkCode, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.True(t, response.Valid)
	})

	// [4/5] Test DELETE /api/v1/links/:code - Revoke link
	t.Run("04_RevokeLink", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodDelete, "/api/v1/links/"+linkCode, nil, false)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, body)
	})

	// [5/5] Test GET /api/v1/links/:code - Revoked links look like absent links
	t.Run("05_ValidateAfterRevoke", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+linkCode, nil, false)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.False(t, response.Valid)
		assert.Equal(t, "NOT_FOUND_OR_EXPIRED", response.Reason)
		assert.Empty(t, response.Token)
	})
}

// TestIntegration_Links_OneTimeUse tests that one-time links validate exactly once.
func TestIntegration_Links_OneTimeUse(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	code := ctx.generateLink(t, map[string]any{"action": "email-verify"}, true, 3600)

	// [1/2] First validation succeeds and consumes the link
	t.Run("01_FirstValidation", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+code, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.True(t, response.Valid)
		assert.Equal(t, testIdentityToken, response.Token)
	})

	// [2/2] Second validation finds nothing, indistinguishable from expiry
	t.Run("02_SecondValidation", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+code, nil, false)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.False(t, response.Valid)
		assert.Equal(t, "NOT_FOUND_OR_EXPIRED", response.Reason)
	})
}

// TestIntegration_Links_Expiry tests that expired links stop validating.
func TestIntegration_Links_Expiry(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	code := ctx.generateLink(t, map[string]any{"action": "short-lived"}, false, 1)

	// [1/2] Validates while still live
	t.Run("01_ValidateBeforeExpiry", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+code, nil, false)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	// [2/2] Stops validating once the TTL elapses
	t.Run("02_ValidateAfterExpiry", func(t *testing.T) {
		time.Sleep(1200 * time.Millisecond)

		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+code, nil, false)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.False(t, response.Valid)
		assert.Equal(t, "NOT_FOUND_OR_EXPIRED", response.Reason)
	})
}

// TestIntegration_Links_TamperedEnvelope tests that corrupting the stored
// envelope surfaces as an integrity failure, not as a missing link.
func TestIntegration_Links_TamperedEnvelope(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	code := ctx.generateLink(t, map[string]any{"action": "tamper-target"}, false, 3600)

	// Corrupt one byte of the stored envelope directly in Redis
	raw, err := ctx.redis.Get(t.Context(), "link:"+code).Bytes()
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(raw, &record))

	envelope, err := base64.StdEncoding.DecodeString(record["envelope"].(string))
	require.NoError(t, err)
	envelope[0] ^= 0xFF
	record["envelope"] = base64.StdEncoding.EncodeToString(envelope)

	tampered, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, ctx.redis.Set(t.Context(), "link:"+code, tampered, time.Hour).Err())

	resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/"+code, nil, false)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var response linksDTO.ValidationResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.False(t, response.Valid)
	assert.Equal(t, "INTEGRITY_FAILURE", response.Reason)
	assert.Empty(t, response.Token)
}

// TestIntegration_Links_RequestValidation tests input validation and auth errors.
func TestIntegration_Links_RequestValidation(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	// [1/5] Generate without an identity token
	t.Run("01_GenerateWithoutAuth", func(t *testing.T) {
		requestBody := linksDTO.GenerateLinkRequest{TTLSeconds: 60}
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/v1/links", requestBody, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	// [2/5] Generate with a negative TTL
	t.Run("02_GenerateNegativeTTL", func(t *testing.T) {
		requestBody := linksDTO.GenerateLinkRequest{TTLSeconds: -1}
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/api/v1/links", requestBody, true)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	// [3/5] Validate a code that never existed
	t.Run("03_ValidateUnknownCode", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/zzzzzz", nil, false)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var response linksDTO.ValidationResponse
		require.NoError(t, json.Unmarshal(body, &response))
		assert.Equal(t, "NOT_FOUND_OR_EXPIRED", response.Reason)
	})

	// [4/5] Validate a code with characters outside the generator alphabet
	t.Run("04_ValidateMalformedCode", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/api/v1/links/bad--code", nil, false)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	// [5/5] Revoke is idempotent even for unknown codes
	t.Run("05_RevokeUnknownCode", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodDelete, "/api/v1/links/zzzzzz", nil, false)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

// TestIntegration_Links_ConcurrentOneTimeUse tests that racing validations of
// a one-time link admit exactly one winner.
func TestIntegration_Links_ConcurrentOneTimeUse(t *testing.T) {
	// Skip if short mode (integration tests can be slow)
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := setupIntegrationTest(t)
	defer teardownIntegrationTest(t, ctx)

	code := ctx.generateLink(t, map[string]any{"action": "race"}, true, 3600)

	const workers = 8
	var winners atomic.Int32
	var group errgroup.Group
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			req, err := http.NewRequest(http.MethodGet, ctx.server.URL+"/api/v1/links/"+code, nil)
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: 10 * time.Second}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				winners.Add(1)
				return nil
			case http.StatusNotFound:
				// losers see the merged not-found outcome
				return nil
			default:
				return fmt.Errorf("unexpected status %d during concurrent validation", resp.StatusCode)
			}
		})
	}

	require.NoError(t, group.Wait())
	assert.Equal(t, int32(1), winners.Load(), "exactly one validation should win")
}
