// Package http provides HTTP handlers for link issuance and validation.
// A link stands in for an encrypted payload and is addressed by its short code.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/securelink/internal/errors"
	"github.com/allisson/securelink/internal/httputil"
	linksDomain "github.com/allisson/securelink/internal/links/domain"
	"github.com/allisson/securelink/internal/links/http/dto"
	linksUseCase "github.com/allisson/securelink/internal/links/usecase"
	customValidation "github.com/allisson/securelink/internal/validation"
)

// LinkHandler handles HTTP requests for link operations.
type LinkHandler struct {
	linkUseCase linksUseCase.LinkUseCase
	logger      *slog.Logger
}

// NewLinkHandler creates a new link handler with required dependencies.
func NewLinkHandler(linkUseCase linksUseCase.LinkUseCase, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		linkUseCase: linkUseCase,
		logger:      logger,
	}
}

// GenerateHandler issues a new link for the caller's token and action data.
// POST /api/v1/links - the identity token comes from the Authorization header.
// Returns 201 Created with the short code and its validity window.
func (h *LinkHandler) GenerateHandler(c *gin.Context) {
	token, err := bearerToken(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.GenerateLinkRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	summary, err := h.linkUseCase.Generate(c.Request.Context(), &linksUseCase.GenerateInput{
		Token:      token,
		Data:       req.Data,
		OneTimeUse: req.OneTimeUse,
		TTL:        time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSummaryToResponse(summary))
}

// ValidateHandler resolves a short code into its decrypted payload.
// GET /api/v1/links/:code
// Returns 200 OK with the payload when valid, 404 for missing/expired/consumed
// codes, and 422 when the stored envelope is corrupt.
func (h *LinkHandler) ValidateHandler(c *gin.Context) {
	code, err := codeParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.linkUseCase.Validate(c.Request.Context(), code)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(validationStatus(result), dto.MapResultToResponse(result))
}

// RevokeHandler deletes a link immediately.
// DELETE /api/v1/links/:code
// Returns 204 No Content whether or not the code existed, so a probing client
// learns nothing from revoking.
func (h *LinkHandler) RevokeHandler(c *gin.Context) {
	code, err := codeParam(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.linkUseCase.Revoke(c.Request.Context(), code); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// bearerToken extracts the caller's opaque identity token from the
// Authorization header. The token is never parsed or verified here.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "missing Authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", apperrors.Wrap(apperrors.ErrUnauthorized, "Authorization header must use the Bearer scheme")
	}

	return token, nil
}

// codeParam extracts and validates the :code URL parameter. Codes with
// characters outside the generation alphabet are rejected before touching the
// store.
func codeParam(c *gin.Context) (string, error) {
	code := c.Param("code")
	if err := validation.Validate(code, validation.Required, customValidation.LinkCode); err != nil {
		return "", customValidation.WrapValidationError(fmt.Errorf("code: %w", err))
	}
	return code, nil
}

// validationStatus maps a validation result to its HTTP status code. The
// merged not-found reason stays indistinguishable from a code that never
// existed; envelope corruption is surfaced separately.
func validationStatus(result *linksDomain.ValidationResult) int {
	if result.Valid {
		return http.StatusOK
	}

	switch result.Reason {
	case linksDomain.ReasonIntegrityFailure, linksDomain.ReasonMalformedPayload:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusNotFound
	}
}
