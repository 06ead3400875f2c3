// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	linksDomain "github.com/allisson/securelink/internal/links/domain"
)

// LinkResponse represents an issued link in API responses.
// Only the short code and its validity window are returned; the payload is
// never echoed back.
type LinkResponse struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapSummaryToResponse converts a link summary to an API response.
func MapSummaryToResponse(summary *linksDomain.LinkSummary) LinkResponse {
	return LinkResponse{
		Code:      summary.Code,
		CreatedAt: summary.CreatedAt,
		ExpiresAt: summary.ExpiresAt,
	}
}

// ValidationResponse represents the outcome of validating a short code.
// Invalid outcomes carry only the reason; valid outcomes carry the decrypted
// payload and issuance time.
type ValidationResponse struct {
	Valid     bool           `json:"valid"`
	Reason    string         `json:"reason,omitempty"`
	Token     string         `json:"token,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}

// MapResultToResponse converts a validation result to an API response.
func MapResultToResponse(result *linksDomain.ValidationResult) ValidationResponse {
	if !result.Valid {
		return ValidationResponse{
			Valid:  false,
			Reason: string(result.Reason),
		}
	}

	createdAt := result.CreatedAt
	return ValidationResponse{
		Valid:     true,
		Token:     result.Payload.Token,
		Data:      result.Payload.Data,
		CreatedAt: &createdAt,
	}
}
