// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"
)

// maxTTLSeconds caps client-requested expirations at 30 days.
const maxTTLSeconds = 30 * 24 * 60 * 60

// GenerateLinkRequest contains the parameters for issuing a new link.
// The caller's identity token is extracted from the Authorization header,
// not the request body.
type GenerateLinkRequest struct {
	Data       map[string]any `json:"data"`
	OneTimeUse bool           `json:"one_time_use"`
	TTLSeconds int            `json:"ttl_seconds"`
}

// Validate checks if the generate link request is valid.
// A zero TTL means the server-side default expiration.
func (r *GenerateLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TTLSeconds,
			validation.Min(0),
			validation.Max(maxTTLSeconds),
		),
	)
}
