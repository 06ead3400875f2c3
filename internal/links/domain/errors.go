package domain

import (
	"github.com/allisson/securelink/internal/errors"
)

// Link-specific error definitions.
var (
	// ErrLinkNotFound indicates no live record exists under the short code.
	// Deliberately covers expired and consumed records as well.
	ErrLinkNotFound = errors.Wrap(errors.ErrNotFound, "link not found")

	// ErrCodeExists indicates a create-if-absent write lost to an existing
	// live record under the same short code.
	ErrCodeExists = errors.Wrap(errors.ErrConflict, "short code already exists")
)
