// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/securelink/internal/errors"
)

var (
	// linkCodeRegex matches the alphabet and length range short codes are
	// generated with (default length 6, configurable up to 10)
	linkCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{6,10}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// LinkCode validates that a string has the shape of a generated short code:
// drawn from the generation alphabet and within the supported length range.
// Anything else can be rejected before touching the store.
var LinkCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return linkCodeRegex.MatchString(s)
	},
	validation.NewError("validation_link_code", "must be 6 to 10 letters or digits"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
