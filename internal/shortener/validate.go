package shortener

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const urlRules = "required,max=2048,http_url"

// URLValidator checks submitted destination URLs.
type URLValidator struct {
	validate *validator.Validate
}

// NewURLValidator creates a validator accepting absolute http and https URLs.
func NewURLValidator() *URLValidator {
	return &URLValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Check returns ErrInvalidURL when raw is not an acceptable destination.
func (v *URLValidator) Check(raw string) error {
	if err := v.validate.Var(raw, urlRules); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	return nil
}
