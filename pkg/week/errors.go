package week

import "errors"

var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoBirthDate is returned when a calendar is requested before onboarding.
	ErrNoBirthDate = errors.New("birth date not set")
)

// ValidationError reports input rejected before any mutation.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
