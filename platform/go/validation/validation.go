// Package validation holds the error types domain services use to report
// invalid payloads. Handlers translate them into 400 responses with
// field-level details.
package validation

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// Add appends a message to the field's issue list.
func (f FieldErrors) Add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}

// Error is returned when the input payload is invalid.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	return "validation error"
}

// NewError builds a validation Error from single-message fields.
func NewError(fields map[string]string) error {
	fe := FieldErrors{}
	for key, message := range fields {
		fe.Add(key, message)
	}
	return &Error{Fields: fe}
}
