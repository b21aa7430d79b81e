package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("already registered for this project")
	ErrProjectFull           = errors.New("project is full")
	ErrHasRegistrations      = errors.New("cannot delete project with existing registrations")
	ErrInvalidStatus         = errors.New("invalid status")
)

// Validation error codes.
const (
	CodeMissingField = "MISSING_FIELD"
	CodeInvalidValue = "INVALID_VALUE"
)

// ValidationError is a missing or malformed input field. Handlers extract it with errors.As.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Code == CodeMissingField {
		return "missing required field: " + e.Field
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Message)
}

func NewMissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeMissingField}
}

func NewInvalidValue(field, message string) *ValidationError {
	return &ValidationError{Field: field, Code: CodeInvalidValue, Message: message}
}

// UpstreamError wraps a failure of the entity store or another collaborator.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream wraps err unless it is nil or already a domain outcome.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUpstream {
		return err
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}

// Kind groups errors the way callers render them.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidStatus
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidStatus:
		return "invalid_status"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Anything that is not a rules-engine outcome is an upstream failure.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrRegistrationNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateRegistration), errors.Is(err, ErrProjectFull), errors.Is(err, ErrHasRegistrations):
		return KindConflict
	case errors.Is(err, ErrInvalidStatus):
		return KindInvalidStatus
	default:
		return KindUpstream
	}
}
