package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/casedesk/pkg/collection"
)

var (
	// ErrAlreadyBusy is matched by every ConflictError.
	ErrAlreadyBusy = errors.New("row already has an operation in flight")

	// ErrStaleCompletion marks a completion for a coordinator that has been
	// closed since the operation began. It is logged, never shown.
	ErrStaleCompletion = errors.New("completion targets a closed view")
)

// ValidationError is malformed local input, rejected before any remote call.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Invalid wraps err as a ValidationError on field.
func Invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

// fieldError is implemented by errors a collection returns when it rejects
// one input field before storing anything.
type fieldError interface {
	error
	InvalidField() string
}

// asValidation reports err as a ValidationError when it is one or wraps a
// fieldError.
func asValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	var fe fieldError
	if errors.As(err, &fe) {
		field := fe.InvalidField()
		return &ValidationError{
			Field:   field,
			Message: strings.TrimPrefix(fe.Error(), field+": "),
			Err:     err,
		}, true
	}
	return nil, false
}

// ConflictError rejects an action on a row whose previous operation has not
// settled.
type ConflictError struct {
	ID   any
	Busy TaskKind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("row %v is busy (%s)", e.ID, e.Busy)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrAlreadyBusy
}

// RemoteError is a failed collection call. The UI shows Message; Error keeps
// the detail for logs.
type RemoteError struct {
	Op  string
	ID  any
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Op, e.ID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Message is the user-facing text, identical for network and server
// failures.
func (e *RemoteError) Message() string {
	return e.Op + " failed"
}

// Network reports whether the request never reached the backend.
func (e *RemoteError) Network() bool {
	return collection.IsNetwork(e.Err)
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message()
	}
	return err.Error()
}
