package ledger

import "errors"

type ErrorKind = string

var (
	KindNotFound           ErrorKind = "not_found"
	KindValidation         ErrorKind = "validation"
	KindConflict           ErrorKind = "conflict"
	KindConsistencyFailure ErrorKind = "consistency_failure"
	KindUnexpected         ErrorKind = "unexpected"
)

// Error is the failure surfaced by every ledger operation. Kind drives the
// caller's retry/response decision, Message is safe to return to clients.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewConsistencyFailure(message string) *Error {
	return &Error{Kind: KindConsistencyFailure, Message: message}
}

func NewUnexpected(message string) *Error {
	return &Error{Kind: KindUnexpected, Message: message}
}

func KindOf(err error) ErrorKind {
	var ledger_err *Error
	if errors.As(err, &ledger_err) {
		return ledger_err.Kind
	}

	return KindUnexpected
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
