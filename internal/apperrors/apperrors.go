package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable, client-visible category of a failure.
type Kind string

const (
	KindMissingCredential Kind = "MissingCredential"
	KindInvalidCredential Kind = "InvalidCredential"
	KindValidation        Kind = "ValidationError"
	KindPayloadTooLarge   Kind = "PayloadTooLarge"
	KindExtraction        Kind = "ExtractionError"
	KindEngineUnavailable Kind = "EngineUnavailable"
	KindStore             Kind = "StoreError"
	KindInternal          Kind = "InternalError"
)

// Error carries a Kind, a human readable detail and the underlying cause.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func MissingCredential(detail string) *Error {
	return New(KindMissingCredential, detail, nil)
}

func InvalidCredential(detail string, err error) *Error {
	return New(KindInvalidCredential, detail, err)
}

func Validation(detail string) *Error {
	return New(KindValidation, detail, nil)
}

func PayloadTooLarge(detail string) *Error {
	return New(KindPayloadTooLarge, detail, nil)
}

func Extraction(err error) *Error {
	return New(KindExtraction, "failed to extract document text", err)
}

func EngineUnavailable(detail string, err error) *Error {
	return New(KindEngineUnavailable, detail, err)
}

func Store(detail string, err error) *Error {
	return New(KindStore, detail, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to the status code the gateway responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindMissingCredential:
		return http.StatusUnauthorized
	case KindInvalidCredential:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
