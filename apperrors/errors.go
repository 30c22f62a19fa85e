// Package apperrors carries the error taxonomy shared by services and handlers.
// Callers branch on Kind and Code, never on message text.
package apperrors

import "errors"

type Kind string

const (
	KindValidation      Kind = "validation"
	KindGeocode         Kind = "geocode_failure"
	KindStore           Kind = "store_access"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
)

// Validation codes.
const (
	CodeMissingField           = "missing_field"
	CodeIncompleteItem         = "incomplete_item"
	CodeUnresolvableLocation   = "unresolvable_location"
	CodeMissingOrInvalidOrigin = "missing_or_invalid_origin"
	CodeInvalidLimit           = "invalid_limit"
	CodeInvalidBody            = "invalid_body"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(code, message string, err error) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Err: err}
}

func Geocode(message string, err error) *Error {
	return &Error{Kind: KindGeocode, Code: string(KindGeocode), Message: message, Err: err}
}

func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Code: string(KindStore), Message: message, Err: err}
}

func Unauthenticated(message string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Code: string(KindUnauthenticated), Message: message, Err: err}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: string(KindForbidden), Message: message}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Code: string(KindNotFound), Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// CodeOf returns the code of the outermost *Error in err's chain.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Has reports whether any *Error in err's chain has the given kind.
func Has(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok && ae.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
