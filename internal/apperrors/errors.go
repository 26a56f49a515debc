package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindEmptyInput  Kind = "empty_input"
	KindMissingFile Kind = "missing_file"
	KindFormat      Kind = "format"
	KindPersistence Kind = "persistence"
	KindNoPayload   Kind = "no_payload"
	KindAuth        Kind = "auth"
	KindRateLimit   Kind = "rate_limit"
	KindTransient   Kind = "transient"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultSafeMessage(kind Kind) string {
	switch kind {
	case KindEmptyInput:
		return "Input is empty. Please enter a value first."
	case KindMissingFile:
		return "No credential file selected. Please choose a file first."
	case KindFormat:
		return "The file is not valid JSON or has an unexpected shape."
	case KindPersistence:
		return "Failed to save settings. Please check file permissions and retry."
	case KindNoPayload:
		return "No analysis results are loaded yet. Run an analysis first."
	case KindAuth:
		return "Authentication failed. Please verify the API key and permissions."
	case KindRateLimit:
		return "API rate limit exceeded. Please try again later."
	case KindTransient:
		return "Temporary upstream error. Please try again."
	default:
		return "Request failed."
	}
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func EmptyInput(safeMessage string) error {
	return New(KindEmptyInput, safeMessage, nil)
}

func MissingFile(safeMessage string) error {
	return New(KindMissingFile, safeMessage, nil)
}

func Format(err error) error {
	return New(KindFormat, "", err)
}

func Persistence(err error) error {
	return New(KindPersistence, "", err)
}

func NoPayload() error {
	return New(KindNoPayload, "", nil)
}

func Auth(err error) error {
	return New(KindAuth, "", err)
}

func Transient(err error) error {
	return New(KindTransient, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// PublicMessage is what the UI boundary shows the user. Wrapped causes stay
// in the logs only.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsRetryable reports whether retrying the same call could succeed without
// the user changing anything.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindTransient
}
