package models

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateEmail  = errors.New("email already exists")
)

// ErrorKind classe les erreurs pour le mapping HTTP
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInputValidation
	KindNotFound
	KindPermission
	KindUpstream
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputValidation:
		return "input_validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindUpstream:
		return "upstream_failure"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindInputValidation, Message: msg}
}

func NewNotFoundError(msg string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg, Err: err}
}

func NewPermissionError(msg string) *AppError {
	return &AppError{Kind: KindPermission, Message: msg}
}

func NewUpstreamError(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Message: msg, Err: err}
}

// NewConflictError signale une opération concurrente, le client peut réessayer
func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf retrouve la catégorie d'une erreur, KindInternal par défaut
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrProductNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrInvalidAmount):
		return KindInputValidation
	}
	return KindInternal
}

// MessageOf renvoie le message destiné au client
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" && appErr.Kind != KindUpstream && appErr.Kind != KindInternal {
			return appErr.Message
		}
		// Erreurs amont / internes : on remonte le message sous-jacent
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
