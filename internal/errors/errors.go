// Package errors provides custom error types for the tradebook core.
// Every service-layer operation returns either a value or an *AppError whose
// Kind places it in the domain error taxonomy; the HTTP boundary maps the
// error to a status code without inspecting messages.
package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindState        Kind = "state"
	KindDomain       Kind = "domain"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindInternal     Kind = "internal"
)

// Violation is a single failed field rule reported by a validation pass.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// AppError represents a structured application error with a kind, an error
// code, a human-readable message, an HTTP status code, and optional details.
type AppError struct {
	Kind       Kind        `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Violations []Violation `json:"violations,omitempty"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same kind/code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Kind:       sentinel.Kind,
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Kind:       sentinel.Kind,
		Code:       sentinel.Code,
		Message:    message,
		Violations: sentinel.Violations,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithViolations creates a validation AppError carrying the given violations.
// The message is taken from the first violation when there is one.
func WithViolations(violations []Violation) *AppError {
	msg := ErrValidation.Message
	if len(violations) > 0 {
		msg = violations[0].Message
	}
	return &AppError{
		Kind:       ErrValidation.Kind,
		Code:       ErrValidation.Code,
		Message:    msg,
		Violations: violations,
		StatusCode: ErrValidation.StatusCode,
	}
}

// Is reports whether err is an *AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Kind: KindUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken       = &AppError{Kind: KindUnauthorized, Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrAccountDisabled    = &AppError{Kind: KindForbidden, Code: "ACCOUNT_DISABLED", Message: "Account is deactivated", StatusCode: http.StatusForbidden}
	ErrForbidden          = &AppError{Kind: KindForbidden, Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrValidation     = &AppError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInvalidInput   = &AppError{Kind: KindValidation, Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Kind: KindConflict, Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Asset errors.
var (
	ErrAssetNotFound   = &AppError{Kind: KindNotFound, Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrDuplicateSymbol = &AppError{Kind: KindConflict, Code: "DUPLICATE_SYMBOL", Message: "Asset with this symbol already exists", StatusCode: http.StatusConflict}
	ErrAssetInUse      = &AppError{Kind: KindConflict, Code: "ASSET_IN_USE", Message: "Asset is referenced by existing trades", StatusCode: http.StatusConflict}
)

// Portfolio errors.
var (
	ErrPortfolioNotFound  = &AppError{Kind: KindNotFound, Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrPortfolioHasTrades = &AppError{Kind: KindConflict, Code: "PORTFOLIO_HAS_TRADES", Message: "Cannot delete portfolio with existing trades. Delete trades first.", StatusCode: http.StatusConflict}
)

// Trade errors.
var (
	ErrTradeNotFound        = &AppError{Kind: KindNotFound, Code: "TRADE_NOT_FOUND", Message: "Trade not found", StatusCode: http.StatusNotFound}
	ErrTradeExecuted        = &AppError{Kind: KindConflict, Code: "TRADE_EXECUTED", Message: "Cannot modify an executed trade", StatusCode: http.StatusConflict}
	ErrInvalidTradeState    = &AppError{Kind: KindState, Code: "INVALID_TRADE_STATE", Message: "Operation not permitted in the trade's current state", StatusCode: http.StatusConflict}
	ErrInsufficientHoldings = &AppError{Kind: KindDomain, Code: "INSUFFICIENT_HOLDINGS", Message: "Insufficient holdings to execute sell trade", StatusCode: http.StatusUnprocessableEntity}
)
