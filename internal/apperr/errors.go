package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the public API reports it.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	PermissionDenied
	NotFound
	FailedPrecondition
	InvalidArgument
)

// Error is a classified error with a stable short code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// From extracts the classified error, defaulting to Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: Internal, Code: "internal", Message: err.Error(), Err: err}
}

// HTTPStatus maps an error kind to the response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case Unauthenticated:
		return 401
	case PermissionDenied:
		return 403
	case NotFound:
		return 404
	case FailedPrecondition:
		return 412
	case InvalidArgument:
		return 400
	default:
		return 500
	}
}

// Shared error values with stable codes.
var (
	ErrAuthRequired          = New(Unauthenticated, "auth-required", "Authentication required")
	ErrBusinessNotFound      = New(NotFound, "business-not-found", "Business not found")
	ErrAccessDenied          = New(PermissionDenied, "access-denied", "Access denied to business")
	ErrWhatsAppNotConfigured = New(FailedPrecondition, "whatsapp-not-configured", "WhatsApp is not enabled for this business")
	ErrProductNotFound       = New(NotFound, "product-not-found", "Product not found")
	ErrOrderNotFound         = New(NotFound, "order-not-found", "Order not found")
	ErrInvalidRequest        = New(InvalidArgument, "invalid-request", "Invalid request")
)
