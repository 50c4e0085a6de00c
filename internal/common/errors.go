package common

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeAcquisition = "ACQUISITION_ERROR"
	CodeEmptyText   = "EMPTY_TEXT"
	CodeConfig      = "CONFIG_ERROR"
	CodeStore       = "STORE_ERROR"
	CodeExport      = "EXPORT_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrAcquisition  = errors.New("text acquisition failed")
	ErrEmptyText    = errors.New("page produced no usable text")
	ErrStore        = errors.New("store error")
	ErrExport       = errors.New("export error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAcquisitionError marks a document that could not be read at all.
func NewAcquisitionError(file string, cause error) *AppError {
	if cause == nil {
		cause = ErrAcquisition
	} else if !errors.Is(cause, ErrAcquisition) {
		cause = fmt.Errorf("%w: %w", ErrAcquisition, cause)
	}
	return NewAppError(CodeAcquisition, file, cause)
}

// NewEmptyTextError marks a page that stayed empty after OCR fallback.
func NewEmptyTextError(file string, page int) *AppError {
	return NewAppError(CodeEmptyText, fmt.Sprintf("%s page %d", file, page), ErrEmptyText)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf returns the AppError code in err's chain, "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
