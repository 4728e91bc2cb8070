package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodePrecondition = "PRECONDITION_FAILED"
	CodePersistence  = "PERSISTENCE_ERROR"
)

// Sentinels for errors.Is; a BusinessError matches the sentinel of its code.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrPersistence  = errors.New("persistence failed")
)

var codeSentinels = map[string]error{
	CodeValidation:   ErrValidation,
	CodeNotFound:     ErrNotFound,
	CodePrecondition: ErrPrecondition,
	CodePersistence:  ErrPersistence,
}

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func (b *BusinessError) Is(target error) bool {
	sentinel, ok := codeSentinels[b.Code]
	return ok && sentinel == target
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(id string) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("task %s not found", id),
		ToDetail("resource", "task"),
		ToDetail("id", id),
	)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation, reason,
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}

func NewPreconditionError(id, reason string) *BusinessError {
	return NewBusinessError(CodePrecondition, reason,
		ToDetail("id", id),
		ToDetail("reason", reason),
	)
}

// NewPersistenceError wraps a load or save failure of the persistence collaborator.
func NewPersistenceError(op string, err error) *BusinessError {
	busErr := NewBusinessError(CodePersistence, op+" failed", ToDetail("operation", op))
	busErr.Err = err
	return busErr
}

// AsBusinessError extracts a BusinessError from an error chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
