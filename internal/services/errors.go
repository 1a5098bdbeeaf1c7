package services

import "fmt"

// ErrorKind classifies service failures so the request boundary can map
// each kind to a stable response shape.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAccessDenied
	KindConflict
	KindStorage
)

// ServiceError is the typed error raised by the service layer. Storage
// errors wrap the underlying cause; client errors carry only a message.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func validationError(message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func notFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func accessDeniedError(message string) *ServiceError {
	return &ServiceError{Kind: KindAccessDenied, Message: message}
}

func conflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func storageError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindStorage, Message: message, Err: err}
}
