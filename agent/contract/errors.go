package contract

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrModelInvoke          = errors.New("model invoke failed")
	ErrSchemaViolation      = errors.New("model response violates schema")
	ErrUnknownCategory      = errors.New("category is not in the configured set")
	ErrRetrievalUnavailable = errors.New("knowledge retrieval unavailable")
)
