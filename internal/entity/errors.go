package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyTurn       = errors.New("turn text is empty")

	// Drafting errors
	ErrServiceUnavailable = errors.New("drafting service unavailable")
	ErrInsufficientInput  = errors.New("not enough input to build a document")

	// Knowledge base errors
	ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

	// Export errors
	ErrRenderingFailure   = errors.New("rendering failure")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrNothingToExport    = errors.New("document is empty")
	ErrStoreNotConfigured = errors.New("key-value store is not configured")

	// Publishing errors
	ErrPublishNotConfigured = errors.New("publishing is not configured")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
