package entity

import "errors"

// Domain errors
var (
	// Knowledge box errors
	ErrKnowledgeBoxNotFound = errors.New("knowledge box not found")
	ErrNoAccessibleBoxes    = errors.New("no accessible knowledge boxes")

	// Access control errors
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnknownAction   = errors.New("unknown action")
	ErrAccessDenied    = errors.New("access denied")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInactive = errors.New("session is not active")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrEmptyTopic        = errors.New("report topic is empty")

	// Usage and cost errors
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrUsageNotFound    = errors.New("usage record not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
