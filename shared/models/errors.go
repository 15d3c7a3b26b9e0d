package models

import "errors"

// Application-wide standard errors
var (
	// Short link storage
	ErrShortLinkNotFound       = errors.New("short code not found")
	ErrShortCodeTaken          = errors.New("short code already taken")
	ErrCodeGenerationExhausted = errors.New("failed to generate unique short code")

	// Request validation
	ErrInvalidMode  = errors.New("invalid mode")
	ErrInvalidInput = errors.New("invalid input data")

	// Workspace
	ErrDuplicatePlaceholder = errors.New("duplicate placeholder id")
	ErrEmptyPlaceholderID   = errors.New("placeholder id is empty")
	ErrIncompleteTheme      = errors.New("theme requires background, text, button and highlight")
)
