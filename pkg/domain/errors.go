package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownStage is returned when a symbol is not part of the stage vocabulary.
var ErrUnknownStage = errors.New("unknown stage")

// ErrMalformedIntent is returned by classifiers whose answer cannot be used.
// The resolver maps it to "stay" instead of surfacing it.
var ErrMalformedIntent = errors.New("malformed intent classification")

// ErrInputTooLarge is returned when user input exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds maximum allowed size")

// ErrInvalidUTF8 is returned when user input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
