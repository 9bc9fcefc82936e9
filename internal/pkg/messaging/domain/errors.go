package messaging

import "errors"

// Domain-level errors for messaging behaviors
var (
	ErrValidation      = errors.New("messaging: invalid input")
	ErrEmptyMessage    = errors.New("messaging: empty message body")
	ErrNotParticipant  = errors.New("messaging: user is not a participant in the conversation")
	ErrNotMutualFollow = errors.New("messaging: users do not follow each other")
	ErrNotFound        = errors.New("messaging: record not found")
)
