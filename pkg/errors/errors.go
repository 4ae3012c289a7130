package errors

import "errors"

// Registry errors
var (
	// ErrClientNotFound is returned when no record exists for a username
	ErrClientNotFound = errors.New("client not found")

	// ErrConnClosed is returned when sending on a closed push connection
	ErrConnClosed = errors.New("connection closed")

	// ErrSendBufferFull is returned when a push send would block
	ErrSendBufferFull = errors.New("send buffer full")
)

// Message and protocol errors
var (
	// ErrInvalidMessage is returned when a message envelope fails validation
	ErrInvalidMessage = errors.New("invalid message")
)

// Configuration errors
var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)
