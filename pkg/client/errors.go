package client

import "errors"

var (
	// ErrDaemonNotRunning is returned when nothing listens on the socket.
	ErrDaemonNotRunning = errors.New("daemon not running")

	// ErrPermissionDenied is returned when the socket is not accessible to the current user.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when the daemon answers 404, e.g. for an item
	// index out of range or a route an older daemon lacks.
	ErrNotFound = errors.New("404 not found")

	// ErrUnexpectedResponse is returned when a response body cannot be decoded.
	ErrUnexpectedResponse = errors.New("unexpected response")
)
