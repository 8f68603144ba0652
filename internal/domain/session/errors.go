package session

import "errors"

var (
	// ErrSessionNotFound indicates no session in the catalog has the given name.
	ErrSessionNotFound = errors.New("session not found")
)
