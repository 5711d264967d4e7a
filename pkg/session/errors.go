package session

import "errors"

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrLimitReached    = errors.New("session: active session limit reached")
	ErrDuplicateID     = errors.New("session: duplicate id")
)
