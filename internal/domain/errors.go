package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrCallNotActive  = errors.New("call is not active")
	ErrCallInProgress = errors.New("a call is already in progress")
	ErrNoAPIKey       = errors.New("API key is not configured")
)
