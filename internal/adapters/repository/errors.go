package repository

import "errors"

// Sentinel kinds for store lookups.
var (
	ErrAgentNotFound   = errors.New("agent not found")
	ErrContactNotFound = errors.New("contact not found")
)
