package service

import "errors"

var (
	// ErrAllProvidersDown means no data section could be assembled.
	ErrAllProvidersDown = errors.New("all data providers unavailable")
	// ErrNoHistory means snapshot history is not persisted in this deployment.
	ErrNoHistory = errors.New("snapshot history unavailable without a database")
	// ErrInvalidChoice rejects a poll vote outside up/sideways/down.
	ErrInvalidChoice = errors.New("invalid poll choice")
	// ErrMissingVoter rejects a poll request without a voter id.
	ErrMissingVoter = errors.New("voter id is required")
)
