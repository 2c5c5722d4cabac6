package domain

import "errors"

var (
	// ErrNoMatch is returned when no known identity reaches the minimum score
	ErrNoMatch = errors.New("no matching identity found")

	// ErrNotLoaded is returned when queries run before any data was ingested
	ErrNotLoaded = errors.New("no collaboration data loaded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrDataDirMissing is returned when the ingest directory does not exist
	ErrDataDirMissing = errors.New("data directory does not exist")

	// ErrProfileNotFound is returned when no profile exists for a name
	ErrProfileNotFound = errors.New("profile not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNotionNotConnected is returned when no workspace token is configured
	ErrNotionNotConnected = errors.New("notion integration not connected")

	// ErrNotionAPIFailure is returned when a Notion API request fails
	ErrNotionAPIFailure = errors.New("notion API request failed")

	// ErrAINotConfigured is returned when AI features run without a provider
	ErrAINotConfigured = errors.New("AI provider not configured")
)
