package domain

import "errors"

// Sentinel errors for the failure classes the orchestrator distinguishes.
// Wrap them with fmt.Errorf("...: %w", Err...) so callers can errors.Is.
var (
	// ErrConfiguration marks a missing or invalid metadata reference
	// (unknown preset, column absent from a raw file). Aborts only the
	// affected account's ingestion.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidBatch marks an empty batch handed to the delta merger.
	// The orchestration contract never produces one; seeing this error
	// means a caller bug.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrPersistence marks a failure writing the canonical store. The
	// prior store state on disk is guaranteed intact.
	ErrPersistence = errors.New("persistence error")
)
