package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Credential errors
	ErrCredentialNotFound      = errors.New("credential not found")
	ErrCredentialRefreshFailed = errors.New("credential refresh failed")
	ErrAccountDisconnected     = errors.New("account disconnected")

	// Gateway errors
	ErrGatewayCallFailed = errors.New("gateway call failed")

	// Repricing errors
	// Stale competitor data is a strategy-fallback marker, not a run failure.
	ErrStaleCompetitorData = errors.New("stale competitor data")
	ErrListingNotFound     = errors.New("listing not found")

	// Dispute errors
	ErrDisputeNotFound   = errors.New("dispute not found")
	ErrInvalidTransition = errors.New("invalid dispute transition")

	// Invariant errors
	ErrInvariantViolation = errors.New("invariant violation")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
