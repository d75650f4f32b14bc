// Package errors provides structured error handling for the arcade engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotFound indicates an action referenced an untracked game id.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidPhase indicates an action is illegal for the session's phase.
	CodeInvalidPhase Code = "INVALID_PHASE"
	// CodeNotYourTurn indicates the local wallet does not own the current turn.
	CodeNotYourTurn Code = "NOT_YOUR_TURN"
	// CodeIllegalPosition indicates an occupied cell or a full column.
	CodeIllegalPosition Code = "ILLEGAL_POSITION"
	// CodeConflict indicates a dispatch while a pending action exists.
	CodeConflict Code = "CONFLICT"
	// CodeStakeMismatch indicates join-time stake drift against the snapshot.
	CodeStakeMismatch Code = "STAKE_MISMATCH"
	// CodeExternalRejected indicates the transaction collaborator reported failure.
	CodeExternalRejected Code = "EXTERNAL_REJECTED"
	// CodeStaleNotification indicates a discarded out-of-order or replayed
	// notification. Internal-only, never user-visible.
	CodeStaleNotification Code = "STALE_NOTIFICATION"
)

// GRPCCode maps a domain error code to the closest gRPC status code.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeIllegalPosition:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeInvalidPhase,
		CodeNotYourTurn,
		CodeStakeMismatch,
		CodeStaleNotification:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Aborted - concurrency conflict, caller may retry after the
	// outstanding action resolves
	case CodeConflict:
		return codes.Aborted

	case CodeExternalRejected:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
