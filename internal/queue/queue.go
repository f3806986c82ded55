// Package queue implements the durable reconciliation queue for violations
// finalized without connectivity. Items enter with their folio and payment
// reference already assigned; the queue's whole job is to get each one into
// the backend exactly once without ever touching the folio.
package queue

import (
	"context"
	"time"

	violationModel "multa-gateway/internal/violation/models"

	"multa-gateway/internal/treasury"
)

// SubmissionState is the per-item state machine:
//
//	pending -> in_flight -> submitted            (terminal, removed)
//	                     -> failed_permanently   (terminal, manual handling)
//	                     -> pending              (transient failure, retry)
type SubmissionState string

const (
	StatePending           SubmissionState = "pending"
	StateInFlight          SubmissionState = "in_flight"
	StateSubmitted         SubmissionState = "submitted"
	StateFailedPermanently SubmissionState = "failed_permanently"
)

// Terminal reports whether the state admits no further transitions.
func (s SubmissionState) Terminal() bool {
	return s == StateSubmitted || s == StateFailedPermanently
}

// QueuedViolation is one violation awaiting submission. Violation.Folio is
// assigned before enqueue and is bit-identical across every drain attempt
// and process restart.
type QueuedViolation struct {
	Violation  violationModel.Violation `json:"multa"`
	EnqueuedAt time.Time                `json:"encolada_en"`
	Attempts   int                      `json:"intentos"`
	State      SubmissionState          `json:"estado"`
	LastError  string                   `json:"ultimo_error,omitempty"`
}

// Folio is the item's durable key.
func (q QueuedViolation) Folio() string { return q.Violation.Folio.String() }

// Store is the durable keyed storage behind the queue. Every mutation is
// atomic read-modify-write with respect to the others, so a manual sync
// racing the automatic drain cannot produce lost updates.
type Store interface {
	// Enqueue inserts a new pending item. sentinel.ErrConflict if the folio
	// is already queued.
	Enqueue(ctx context.Context, item QueuedViolation) error
	// Get fetches one item. sentinel.ErrNotFound when absent.
	Get(ctx context.Context, folio string) (QueuedViolation, error)
	// List returns all items in FIFO order by EnqueuedAt.
	List(ctx context.Context) ([]QueuedViolation, error)
	// Transition moves an item from one state to another atomically.
	// sentinel.ErrInvalidState when the item is not in from; this is the
	// compare-and-swap that enforces at most one in-flight submission per
	// folio.
	Transition(ctx context.Context, folio string, from, to SubmissionState) error
	// SetReference replaces the item's payment reference (a drained
	// local-fallback reference being upgraded). The folio is untouched.
	SetReference(ctx context.Context, folio string, ref treasury.PaymentReference) error
	// RecordFailure increments the attempt counter and stores the failure
	// reason, returning the new count.
	RecordFailure(ctx context.Context, folio string, reason string) (int, error)
	// Remove deletes an item; removing an absent folio is a no-op.
	Remove(ctx context.Context, folio string) error
	// RecoverInFlight reverts in_flight items to pending. Called once at
	// startup: an item stranded in_flight means the process died mid-
	// submission, and at-least-once redelivery is safe because the backend
	// de-duplicates by folio.
	RecoverInFlight(ctx context.Context) (int, error)
}
