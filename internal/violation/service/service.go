// Package service implements the violation finalize flow: folio generation,
// payment-reference issuance, then immediate submission or enqueue. The
// ordering is fixed; the folio always exists before the reference, and both
// exist before the record goes anywhere.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"multa-gateway/internal/discount"
	"multa-gateway/internal/folio"
	"multa-gateway/internal/platform/metrics"
	"multa-gateway/internal/treasury"
	violationModel "multa-gateway/internal/violation/models"
	dErrors "multa-gateway/pkg/domain-errors"
)

// Disposition says where the finalized violation ended up.
type Disposition string

const (
	DispositionSubmitted Disposition = "submitted"
	DispositionQueued    Disposition = "queued"
)

// Backend is the slice of the backend client the finalize flow needs.
type Backend interface {
	Submit(ctx context.Context, v violationModel.Violation) (*violationModel.SubmitResult, error)
	Reachable(ctx context.Context) bool
}

// Issuer acquires a payment reference; it never fails, only degrades.
type Issuer interface {
	Issue(ctx context.Context, f folio.Folio, amountCents int64, concept string) treasury.PaymentReference
}

// Queue accepts violations that could not be submitted immediately.
type Queue interface {
	Enqueue(ctx context.Context, v violationModel.Violation, enqueuedAt time.Time) error
}

// FinalizeInput is what the agent UI sends when closing a violation.
type FinalizeInput struct {
	InfractionTypeID string
	AgentID          *int
	Plate            string
	Vehicle          string
	Location         string
	Concept          string
	AmountCents      int64
}

// FinalizeResult is everything the UI needs to print the ticket.
type FinalizeResult struct {
	Violation   violationModel.Violation
	Disposition Disposition
	Discount    *discount.Discount
}

// Service orchestrates finalization.
type Service struct {
	generator *folio.Generator
	issuer    Issuer
	queue     Queue
	backend   Backend
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches finalize metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the finalize service.
func New(generator *folio.Generator, issuer Issuer, queue Queue, backend Backend, opts ...Option) (*Service, error) {
	if generator == nil {
		return nil, fmt.Errorf("folio generator is required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("reference issuer is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("reconciliation queue is required")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}

	s := &Service{
		generator: generator,
		issuer:    issuer,
		queue:     queue,
		backend:   backend,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Finalize closes a violation. From the agent's perspective it never fails
// past input validation: no connectivity, a dead treasury, or a failed
// submission all degrade into a queued violation with a printable folio and
// a payable (possibly provisional) reference.
func (s *Service) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	if in.AmountCents <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "monto must be positive")
	}
	if in.Concept == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "concepto is required")
	}
	if in.Plate == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "placa is required")
	}

	now := s.now()
	online := s.backend.Reachable(ctx)
	mode := folio.ModeOnline
	if !online {
		mode = folio.ModeOffline
	}

	f := s.generator.Generate(in.InfractionTypeID, mode, in.AgentID, now)
	if s.metrics != nil {
		s.metrics.FoliosGenerated.WithLabelValues(string(mode)).Inc()
	}

	ref := s.issuer.Issue(ctx, f, in.AmountCents, in.Concept)

	v := violationModel.Violation{
		ID:               uuid.New(),
		Plate:            in.Plate,
		Vehicle:          in.Vehicle,
		InfractionTypeID: in.InfractionTypeID,
		AgentID:          in.AgentID,
		AmountCents:      in.AmountCents,
		Concept:          in.Concept,
		Location:         in.Location,
		IssuedAt:         now,
		Folio:            f,
		Reference:        ref,
	}

	disposition := DispositionQueued
	if online {
		result, err := s.backend.Submit(ctx, v)
		switch {
		case err != nil:
			// The probe lied or the network flapped. Degrade to the queue
			// rather than failing the agent.
			s.logger.WarnContext(ctx, "immediate submission failed, queueing violation",
				"folio", f.String(),
				"error", err,
			)
		case result.Reference != nil && ref.Origin == treasury.OriginLocalFallback:
			// The backend already holds a treasury línea for this folio;
			// adopt it. The folio itself is never taken from the backend.
			v.Reference = *result.Reference
			disposition = DispositionSubmitted
		default:
			disposition = DispositionSubmitted
		}
	}

	if disposition == DispositionQueued {
		if err := s.queue.Enqueue(ctx, v, now); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "queue finalized violation")
		}
	} else if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("submitted").Inc()
	}

	// Day zero is always inside the first window, so the error cannot fire
	// with a well-behaved clock.
	d, _ := discount.For(now, now)

	s.logger.InfoContext(ctx, "violation finalized",
		"folio", f.String(),
		"mode", string(mode),
		"disposition", string(disposition),
		"reference_origin", string(v.Reference.Origin),
	)

	return &FinalizeResult{Violation: v, Disposition: disposition, Discount: d}, nil
}
