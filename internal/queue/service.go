package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"multa-gateway/internal/folio"
	"multa-gateway/internal/platform/metrics"
	"multa-gateway/internal/treasury"
	violationModel "multa-gateway/internal/violation/models"
	dErrors "multa-gateway/pkg/domain-errors"
	"multa-gateway/pkg/platform/sentinel"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks multa-gateway/internal/queue Submitter,ReferenceIssuer,Prober

// Submitter pushes one violation to the backend, keyed by its folio.
type Submitter interface {
	Submit(ctx context.Context, v violationModel.Violation) (*violationModel.SubmitResult, error)
}

// ReferenceIssuer re-acquires a payment reference for items that were
// enqueued with a local-fallback one.
type ReferenceIssuer interface {
	Issue(ctx context.Context, f folio.Folio, amountCents int64, concept string) treasury.PaymentReference
}

// DrainReport summarizes one drain pass.
type DrainReport struct {
	Submitted int `json:"enviadas"`
	Requeued  int `json:"reintentables"`
	Failed    int `json:"fallidas"`
	Skipped   int `json:"omitidas"`
}

// Service drives the queue state machine. Per-item success and failure are
// independent: one stuck item never blocks the rest of the pass.
type Service struct {
	store         Store
	submitter     Submitter
	issuer        ReferenceIssuer
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxAttempts   int
	submitTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches queue metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxAttempts bounds retries before an item is parked as
// failed_permanently. Zero or negative disables the bound.
func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

// WithSubmitTimeout bounds each per-item submission during a drain.
func WithSubmitTimeout(d time.Duration) Option {
	return func(s *Service) { s.submitTimeout = d }
}

// New creates the queue service.
func New(store Store, submitter Submitter, issuer ReferenceIssuer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("reference issuer is required")
	}

	s := &Service{
		store:         store,
		submitter:     submitter,
		issuer:        issuer,
		logger:        slog.Default(),
		maxAttempts:   10,
		submitTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enqueue stores a violation finalized without connectivity. The item must
// already carry its folio and payment reference; the queue never assigns
// identifiers.
func (s *Service) Enqueue(ctx context.Context, v violationModel.Violation, enqueuedAt time.Time) error {
	if v.Folio == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "violation has no folio")
	}
	if !v.Folio.Valid() {
		return dErrors.New(dErrors.CodeInvalidInput, "violation folio does not self-validate")
	}
	if v.Reference.Code == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "violation has no payment reference")
	}

	err := s.store.Enqueue(ctx, QueuedViolation{
		Violation:  v,
		EnqueuedAt: enqueuedAt,
		State:      StatePending,
	})
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.Wrap(err, dErrors.CodeConflict, "folio already queued")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "enqueue violation")
	}

	s.logger.InfoContext(ctx, "violation queued for reconciliation", "folio", v.Folio.String())
	s.updateDepth(ctx)
	return nil
}

// Items returns a snapshot of the queue in FIFO order, including items
// parked as failed_permanently for manual handling.
func (s *Service) Items(ctx context.Context) ([]QueuedViolation, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list queue")
	}
	return items, nil
}

// Drain walks the pending items in FIFO order and submits each once.
// Concurrent drains are safe: the pending->in_flight compare-and-swap makes
// a second drain skip any item already owned by the first.
func (s *Service) Drain(ctx context.Context) (DrainReport, error) {
	var report DrainReport

	items, err := s.store.List(ctx)
	if err != nil {
		return report, dErrors.Wrap(err, dErrors.CodeInternal, "list queue for drain")
	}

	if s.metrics != nil {
		s.metrics.DrainRuns.Inc()
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if item.State != StatePending {
			continue
		}
		if err := s.store.Transition(ctx, item.Folio(), StatePending, StateInFlight); err != nil {
			// Another drain owns this item; per-item no-op, keep walking.
			if errors.Is(err, sentinel.ErrInvalidState) || errors.Is(err, sentinel.ErrNotFound) {
				report.Skipped++
				continue
			}
			return report, dErrors.Wrap(err, dErrors.CodeInternal, "claim queue item")
		}
		s.drainOne(ctx, item, &report)
	}

	s.updateDepth(ctx)
	return report, nil
}

// drainOne handles a single claimed item. All failures are absorbed into the
// item's state; only the report records the outcome.
func (s *Service) drainOne(ctx context.Context, item QueuedViolation, report *DrainReport) {
	logger := s.logger.With("folio", item.Folio())

	// A local-fallback reference gets one upgrade attempt now that the
	// network is back. The folio is never regenerated here.
	if item.Violation.Reference.Origin == treasury.OriginLocalFallback {
		ref := s.issuer.Issue(ctx, item.Violation.Folio, item.Violation.AmountCents, item.Violation.Concept)
		if ref.Origin == treasury.OriginRemote {
			if err := s.store.SetReference(ctx, item.Folio(), ref); err != nil {
				logger.WarnContext(ctx, "could not persist upgraded payment reference", "error", err)
			} else {
				item.Violation.Reference = ref
				logger.InfoContext(ctx, "replaced local fallback reference", "codigo", ref.Code)
			}
		}
	}

	subCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	result, err := s.submitter.Submit(subCtx, item.Violation)
	cancel()

	if err != nil {
		s.handleFailure(ctx, item, err, report)
		return
	}

	if result.Folio != "" && result.Folio != item.Folio() {
		// The backend echoing a different folio is a contract violation on
		// its side; ours stays authoritative.
		logger.WarnContext(ctx, "backend echoed mismatched folio", "echoed", result.Folio)
	}

	if err := s.store.Transition(ctx, item.Folio(), StateInFlight, StateSubmitted); err != nil {
		logger.ErrorContext(ctx, "submitted but could not mark item", "error", err)
	}
	if err := s.store.Remove(ctx, item.Folio()); err != nil {
		// A crash between the backend ack and this removal re-delivers the
		// item; the backend's folio-keyed idempotency absorbs it.
		logger.ErrorContext(ctx, "submitted but could not remove item", "error", err)
	}

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("submitted").Inc()
	}
	logger.InfoContext(ctx, "queued violation submitted")
	report.Submitted++
}

func (s *Service) handleFailure(ctx context.Context, item QueuedViolation, cause error, report *DrainReport) {
	logger := s.logger.With("folio", item.Folio())

	attempts, err := s.store.RecordFailure(ctx, item.Folio(), cause.Error())
	if err != nil {
		logger.ErrorContext(ctx, "could not record submission failure", "error", err)
		attempts = item.Attempts + 1
	}

	if s.maxAttempts > 0 && attempts >= s.maxAttempts {
		if err := s.store.Transition(ctx, item.Folio(), StateInFlight, StateFailedPermanently); err != nil {
			logger.ErrorContext(ctx, "could not park exhausted item", "error", err)
		}
		if s.metrics != nil {
			s.metrics.Submissions.WithLabelValues("failed_permanently").Inc()
		}
		logger.ErrorContext(ctx, "submission retries exhausted, needs manual handling",
			"attempts", attempts,
			"error", cause,
		)
		report.Failed++
		return
	}

	if err := s.store.Transition(ctx, item.Folio(), StateInFlight, StatePending); err != nil {
		logger.ErrorContext(ctx, "could not requeue item", "error", err)
	}
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("requeued").Inc()
	}
	logger.WarnContext(ctx, "submission failed, item requeued",
		"attempts", attempts,
		"error", cause,
	)
	report.Requeued++
}

func (s *Service) updateDepth(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if items, err := s.store.List(ctx); err == nil {
		depth := 0
		for _, it := range items {
			if !it.State.Terminal() {
				depth++
			}
		}
		s.metrics.QueueDepth.Set(float64(depth))
	}
}
