package treasury

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"multa-gateway/internal/folio"
	"multa-gateway/internal/platform/metrics"
)

// GenerateClient is the slice of the treasury client the Issuer needs.
type GenerateClient interface {
	Generate(ctx context.Context, amountCents int64, concepto, referencia string) (*Linea, error)
}

// Issuer acquires payment references, degrading to a locally generated one
// whenever the treasury cannot answer. From the agent's perspective issuance
// never fails; a degraded reference is replaced during reconciliation.
type Issuer struct {
	client  GenerateClient
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) IssuerOption {
	return func(i *Issuer) { i.logger = logger }
}

// WithMetrics attaches issuance metrics.
func WithMetrics(m *metrics.Metrics) IssuerOption {
	return func(i *Issuer) { i.metrics = m }
}

// WithClock overrides the clock; tests pin issuance timestamps with it.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an Issuer over the given client.
func NewIssuer(client GenerateClient, opts ...IssuerOption) (*Issuer, error) {
	if client == nil {
		return nil, fmt.Errorf("treasury client is required")
	}
	i := &Issuer{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue acquires a payment reference for a folio. Exactly one outbound call
// per invocation, no internal retry: a caller that retries calls Issue again
// and gets a fresh idempotency key. Whether the treasury de-duplicates
// across different keys is its problem, not a guarantee made here.
func (i *Issuer) Issue(ctx context.Context, f folio.Folio, amountCents int64, concept string) PaymentReference {
	now := i.now()
	key := fmt.Sprintf("MULTA-%s-%d", f, now.UnixMilli())

	linea, err := i.client.Generate(ctx, amountCents, concept, key)
	if err != nil {
		i.logger.WarnContext(ctx, "treasury unreachable, issuing local fallback reference",
			"folio", f.String(),
			"error", err,
		)
		if i.metrics != nil {
			i.metrics.TreasuryFallbacks.Inc()
			i.metrics.ReferencesIssued.WithLabelValues(string(OriginLocalFallback)).Inc()
		}
		return PaymentReference{
			Code:           localCode(),
			AmountCents:    amountCents,
			ExpiresAt:      now.Add(fallbackExpiryDays * 24 * time.Hour),
			IdempotencyKey: key,
			Origin:         OriginLocalFallback,
		}
	}

	if i.metrics != nil {
		i.metrics.ReferencesIssued.WithLabelValues(string(OriginRemote)).Inc()
	}
	return PaymentReference{
		Code:           linea.Codigo,
		AmountCents:    amountCents,
		ExpiresAt:      linea.FechaVencimiento,
		SourceSystemID: linea.ID,
		IdempotencyKey: key,
		Origin:         OriginRemote,
	}
}
