// Package handler is the thin HTTP layer over the finalize flow, the
// reconciliation queue and the treasury lookup. It delegates to services
// and keeps transport concerns isolated.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"multa-gateway/internal/discount"
	"multa-gateway/internal/platform/middleware"
	"multa-gateway/internal/queue"
	"multa-gateway/internal/treasury"
	"multa-gateway/internal/violation/service"
	dErrors "multa-gateway/pkg/domain-errors"
	"multa-gateway/pkg/platform/sentinel"
)

// Finalizer closes violations.
type Finalizer interface {
	Finalize(ctx context.Context, in service.FinalizeInput) (*service.FinalizeResult, error)
}

// QueueService exposes the queue snapshot and the manual drain.
type QueueService interface {
	Items(ctx context.Context) ([]queue.QueuedViolation, error)
	Drain(ctx context.Context) (queue.DrainReport, error)
}

// TreasuryQuerier looks up the state of an issued línea.
type TreasuryQuerier interface {
	Validate(ctx context.Context, codigo string) (*treasury.LineaStatus, error)
}

// Handler handles the gateway's violation endpoints.
type Handler struct {
	logger    *slog.Logger
	finalizer Finalizer
	queue     QueueService
	tesoreria TreasuryQuerier
	now       func() time.Time
}

// New creates a Handler.
func New(finalizer Finalizer, queueSvc QueueService, tesoreria TreasuryQuerier, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		finalizer: finalizer,
		queue:     queueSvc,
		tesoreria: tesoreria,
		now:       time.Now,
	}
}

// WithClock overrides the clock used by the discount endpoint.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Register wires the violation routes into the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/multas", h.handleFinalize)
	r.Get("/api/multas/cola", h.handleQueueSnapshot)
	r.Post("/api/multas/cola/drenar", h.handleDrain)
	r.Get("/api/lineas/{codigo}/validar", h.handleValidateLinea)
	r.Get("/api/descuentos", h.handleDiscount)
}

type finalizeRequest struct {
	TipoInfraccion string `json:"tipo_infraccion"`
	AgenteID       *int   `json:"agente_id"`
	Placa          string `json:"placa"`
	Vehiculo       string `json:"vehiculo"`
	Ubicacion      string `json:"ubicacion"`
	Concepto       string `json:"concepto"`
	MontoCentavos  int64  `json:"monto_centavos"`
}

type finalizeResponse struct {
	Folio        string                    `json:"folio"`
	LineaCaptura treasury.PaymentReference `json:"linea_captura"`
	Disposicion  string                    `json:"disposicion"`
	Descuento    *discount.Discount        `json:"descuento,omitempty"`
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid finalize request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.finalizer.Finalize(ctx, service.FinalizeInput{
		InfractionTypeID: req.TipoInfraccion,
		AgentID:          req.AgenteID,
		Plate:            req.Placa,
		Vehicle:          req.Vehiculo,
		Location:         req.Ubicacion,
		Concept:          req.Concepto,
		AmountCents:      req.MontoCentavos,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, finalizeResponse{
		Folio:        result.Violation.Folio.String(),
		LineaCaptura: result.Violation.Reference,
		Disposicion:  string(result.Disposition),
		Descuento:    result.Discount,
	})
}

func (h *Handler) handleQueueSnapshot(w http.ResponseWriter, r *http.Request) {
	items, err := h.queue.Items(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []queue.QueuedViolation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"multas": items})
}

func (h *Handler) handleDrain(w http.ResponseWriter, r *http.Request) {
	report, err := h.queue.Drain(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleValidateLinea(w http.ResponseWriter, r *http.Request) {
	status, err := h.tesoreria.Validate(r.Context(), chi.URLParam(r, "codigo"))
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "linea not found"))
		return
	case errors.Is(err, sentinel.ErrUnavailable):
		writeError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "treasury unavailable"))
		return
	case err != nil:
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) handleDiscount(w http.ResponseWriter, r *http.Request) {
	expedida := r.URL.Query().Get("expedida")
	if expedida == "" {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "expedida query parameter is required"))
		return
	}
	createdAt, err := time.Parse(time.RFC3339, expedida)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "expedida must be RFC3339"))
		return
	}

	d, err := discount.For(createdAt, h.now())
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "expedida is in the future"))
		return
	}
	if d == nil {
		writeJSON(w, http.StatusOK, map[string]any{"porcentaje": 0})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError centralizes domain error translation to HTTP responses so
// every handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": string(code),
	})
}
