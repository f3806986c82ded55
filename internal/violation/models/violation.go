// Package models defines the violation record shared by the finalize flow,
// the reconciliation queue and the backend client.
package models

import (
	"time"

	"github.com/google/uuid"

	"multa-gateway/internal/folio"
	"multa-gateway/internal/treasury"
)

// Violation is one finalized traffic violation. Folio and Reference are
// assigned before the record reaches either the immediate-submit path or the
// offline queue; the folio is immutable from then on.
type Violation struct {
	ID               uuid.UUID `json:"id"`
	Plate            string    `json:"placa"`
	Vehicle          string    `json:"vehiculo,omitempty"`
	InfractionTypeID string    `json:"tipo_infraccion"`
	AgentID          *int      `json:"agente_id,omitempty"`
	// AmountCents is the fine in centavos. Integer minor units, never floats.
	AmountCents int64     `json:"monto_centavos"`
	Concept     string    `json:"concepto"`
	Location    string    `json:"ubicacion,omitempty"`
	IssuedAt    time.Time `json:"expedida_en"`

	Folio     folio.Folio               `json:"folio"`
	Reference treasury.PaymentReference `json:"linea_captura"`
}

// SubmitResult is what the backend acknowledged for a submission. Reference
// is non-nil when the backend confirmed a treasury-issued línea for the
// folio; the caller may merge it over a local-fallback reference, but the
// folio itself is never taken from the backend.
type SubmitResult struct {
	Folio     string
	Reference *treasury.PaymentReference
}
