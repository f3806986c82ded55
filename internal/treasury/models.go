package treasury

import "time"

// Origin distinguishes treasury-issued references from locally generated
// stand-ins. Modeling this as an explicit variant (instead of swallowing the
// remote failure) lets the reconciliation queue find and replace fallback
// references once connectivity returns.
type Origin string

const (
	OriginRemote        Origin = "remote"
	OriginLocalFallback Origin = "local_fallback"
)

// PaymentReference is a bank-payable línea de captura tied to exactly one
// violation. Amounts are centavos; integer arithmetic avoids the rounding
// surprises floats bring to money.
type PaymentReference struct {
	Code           string    `json:"codigo"`
	AmountCents    int64     `json:"monto_centavos"`
	ExpiresAt      time.Time `json:"fecha_vencimiento"`
	SourceSystemID string    `json:"id_sistema_origen,omitempty"`
	IdempotencyKey string    `json:"referencia_externa"`
	Origin         Origin    `json:"origen"`
}

// Linea is the treasury's view of an issued línea de captura.
type Linea struct {
	Codigo           string
	FechaVencimiento time.Time
	ID               string
	Estado           string
}

// LineaStatus is the result of the validation query used by the payment
// screen to detect expiry.
type LineaStatus struct {
	Estado           string    `json:"estado"`
	FechaVencimiento time.Time `json:"fecha_vencimiento"`
}
