// Package discount computes the prompt-payment discount tier for a
// violation. Pure arithmetic over elapsed whole days; no I/O.
package discount

import (
	"time"

	dErrors "multa-gateway/pkg/domain-errors"
)

// Tier boundaries in whole days since the violation was issued. Boundary
// days belong to the higher discount.
const (
	fullDiscountDays = 10
	halfDiscountDays = 20
)

// Discount describes the tier in effect and when it closes.
type Discount struct {
	Percentage int       `json:"porcentaje"`
	WindowEnd  time.Time `json:"fin_ventana"`
}

// For returns the discount in effect at now for a violation issued at
// createdAt. A nil Discount means the window has closed (0%).
// now before createdAt is a programmer error.
func For(createdAt, now time.Time) (*Discount, error) {
	if now.Before(createdAt) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "now precedes violation creation time")
	}

	days := int(now.Sub(createdAt) / (24 * time.Hour))
	switch {
	case days <= fullDiscountDays:
		return &Discount{
			Percentage: 50,
			WindowEnd:  createdAt.Add(fullDiscountDays * 24 * time.Hour),
		}, nil
	case days <= halfDiscountDays:
		return &Discount{
			Percentage: 25,
			WindowEnd:  createdAt.Add(halfDiscountDays * 24 * time.Hour),
		}, nil
	default:
		return nil, nil
	}
}
