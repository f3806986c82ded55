// Package backend is the HTTP client for the violations API. It is the only
// component that talks to POST /api/multas; both the immediate-submit path
// and the reconciliation drain go through it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	violationModel "multa-gateway/internal/violation/models"
	dErrors "multa-gateway/pkg/domain-errors"
	"multa-gateway/pkg/platform/sentinel"

	"multa-gateway/internal/treasury"
)

const probeTimeout = 3 * time.Second

// Client submits violations keyed by their client-assigned folio. The
// backend treats the folio as the idempotency key, so re-submitting an
// already-stored folio must ack without creating a second record.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a backend client. timeout bounds each submission end to end.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type submitResponse struct {
	Success bool `json:"success"`
	Multa   *struct {
		Folio        string `json:"folio"`
		LineaCaptura *struct {
			Codigo           string `json:"codigo"`
			FechaVencimiento string `json:"fecha_vencimiento"`
			ID               string `json:"id"`
		} `json:"linea_captura"`
	} `json:"multa"`
}

// Submit pushes one violation to the backend. Any transport or shape failure
// comes back wrapped in sentinel.ErrUnavailable so the queue can treat it as
// transient. The response echo is informational only: the local folio is
// authoritative and is never overwritten with backend data.
func (c *Client) Submit(ctx context.Context, v violationModel.Violation) (*violationModel.SubmitResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal violation")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/multas", bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build submit request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit multa: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: submit multa: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var decoded submitResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: submit multa: malformed body: %v", sentinel.ErrUnavailable, err)
	}
	if !decoded.Success || decoded.Multa == nil {
		return nil, fmt.Errorf("%w: submit multa: unexpected response shape", sentinel.ErrUnavailable)
	}

	result := &violationModel.SubmitResult{Folio: decoded.Multa.Folio}
	if lc := decoded.Multa.LineaCaptura; lc != nil && lc.Codigo != "" {
		ref := treasury.PaymentReference{
			Code:           lc.Codigo,
			AmountCents:    v.AmountCents,
			SourceSystemID: lc.ID,
			Origin:         treasury.OriginRemote,
		}
		if vence, err := time.Parse("2006-01-02", lc.FechaVencimiento); err == nil {
			ref.ExpiresAt = vence
		}
		result.Reference = &ref
	}
	return result, nil
}

// Reachable probes backend connectivity with a short deadline. It is a mode
// selector, not a guarantee: a submission after a positive probe can still
// fail and degrade to the queue.
func (c *Client) Reachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/salud", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	return resp.StatusCode < 500
}
