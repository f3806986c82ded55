package treasury

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "multa-gateway/pkg/domain-errors"
	"multa-gateway/pkg/platform/sentinel"
)

const fechaLayout = "2006-01-02"

// Client is the thin HTTP transport for the treasury service. It reports
// every failure (transport, non-2xx, malformed body) as an error and leaves
// the fallback decision to the Issuer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a treasury client. timeout bounds each call end to end.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Monto             float64 `json:"monto"`
	Concepto          string  `json:"concepto"`
	ReferenciaExterna string  `json:"referencia_externa"`
}

type lineaPayload struct {
	Codigo           string `json:"codigo"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	ID               string `json:"id"`
	Estado           string `json:"estado"`
}

type generateResponse struct {
	Success bool          `json:"success"`
	Linea   *lineaPayload `json:"linea"`
}

// Generate requests a línea de captura. referencia is the caller-supplied
// idempotency key the treasury uses to collapse duplicate requests.
func (c *Client) Generate(ctx context.Context, amountCents int64, concepto, referencia string) (*Linea, error) {
	body, err := json.Marshal(generateRequest{
		Monto:             float64(amountCents) / 100,
		Concepto:          concepto,
		ReferenciaExterna: referencia,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/lineas/generar", bytes.NewReader(body))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury generate: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: treasury generate: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: treasury generate: malformed body: %v", sentinel.ErrUnavailable, err)
	}
	if !decoded.Success || decoded.Linea == nil || decoded.Linea.Codigo == "" {
		return nil, fmt.Errorf("%w: treasury generate: unexpected response shape", sentinel.ErrUnavailable)
	}

	vence, err := time.Parse(fechaLayout, decoded.Linea.FechaVencimiento)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury generate: bad fecha_vencimiento %q", sentinel.ErrUnavailable, decoded.Linea.FechaVencimiento)
	}

	return &Linea{
		Codigo:           decoded.Linea.Codigo,
		FechaVencimiento: vence,
		ID:               decoded.Linea.ID,
		Estado:           decoded.Linea.Estado,
	}, nil
}

// Validate queries the current state of an issued línea.
func (c *Client) Validate(ctx context.Context, codigo string) (*LineaStatus, error) {
	if codigo == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "codigo is required")
	}

	endpoint := fmt.Sprintf("%s/api/lineas/%s/validar", c.baseURL, url.PathEscape(codigo))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build validate request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury validate: %v", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: linea %s", sentinel.ErrNotFound, codigo)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: treasury validate: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}

	var decoded struct {
		Estado           string `json:"estado"`
		FechaVencimiento string `json:"fecha_vencimiento"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: treasury validate: malformed body: %v", sentinel.ErrUnavailable, err)
	}

	vence, err := time.Parse(fechaLayout, decoded.FechaVencimiento)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury validate: bad fecha_vencimiento %q", sentinel.ErrUnavailable, decoded.FechaVencimiento)
	}

	return &LineaStatus{Estado: decoded.Estado, FechaVencimiento: vence}, nil
}
