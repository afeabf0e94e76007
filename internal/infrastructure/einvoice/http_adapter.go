// Package einvoice implements the e-invoice provider port over the
// provider's HTTP API.
package einvoice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tradebooks/backend/internal/domain/integration"
	"github.com/tradebooks/backend/internal/infrastructure/config"
)

const (
	sendPath   = "/v1/invoices/%s/send"
	statusPath = "/v1/invoices/%s/status"
)

// HTTPAdapter implements integration.EInvoiceAdapter against the
// provider's REST API.
type HTTPAdapter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPAdapter creates an adapter from the e-invoice configuration
func NewHTTPAdapter(cfg config.EInvoiceConfig) (*HTTPAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("einvoice: base URL is required")
	}
	return &HTTPAdapter{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Send transmits the document to the provider
func (a *HTTPAdapter) Send(ctx context.Context, documentID uuid.UUID) error {
	respBody, status, err := a.doRequest(ctx, http.MethodPost, fmt.Sprintf(sendPath, documentID))
	if err != nil {
		return err
	}
	if status >= 400 {
		return a.providerError(status, respBody)
	}
	return nil
}

// Status queries the provider for the transmission state
func (a *HTTPAdapter) Status(ctx context.Context, documentID uuid.UUID) (integration.EInvoiceStatus, error) {
	respBody, status, err := a.doRequest(ctx, http.MethodGet, fmt.Sprintf(statusPath, documentID))
	if err != nil {
		return integration.EInvoiceStatusUnknown, err
	}
	if status >= 400 {
		return integration.EInvoiceStatusUnknown, a.providerError(status, respBody)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return integration.EInvoiceStatusUnknown, fmt.Errorf("einvoice: failed to parse response: %w", err)
	}

	switch payload.Status {
	case "PENDING":
		return integration.EInvoiceStatusPending, nil
	case "DELIVERED":
		return integration.EInvoiceStatusDelivered, nil
	case "REJECTED":
		return integration.EInvoiceStatusRejected, nil
	default:
		return integration.EInvoiceStatusUnknown, nil
	}
}

// doRequest performs an HTTP request against the provider API
func (a *HTTPAdapter) doRequest(ctx context.Context, method, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("einvoice: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("einvoice: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("einvoice: failed to read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// providerError maps an error response to a descriptive error
func (a *HTTPAdapter) providerError(status int, body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Code != "" {
		return fmt.Errorf("einvoice: provider rejected request: %s - %s", payload.Code, payload.Message)
	}
	return fmt.Errorf("einvoice: provider returned HTTP %d", status)
}

// Ensure HTTPAdapter implements EInvoiceAdapter
var _ integration.EInvoiceAdapter = (*HTTPAdapter)(nil)
