// Package originca implements internal/provider.OriginCA as a plain
// HTTP JSON client, the same shape as the origin-CA calls the teacher
// repo's pkg/ingress/acme.go makes over stdlib net/http — no SDK
// exists for this API so the control plane talks to it directly.
package originca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
)

const defaultBaseURL = "https://api.cloudflare.com/client/v4/certificates"

// Client issues origin certificates over HTTPS using an API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New builds a Client authenticated with an Origin CA API key.
func New(apiKey string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type issueRequestBody struct {
	Hostnames         []string `json:"hostnames"`
	RequestType       string   `json:"request_type"`
	RequestedValidity int      `json:"requested_validity"`
	CSR               string   `json:"csr"`
}

type issueResponseBody struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result struct {
		Certificate string `json:"certificate"`
	} `json:"result"`
}

func (c *Client) Issue(ctx context.Context, req provider.IssueCertRequest) (string, error) {
	if !provider.ValidValidityDays[req.RequestedValidity] {
		return "", &dynerr.ValidationError{
			Field:   "requestedValidity",
			Message: fmt.Sprintf("%d is not an accepted validity period", req.RequestedValidity),
		}
	}

	body := issueRequestBody{
		Hostnames:         req.Hostnames,
		RequestType:       "origin-rsa",
		RequestedValidity: req.RequestedValidity,
		CSR:               req.CSRPEM,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &dynerr.IOFailure{Op: "marshal", Path: "originca-request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", &dynerr.TransportError{Host: c.baseURL, Message: err.Error(), Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Auth-User-Service-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &dynerr.TransportError{Host: c.baseURL, Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &dynerr.TransportError{Host: c.baseURL, Message: err.Error(), Cause: err}
	}

	var parsed issueResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &dynerr.SchemaError{Message: fmt.Sprintf("invalid origin CA response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		msg := fmt.Sprintf("origin CA request failed with status %d", resp.StatusCode)
		if len(parsed.Errors) > 0 {
			msg = parsed.Errors[0].Message
		}
		kind := dynerr.ProviderErrorServer
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			kind = dynerr.ProviderErrorAuth
		case resp.StatusCode == http.StatusTooManyRequests:
			kind = dynerr.ProviderErrorRateLimit
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			kind = dynerr.ProviderErrorValidation
		}
		return "", dynerr.NewProviderError(kind, msg, retryable, nil)
	}

	if parsed.Result.Certificate == "" {
		return "", &dynerr.SchemaError{Message: "origin CA response carried no certificate"}
	}
	return parsed.Result.Certificate, nil
}
