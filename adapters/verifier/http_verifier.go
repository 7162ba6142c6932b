package verifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/layer-3/persona/core"
	"github.com/layer-3/persona/ports"
)

// DefaultTimeout bounds a single verification call. The original widget had
// no timeout at all; a hung verifier would hang the login request with it.
const DefaultTimeout = 30 * time.Second

// HTTPVerifier implements the Verifier interface against a remote
// verification endpoint using a form-encoded POST
type HTTPVerifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPVerifier creates a verifier client for the given endpoint.
// A non-positive timeout falls back to DefaultTimeout.
func NewHTTPVerifier(endpoint string, timeout time.Duration) ports.Verifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPVerifier{
		endpoint: endpoint,
		client: &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   timeout,
		},
	}
}

// Verify posts the assertion and audience to the verification endpoint and
// returns the raw response body. A failed call, an unreadable body and an
// empty body all wrap core.ErrTransport; there is no retry.
func (v *HTTPVerifier) Verify(ctx context.Context, assertion, audience string) ([]byte, error) {
	form := url.Values{
		"assertion": {assertion},
		"audience":  {audience},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", core.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", core.ErrTransport, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", core.ErrTransport)
	}

	return body, nil
}
