// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client builds the outbound *http.Client shared by upstream SDKs.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose requests carry userAgent and are bounded
// by timeout. A zero timeout leaves deadlines to the request context.
func NewClient(timeout time.Duration, userAgent string) *Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 10
	base.IdleConnTimeout = 90 * time.Second

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &userAgentTransport{next: base, userAgent: userAgent},
		},
	}
}

// Standard exposes the underlying client for libraries that accept one.
func (c *Client) Standard() *http.Client {
	return c.httpClient
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" || req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
