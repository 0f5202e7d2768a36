// Package transport provides the HTTP transport used for Shopify Admin
// API calls.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// Shopify fronts the Admin API with a CDN that fingerprints TLS client
// hellos (JA3) and throttles clients that look like bots. Go's standard
// TLS stack has a distinctive fingerprint, so sustained enrichment
// traffic from this service gets rate limited long before the documented
// API call limits.
//
// NewBrowserTransport returns an http.RoundTripper that presents a
// Chrome TLS fingerprint via uTLS. ALPN negotiates h2 or http/1.1
// naturally; HTTP/2 framing is handled by x/net/http2 when negotiated,
// with a plain HTTP/1.1 transport as fallback.
func NewBrowserTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	return &browserTransport{
		h2: &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialBrowserTLS(ctx, dialer, network, addr)
			},
		},
		h1: &http.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialBrowserTLS(ctx, dialer, network, addr)
			},
			ForceAttemptHTTP2: false,
		},
	}
}

// browserTransport tries HTTP/2 first and falls back to HTTP/1.1 for
// servers that never negotiate h2.
type browserTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

func (t *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	return t.h1.RoundTrip(req)
}

// dialBrowserTLS establishes a TLS connection with Chrome's fingerprint.
func dialBrowserTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
