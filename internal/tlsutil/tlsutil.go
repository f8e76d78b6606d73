// Package tlsutil provides centralized TLS configuration for the HTTP
// clients in apibridge.
package tlsutil

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultTLSConfig returns a hardened TLS configuration.
// MinVersion TLS 1.2, AEAD-only cipher suites.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		},
	}
}

// ClientTLSConfig returns the TLS configuration for outbound calls.
// Remote services fronted by self-signed certificates are common in the
// deployments this bridge targets, so certificate verification can be
// switched off explicitly.
func ClientTLSConfig(verify bool) *tls.Config {
	cfg := DefaultTLSConfig()
	cfg.InsecureSkipVerify = !verify
	return cfg
}

// Transport returns an http.Transport with the given TLS policy.
func Transport(verify bool) *http.Transport {
	return &http.Transport{
		TLSClientConfig: ClientTLSConfig(verify),
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// HTTPClient returns an http.Client with the given TLS policy and timeout.
func HTTPClient(verify bool, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Transport(verify),
	}
}
