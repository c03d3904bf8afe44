// Package security applies hardening headers to API responses.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration.
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginOpener   string
	CrossOriginResource string
}

// DefaultHeadersConfig returns secure defaults for a JSON API.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'; base-uri 'none'",

		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",
	}
}

// HeadersMiddleware applies security headers to responses.
type HeadersMiddleware struct {
	config HeadersConfig
}

// NewHeadersMiddleware creates a new security headers middleware.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Handler wraps next with security header injection.
func (m *HeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		if m.config.CSP != "" {
			h.Set("Content-Security-Policy", m.config.CSP)
		}
		if m.config.HSTSMaxAge > 0 && r.TLS != nil {
			hsts := fmt.Sprintf("max-age=%d", m.config.HSTSMaxAge)
			if m.config.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			h.Set("Strict-Transport-Security", hsts)
		}
		if m.config.XFrameOptions != "" {
			h.Set("X-Frame-Options", m.config.XFrameOptions)
		}
		if m.config.XContentTypeOptions != "" {
			h.Set("X-Content-Type-Options", m.config.XContentTypeOptions)
		}
		if m.config.ReferrerPolicy != "" {
			h.Set("Referrer-Policy", m.config.ReferrerPolicy)
		}
		if m.config.CrossOriginOpener != "" {
			h.Set("Cross-Origin-Opener-Policy", m.config.CrossOriginOpener)
		}
		if m.config.CrossOriginResource != "" {
			h.Set("Cross-Origin-Resource-Policy", m.config.CrossOriginResource)
		}

		next.ServeHTTP(w, r)
	})
}
