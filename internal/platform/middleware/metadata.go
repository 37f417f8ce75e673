package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"cradle/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds the X-Forwarded-For header to prevent header
// injection attacks.
const MaxXFFHeaderLength = 500

// Metadata extracts client IP and User-Agent into the request context for
// handlers, services, and the audit logger. X-Forwarded-For and X-Real-IP are
// honored only when the direct peer is a trusted proxy.
type Metadata struct {
	trustedProxies []netip.Prefix
}

// NewMetadata creates the metadata middleware. trustedProxies is a list of
// CIDR prefixes; invalid entries are ignored. An empty list means forwarding
// headers are never trusted.
func NewMetadata(trustedProxies []string) *Metadata {
	m := &Metadata{}
	for _, cidr := range trustedProxies {
		if prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr)); err == nil {
			m.trustedProxies = append(m.trustedProxies, prefix)
		}
	}
	return m
}

// Handler extracts client IP address and User-Agent from the request
// and adds them to the context.
func (m *Metadata) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.extractClientIP(r)
		userAgent := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, userAgent)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Metadata) extractClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := r.Header.Get("X-Real-IP"); xri != "" && m.isTrustedProxy(remoteIP) && len(xri) <= MaxXFFHeaderLength {
			return strings.TrimSpace(xri)
		}
		return remoteIP
	}

	if !m.isTrustedProxy(remoteIP) || len(xff) > MaxXFFHeaderLength {
		return remoteIP
	}

	// First IP in the XFF chain is the original client.
	clientIP := xff
	if before, _, ok := strings.Cut(xff, ","); ok {
		clientIP = before
	}
	clientIP = strings.TrimSpace(clientIP)
	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}
	return clientIP
}

func (m *Metadata) isTrustedProxy(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(remoteAddr string) string {
	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return addrPort.Addr().String()
	}
	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return addr.String()
	}
	return ""
}
