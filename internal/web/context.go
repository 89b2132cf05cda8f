package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/contactbook/internal/core"
)

// WithRequestMetadata records the upload name on ctx so the import log can
// attribute the run. The client IP is normally set by middleware.ClientIP;
// without it the peer address is used.
func WithRequestMetadata(ctx context.Context, r *http.Request, source string) context.Context {
	if core.ClientIPFromContext(ctx) == "" {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx = core.ContextWithClientIP(ctx, ip)
	}
	if source != "" {
		ctx = core.ContextWithSource(ctx, source)
	}
	return ctx
}
