package core

import "context"

type contextKey string

const (
	ctxKeyClientIP contextKey = "import_client_ip"
	ctxKeySource   contextKey = "import_source"
)

// ContextWithClientIP records the remote address an import came from.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithSource records where the import stream came from, such as a
// file path or upload name.
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// ClientIPFromContext extracts the client IP, or "" if unset.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// SourceFromContext extracts the import source, or "" if unset.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok {
		return v
	}
	return ""
}

// importLogAttrs returns the non-empty request attributes for import logs.
func importLogAttrs(ctx context.Context) []any {
	var attrs []any
	if ip := ClientIPFromContext(ctx); ip != "" {
		attrs = append(attrs, "client_ip", ip)
	}
	if src := SourceFromContext(ctx); src != "" {
		attrs = append(attrs, "source", src)
	}
	return attrs
}
