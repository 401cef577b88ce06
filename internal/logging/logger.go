// Package logging is the server's structured logger. Request-scoped fields
// such as the request id and the authenticated user travel in the context and
// are added to every entry logged with that context.
package logging

import "context"

// Logger takes key-value pairs after the message:
//
//	log.Info(ctx, "invoice generated", "invoice_id", id, "items", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

type fieldsKey struct{}

// ContextWith returns a copy of ctx whose log entries also carry args.
// Fields accumulate across calls.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the key-value pairs attached with ContextWith.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}
