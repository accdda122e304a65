// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by transport middleware and consumed by services. Keeping the
// package free of net/http lets services and workers import it without pulling
// transport code along.
//
// Usage in services (read values):
//
//	sessionID := requestcontext.SessionID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithUserRef(ctx, sub)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSessionID(ctx, "sess-1")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	userRefKey     struct{}
	sessionIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyUserRef     = userRefKey{}
	ContextKeySessionID   = sessionIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// UserRef retrieves the acting user's external reference (the authenticated
// subject) from the context. Empty when unauthenticated.
func UserRef(ctx context.Context) string {
	if ref, ok := ctx.Value(ContextKeyUserRef).(string); ok {
		return ref
	}
	return ""
}

// WithUserRef injects the acting user's external reference into the context.
func WithUserRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, ContextKeyUserRef, ref)
}

// SessionID retrieves the originating request/login session id. This is the
// analytics session identifier recorded on registrations and survey
// submissions, distinct from a campaign's session-range labels.
func SessionID(ctx context.Context) string {
	if sid, ok := ctx.Value(ContextKeySessionID).(string); ok {
		return sid
	}
	return ""
}

// WithSessionID injects a session id into the context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// RequestID retrieves the request correlation id from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need a consistent time across a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
