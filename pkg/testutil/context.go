package testutil

import (
	"net/http"
	"time"

	"rollbook/pkg/requestcontext"
)

// WithAuth injects the authenticated user reference and session id into the
// request context, simulating what the auth middleware does.
func WithAuth(req *http.Request, userRef, sessionID string) *http.Request {
	ctx := req.Context()
	if userRef != "" {
		ctx = requestcontext.WithUserRef(ctx, userRef)
	}
	if sessionID != "" {
		ctx = requestcontext.WithSessionID(ctx, sessionID)
	}
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID injects a correlation id.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
